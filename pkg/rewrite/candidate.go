// Package rewrite holds the candidate rewrite shape shared by the Pattern
// Engine (C5) and Concept Engine (C6), and consumed by the Confidence
// Calibrator (C8) and Overlap Resolver (C7).
package rewrite

import "github.com/codeready-toolchain/promptopt/pkg/protect"

// Origin records which catalog entry produced a candidate. Exactly one of
// PatternID or ConceptQID is set, per §3.
type Origin struct {
	PatternID string
	ConceptQID string
}

// Candidate is the ephemeral candidate rewrite of §3. It exists only for
// the duration of a single optimize call.
type Candidate struct {
	Span               protect.Span
	SourceKind         string
	Replacement        string
	BaseConfidence     float64
	FinalConfidence    float64
	Origin             Origin
	TokenDeltaEstimate int
}
