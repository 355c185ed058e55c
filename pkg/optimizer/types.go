// Package optimizer is the Pipeline Orchestrator (C9): it wires the
// Protected Region Detector, Pattern Engine, Concept Engine, Confidence
// Calibrator, and Overlap Resolver into the single synchronous
// optimization call described in §4.9.
package optimizer

import (
	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
)

// SelectionPolicy chooses how the Concept Engine breaks ties between
// equally-cheap surface forms, per §6.
type SelectionPolicy string

const (
	SelectionMinTokens              SelectionPolicy = "min_tokens"
	SelectionSameLanguage           SelectionPolicy = "same_language"
	SelectionPreferOriginalLanguage SelectionPolicy = "prefer_original_language"
)

// DirectiveFormat selects the output-language directive appended to the
// optimized body, per §6.
type DirectiveFormat string

const (
	DirectiveBracketed  DirectiveFormat = "bracketed"
	DirectiveInstructive DirectiveFormat = "instructive"
	DirectiveXML        DirectiveFormat = "xml"
	DirectiveNatural    DirectiveFormat = "natural"
	DirectiveNone       DirectiveFormat = "none"
)

// defaultConfidenceThreshold and aggressiveThresholdFloor are the §6
// request defaults: 0.85 normally; when Aggressive is set, a threshold
// above 0.70 is lowered to 0.70.
const (
	defaultConfidenceThreshold = 0.85
	aggressiveThresholdFloor   = 0.70
)

// Request is one optimize call's input, per §3 and §6.
type Request struct {
	Prompt              string
	TokenizerID         string
	OutputLanguage      string
	ConfidenceThreshold float64
	Aggressive          bool
	SelectionPolicy     SelectionPolicy
	ProtectionPolicy    protect.Policy
	DirectiveFormat     DirectiveFormat
	ConceptTier         concept.Tier
	CallbackURL         string
}

// effectiveThreshold applies the §6 aggressive-mode floor to the
// request's configured confidence threshold.
func (r Request) effectiveThreshold() float64 {
	threshold := r.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}
	if r.Aggressive && threshold > aggressiveThresholdFloor {
		return aggressiveThresholdFloor
	}
	return threshold
}

// AppliedRewrite is the result-facing projection of an internal candidate,
// used for both Result.Applied and Result.Deferred.
type AppliedRewrite struct {
	Start           int
	End             int
	SourceKind      string
	Replacement     string
	FinalConfidence float64
	PatternID       string
	ConceptQID      string
}

// Result is the outcome of one optimize call, per §3.
type Result struct {
	Original        string
	Optimized       string
	OriginalTokens  int
	OptimizedTokens int
	Delta           int
	DeltaFraction   float64
	Applied         []AppliedRewrite
	Deferred        []AppliedRewrite
	ReviewSessionID string
}
