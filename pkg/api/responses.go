package api

import "github.com/codeready-toolchain/promptopt/pkg/optimizer"

// RewriteView is the wire projection of optimizer.AppliedRewrite.
type RewriteView struct {
	Start           int     `json:"start"`
	End             int     `json:"end"`
	SourceKind      string  `json:"source_kind"`
	Replacement     string  `json:"replacement"`
	FinalConfidence float64 `json:"final_confidence"`
	PatternID       string  `json:"pattern_id,omitempty"`
	ConceptQID      string  `json:"concept_qid,omitempty"`
}

// OptimizeResponse is §6's Response shape.
type OptimizeResponse struct {
	Original        string        `json:"original"`
	Optimized       string        `json:"optimized"`
	OriginalTokens  int           `json:"original_tokens"`
	OptimizedTokens int           `json:"optimized_tokens"`
	Delta           int           `json:"delta"`
	DeltaFraction   float64       `json:"delta_fraction"`
	Applied         []RewriteView `json:"applied"`
	Deferred        []RewriteView `json:"deferred"`
	ReviewSessionID string        `json:"review_session_id,omitempty"`
}

func toResponse(r *optimizer.Result) OptimizeResponse {
	return OptimizeResponse{
		Original:        r.Original,
		Optimized:       r.Optimized,
		OriginalTokens:  r.OriginalTokens,
		OptimizedTokens: r.OptimizedTokens,
		Delta:           r.Delta,
		DeltaFraction:   r.DeltaFraction,
		Applied:         toRewriteViews(r.Applied),
		Deferred:        toRewriteViews(r.Deferred),
		ReviewSessionID: r.ReviewSessionID,
	}
}

func toRewriteViews(rewrites []optimizer.AppliedRewrite) []RewriteView {
	out := make([]RewriteView, 0, len(rewrites))
	for _, rw := range rewrites {
		out = append(out, RewriteView{
			Start:           rw.Start,
			End:             rw.End,
			SourceKind:      rw.SourceKind,
			Replacement:     rw.Replacement,
			FinalConfidence: rw.FinalConfidence,
			PatternID:       rw.PatternID,
			ConceptQID:      rw.ConceptQID,
		})
	}
	return out
}

// errorResponse is §6's wire error taxonomy envelope: a stable kind string
// and a human-readable message, never prompt content.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
