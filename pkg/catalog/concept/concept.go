// Package concept is the Concept Catalog (C3): a persistent store of
// cross-lingual concepts and their per-tokenizer surface forms, plus the
// best-effort optimization cache of §3.
package concept

import "time"

// Concept is the persistent record of §3: an opaque, stable cross-lingual
// identifier for a meaning.
type Concept struct {
	QID            string
	CanonicalLabel string
	Description    string
	Category       string
	Aliases        []string
}

// SurfaceForm is a concrete realization of a Concept in one language under
// one tokenizer, with a precomputed token cost. The §3 invariant
// (concept_qid, tokenizer_id, language_tag, form) unique is enforced by the
// store, and token_count must equal tokenizer.Count(form) at write time.
type SurfaceForm struct {
	ConceptQID  string
	TokenizerID string
	LanguageTag string
	Form        string
	TokenCount  int
	CharCount   int
}

// CacheEntry is the optimization cache record of §3. It is purely a
// performance accelerator: dropping all entries must not change the
// optimizer's output, only its latency.
type CacheEntry struct {
	Key             string
	OriginalText    string
	ConceptQID      string
	SelectedForm    string
	TokenCount      int
	Confidence      float64
	SelectionPolicy string
	Hits            int
	CreatedAt       time.Time
}

// Tier is a resolution policy tier per §4.3.
type Tier string

const (
	// TierExact matches the canonical label only, no case-folding.
	TierExact Tier = "exact"
	// TierNormalized also matches after lowercasing and Unicode NFKC
	// normalization, and considers known aliases.
	TierNormalized Tier = "normalized"
	// TierFuzzy is optional; unsupported implementations fall through to
	// a miss rather than erroring.
	TierFuzzy Tier = "fuzzy"
)

// BaseConfidenceForTier returns the documented constant confidence a
// concept substitution is assigned based on which resolution tier
// produced the hit (§4.6 step 5).
func BaseConfidenceForTier(t Tier) float64 {
	switch t {
	case TierExact:
		return 0.95
	case TierNormalized:
		return 0.90
	case TierFuzzy:
		return 0.80
	default:
		return 0.80
	}
}
