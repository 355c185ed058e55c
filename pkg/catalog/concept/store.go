package concept

import "context"

// Store is the storage contract of §4.3.
type Store interface {
	// ResolveLabel looks up a concept qid for text under the given tier.
	// A miss is reported as ("", false, nil), never an error — an
	// unsupported tier (e.g. fuzzy, when not implemented) is also a miss.
	ResolveLabel(ctx context.Context, text string, tier Tier) (qid string, ok bool, err error)

	// FormsFor returns surface forms for a concept under one tokenizer,
	// sorted by token_count ascending.
	FormsFor(ctx context.Context, qid, tokenizerID string) ([]SurfaceForm, error)

	// CacheLookup is best-effort: callers must treat any error as a miss.
	CacheLookup(ctx context.Context, key string) (*CacheEntry, error)

	// CacheStore is best-effort: a failure is logged by the caller and
	// otherwise ignored.
	CacheStore(ctx context.Context, entry CacheEntry) error

	// CreateConcept inserts a new concept (administrative).
	CreateConcept(ctx context.Context, c Concept) (*Concept, error)

	// AddSurfaceForm attaches a surface form to an existing concept
	// (administrative). TokenCount must already equal
	// tokenizer.Count(Form); the store does not call the tokenizer itself.
	AddSurfaceForm(ctx context.Context, sf SurfaceForm) (*SurfaceForm, error)
}
