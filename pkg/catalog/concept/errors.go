package concept

import "errors"

var (
	// ErrNotFound is returned when a concept qid has no matching record.
	ErrNotFound = errors.New("concept not found")

	// ErrDuplicateSurfaceForm is returned when (concept_qid, tokenizer_id,
	// language_tag, form) is not unique, per the §3 invariant.
	ErrDuplicateSurfaceForm = errors.New("surface form already exists for this concept, tokenizer and language")

	// ErrCacheMiss is returned by CacheLookup when no entry matches the key.
	// Callers should treat this the same as any other best-effort cache
	// miss, never as a hard failure.
	ErrCacheMiss = errors.New("cache miss")
)
