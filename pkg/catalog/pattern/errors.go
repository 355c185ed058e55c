package pattern

import "errors"

var (
	// ErrNotFound is returned when a pattern id has no matching record.
	ErrNotFound = errors.New("pattern not found")

	// ErrDuplicateRule is returned when (kind, regex) is not unique among
	// enabled rules, per the §3 invariant.
	ErrDuplicateRule = errors.New("pattern with this kind and regex already enabled")

	// ErrInvalidKind is returned when Kind.Valid() fails on create.
	ErrInvalidKind = errors.New("invalid pattern kind")
)
