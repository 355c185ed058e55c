package pattern

import (
	"context"
	"regexp"
)

// Store is the storage contract of §4.2. Implementations must return a
// consistent snapshot from LoadActive: a concurrent RecordFeedback landing
// mid-request must not mutate a slice already handed to a caller (§5
// ordering guarantees).
type Store interface {
	// LoadActive returns enabled patterns with base_confidence >=
	// minConfidence, sorted by base_confidence descending then id
	// ascending (stable tie-break).
	LoadActive(ctx context.Context, minConfidence float64) ([]*Compiled, error)

	// LoadByKind returns enabled, compiled patterns of one kind.
	LoadByKind(ctx context.Context, kind Kind) ([]*Compiled, error)

	// RecordApplication increments applied_count for a pattern.
	RecordApplication(ctx context.Context, patternID string) error

	// RecordFeedback appends a feedback decision and applies the §4.8
	// calibration update to the referenced pattern, atomically.
	RecordFeedback(ctx context.Context, fb Feedback) error

	// Reload re-reads the active set from durable storage. Implementations
	// backed by an in-process cache use this to refresh it; implementations
	// that always hit storage directly may treat this as a no-op.
	Reload(ctx context.Context) error

	// CreatePattern inserts an administrator-authored pattern (§3:
	// "inserted by migration from seed data or by an administrator").
	CreatePattern(ctx context.Context, p Pattern) (*Pattern, error)

	// DisablePattern soft-deletes a pattern by clearing Enabled.
	DisablePattern(ctx context.Context, id string) error
}

// compile compiles a Pattern's regex, returning (nil, err) for an invalid
// expression so callers can log-and-skip per §4.2 without panicking.
// Longest() switches the compiled regex to leftmost-longest matching, per
// §4.5 step 2's "non-overlapping matches in the text (leftmost-longest)":
// without it, Go's default leftmost-first semantics would let an
// administrator-authored alternation like "a|ab" match the shorter branch
// at a given start position instead of the longer one.
func compile(p Pattern) (*Compiled, error) {
	re, err := regexp.Compile(p.Regex)
	if err != nil {
		return nil, err
	}
	re.Longest()
	return &Compiled{Pattern: p, Regex: re}, nil
}
