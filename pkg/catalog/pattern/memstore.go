package pattern

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-process Store implementation. It exists so the
// pipeline components (C4-C9) are unit-testable without a database; it
// starts empty and no seed data is loaded into it. It is safe for
// concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
	feedback []Feedback
	nextSeq  int
}

// NewMemStore builds an empty in-memory pattern store.
func NewMemStore() *MemStore {
	return &MemStore{patterns: make(map[string]*Pattern)}
}

// LoadActive implements Store.
func (s *MemStore) LoadActive(_ context.Context, minConfidence float64) ([]*Compiled, error) {
	s.mu.RLock()
	snapshot := make([]*Pattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		if !p.Enabled || p.BaseConfidence < minConfidence {
			continue
		}
		cp := *p
		snapshot = append(snapshot, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].BaseConfidence != snapshot[j].BaseConfidence {
			return snapshot[i].BaseConfidence > snapshot[j].BaseConfidence
		}
		return snapshot[i].ID < snapshot[j].ID
	})

	out := make([]*Compiled, 0, len(snapshot))
	for _, p := range snapshot {
		cp, err := compile(*p)
		if err != nil {
			slog.Error("skipping pattern with unparsable regex", "pattern_id", p.ID, "error", err)
			continue
		}
		out = append(out, cp)
	}
	return out, nil
}

// LoadByKind implements Store.
func (s *MemStore) LoadByKind(ctx context.Context, kind Kind) ([]*Compiled, error) {
	all, err := s.LoadActive(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := make([]*Compiled, 0, len(all))
	for _, p := range all {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

// RecordApplication implements Store.
func (s *MemStore) RecordApplication(_ context.Context, patternID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patterns[patternID]
	if !ok {
		return ErrNotFound
	}
	p.AppliedCount++
	p.UpdatedAt = time.Now()
	return nil
}

// RecordFeedback implements Store.
func (s *MemStore) RecordFeedback(_ context.Context, fb Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patterns[fb.PatternID]
	if !ok {
		return ErrNotFound
	}

	newBase, newAccepted, newRejected := ApplyFeedback(p.SeedConfidence, p.AcceptedCount, p.RejectedCount, fb.Decision)
	p.BaseConfidence = newBase
	p.AcceptedCount = newAccepted
	p.RejectedCount = newRejected
	p.UpdatedAt = time.Now()

	s.nextSeq++
	if fb.ID == "" {
		fb.ID = syntheticFeedbackID(s.nextSeq)
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	s.feedback = append(s.feedback, fb)
	return nil
}

// Reload implements Store. MemStore always reflects the latest writes, so
// this is a no-op kept to satisfy the interface.
func (s *MemStore) Reload(_ context.Context) error { return nil }

// CreatePattern implements Store.
func (s *MemStore) CreatePattern(_ context.Context, p Pattern) (*Pattern, error) {
	if !p.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.patterns {
		if existing.Enabled && existing.Kind == p.Kind && existing.Regex == p.Regex {
			return nil, ErrDuplicateRule
		}
	}

	if p.ID == "" {
		s.nextSeq++
		p.ID = syntheticFeedbackID(s.nextSeq)
	}
	p.SeedConfidence = p.BaseConfidence
	p.Enabled = true
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now

	stored := p
	s.patterns[p.ID] = &stored
	out := stored
	return &out, nil
}

// DisablePattern implements Store.
func (s *MemStore) DisablePattern(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patterns[id]
	if !ok {
		return ErrNotFound
	}
	p.Enabled = false
	p.UpdatedAt = time.Now()
	return nil
}

func syntheticFeedbackID(seq int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if seq == 0 {
		return "0"
	}
	var buf []byte
	for seq > 0 {
		buf = append([]byte{alphabet[seq%len(alphabet)]}, buf...)
		seq /= len(alphabet)
	}
	return "p-" + string(buf)
}
