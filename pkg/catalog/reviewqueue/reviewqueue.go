// Package reviewqueue materializes deferred rewrites (§4.9's "optional
// review-session id") into durable storage so a future human reviewer has
// something to query, per the supplemented review-queue feature.
package reviewqueue

import (
	"context"
	"database/sql"
	"fmt"
)

// Entry is one deferred rewrite bound to a review session.
type Entry struct {
	SessionID       string
	Start           int
	End             int
	SourceKind      string
	Replacement     string
	FinalConfidence float64
	PatternID       string
	ConceptQID      string
}

// Store persists deferred rewrites for later human review.
type Store interface {
	Enqueue(ctx context.Context, entries []Entry) error
}

// PGStore is a Postgres-backed Store over the review_queue table.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an existing *sql.DB.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Enqueue implements Store, inserting all entries in one transaction.
func (s *PGStore) Enqueue(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review queue transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO review_queue
				(session_id, span_start, span_end, source_kind, replacement,
				 final_confidence, pattern_id, concept_qid, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
			e.SessionID, e.Start, e.End, e.SourceKind, e.Replacement, e.FinalConfidence,
			nullableString(e.PatternID), nullableString(e.ConceptQID)); err != nil {
			return fmt.Errorf("enqueue review entry: %w", err)
		}
	}

	return tx.Commit()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
