package pattern

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// PGStore is a Postgres-backed Store, queried directly via database/sql
// against the pgx/v5 stdlib driver (the same driver the database package
// registers). It talks to the schema described in §6: patterns and
// feedback_decisions, with the calibration update applied inside the same
// transaction as the feedback insert — the "transactional logic" §6 offers
// as the equivalent of a database trigger.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an existing *sql.DB (opened against pgx, see
// pkg/database.NewClient).
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// LoadActive implements Store.
func (s *PGStore) LoadActive(ctx context.Context, minConfidence float64) ([]*Compiled, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, regex, replacement, seed_confidence, base_confidence,
		       rationale, enabled, applied_count, accepted_count, rejected_count,
		       created_at, updated_at
		FROM patterns
		WHERE enabled = true AND base_confidence >= $1
		ORDER BY base_confidence DESC, id ASC`, minConfidence)
	if err != nil {
		return nil, fmt.Errorf("load active patterns: %w", err)
	}
	defer rows.Close()

	var out []*Compiled
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.ID, &p.Kind, &p.Regex, &p.Replacement, &p.SeedConfidence,
			&p.BaseConfidence, &p.Rationale, &p.Enabled, &p.AppliedCount, &p.AcceptedCount,
			&p.RejectedCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pattern row: %w", err)
		}
		cp, err := compile(p)
		if err != nil {
			slog.Error("skipping pattern with unparsable regex", "pattern_id", p.ID, "error", err)
			continue
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// LoadByKind implements Store.
func (s *PGStore) LoadByKind(ctx context.Context, kind Kind) ([]*Compiled, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, regex, replacement, seed_confidence, base_confidence,
		       rationale, enabled, applied_count, accepted_count, rejected_count,
		       created_at, updated_at
		FROM patterns
		WHERE enabled = true AND kind = $1
		ORDER BY base_confidence DESC, id ASC`, kind)
	if err != nil {
		return nil, fmt.Errorf("load patterns by kind: %w", err)
	}
	defer rows.Close()

	var out []*Compiled
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.ID, &p.Kind, &p.Regex, &p.Replacement, &p.SeedConfidence,
			&p.BaseConfidence, &p.Rationale, &p.Enabled, &p.AppliedCount, &p.AcceptedCount,
			&p.RejectedCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pattern row: %w", err)
		}
		cp, err := compile(p)
		if err != nil {
			slog.Error("skipping pattern with unparsable regex", "pattern_id", p.ID, "error", err)
			continue
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// RecordApplication implements Store.
func (s *PGStore) RecordApplication(ctx context.Context, patternID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE patterns SET applied_count = applied_count + 1, updated_at = now() WHERE id = $1`,
		patternID)
	if err != nil {
		return fmt.Errorf("record application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record application: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFeedback implements Store, applying the §4.8 calibration update in
// the same transaction as the feedback insert.
func (s *PGStore) RecordFeedback(ctx context.Context, fb Feedback) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feedback transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seed float64
	var accepted, rejected int
	err = tx.QueryRowContext(ctx,
		`SELECT seed_confidence, accepted_count, rejected_count FROM patterns WHERE id = $1 FOR UPDATE`,
		fb.PatternID).Scan(&seed, &accepted, &rejected)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock pattern row: %w", err)
	}

	newBase, newAccepted, newRejected := ApplyFeedback(seed, accepted, rejected, fb.Decision)

	if _, err := tx.ExecContext(ctx,
		`UPDATE patterns SET base_confidence = $1, accepted_count = $2, rejected_count = $3, updated_at = now()
		 WHERE id = $4`,
		newBase, newAccepted, newRejected, fb.PatternID); err != nil {
		return fmt.Errorf("apply calibration update: %w", err)
	}

	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO feedback_decisions
			(id, pattern_id, session_id, original_text, optimized_text, decision,
			 user_alternative, context_before, context_after, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		fb.ID, fb.PatternID, fb.SessionID, fb.OriginalText, fb.OptimizedText, fb.Decision,
		nullableString(fb.UserAlternative), fb.ContextBefore, fb.ContextAfter); err != nil {
		return fmt.Errorf("insert feedback decision: %w", err)
	}

	return tx.Commit()
}

// Reload implements Store. PGStore reads through to the database on every
// call, so there is no cache to invalidate; this exists to satisfy
// implementations that do cache (see the orchestrator's catalog-snapshot
// contract in §5) and to probe connectivity on an explicit reload request.
func (s *PGStore) Reload(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreatePattern implements Store.
func (s *PGStore) CreatePattern(ctx context.Context, p Pattern) (*Pattern, error) {
	if !p.Kind.Valid() {
		return nil, ErrInvalidKind
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.SeedConfidence = p.BaseConfidence
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns
			(id, kind, regex, replacement, seed_confidence, base_confidence, rationale,
			 enabled, applied_count, accepted_count, rejected_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, 0, 0, 0, $8, $8)`,
		p.ID, p.Kind, p.Regex, p.Replacement, p.SeedConfidence, p.BaseConfidence, p.Rationale, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRule
		}
		return nil, fmt.Errorf("create pattern: %w", err)
	}

	p.Enabled = true
	p.CreatedAt, p.UpdatedAt = now, now
	return &p, nil
}

// DisablePattern implements Store.
func (s *PGStore) DisablePattern(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE patterns SET enabled = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("disable pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("disable pattern: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), without importing the pgx error types
// directly so this file stays usable against any database/sql driver.
func isUniqueViolation(err error) bool {
	type sqlStater interface{ SQLState() string }
	var s sqlStater
	if errors.As(err, &s) {
		return s.SQLState() == "23505"
	}
	return false
}
