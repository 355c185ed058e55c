package database

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateTrigramIndexes creates the pg_trgm extension and a trigram GIN index
// on concepts.canonical_label. It is not part of the embedded migrations and
// NewClient does not call it; exact and normalized resolution do not need
// the index. It returns an error when pg_trgm is unavailable.
func CreateTrigramIndexes(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`); err != nil {
		return fmt.Errorf("pg_trgm extension unavailable, skipping fuzzy indexes: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_concepts_canonical_label_trgm
		ON concepts USING gin (canonical_label gin_trgm_ops)`)
	if err != nil {
		return fmt.Errorf("failed to create canonical_label trigram index: %w", err)
	}
	return nil
}
