package concept

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGStore is a Postgres-backed Store, queried directly via database/sql
// against the pgx/v5 stdlib driver. The cache table backs CacheLookup and
// CacheStore for deployments that want the accelerator to survive a
// process restart without running an embedded bbolt file; either or both
// may be layered in front of this store by the caller.
type PGStore struct {
	db *sql.DB
}

// NewPGStore wraps an existing *sql.DB.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// ResolveLabel implements Store.
func (s *PGStore) ResolveLabel(ctx context.Context, text string, tier Tier) (string, bool, error) {
	var query string
	var arg string
	switch tier {
	case TierExact:
		query = `SELECT qid FROM concepts WHERE canonical_label = $1 LIMIT 1`
		arg = text
	case TierNormalized:
		query = `
			SELECT qid FROM concepts WHERE normalized_label = $1
			UNION
			SELECT concept_qid FROM concept_aliases WHERE normalized_alias = $1
			LIMIT 1`
		arg = Normalize(text)
	default:
		return "", false, nil
	}

	var qid string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&qid)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve label: %w", err)
	}
	return qid, true, nil
}

// FormsFor implements Store.
func (s *PGStore) FormsFor(ctx context.Context, qid, tokenizerID string) ([]SurfaceForm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT concept_qid, tokenizer_id, language_tag, form, token_count, char_count
		FROM surface_forms
		WHERE concept_qid = $1 AND tokenizer_id = $2
		ORDER BY token_count ASC`, qid, tokenizerID)
	if err != nil {
		return nil, fmt.Errorf("forms for concept: %w", err)
	}
	defer rows.Close()

	var out []SurfaceForm
	for rows.Next() {
		var f SurfaceForm
		if err := rows.Scan(&f.ConceptQID, &f.TokenizerID, &f.LanguageTag, &f.Form, &f.TokenCount, &f.CharCount); err != nil {
			return nil, fmt.Errorf("scan surface form: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CacheLookup implements Store.
func (s *PGStore) CacheLookup(ctx context.Context, key string) (*CacheEntry, error) {
	var e CacheEntry
	var conceptQID, selectedForm sql.NullString
	var tokenCount sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT key, original_text, concept_qid, selected_form, token_count, confidence,
		       selection_policy, hits, created_at
		FROM optimization_cache WHERE key = $1`, key).
		Scan(&e.Key, &e.OriginalText, &conceptQID, &selectedForm, &tokenCount, &e.Confidence,
			&e.SelectionPolicy, &e.Hits, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	e.ConceptQID = conceptQID.String
	e.SelectedForm = selectedForm.String
	e.TokenCount = int(tokenCount.Int64)
	return &e, nil
}

// CacheStore implements Store, upserting on key.
func (s *PGStore) CacheStore(ctx context.Context, entry CacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO optimization_cache
			(key, original_text, concept_qid, selected_form, token_count, confidence,
			 selection_policy, hits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			hits = optimization_cache.hits + 1,
			confidence = excluded.confidence`,
		entry.Key, entry.OriginalText, nullableString(entry.ConceptQID), nullableString(entry.SelectedForm),
		entry.TokenCount, entry.Confidence, entry.SelectionPolicy, entry.Hits, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// CreateConcept implements Store.
func (s *PGStore) CreateConcept(ctx context.Context, c Concept) (*Concept, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO concepts (qid, canonical_label, normalized_label, description, category)
		VALUES ($1, $2, $3, $4, $5)`,
		c.QID, c.CanonicalLabel, Normalize(c.CanonicalLabel), nullableString(c.Description), nullableString(c.Category))
	if err != nil {
		return nil, fmt.Errorf("create concept: %w", err)
	}
	for _, alias := range c.Aliases {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO concept_aliases (concept_qid, alias, normalized_alias) VALUES ($1, $2, $3)`,
			c.QID, alias, Normalize(alias)); err != nil {
			return nil, fmt.Errorf("create concept alias: %w", err)
		}
	}
	out := c
	return &out, nil
}

// AddSurfaceForm implements Store.
func (s *PGStore) AddSurfaceForm(ctx context.Context, sf SurfaceForm) (*SurfaceForm, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO surface_forms (concept_qid, tokenizer_id, language_tag, form, token_count, char_count)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sf.ConceptQID, sf.TokenizerID, sf.LanguageTag, sf.Form, sf.TokenCount, sf.CharCount)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSurfaceForm
		}
		return nil, fmt.Errorf("add surface form: %w", err)
	}
	out := sf
	return &out, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	type sqlStater interface{ SQLState() string }
	var s sqlStater
	if errors.As(err, &s) {
		return s.SQLState() == "23505"
	}
	return false
}
