package concept

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_ResolveLabel_ExactTierIsCaseSensitive(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateConcept(context.Background(), Concept{QID: "Q1", CanonicalLabel: "Help Me"})
	require.NoError(t, err)

	qid, ok, err := s.ResolveLabel(context.Background(), "Help Me", TierExact)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q1", qid)

	_, ok, err = s.ResolveLabel(context.Background(), "help me", TierExact)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_ResolveLabel_NormalizedTierMatchesAliasesAndCase(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateConcept(context.Background(), Concept{
		QID:            "Q2",
		CanonicalLabel: "Thank You",
		Aliases:        []string{"Thanks"},
	})
	require.NoError(t, err)

	qid, ok, err := s.ResolveLabel(context.Background(), "  THANK   you ", TierNormalized)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q2", qid)

	qid, ok, err = s.ResolveLabel(context.Background(), "thanks", TierNormalized)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Q2", qid)
}

func TestMemStore_ResolveLabel_FuzzyTierFallsThroughToMiss(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateConcept(context.Background(), Concept{QID: "Q3", CanonicalLabel: "Example"})
	require.NoError(t, err)

	_, ok, err := s.ResolveLabel(context.Background(), "exampl", TierFuzzy)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemStore_FormsFor_SortedByTokenCountAscending(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateConcept(context.Background(), Concept{QID: "Q4", CanonicalLabel: "Gratitude"})
	require.NoError(t, err)

	_, err = s.AddSurfaceForm(context.Background(), SurfaceForm{ConceptQID: "Q4", TokenizerID: "simple", LanguageTag: "en", Form: "thank you", TokenCount: 2})
	require.NoError(t, err)
	_, err = s.AddSurfaceForm(context.Background(), SurfaceForm{ConceptQID: "Q4", TokenizerID: "simple", LanguageTag: "es", Form: "gracias", TokenCount: 1})
	require.NoError(t, err)

	forms, err := s.FormsFor(context.Background(), "Q4", "simple")
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "gracias", forms[0].Form)
	assert.Equal(t, "thank you", forms[1].Form)
}

func TestMemStore_AddSurfaceForm_RejectsDuplicate(t *testing.T) {
	s := NewMemStore()
	_, err := s.CreateConcept(context.Background(), Concept{QID: "Q5", CanonicalLabel: "Example"})
	require.NoError(t, err)

	sf := SurfaceForm{ConceptQID: "Q5", TokenizerID: "simple", LanguageTag: "en", Form: "ex", TokenCount: 1}
	_, err = s.AddSurfaceForm(context.Background(), sf)
	require.NoError(t, err)

	_, err = s.AddSurfaceForm(context.Background(), sf)
	assert.ErrorIs(t, err, ErrDuplicateSurfaceForm)
}

func TestMemStore_Cache_RoundTrip(t *testing.T) {
	s := NewMemStore()
	key := CacheKey("hello world", "simple", "normalized", "min_tokens")

	_, err := s.CacheLookup(context.Background(), key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, s.CacheStore(context.Background(), CacheEntry{Key: key, OriginalText: "hello world"}))

	entry, err := s.CacheLookup(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "hello world", entry.OriginalText)
}

func TestCacheKey_DeterministicAndDistinct(t *testing.T) {
	a := CacheKey("hello", "simple", "normalized", "min_tokens")
	b := CacheKey("hello", "simple", "normalized", "min_tokens")
	c := CacheKey("hello", "simple", "normalized", "same_language")
	d := CacheKey("hello", "simple", "exact", "min_tokens")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}
