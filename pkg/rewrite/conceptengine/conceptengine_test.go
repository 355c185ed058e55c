package conceptengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/promptopt/pkg/catalog/concept"
	"github.com/codeready-toolchain/promptopt/pkg/protect"
)

type wordCountTokenizer struct{}

func (wordCountTokenizer) Count(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

func newStoreWithConcept(t *testing.T) *concept.MemStore {
	t.Helper()
	s := concept.NewMemStore()
	_, err := s.CreateConcept(context.Background(), concept.Concept{QID: "Q1", CanonicalLabel: "artificial intelligence"})
	require.NoError(t, err)
	_, err = s.AddSurfaceForm(context.Background(), concept.SurfaceForm{
		ConceptQID: "Q1", TokenizerID: "simple", LanguageTag: "en", Form: "AI", TokenCount: 1, CharCount: 2,
	})
	require.NoError(t, err)
	return s
}

func TestRun_EmitsCandidateForCheaperSurfaceForm(t *testing.T) {
	store := newStoreWithConcept(t)
	text := "We should use artificial intelligence responsibly"

	out := Run(context.Background(), store, text, nil, wordCountTokenizer{}, "simple", Options{Tier: concept.TierNormalized})

	require.Len(t, out, 1)
	assert.Equal(t, "Q1", out[0].Origin.ConceptQID)
	assert.Equal(t, "AI", out[0].Replacement)
	assert.Equal(t, 1, out[0].TokenDeltaEstimate)
}

func TestRun_SkipsSpanOverlappingProtectedRegion(t *testing.T) {
	store := newStoreWithConcept(t)
	text := "We should use artificial intelligence responsibly"
	idx := indexOf(text, "artificial intelligence")
	protected := []protect.Span{{Start: idx, End: idx + len("artificial intelligence")}}

	out := Run(context.Background(), store, text, protected, wordCountTokenizer{}, "simple", Options{Tier: concept.TierNormalized})
	assert.Empty(t, out)
}

func TestRun_DropsCandidateNotStrictlyCheaper(t *testing.T) {
	store := concept.NewMemStore()
	_, err := store.CreateConcept(context.Background(), concept.Concept{QID: "Q2", CanonicalLabel: "ai"})
	require.NoError(t, err)
	_, err = store.AddSurfaceForm(context.Background(), concept.SurfaceForm{
		ConceptQID: "Q2", TokenizerID: "simple", LanguageTag: "en", Form: "ai", TokenCount: 1, CharCount: 2,
	})
	require.NoError(t, err)

	out := Run(context.Background(), store, "ai is useful", nil, wordCountTokenizer{}, "simple", Options{Tier: concept.TierNormalized})
	assert.Empty(t, out)
}

func TestRun_SecondCallHitsCacheWithoutConsultingStoreCatalog(t *testing.T) {
	store := newStoreWithConcept(t)
	text := "We should use artificial intelligence responsibly"
	opts := Options{Tier: concept.TierNormalized}

	first := Run(context.Background(), store, text, nil, wordCountTokenizer{}, "simple", opts)
	require.Len(t, first, 1)

	key := concept.CacheKey("artificial intelligence", "simple", string(opts.Tier), string(opts.SelectionPolicy))
	entry, err := store.CacheLookup(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "AI", entry.SelectedForm)

	// Delete the concept from the catalog; a second Run can only still find
	// the candidate by reading the cache entry populated by the first call.
	store2 := concept.NewMemStore()
	require.NoError(t, store2.CacheStore(context.Background(), *entry))

	second := Run(context.Background(), store2, text, nil, wordCountTokenizer{}, "simple", opts)
	require.Len(t, second, 1)
	assert.Equal(t, "Q1", second[0].Origin.ConceptQID)
	assert.Equal(t, "AI", second[0].Replacement)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
