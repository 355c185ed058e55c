package concept

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-process Store implementation for unit tests and
// database-free deployments.
type MemStore struct {
	mu              sync.RWMutex
	concepts        map[string]*Concept
	forms           map[string][]SurfaceForm // qid -> forms across tokenizers/languages
	exactLabels     map[string]string        // canonical label, verbatim -> qid
	normalizedIndex map[string]string        // Normalize(label or alias) -> qid
	cache           *LRU
}

// NewMemStore builds an empty in-memory concept store with the default
// cache capacity.
func NewMemStore() *MemStore {
	return &MemStore{
		concepts:        make(map[string]*Concept),
		forms:           make(map[string][]SurfaceForm),
		exactLabels:     make(map[string]string),
		normalizedIndex: make(map[string]string),
		cache:           NewLRU(DefaultCacheCapacity),
	}
}

// ResolveLabel implements Store.
func (s *MemStore) ResolveLabel(_ context.Context, text string, tier Tier) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch tier {
	case TierExact:
		qid, ok := s.exactLabels[text]
		return qid, ok, nil
	case TierNormalized:
		qid, ok := s.normalizedIndex[Normalize(text)]
		return qid, ok, nil
	default:
		// Fuzzy or any unrecognized tier: unsupported here, falls through
		// to a miss per §4.3.
		return "", false, nil
	}
}

// FormsFor implements Store.
func (s *MemStore) FormsFor(_ context.Context, qid, tokenizerID string) ([]SurfaceForm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, ok := s.forms[qid]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]SurfaceForm, 0, len(all))
	for _, f := range all {
		if f.TokenizerID == tokenizerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenCount < out[j].TokenCount })
	return out, nil
}

// CacheLookup implements Store.
func (s *MemStore) CacheLookup(_ context.Context, key string) (*CacheEntry, error) {
	entry, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// CacheStore implements Store.
func (s *MemStore) CacheStore(_ context.Context, entry CacheEntry) error {
	s.cache.Put(entry)
	return nil
}

// CreateConcept implements Store.
func (s *MemStore) CreateConcept(_ context.Context, c Concept) (*Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := c
	s.concepts[c.QID] = &stored
	s.exactLabels[c.CanonicalLabel] = c.QID
	s.normalizedIndex[Normalize(c.CanonicalLabel)] = c.QID
	for _, alias := range c.Aliases {
		s.normalizedIndex[Normalize(alias)] = c.QID
	}

	out := stored
	return &out, nil
}

// AddSurfaceForm implements Store.
func (s *MemStore) AddSurfaceForm(_ context.Context, sf SurfaceForm) (*SurfaceForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.concepts[sf.ConceptQID]; !ok {
		return nil, ErrNotFound
	}
	for _, existing := range s.forms[sf.ConceptQID] {
		if existing.TokenizerID == sf.TokenizerID && existing.LanguageTag == sf.LanguageTag && existing.Form == sf.Form {
			return nil, ErrDuplicateSurfaceForm
		}
	}
	s.forms[sf.ConceptQID] = append(s.forms[sf.ConceptQID], sf)

	out := sf
	return &out, nil
}
