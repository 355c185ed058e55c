package tokenizer

import "sync"

// Registry maps tokenizer ids to their Tokenizer capability. It is safe for
// concurrent use: lookups share a read lock, and Register takes the write
// lock, so a registration and a lookup never run at the same time.
type Registry struct {
	mu         sync.RWMutex
	tokenizers map[string]Tokenizer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokenizers: make(map[string]Tokenizer)}
}

// NewDefaultRegistry builds a registry pre-populated with the two
// deterministic, dependency-free tokenizers this module ships so the
// optimizer is runnable without wiring an external tokenizer binding.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("simple", NewSimpleTokenizer())
	r.Register("bytepair-approx", NewBytePairApproxTokenizer())
	return r
}

// Register installs (or replaces) the tokenizer for an id.
func (r *Registry) Register(id string, t Tokenizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokenizers[id] = t
}

// Get resolves a tokenizer id to its capability.
func (r *Registry) Get(id string) (Tokenizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokenizers[id]
	if !ok {
		return nil, &UnknownTokenizerError{ID: id}
	}
	return t, nil
}

// Count resolves id and counts text in one call, sanitizing invalid UTF-8
// first so that no registered Tokenizer implementation ever sees malformed
// input.
func (r *Registry) Count(id, text string) (int, error) {
	t, err := r.Get(id)
	if err != nil {
		return 0, err
	}
	return t.Count(Sanitize(text)), nil
}

// Has reports whether an id is registered, without allocating an error.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tokenizers[id]
	return ok
}
