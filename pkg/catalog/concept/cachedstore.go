package concept

import (
	"context"
	"log/slog"
)

// CachedStore decorates a Store with an in-process LRU and, optionally, an
// on-disk bbolt cache in front of the underlying store's own CacheLookup/
// CacheStore (a Postgres table for PGStore, a plain map for MemStore), so a
// repeated request for the same run avoids both a re-resolution pass and
// the underlying store's own cache round-trip. Every layer is strictly
// best-effort per §3: dropping any or all of them changes latency, never
// the optimizer's output. ResolveLabel, FormsFor, CreateConcept, and
// AddSurfaceForm pass straight through to Store, uncached.
type CachedStore struct {
	Store
	lru  *LRU
	disk *BoltCache // nil disables on-disk persistence
}

// NewCachedStore wraps store with lru (required; use NewLRU(0) for the
// default capacity) and an optional on-disk cache. Pass disk as nil to run
// with the in-memory LRU only.
func NewCachedStore(store Store, lru *LRU, disk *BoltCache) *CachedStore {
	return &CachedStore{Store: store, lru: lru, disk: disk}
}

// CacheLookup checks the LRU, then the disk cache if present, then falls
// through to the underlying store, promoting a slower hit into the faster
// layers above it.
func (c *CachedStore) CacheLookup(ctx context.Context, key string) (*CacheEntry, error) {
	if entry, ok := c.lru.Get(key); ok {
		return &entry, nil
	}

	if c.disk != nil {
		if entry, ok := c.disk.Load(key); ok {
			c.lru.Put(entry)
			return &entry, nil
		}
	}

	entry, err := c.Store.CacheLookup(ctx, key)
	if err != nil || entry == nil {
		return entry, err
	}
	c.lru.Put(*entry)
	if c.disk != nil {
		c.disk.Store(*entry)
	}
	return entry, nil
}

// CacheStore writes through every layer. The underlying store's error is
// the one returned, since it is the durable record; the LRU and disk
// writes cannot fail in a way that should block the caller.
func (c *CachedStore) CacheStore(ctx context.Context, entry CacheEntry) error {
	c.lru.Put(entry)
	if c.disk != nil {
		c.disk.Store(entry)
	}
	if err := c.Store.CacheStore(ctx, entry); err != nil {
		slog.Warn("underlying cache store failed, in-memory/disk layers still updated", "key", entry.Key, "error", err)
		return err
	}
	return nil
}
