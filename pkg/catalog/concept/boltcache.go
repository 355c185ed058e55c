package concept

import (
	"bytes"
	"encoding/gob"
	"log/slog"

	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("optimization_cache")

// BoltCache persists optimization cache entries to an embedded bbolt file
// so a freshly started process still benefits from prior runs'
// cache hits. It is strictly an accelerator for LRU: every method is
// best-effort and logs-and-ignores its own errors, per §3 ("dropping all
// entries must not affect correctness") and §7 ("cache write fails: log
// and continue").
type BoltCache struct {
	db *bolt.DB
}

// OpenBoltCache opens (creating if necessary) a bbolt database at path and
// ensures the cache bucket exists.
func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltCache{db: db}, nil
}

// Close closes the underlying bbolt file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

// Load reads a persisted entry; a miss or any decode error is reported as
// (zero, false) and logged, never propagated.
func (c *BoltCache) Load(key string) (CacheEntry, bool) {
	var entry CacheEntry
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&entry); err != nil {
			slog.Warn("discarding unreadable bolt cache entry", "key", key, "error", err)
			return nil
		}
		found = true
		return nil
	})
	if err != nil {
		slog.Warn("bolt cache load failed, treating as miss", "error", err)
		return CacheEntry{}, false
	}
	return entry, found
}

// Store persists an entry. Failures are logged and otherwise ignored.
func (c *BoltCache) Store(entry CacheEntry) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		slog.Warn("bolt cache encode failed, dropping write", "key", entry.Key, "error", err)
		return
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put([]byte(entry.Key), buf.Bytes())
	})
	if err != nil {
		slog.Warn("bolt cache write failed, continuing without persistence", "key", entry.Key, "error", err)
	}
}
