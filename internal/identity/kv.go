// Package identity keeps the visitor's pseudo-identity: a locally stored
// random id that partitions the visitor's chat and orders, the display name
// they gave, and a once-per-session "visit counted" flag.
package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// KV is a small persistent string store, the equivalent of browser storage.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// ExpiringKV is a KV that can also store session-scoped values.
type ExpiringKV interface {
	KV
	SetFor(key, value string, ttl time.Duration)
}

// CacheKV is a KV backed by go-cache. Plain Set values never expire.
// When Path is set, Save and Load persist the contents to a file.
type CacheKV struct {
	Path string

	mu sync.Mutex
	c  *cache.Cache
}

// NewCacheKV returns an empty store persisted at path ("" keeps it in
// memory only).
func NewCacheKV(path string) *CacheKV {
	return &CacheKV{Path: path, c: cache.New(cache.NoExpiration, time.Minute)}
}

// Get implements KV.
func (kv *CacheKV) Get(key string) (string, bool) {
	v, ok := kv.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Set implements KV.
func (kv *CacheKV) Set(key, value string) {
	kv.c.Set(key, value, cache.NoExpiration)
}

// SetFor implements ExpiringKV.
func (kv *CacheKV) SetFor(key, value string, ttl time.Duration) {
	kv.c.Set(key, value, ttl)
}

// Delete removes key.
func (kv *CacheKV) Delete(key string) { kv.c.Delete(key) }

// Clear removes everything, like wiping browser storage.
func (kv *CacheKV) Clear() { kv.c.Flush() }

// Save writes the store to Path.
func (kv *CacheKV) Save() error {
	if kv.Path == "" {
		return nil
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if err := kv.c.SaveFile(kv.Path); err != nil {
		return fmt.Errorf("identity: save %s: %w", kv.Path, err)
	}
	return nil
}

// Load merges the contents of Path into the store. A missing file is not
// an error.
func (kv *CacheKV) Load() error {
	if kv.Path == "" {
		return nil
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if err := kv.c.LoadFile(kv.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("identity: load %s: %w", kv.Path, err)
	}
	return nil
}
