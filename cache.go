package cheetah

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching query results. The session stores
// filter results under table-prefixed keys and deletes the whole prefix on
// every write to that table, so backreferences and filters keep reflecting
// live data. Users may plug in their preferred implementation (e.g. Redis,
// Memcached); MemoryCache is provided for in-process use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies one compiled query.
type CacheKey struct {
	Table  string
	Clause string
	Args   string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Clause + ":" + k.Args
}

// cachePrefix is the invalidation prefix covering every cached query that
// reads from the given table.
func cachePrefix(table string) string {
	return table + ":"
}

// encodeRows packs raw scanned rows for caching. Raw column values are
// driver-native scalars, all of which msgpack encodes directly.
func encodeRows(rows [][]any) ([]byte, error) {
	return msgpack.Marshal(rows)
}

// decodeRows unpacks rows cached by encodeRows. Loose interface decoding
// keeps integer columns int64, matching what the drivers scan.
func decodeRows(data []byte) ([][]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type cacheEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// MemoryCache is an in-process Cache implementation. It is safe for
// concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

// Get retrieves a value, or nil if absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

// Set stores a value with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes a single key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix removes all keys with the given prefix.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
