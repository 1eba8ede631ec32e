package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/AbelMSG89/json-synchronized/pkg/observability"
)

// DefaultMemoryEntries is the LRU size used when none is configured.
const DefaultMemoryEntries = 1024

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU tier. When a backing cache is given,
// misses fall through to it and hits are promoted into memory; writes go
// to both.
type MemoryCache struct {
	entries *lru.Cache[string, memEntry]
	backing Cache

	mu     sync.RWMutex
	closed bool
}

// NewMemoryCache creates an LRU cache with size entries in front of backing.
// backing may be nil.
func NewMemoryCache(size int, backing Cache) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	entries, err := lru.New[string, memEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, backing: backing}, nil
}

// Get returns the memory entry, falling back to the backing cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.isClosed() {
		return nil, false, ErrClosed
	}
	if e, ok := c.entries.Get(key); ok {
		if e.expiresAt.IsZero() || time.Now().Before(e.expiresAt) {
			observability.Cache().OnCacheHit(ctx, "memory")
			return e.data, true, nil
		}
		c.entries.Remove(key)
	}
	observability.Cache().OnCacheMiss(ctx, "memory")
	if c.backing == nil {
		return nil, false, nil
	}

	data, ok, err := c.backing.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.entries.Add(key, memEntry{data: data})
	return data, true, nil
}

// Set writes to memory and then to the backing cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.isClosed() {
		return ErrClosed
	}
	e := memEntry{data: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries.Add(key, e)
	observability.Cache().OnCacheSet(ctx, "memory", len(data))
	if c.backing == nil {
		return nil
	}
	return c.backing.Set(ctx, key, data, ttl)
}

// Delete removes key from both tiers.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.entries.Remove(key)
	if c.backing == nil {
		return nil
	}
	return c.backing.Delete(ctx, key)
}

// Len reports the number of in-memory entries.
func (c *MemoryCache) Len() int { return c.entries.Len() }

// Close purges memory and closes the backing cache.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.entries.Purge()
	if c.backing == nil {
		return nil
	}
	return c.backing.Close()
}

func (c *MemoryCache) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

var _ Cache = (*MemoryCache)(nil)
