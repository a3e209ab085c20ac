package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/remark-server/pkg/cache"
)

// MemoryCache stores JSON-encoded values like the redis cache does, so cached
// reads go through the same decode path as in production.
type MemoryCache struct {
	mu       sync.Mutex
	data     map[string]cacheEntry
	GetCalls int
	SetCalls int
	Hits     int
}

type cacheEntry struct {
	value  []byte
	expiry time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]cacheEntry)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiry) {
		return cache.ErrMiss
	}
	c.Hits++
	return json.Unmarshal(entry.value, dest)
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	c.data[key] = cacheEntry{value: b, expiry: time.Now().Add(exp)}
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

// Stats returns the counters under the lock.
func (c *MemoryCache) Stats() (gets, sets, hits int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.GetCalls, c.SetCalls, c.Hits
}
