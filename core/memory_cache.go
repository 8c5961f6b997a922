package core

import (
	"context"
	"sync"
	"time"
)

type cacheItem struct {
	value     string
	expiresAt time.Time
}

func (item *cacheItem) isExpired(now time.Time) bool {
	if item.expiresAt.IsZero() {
		return false
	}
	return now.After(item.expiresAt)
}

// MemoryCache keeps entries in process memory. Credentials stored here are
// lost when the process exits.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*cacheItem
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]*cacheItem),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || item.isExpired(time.Now()) {
		return "", false
	}
	return item.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if item.isExpired(now) {
			delete(c.items, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
