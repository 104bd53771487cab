package images

import (
	"sync"
	"time"
)

// cache is a read-mostly keyed map with lazy TTL expiry checked on read.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	urls     []string
	storedAt time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cache) get(key string) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.urls, true
}

func (c *cache) put(key string, urls []string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{urls: urls, storedAt: time.Now()}
	c.mu.Unlock()
}
