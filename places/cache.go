package places

import (
	"sync"
	"time"

	"github.com/tripweave/tripweave/trip"
)

// cache is a read-mostly keyed map with lazy TTL expiry checked on read.
// nil values are valid entries (cached misses).
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	place    *trip.Place
	storedAt time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *cache) get(key string) (*trip.Place, bool) {
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
	return e.place, true
}

func (c *cache) put(key string, p *trip.Place) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{place: p, storedAt: time.Now()}
	c.mu.Unlock()
}
