package placecache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/cyclecare/internal/domain/locator"
)

type entry struct {
	places    []locator.Place
	expiresAt time.Time
}

// MemoryCache keeps nearby-search results in process memory for dev and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	lastGC  time.Time
}

const sweepInterval = time.Minute

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements locator.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]locator.Place, bool, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && item.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return clonePlaces(item.places), true, nil
}

// Set stores places with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, places []locator.Place, ttl time.Duration) error {
	now := c.now()
	exp := time.Time{}
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Sub(c.lastGC) > sweepInterval {
		c.sweepLocked(now)
		c.lastGC = now
	}
	c.entries[key] = entry{places: clonePlaces(places), expiresAt: exp}
	return nil
}

// Len reports how many entries are held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for key, item := range c.entries {
		if !item.expiresAt.IsZero() && item.expiresAt.Before(now) {
			delete(c.entries, key)
		}
	}
}

func clonePlaces(in []locator.Place) []locator.Place {
	out := make([]locator.Place, len(in))
	copy(out, in)
	return out
}

var _ locator.Cache = (*MemoryCache)(nil)
