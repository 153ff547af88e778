package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-structure/internal/engine"
)

type memoryEntry struct {
	result    *engine.Result
	expiresAt time.Time
}

// MemoryCache keeps results in process memory. Expired entries are dropped on read.
// A zero TTL keeps entries forever.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]memoryEntry
	ttl     time.Duration
	now     Clock
	counters
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCacheWithClock(ttl, time.Now)
}

// NewMemoryCacheWithClock creates a cache that reads time from now.
func NewMemoryCacheWithClock(ttl time.Duration, now Clock) *MemoryCache {
	return &MemoryCache{
		entries: make(map[Key]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (*engine.Result, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)

		return nil, false, nil
	}

	if c.ttl > 0 && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// another writer may have refreshed the entry
		if current, still := c.entries[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
		c.mu.Unlock()

		c.misses.Add(1)

		return nil, false, nil
	}

	c.hits.Add(1)

	return entry.result, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key Key, result *engine.Result) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{result: result, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	c.sets.Add(1)

	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key Key) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Purge removes every expired entry and returns how many were removed.
func (c *MemoryCache) Purge() int {
	if c.ttl <= 0 {
		return 0
	}

	now := c.now()
	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.evictions.Add(int64(removed))

	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *MemoryCache) Stats() Stats {
	return c.snapshot()
}
