// Package cache memoizes analysis results by series identity and configuration.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/argo-structure/internal/engine"
)

// Key identifies a cached analysis. Series names the input (a ticker plus its
// last bar date, or a content hash); Config is indicator.Config.Fingerprint().
type Key struct {
	Series string
	Config string
}

func (k Key) String() string {
	return k.Series + "|" + k.Config
}

// Cache stores analysis results for a bounded time.
type Cache interface {
	// Get returns the cached result, or false on a miss.
	Get(ctx context.Context, key Key) (*engine.Result, bool, error)
	Set(ctx context.Context, key Key, result *engine.Result) error
	Delete(ctx context.Context, key Key) error
	Stats() Stats
}

// Stats counts cache traffic.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Evictions int64 `json:"evictions"`
}

type counters struct {
	hits, misses, sets, evictions atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Clock returns the current time.
type Clock func() time.Time

// NoopCache never stores anything.
type NoopCache struct {
	counters
}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(context.Context, Key) (*engine.Result, bool, error) {
	c.misses.Add(1)

	return nil, false, nil
}

func (c *NoopCache) Set(context.Context, Key, *engine.Result) error { return nil }

func (c *NoopCache) Delete(context.Context, Key) error { return nil }

func (c *NoopCache) Stats() Stats { return c.snapshot() }
