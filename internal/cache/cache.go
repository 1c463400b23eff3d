// Package cache holds the most recent going resolution in memory and serves
// it stale-while-revalidate, mirroring the edge cache policy advertised in
// the endpoint's Cache-Control header.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/cheltenham-going/internal/logger"
	"github.com/pfrederiksen/cheltenham-going/internal/metrics"
	"github.com/pfrederiksen/cheltenham-going/internal/resolver"
)

// Lookup results
const (
	Hit   = "hit"
	Stale = "stale"
	Miss  = "miss"
)

const flightKey = "going"

// Loader produces a fresh result. Errors are returned to the caller and
// never cached.
type Loader func(ctx context.Context) (*resolver.Result, error)

type entry struct {
	result   *resolver.Result
	storedAt time.Time
}

// Cache is a single-entry stale-while-revalidate cache
type Cache struct {
	load     Loader
	freshTTL time.Duration
	staleTTL time.Duration
	now      func() time.Time

	mu    sync.Mutex
	entry *entry
	group singleflight.Group
}

// Option configures a Cache
type Option func(*Cache)

// WithClock overrides the clock used to age entries
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache that serves entries for freshTTL, then serves them
// for up to staleTTL more while revalidating in the background
func New(load Loader, freshTTL, staleTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		load:     load,
		freshTTL: freshTTL,
		staleTTL: staleTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result, or loads one. Concurrent loads collapse
// into a single call to the loader.
func (c *Cache) Get(ctx context.Context) (*resolver.Result, string, error) {
	c.mu.Lock()
	e := c.entry
	c.mu.Unlock()

	if e != nil {
		age := c.now().Sub(e.storedAt)
		switch {
		case age < c.freshTTL:
			metrics.RecordCacheLookup(Hit)
			return e.result, Hit, nil
		case age < c.freshTTL+c.staleTTL:
			metrics.RecordCacheLookup(Stale)
			go c.revalidate(context.WithoutCancel(ctx))
			return e.result, Stale, nil
		}
	}

	// Detached from the request: other callers may share this flight
	metrics.RecordCacheLookup(Miss)
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		return c.fill(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, Miss, err
	}
	return v.(*resolver.Result), Miss, nil
}

// revalidate refreshes a stale entry unless another flight already has
func (c *Cache) revalidate(ctx context.Context) {
	_, err, shared := c.group.Do(flightKey, func() (interface{}, error) {
		c.mu.Lock()
		e := c.entry
		c.mu.Unlock()
		if e != nil && c.now().Sub(e.storedAt) < c.freshTTL {
			return e.result, nil
		}
		return c.fill(ctx)
	})
	if err != nil && !shared {
		logger.Warn("Cache revalidation failed", nil, err)
	}
}

// fill runs the loader and stores a successful result
func (c *Cache) fill(ctx context.Context) (*resolver.Result, error) {
	result, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entry = &entry{result: result, storedAt: c.now()}
	c.mu.Unlock()

	return result, nil
}
