// Package cache provides the in-memory TTL cache with single-flight fetch
// coordination that sits in front of all provider adapter calls.
//
// The cache is created once at service start and holds no state across
// process restarts. Expiry is lazy: entries are checked at read time, and a
// periodic Sweep keeps memory bounded.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func (e entry) fresh(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// Cache is a concurrency-safe key-value store with per-entry TTL.
// Coordination is per key: concurrent callers for the same uncached key
// share one in-flight fetch, while unrelated keys never serialize on each
// other.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	log     zerolog.Logger
}

// New creates an empty cache.
func New(log zerolog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		log:     log.With().Str("component", "cache").Logger(),
	}
}

// GetOrFetch returns the cached value for key if it is still fresh,
// otherwise invokes fetch to produce it. Guarantees:
//
//   - a hit within TTL never invokes fetch;
//   - at most one fetch is in flight per key, concurrent callers await and
//     share its outcome;
//   - a failed fetch is never stored: the error propagates to every waiter
//     and the key is immediately eligible for retry.
//
// The fetch runs on a fresh context detached from the caller: an abandoned
// request must not cancel a fetch that other waiters still depend on.
// Timeouts are the fetch function's own responsibility (the provider
// adapters bound every call with an HTTP client timeout).
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	result := c.group.DoChan(key, func() (interface{}, error) {
		// Another flight may have stored the value between our miss and
		// this closure running.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := fetch(context.Background())
		if err != nil {
			c.log.Debug().Str("key", key).Err(err).Msg("Fetch failed, not cached")
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = entry{value: v, expiresAt: time.Now().Add(ttl)}
		c.mu.Unlock()

		return v, nil
	})

	// Waiters stop waiting when their own context dies, but the flight
	// itself runs to completion for the benefit of the others.
	select {
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetOrFetch is the typed convenience wrapper around Cache.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *Cache) lookup(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !e.fresh(time.Now()) {
		return nil, false
	}
	return e.value, true
}

// Invalidate drops a single key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes every expired entry and returns the number removed.
// Purely memory hygiene: correctness never depends on it because expiry is
// evaluated at read time.
func (c *Cache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !e.fresh(now) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		c.log.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}

// Len returns the number of entries currently in the table, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
