package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

/*
Responsibilities
- Serve cached values while they are fresh
- Collapse concurrent loads of the same key into one upstream call
- Drop expired entries lazily, on the lookup that discovers them

Rules
- Loader errors pass through unchanged and are never cached
- A zero or negative TTL bypasses storage entirely
- Eviction prefers expired entries, then the entry closest to expiry
*/

// Loader computes the value for a key on a cache miss.
type Loader func(ctx context.Context) (any, error)

type entry struct {
	value     any
	expiresAt time.Time
}

type Cache struct {
	metrics    Metrics
	maxEntries int
	now        func() time.Time

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group
}

type Option func(*Cache)

// WithMetrics routes cache events to m instead of discarding them.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithMaxEntries caps the number of stored entries. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.maxEntries = n
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		metrics: NoopMetrics{},
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached value for key while it is fresh,
// otherwise runs loader and stores its result for ttl. Concurrent callers
// of the same key share a single loader invocation; the loader runs with
// the context of the caller that started it. A caller whose own context
// ends while waiting gets its context error, the shared load keeps going
// for the others.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	if value, state := c.peek(key); state == entryFresh {
		c.metrics.Hit(key)
		return value, nil
	} else if state == entryExpired {
		c.metrics.Expired(key)
	} else {
		c.metrics.Miss(key)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if value, state := c.peek(key); state == entryFresh {
			c.metrics.Hit(key)
			return value, nil
		}
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value, ttl)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// Fetch loads a typed value through cache c. A stored value of a
// different type under the same key means two call sites collide on one
// key, which is reported as a fatal TypeMismatchError.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, &TypeMismatchError{Key: key}
	}
	return typed, nil
}

// Size returns the number of stored entries, expired ones included until
// a lookup removes them.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type entryState int

const (
	entryAbsent entryState = iota
	entryFresh
	entryExpired
)

func (c *Cache) peek(key string) (any, entryState) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, entryAbsent
	}
	if c.now().After(e.expiresAt) {
		c.removeExpired(key, e.expiresAt)
		return nil, entryExpired
	}
	return e.value, entryFresh
}

// removeExpired deletes the entry only if it is still the one observed as
// expired; a fresh replacement stored in between stays.
func (c *Cache) removeExpired(key string, expiresAt time.Time) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.expiresAt.Equal(expiresAt) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}

func (c *Cache) store(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	now := c.now()
	c.mu.Lock()
	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		if _, exists := c.entries[key]; !exists {
			c.evictOne(now)
		}
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
	c.mu.Unlock()
	c.metrics.Stored(key)
}

// evictOne removes one entry to make room: any expired entry wins,
// otherwise the one closest to expiry. Callers must hold the write lock.
func (c *Cache) evictOne(now time.Time) {
	victim := ""
	var victimExpiry time.Time
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			victim = key
			break
		}
		if victim == "" || e.expiresAt.Before(victimExpiry) {
			victim, victimExpiry = key, e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.metrics.Evicted(victim)
	}
}
