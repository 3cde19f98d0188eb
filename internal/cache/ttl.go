package cache

import (
	"sync/atomic"
	"time"
)

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// TTL is a single-value in-memory cache. Replacement is atomic at the
// pointer level: readers never see a torn value and concurrent writers
// resolve last-writer-wins.
type TTL[T any] struct {
	ttl   time.Duration
	now   Clock
	entry atomic.Pointer[entry[T]]
}

func NewTTL[T any](ttl time.Duration, now Clock) *TTL[T] {
	if now == nil {
		now = time.Now
	}
	return &TTL[T]{ttl: ttl, now: now}
}

// Get returns the cached value while it is fresh.
func (c *TTL[T]) Get() (T, bool) {
	e := c.entry.Load()
	if e == nil || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Stale returns the cached value regardless of age.
func (c *TTL[T]) Stale() (T, bool) {
	e := c.entry.Load()
	if e == nil {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (c *TTL[T]) Set(value T) {
	c.entry.Store(&entry[T]{value: value, fetchedAt: c.now()})
}

// Invalidate drops the cached value, stale copy included.
func (c *TTL[T]) Invalidate() {
	c.entry.Store(nil)
}
