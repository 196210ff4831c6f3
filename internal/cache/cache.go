// Package cache holds small TTL memos for cluster lookups that are not
// kept fresh by a watch subscription. The resource store is the cache for
// watched kinds; this package covers the rest (namespace listings for the
// picker).
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	data      T
	expiresAt time.Time
}

func (e *entry[T]) valid() bool {
	return time.Now().Before(e.expiresAt)
}

// TTL is a single-value cache with a fixed time to live.
type TTL[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	entry *entry[T]
}

func New[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{ttl: ttl}
}

// Get returns the cached value if it has not expired.
func (c *TTL[T]) Get() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry != nil && c.entry.valid() {
		return c.entry.data, true
	}
	var zero T
	return zero, false
}

// Put stores v for one TTL window.
func (c *TTL[T]) Put(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry[T]{data: v, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops the cached value. Called on context switches, when the
// old cluster's answer no longer applies.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}
