// Package cache provides a concurrency-safe in-memory TTL map used for
// parse-result memoization.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the time entries stay visible after insertion.
const DefaultTTL = 24 * time.Hour

// entry pairs a value with its expiry deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLMap is a mutex-protected map whose entries expire a fixed duration
// after insertion. Expired entries are evicted lazily on lookup; Prune
// removes them eagerly for callers running a background sweep.
type TTLMap[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates a TTLMap with the given entry lifetime. A non-positive ttl
// falls back to DefaultTTL.
func New[V any](ttl time.Duration) *TTLMap[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLMap[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the value stored under key. A missing or expired entry is
// a miss; expired entries are removed on the way out.
func (c *TTLMap[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	return e.value, true
}

// Put stores value under key, resetting its expiry to now+ttl.
func (c *TTLMap[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes the entry stored under key, if any.
func (c *TTLMap[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Prune removes all expired entries and returns how many were removed.
func (c *TTLMap[V]) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of entries currently stored, expired or not.
func (c *TTLMap[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// SetClock overrides the time source. Intended for tests.
func (c *TTLMap[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}
