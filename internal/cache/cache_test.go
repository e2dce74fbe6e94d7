package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/cache"
)

const testTTL = time.Hour

// fakeClock is an adjustable time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T) (*cache.TTLMap[string], *fakeClock) {
	t.Helper()

	c := cache.New[string](testTTL)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.SetClock(clock.Now)

	return c, clock
}

func TestGetMiss(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)

	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestPutThenGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	c.Put("k", "v")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestExpiredEntryIsMissAndEvicted(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t)
	c.Put("k", "v")

	clock.Advance(testTTL)

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on lookup")
}

func TestEntryVisibleJustBeforeExpiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t)
	c.Put("k", "v")

	clock.Advance(testTTL - time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestPutResetsExpiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t)
	c.Put("k", "v1")

	clock.Advance(testTTL / 2)
	c.Put("k", "v2")

	clock.Advance(testTTL / 2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t)
	c.Put("old", "v")

	clock.Advance(testTTL)
	c.Put("fresh", "v")

	removed := c.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := cache.New[int](testTTL)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			key := string(rune('a' + n%8))
			c.Put(key, n)
			c.Get(key)
			c.Prune()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 8)
}
