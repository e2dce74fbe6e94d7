package store_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adboard/internal/domain"
	"github.com/jonesrussell/adboard/internal/store"
)

const testMirrorTTL = time.Hour

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

func newTestMirror(t *testing.T) (*store.Mirror, *fakeClock) {
	t.Helper()

	m := store.NewMirror(testMirrorTTL)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.SetClock(clock.Now)

	return m, clock
}

func TestMirrorCreateAssignsNamespacedID(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One"}
	require.NoError(t, m.Create(ad))

	assert.True(t, strings.HasPrefix(ad.ID, "mem-"), "mirror ids must be namespaced, got %q", ad.ID)
	assert.False(t, ad.CreatedAt.IsZero())
}

func TestMirrorCreateKeepsPrimaryID(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	ad := &domain.Ad{ID: "primary-id-1", URL: "https://www.avito.ru/item/1", Title: "One"}
	require.NoError(t, m.Create(ad))
	assert.Equal(t, "primary-id-1", ad.ID)
}

func TestMirrorDuplicateURL(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	require.NoError(t, m.Create(&domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One"}))

	err := m.Create(&domain.Ad{URL: "https://www.avito.ru/item/1", Title: "Two"})
	assert.ErrorIs(t, err, store.ErrDuplicateURL)
}

func TestMirrorFindByBothIndexes(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One"}
	require.NoError(t, m.Create(ad))

	byURL, err := m.FindByURL(ad.URL)
	require.NoError(t, err)

	byID, err := m.FindByID(ad.ID)
	require.NoError(t, err)

	assert.Equal(t, byURL.ID, byID.ID, "both indexes must resolve to the same record")
}

func TestMirrorSlidingExpiry(t *testing.T) {
	t.Parallel()

	m, clock := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One"}
	require.NoError(t, m.Create(ad))

	// A read refreshes the expiry, so the entry outlives the original TTL.
	clock.Advance(testMirrorTTL / 2)
	_, err := m.FindByID(ad.ID)
	require.NoError(t, err)

	clock.Advance(testMirrorTTL - time.Minute)
	_, err = m.FindByID(ad.ID)
	require.NoError(t, err, "entry touched within TTL must still be live")

	// Past the TTL with no touches, the entry is gone from both indexes.
	clock.Advance(testMirrorTTL)

	_, err = m.FindByID(ad.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.FindByURL(ad.URL)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMirrorConcurrentIncrements(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One", Views: 5}
	require.NoError(t, m.Create(ad))

	const increments = 100

	var wg sync.WaitGroup
	for range increments {
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, _ = m.IncrementViews(ad.ID)
		}()
	}
	wg.Wait()

	got, err := m.FindByID(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5+increments), got.Views)
}

func TestMirrorListTopOrdering(t *testing.T) {
	t.Parallel()

	m, clock := newTestMirror(t)

	older := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "older", Views: 3}
	require.NoError(t, m.Create(older))

	clock.Advance(time.Minute)

	newer := &domain.Ad{URL: "https://www.avito.ru/item/2", Title: "newer", Views: 3}
	require.NoError(t, m.Create(newer))

	top := &domain.Ad{URL: "https://www.avito.ru/item/3", Title: "top", Views: 9}
	require.NoError(t, m.Create(top))

	ads, total, err := m.ListTopByViews(10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, ads, 3)

	assert.Equal(t, "top", ads[0].Title)
	assert.Equal(t, "newer", ads[1].Title, "view ties break by creation time, newest first")
	assert.Equal(t, "older", ads[2].Title)
}

func TestMirrorListTopPagination(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	for i, url := range []string{
		"https://www.avito.ru/item/1",
		"https://www.avito.ru/item/2",
		"https://www.avito.ru/item/3",
	} {
		require.NoError(t, m.Create(&domain.Ad{URL: url, Title: url, Views: int64(i)}))
	}

	ads, total, err := m.ListTopByViews(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, ads, 1)
}

func TestMirrorPruneDropsBothIndexes(t *testing.T) {
	t.Parallel()

	m, clock := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One"}
	require.NoError(t, m.Create(ad))

	clock.Advance(testMirrorTTL + time.Second)

	removed := m.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, m.Len())

	// URL is free again after eviction.
	assert.NoError(t, m.Create(&domain.Ad{URL: ad.URL, Title: "fresh"}))
}

func TestMirrorUpdate(t *testing.T) {
	t.Parallel()

	m, _ := newTestMirror(t)

	ad := &domain.Ad{URL: "https://www.avito.ru/item/1", Title: "One", Approximate: true}
	require.NoError(t, m.Create(ad))

	newTitle := "Better title"
	image := "https://img.example/1.jpg"
	approx := false

	updated, err := m.Update(ad.ID, domain.AdUpdate{
		Title:       &newTitle,
		Image:       &image,
		Approximate: &approx,
	})
	require.NoError(t, err)

	assert.Equal(t, "Better title", updated.Title)
	require.NotNil(t, updated.Image)
	assert.Equal(t, image, *updated.Image)
	assert.False(t, updated.Approximate)
}
