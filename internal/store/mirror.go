// Package store provides the resilient record store: a facade over the
// primary PostgreSQL repository and a time-bounded in-memory mirror that
// keeps reads and writes answering while the primary is unreachable.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/adboard/internal/domain"
)

// DefaultMirrorTTL is the sliding entry lifetime: refreshed on every
// targeted read or write, so actively used records stay resident.
const DefaultMirrorTTL = 24 * time.Hour

// mirrorIDPrefix namespaces mirror-generated ids away from primary ids.
const mirrorIDPrefix = "mem-"

// mirrorEntry is one resident record plus its expiry deadline.
type mirrorEntry struct {
	ad        domain.Ad
	expiresAt time.Time
}

// Mirror is the in-memory fallback store. Entries are indexed by both
// id and normalized URL; both indexes are pruned together so they never
// diverge. The mirror does not survive process restart.
type Mirror struct {
	mu    sync.Mutex
	ttl   time.Duration
	byID  map[string]*mirrorEntry
	byURL map[string]*mirrorEntry
	now   func() time.Time
}

// NewMirror creates an empty mirror with the given sliding TTL. A
// non-positive ttl falls back to DefaultMirrorTTL.
func NewMirror(ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = DefaultMirrorTTL
	}
	return &Mirror{
		ttl:   ttl,
		byID:  make(map[string]*mirrorEntry),
		byURL: make(map[string]*mirrorEntry),
		now:   time.Now,
	}
}

// newMirrorID returns an id that cannot collide with primary-store ids.
func newMirrorID() string {
	return mirrorIDPrefix + uuid.NewString()
}

// Create stores a new record. A missing ID gets a mirror-namespaced id;
// records warm-written from the primary keep their primary id. Returns
// ErrDuplicateURL when a live record already holds the URL.
func (m *Mirror) Create(ad *domain.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictExpiredLocked(now)

	if _, exists := m.byURL[ad.URL]; exists {
		return ErrDuplicateURL
	}

	if ad.ID == "" {
		ad.ID = newMirrorID()
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = now
	}
	ad.UpdatedAt = now

	m.putLocked(*ad, now)

	return nil
}

// Put upserts a record copied from the primary store. Used as a warm
// write so a later primary outage can still serve this record.
func (m *Mirror) Put(ad domain.Ad) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.putLocked(ad, m.now())
}

// putLocked inserts ad into both indexes, replacing any entry under the
// same id or URL. Caller holds the lock.
func (m *Mirror) putLocked(ad domain.Ad, now time.Time) {
	if prev, ok := m.byID[ad.ID]; ok {
		delete(m.byURL, prev.ad.URL)
	}
	if prev, ok := m.byURL[ad.URL]; ok {
		delete(m.byID, prev.ad.ID)
	}

	e := &mirrorEntry{ad: ad, expiresAt: now.Add(m.ttl)}
	m.byID[ad.ID] = e
	m.byURL[ad.URL] = e
}

// FindByURL returns a copy of the live record stored under url,
// refreshing its expiry.
func (m *Mirror) FindByURL(url string) (*domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.liveLocked(m.byURL[url])
	if e == nil {
		return nil, ErrNotFound
	}

	e.expiresAt = m.now().Add(m.ttl)
	ad := e.ad

	return &ad, nil
}

// FindByID returns a copy of the live record with the given id,
// refreshing its expiry.
func (m *Mirror) FindByID(id string) (*domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.liveLocked(m.byID[id])
	if e == nil {
		return nil, ErrNotFound
	}

	e.expiresAt = m.now().Add(m.ttl)
	ad := e.ad

	return &ad, nil
}

// IncrementViews bumps the view counter under the store lock, so
// concurrent increments are all observed.
func (m *Mirror) IncrementViews(id string) (*domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.liveLocked(m.byID[id])
	if e == nil {
		return nil, ErrNotFound
	}

	now := m.now()
	e.ad.Views++
	e.ad.UpdatedAt = now
	e.expiresAt = now.Add(m.ttl)
	ad := e.ad

	return &ad, nil
}

// Update applies a partial update to a live record.
func (m *Mirror) Update(id string, update domain.AdUpdate) (*domain.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.liveLocked(m.byID[id])
	if e == nil {
		return nil, ErrNotFound
	}

	now := m.now()
	if update.Title != nil {
		e.ad.Title = *update.Title
	}
	if update.Image != nil {
		image := *update.Image
		e.ad.Image = &image
	}
	if update.Approximate != nil {
		e.ad.Approximate = *update.Approximate
	}
	e.ad.UpdatedAt = now
	e.expiresAt = now.Add(m.ttl)
	ad := e.ad

	return &ad, nil
}

// ListTopByViews returns live records ordered by views descending, ties
// broken by creation time descending, matching the primary store's
// ordering. Listing does not refresh entry expiry.
func (m *Mirror) ListTopByViews(limit, offset int) ([]*domain.Ad, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evictExpiredLocked(now)

	live := make([]domain.Ad, 0, len(m.byID))
	for _, e := range m.byID {
		live = append(live, e.ad)
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].Views != live[j].Views {
			return live[i].Views > live[j].Views
		}
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})

	total := len(live)

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []*domain.Ad{}, total, nil
	}

	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	page := make([]*domain.Ad, 0, end-offset)
	for i := offset; i < end; i++ {
		ad := live[i]
		page = append(page, &ad)
	}

	return page, total, nil
}

// Prune removes expired entries from both indexes and returns how many
// were removed.
func (m *Mirror) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.evictExpiredLocked(m.now())
}

// Len returns the number of live entries.
func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked(m.now())

	return len(m.byID)
}

// SetClock overrides the time source. Intended for tests.
func (m *Mirror) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}

// liveLocked returns e if it exists and has not expired, evicting it
// from both indexes otherwise. Caller holds the lock.
func (m *Mirror) liveLocked(e *mirrorEntry) *mirrorEntry {
	if e == nil {
		return nil
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.byID, e.ad.ID)
		delete(m.byURL, e.ad.URL)
		return nil
	}

	return e
}

// evictExpiredLocked removes every expired entry from both indexes.
// Caller holds the lock.
func (m *Mirror) evictExpiredLocked(now time.Time) int {
	removed := 0
	for id, e := range m.byID {
		if !now.Before(e.expiresAt) {
			delete(m.byID, id)
			delete(m.byURL, e.ad.URL)
			removed++
		}
	}

	return removed
}
