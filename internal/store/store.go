package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/adboard/internal/database"
	"github.com/jonesrussell/adboard/internal/domain"
)

// Sentinel errors returned by the store regardless of which backend
// served the call.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateURL = errors.New("record with this URL already exists")
)

// Primary is the persistent backend contract, implemented by
// database.AdRepository.
type Primary interface {
	Reachable(ctx context.Context) bool
	FindByURL(ctx context.Context, url string) (*domain.Ad, error)
	FindByID(ctx context.Context, id string) (*domain.Ad, error)
	Create(ctx context.Context, ad *domain.Ad) error
	IncrementViews(ctx context.Context, id string) (*domain.Ad, error)
	ListTopByViews(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error)
	Update(ctx context.Context, id string, update domain.AdUpdate) (*domain.Ad, error)
}

// Logger provides structured logging for the store.
type Logger interface {
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
}

// ResilientStore answers every record operation from the primary store
// when it is reachable and transparently falls back to the in-memory
// mirror when it is not. Records served from the primary are
// warm-written into the mirror so a later outage can still serve them.
type ResilientStore struct {
	primary Primary
	mirror  *Mirror
	log     Logger
}

// New creates a ResilientStore over the given primary and mirror.
func New(primary Primary, mirror *Mirror, log Logger) *ResilientStore {
	return &ResilientStore{primary: primary, mirror: mirror, log: log}
}

// Mirror exposes the fallback store, e.g. for background pruning.
func (s *ResilientStore) Mirror() *Mirror {
	return s.mirror
}

// usePrimary decides, per call, whether the primary store is usable.
func (s *ResilientStore) usePrimary(ctx context.Context) bool {
	if s.primary == nil {
		return false
	}

	if !s.primary.Reachable(ctx) {
		s.log.Warn("primary store unreachable, serving from mirror")
		return false
	}

	return true
}

// FindByURL looks a record up by its normalized URL.
func (s *ResilientStore) FindByURL(ctx context.Context, url string) (*domain.Ad, error) {
	if !s.usePrimary(ctx) {
		return s.mirror.FindByURL(url)
	}

	ad, err := s.primary.FindByURL(ctx, url)
	if err != nil {
		return nil, normalizeErr(err)
	}

	s.mirror.Put(*ad)

	return ad, nil
}

// FindByID looks a record up by id. Mirror-namespaced ids are resolved
// from the mirror directly since the primary has never seen them.
func (s *ResilientStore) FindByID(ctx context.Context, id string) (*domain.Ad, error) {
	if IsMirrorID(id) || !s.usePrimary(ctx) {
		return s.mirror.FindByID(id)
	}

	ad, err := s.primary.FindByID(ctx, id)
	if err != nil {
		return nil, normalizeErr(err)
	}

	s.mirror.Put(*ad)

	return ad, nil
}

// Create persists a new record. When the primary is unreachable the
// record lives in the mirror under a mirror-namespaced id that stays
// referenceable for the life of the process.
func (s *ResilientStore) Create(ctx context.Context, ad *domain.Ad) error {
	if !s.usePrimary(ctx) {
		return s.mirror.Create(ad)
	}

	if err := s.primary.Create(ctx, ad); err != nil {
		return normalizeErr(err)
	}

	s.mirror.Put(*ad)

	return nil
}

// IncrementViewAndGet atomically bumps the view counter and returns the
// updated record. Concurrent increments are never lost: the primary
// uses a single-statement UPDATE, the mirror serializes under its lock.
func (s *ResilientStore) IncrementViewAndGet(ctx context.Context, id string) (*domain.Ad, error) {
	if IsMirrorID(id) || !s.usePrimary(ctx) {
		return s.mirror.IncrementViews(id)
	}

	ad, err := s.primary.IncrementViews(ctx, id)
	if err != nil {
		return nil, normalizeErr(err)
	}

	s.mirror.Put(*ad)

	return ad, nil
}

// ListTopByViews returns records ordered by views descending with ties
// broken by creation time descending, plus the total record count. The
// ordering is identical whether served from primary or mirror.
func (s *ResilientStore) ListTopByViews(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error) {
	if !s.usePrimary(ctx) {
		return s.mirror.ListTopByViews(limit, offset)
	}

	ads, total, err := s.primary.ListTopByViews(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}

	return ads, total, nil
}

// Update applies a partial update and returns the updated record.
func (s *ResilientStore) Update(ctx context.Context, id string, update domain.AdUpdate) (*domain.Ad, error) {
	if IsMirrorID(id) || !s.usePrimary(ctx) {
		return s.mirror.Update(id, update)
	}

	ad, err := s.primary.Update(ctx, id, update)
	if err != nil {
		return nil, normalizeErr(err)
	}

	s.mirror.Put(*ad)

	return ad, nil
}

// IsMirrorID reports whether id was generated by the in-memory mirror.
// Mirror records live outside the primary database, so features that
// need referential integrity (comments) cannot attach to them.
func IsMirrorID(id string) bool {
	return len(id) > len(mirrorIDPrefix) && id[:len(mirrorIDPrefix)] == mirrorIDPrefix
}

// normalizeErr maps repository sentinels onto the store's vocabulary.
func normalizeErr(err error) error {
	switch {
	case errors.Is(err, database.ErrAdNotFound):
		return ErrNotFound
	case errors.Is(err, database.ErrDuplicateURL):
		return ErrDuplicateURL
	default:
		return err
	}
}
