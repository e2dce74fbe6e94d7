// Package resolver composes the URL normalizer, fetcher, extractor,
// parse cache, and record store into the resolution pipeline. For any
// well-formed Avito URL it always produces a record: a degraded fetch
// or parse yields a placeholder record, never a hard error.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/adboard/internal/cache"
	"github.com/jonesrussell/adboard/internal/domain"
	"github.com/jonesrussell/adboard/internal/extractor"
	"github.com/jonesrussell/adboard/internal/store"
)

// List pagination bounds, matching the public API contract.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// PageFetcher retrieves listing HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// PageExtractor produces a best-effort (title, image) pair from HTML.
type PageExtractor interface {
	Extract(html, baseURL string) extractor.Result
}

// RecordStore is the resilient record store contract the resolver
// persists through.
type RecordStore interface {
	FindByURL(ctx context.Context, url string) (*domain.Ad, error)
	FindByID(ctx context.Context, id string) (*domain.Ad, error)
	Create(ctx context.Context, ad *domain.Ad) error
	IncrementViewAndGet(ctx context.Context, id string) (*domain.Ad, error)
	ListTopByViews(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error)
	Update(ctx context.Context, id string, update domain.AdUpdate) (*domain.Ad, error)
}

// Logger provides structured logging for the resolver.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
}

// Resolution is the outcome of resolving one URL. Degraded marks a
// placeholder record created because fetch or extraction failed;
// Warnings carry the diagnostic trail.
type Resolution struct {
	Record   *domain.Ad `json:"record"`
	Degraded bool       `json:"degraded"`
	Warnings []string   `json:"warnings,omitempty"`
}

// RefreshResult reports a refresh run for an existing record.
type RefreshResult struct {
	Record    *domain.Ad `json:"record"`
	Refreshed bool       `json:"refreshed"`
	Degraded  bool       `json:"degraded"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// Resolver runs the resolution pipeline.
type Resolver struct {
	fetcher    PageFetcher
	extractor  PageExtractor
	parseCache *cache.TTLMap[extractor.Result]
	records    RecordStore
	log        Logger
	locks      *keyLock
}

// New creates a Resolver over the given collaborators.
func New(
	fetcher PageFetcher,
	pageExtractor PageExtractor,
	parseCache *cache.TTLMap[extractor.Result],
	records RecordStore,
	log Logger,
) *Resolver {
	return &Resolver{
		fetcher:    fetcher,
		extractor:  pageExtractor,
		parseCache: parseCache,
		records:    records,
		log:        log,
		locks:      newKeyLock(),
	}
}

// Resolve turns an arbitrary input string into a persisted listing
// record. It fails only for malformed or off-domain URLs; every other
// failure mode resolves to a degraded placeholder record.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	// Pipeline cost is amortized across callers: once a resolution is
	// underway it runs to completion and populates the cache even if
	// the original caller disconnects.
	ctx = context.WithoutCancel(ctx)

	unlock := r.locks.lock(normalized)
	defer unlock()

	if existing, findErr := r.records.FindByURL(ctx, normalized); findErr == nil {
		return &Resolution{Record: existing, Degraded: existing.Approximate}, nil
	} else if !errors.Is(findErr, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup before resolution: %w", findErr)
	}

	if cached, ok := r.parseCache.Get(normalized); ok {
		r.log.Debug("parse cache hit", "url", normalized)
		return r.persist(ctx, normalized, cached, nil)
	}

	result, warnings := r.fetchAndExtract(ctx, normalized)

	if result.OK() {
		r.parseCache.Put(normalized, result)
	}

	return r.persist(ctx, normalized, result, warnings)
}

// fetchAndExtract runs the FETCHING and EXTRACTING stages, converting
// every failure into a degraded result.
func (r *Resolver) fetchAndExtract(ctx context.Context, normalized string) (extractor.Result, []string) {
	html, fetchErr := r.fetcher.Fetch(ctx, normalized)
	if fetchErr != nil {
		r.log.Warn("fetch failed, degrading",
			"url", normalized,
			"error", fetchErr.Error(),
		)

		return extractor.Result{
			Status: extractor.StatusDegraded,
			Reason: "fetch-failed",
		}, []string{"fetch: " + fetchErr.Error()}
	}

	result := r.extractor.Extract(html, normalized)
	if !result.OK() {
		r.log.Warn("extraction degraded",
			"url", normalized,
			"reason", result.Reason,
		)
	}

	return result, nil
}

// persist runs the PERSISTING stage: create the record, or on a
// duplicate-key race re-read and return the winner unchanged.
func (r *Resolver) persist(
	ctx context.Context,
	normalized string,
	result extractor.Result,
	extraWarnings []string,
) (*Resolution, error) {
	warnings := append(extraWarnings, result.Warnings...)

	ad := &domain.Ad{
		URL:   normalized,
		Title: result.Title,
	}

	degraded := !result.OK()
	if degraded {
		ad.Title = domain.PlaceholderTitle
		ad.Approximate = true
	} else if result.Image != "" {
		image := result.Image
		ad.Image = &image
	}

	createErr := r.records.Create(ctx, ad)
	if createErr == nil {
		r.log.Info("listing resolved",
			"url", normalized,
			"id", ad.ID,
			"degraded", degraded,
		)

		return &Resolution{Record: ad, Degraded: degraded, Warnings: warnings}, nil
	}

	if errors.Is(createErr, store.ErrDuplicateURL) {
		winner, findErr := r.records.FindByURL(ctx, normalized)
		if findErr != nil {
			return nil, fmt.Errorf("re-read after duplicate create: %w", findErr)
		}

		return &Resolution{Record: winner, Degraded: winner.Approximate, Warnings: warnings}, nil
	}

	return nil, fmt.Errorf("persist resolution: %w", createErr)
}

// GetAndTouch returns the record with the given id, incrementing its
// view counter. Returns store.ErrNotFound for unknown ids.
func (r *Resolver) GetAndTouch(ctx context.Context, id string) (*domain.Ad, error) {
	return r.records.IncrementViewAndGet(ctx, id)
}

// ListTop returns records ordered by views descending. Limit is clamped
// to [1, MaxListLimit] with DefaultListLimit for non-positive input;
// negative offsets are treated as zero.
func (r *Resolver) ListTop(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return r.records.ListTopByViews(ctx, limit, offset)
}

// Refresh re-runs fetch and extraction for an existing record and
// applies only strictly-improving updates: a present title or image is
// never overwritten with an empty one.
func (r *Resolver) Refresh(ctx context.Context, id string) (*RefreshResult, error) {
	ad, err := r.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	result, warnings := r.fetchAndExtract(ctx, ad.URL)
	warnings = append(warnings, result.Warnings...)

	if !result.OK() {
		return &RefreshResult{Record: ad, Degraded: true, Warnings: warnings}, nil
	}

	r.parseCache.Put(ad.URL, result)

	update := domain.AdUpdate{}
	if result.Title != "" && result.Title != ad.Title {
		title := result.Title
		update.Title = &title
	}
	if result.Image != "" && (ad.Image == nil || *ad.Image != result.Image) {
		image := result.Image
		update.Image = &image
	}
	if ad.Approximate {
		approximate := false
		update.Approximate = &approximate
	}

	if update.IsZero() {
		return &RefreshResult{Record: ad, Warnings: warnings}, nil
	}

	updated, updateErr := r.records.Update(ctx, id, update)
	if updateErr != nil {
		return nil, fmt.Errorf("apply refresh update: %w", updateErr)
	}

	r.log.Info("listing refreshed", "url", ad.URL, "id", id)

	return &RefreshResult{Record: updated, Refreshed: true, Warnings: warnings}, nil
}
