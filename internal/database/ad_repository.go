package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/adboard/internal/domain"
)

// adSelectColumns lists columns for SELECT queries on ads.
const adSelectColumns = `id, url, title, image, views, approximate, created_at, updated_at`

// reachabilityTimeout bounds the ping used by Reachable.
const reachabilityTimeout = 2 * time.Second

// AdRepository handles database operations for ads.
type AdRepository struct {
	db *sqlx.DB
}

// NewAdRepository creates a new ad repository.
func NewAdRepository(db *sqlx.DB) *AdRepository {
	return &AdRepository{db: db}
}

// Reachable reports whether the database currently answers a ping.
func (r *AdRepository) Reachable(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, reachabilityTimeout)
	defer cancel()

	return r.db.PingContext(pingCtx) == nil
}

// FindByURL returns the ad stored under the given normalized URL.
// Returns ErrAdNotFound when no such ad exists.
func (r *AdRepository) FindByURL(ctx context.Context, url string) (*domain.Ad, error) {
	query := `SELECT ` + adSelectColumns + ` FROM ads WHERE url = $1`

	var ad domain.Ad
	err := r.db.GetContext(ctx, &ad, query, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to find ad by url: %w", err)
	}

	return &ad, nil
}

// FindByID returns the ad with the given id, or ErrAdNotFound.
func (r *AdRepository) FindByID(ctx context.Context, id string) (*domain.Ad, error) {
	query := `SELECT ` + adSelectColumns + ` FROM ads WHERE id = $1`

	var ad domain.Ad
	err := r.db.GetContext(ctx, &ad, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to find ad by id: %w", err)
	}

	return &ad, nil
}

// Create inserts a new ad. A missing ID is generated; CreatedAt and
// UpdatedAt are set server-side. A URL uniqueness violation comes back
// as ErrDuplicateURL so callers can resolve the create race by
// re-reading.
func (r *AdRepository) Create(ctx context.Context, ad *domain.Ad) error {
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}

	query := `
		INSERT INTO ads (id, url, title, image, views, approximate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		ad.ID, ad.URL, ad.Title, ad.Image, ad.Views, ad.Approximate,
	).Scan(&ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateURL
		}
		return fmt.Errorf("failed to create ad: %w", err)
	}

	return nil
}

// IncrementViews atomically bumps the view counter and returns the
// updated ad. The increment happens in a single UPDATE so concurrent
// calls never lose updates.
func (r *AdRepository) IncrementViews(ctx context.Context, id string) (*domain.Ad, error) {
	query := `
		UPDATE ads
		SET views = views + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + adSelectColumns

	var ad domain.Ad
	err := r.db.GetContext(ctx, &ad, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}

	return &ad, nil
}

// ListTopByViews returns ads ordered by views descending, ties broken
// by creation time descending, plus the total ad count.
func (r *AdRepository) ListTopByViews(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM ads`); err != nil {
		return nil, 0, fmt.Errorf("failed to count ads: %w", err)
	}

	query := `
		SELECT ` + adSelectColumns + `
		FROM ads
		ORDER BY views DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`

	var ads []*domain.Ad
	if err := r.db.SelectContext(ctx, &ads, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list ads: %w", err)
	}

	if ads == nil {
		ads = []*domain.Ad{}
	}

	return ads, total, nil
}

// Update applies a partial update and returns the updated ad.
func (r *AdRepository) Update(ctx context.Context, id string, update domain.AdUpdate) (*domain.Ad, error) {
	if update.IsZero() {
		return r.FindByID(ctx, id)
	}

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	argIndex := 1

	if update.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIndex))
		args = append(args, *update.Title)
		argIndex++
	}
	if update.Image != nil {
		setClauses = append(setClauses, fmt.Sprintf("image = $%d", argIndex))
		args = append(args, *update.Image)
		argIndex++
	}
	if update.Approximate != nil {
		setClauses = append(setClauses, fmt.Sprintf("approximate = $%d", argIndex))
		args = append(args, *update.Approximate)
		argIndex++
	}

	query := fmt.Sprintf(
		`UPDATE ads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argIndex, adSelectColumns,
	)
	args = append(args, id)

	var ad domain.Ad
	err := r.db.GetContext(ctx, &ad, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to update ad: %w", err)
	}

	return &ad, nil
}
