package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/adboard/internal/domain"
)

// commentSelectColumns lists columns for SELECT queries on comments.
const commentSelectColumns = `id, ad_id, author, text, created_at`

// CommentRepository handles database operations for ad comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment. A missing ID is generated.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO comments (id, ad_id, author, text)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		comment.ID, comment.AdID, comment.Author, comment.Text,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByAd returns comments for an ad ordered by creation time, plus
// the total comment count for that ad. sort is CommentSortAsc or
// CommentSortDesc; anything else defaults to descending.
func (r *CommentRepository) ListByAd(
	ctx context.Context,
	adID string,
	limit, offset int,
	sort string,
) ([]*domain.Comment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM comments WHERE ad_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, adID); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	direction := "DESC"
	if sort == domain.CommentSortAsc {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM comments
		WHERE ad_id = $1
		ORDER BY created_at %s, id %s
		LIMIT $2 OFFSET $3
	`, commentSelectColumns, direction, direction)

	var comments []*domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, adID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	if comments == nil {
		comments = []*domain.Comment{}
	}

	return comments, total, nil
}
