package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/adboard/internal/domain"
	"github.com/jonesrussell/adboard/internal/logger"
	"github.com/jonesrussell/adboard/internal/store"
)

const (
	defaultCommentLimit = 20
	maxCommentLimit     = 100
	maxCommentTextLen   = 4000
)

// CommentStore is the comment persistence surface the handler needs.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByAd(ctx context.Context, adID string, limit, offset int, sort string) ([]*domain.Comment, int, error)
}

// AdFinder checks that the target ad exists before attaching comments.
type AdFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Ad, error)
}

// CommentsHandler handles comment-related HTTP requests.
type CommentsHandler struct {
	comments CommentStore
	ads      AdFinder
	log      logger.Interface
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(comments CommentStore, ads AdFinder, log logger.Interface) *CommentsHandler {
	return &CommentsHandler{
		comments: comments,
		ads:      ads,
		log:      log,
	}
}

// CreateCommentRequest is the body for POST /api/ads/:id/comments.
type CreateCommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text" binding:"required"`
}

// Create handles POST /api/ads/:id/comments
func (h *CommentsHandler) Create(c *gin.Context) {
	adID := c.Param("id")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respondBadRequest(c, "Comment text must not be empty")
		return
	}
	if len(req.Text) > maxCommentTextLen {
		respondBadRequest(c, "Comment text too long")
		return
	}

	// Mirror records have no row in the primary database, so a comment
	// would have nothing to reference.
	if store.IsMirrorID(adID) {
		respondError(c, http.StatusServiceUnavailable, "Comments are unavailable for this ad right now")
		return
	}

	if _, err := h.ads.FindByID(c.Request.Context(), adID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondNotFound(c, "Ad")
			return
		}
		h.log.Error("Failed to check ad before comment", "ad_id", adID, "error", err.Error())
		respondInternalError(c, "Failed to create comment")
		return
	}

	comment := &domain.Comment{
		AdID:   adID,
		Author: strings.TrimSpace(req.Author),
		Text:   req.Text,
	}
	if comment.Author == "" {
		comment.Author = "anonymous"
	}

	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		h.log.Error("Failed to create comment", "ad_id", adID, "error", err.Error())
		respondInternalError(c, "Failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// List handles GET /api/ads/:id/comments
func (h *CommentsHandler) List(c *gin.Context) {
	adID := c.Param("id")
	limit, offset := parseLimitOffset(c, defaultCommentLimit, maxCommentLimit, 0)

	sort := domain.CommentSortDesc
	if strings.EqualFold(c.Query("sort"), "asc") {
		sort = domain.CommentSortAsc
	}

	if _, err := h.ads.FindByID(c.Request.Context(), adID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondNotFound(c, "Ad")
			return
		}
		h.log.Error("Failed to check ad before listing comments", "ad_id", adID, "error", err.Error())
		respondInternalError(c, "Failed to retrieve comments")
		return
	}

	comments, total, err := h.comments.ListByAd(c.Request.Context(), adID, limit, offset, sort)
	if err != nil {
		h.log.Error("Failed to list comments", "ad_id", adID, "error", err.Error())
		respondInternalError(c, "Failed to retrieve comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    total,
	})
}
