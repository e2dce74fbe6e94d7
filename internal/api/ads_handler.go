package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/adboard/internal/domain"
	"github.com/jonesrussell/adboard/internal/logger"
	"github.com/jonesrussell/adboard/internal/resolver"
	"github.com/jonesrussell/adboard/internal/store"
)

// AdResolver is the resolution pipeline surface the handler needs.
type AdResolver interface {
	Resolve(ctx context.Context, rawURL string) (*resolver.Resolution, error)
	GetAndTouch(ctx context.Context, id string) (*domain.Ad, error)
	ListTop(ctx context.Context, limit, offset int) ([]*domain.Ad, int, error)
	Refresh(ctx context.Context, id string) (*resolver.RefreshResult, error)
}

// AdsHandler handles ad-related HTTP requests.
type AdsHandler struct {
	resolver AdResolver
	log      logger.Interface
}

// NewAdsHandler creates a new ads handler.
func NewAdsHandler(adResolver AdResolver, log logger.Interface) *AdsHandler {
	return &AdsHandler{
		resolver: adResolver,
		log:      log,
	}
}

// ResolveRequest is the body for POST /api/ads/resolve.
type ResolveRequest struct {
	URL string `json:"url" binding:"required"`
}

// Resolve handles POST /api/ads/resolve
func (h *AdsHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrInvalidURL):
			respondBadRequest(c, "Invalid listing URL")
		case errors.Is(err, resolver.ErrUnsupportedDomain):
			respondBadRequest(c, "URL is not an Avito listing")
		default:
			h.log.Error("Failed to resolve listing", "url", req.URL, "error", err.Error())
			respondInternalError(c, "Failed to resolve listing")
		}
		return
	}

	c.JSON(http.StatusOK, resolution)
}

// ListTop handles GET /api/ads
func (h *AdsHandler) ListTop(c *gin.Context) {
	limit, offset := parseLimitOffset(c, resolver.DefaultListLimit, resolver.MaxListLimit, 0)

	ads, total, err := h.resolver.ListTop(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error("Failed to list ads", "error", err.Error())
		respondInternalError(c, "Failed to retrieve ads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ads":   ads,
		"total": total,
	})
}

// Get handles GET /api/ads/:id. Every successful read counts as a view.
func (h *AdsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" || id == "undefined" {
		respondBadRequest(c, "Invalid ad ID")
		return
	}

	ad, err := h.resolver.GetAndTouch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondNotFound(c, "Ad")
			return
		}
		h.log.Error("Failed to get ad", "id", id, "error", err.Error())
		respondInternalError(c, "Failed to retrieve ad")
		return
	}

	c.JSON(http.StatusOK, ad)
}

// Refresh handles POST /api/ads/:id/refresh
func (h *AdsHandler) Refresh(c *gin.Context) {
	id := c.Param("id")
	if id == "" || id == "undefined" {
		respondBadRequest(c, "Invalid ad ID")
		return
	}

	result, err := h.resolver.Refresh(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondNotFound(c, "Ad")
			return
		}
		h.log.Error("Failed to refresh ad", "id", id, "error", err.Error())
		respondInternalError(c, "Failed to refresh ad")
		return
	}

	c.JSON(http.StatusOK, result)
}
