package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/service"
	"github.com/rs/zerolog"
)

// FeedHandler handles feed cache endpoints
type FeedHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "feed").Logger(),
	}
}

// GetFeed handles GET /v1/feed?source=&max_items=
func (h *FeedHandler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()

	maxItems := 0
	if raw := c.Query("max_items"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_items must be a non-negative integer"})
			return
		}
		maxItems = v
	}

	articles, err := h.services.Feed.LoadFeed(ctx, c.Query("source"), maxItems)
	if err != nil {
		writeError(c, h.log, err, "failed to load feed")
		return
	}

	if err := h.services.Feed.AnnotateSaved(ctx, userID(c, h.cfg), articles); err != nil {
		// The feed is still useful without saved markers
		h.log.Warn().Err(err).Msg("Failed to annotate saved articles")
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// RefreshFeed handles POST /v1/feed/refresh?source=
func (h *FeedHandler) RefreshFeed(c *gin.Context) {
	source := c.Query("source")
	if err := h.services.Feed.Refresh(c.Request.Context(), source); err != nil {
		writeError(c, h.log, err, "failed to refresh feed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feed refreshed"})
}

// ClearFeed handles DELETE /v1/feed
func (h *FeedHandler) ClearFeed(c *gin.Context) {
	deleted, err := h.services.Feed.ClearCache(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err, "failed to clear feed cache")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// SaveArticle handles POST /v1/feed/:id/save
func (h *FeedHandler) SaveArticle(c *gin.Context) {
	ctx := c.Request.Context()
	user := userID(c, h.cfg)

	id, err := h.services.Feed.SaveArticle(ctx, c.Param("id"), user)
	if err != nil {
		writeError(c, h.log, err, "failed to save feed article")
		return
	}

	item, err := h.services.Save.Get(ctx, id, user)
	if err != nil {
		writeError(c, h.log, err, "failed to load saved item")
		return
	}
	c.JSON(http.StatusCreated, item)
}
