package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/service"
	"github.com/rs/zerolog"
)

// SaveHandler handles saved item endpoints
type SaveHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewSaveHandler creates a new SaveHandler
func NewSaveHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *SaveHandler {
	return &SaveHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "save").Logger(),
	}
}

// CreateSave handles POST /v1/saves
// Sync saves answer 201 with the finished item; async saves answer 202 with the pending id
func (h *SaveHandler) CreateSave(c *gin.Context) {
	ctx := c.Request.Context()
	user := userID(c, h.cfg)

	var req models.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Async {
		id, err := h.services.Save.SaveAsync(ctx, req.URL, user)
		if err != nil {
			writeError(c, h.log, err, "failed to queue save")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"id":             id,
			"parsing_status": models.ParsingStatusPending,
		})
		return
	}

	id, err := h.services.Save.Save(ctx, req.URL, user)
	if err != nil {
		writeError(c, h.log, err, "failed to save item")
		return
	}

	item, err := h.services.Save.Get(ctx, id, user)
	if err != nil {
		writeError(c, h.log, err, "failed to load saved item")
		return
	}

	h.log.Info().
		Str("item_id", id).
		Str("parsing_status", string(item.ParsingStatus)).
		Msg("Item saved")

	c.JSON(http.StatusCreated, item)
}

// CreateBatch handles POST /v1/saves/batch
func (h *SaveHandler) CreateBatch(c *gin.Context) {
	var req models.BatchSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "urls is required"})
		return
	}

	results := h.services.Save.SaveBatch(c.Request.Context(), req.URLs, userID(c, h.cfg))

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
		"failed":  failed,
	})
}

// ListSaves handles GET /v1/saves?status=&favorites=&limit=&offset=
func (h *SaveHandler) ListSaves(c *gin.Context) {
	filter := models.SavedItemFilter{
		UserID: userID(c, h.cfg),
		URL:    c.Query("url"),
	}

	if status := c.Query("status"); status != "" {
		if !models.ValidParsingStatuses[models.ParsingStatus(status)] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: pending, parsed, failed"})
			return
		}
		filter.Status = models.ParsingStatus(status)
	}
	if fav := c.Query("favorites"); fav != "" {
		v, err := strconv.ParseBool(fav)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "favorites must be a boolean"})
			return
		}
		filter.FavoritesOnly = v
	}
	if limit := c.Query("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = v
	}
	if offset := c.Query("offset"); offset != "" {
		v, err := strconv.Atoi(offset)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		filter.Offset = v
	}

	items, err := h.services.Save.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err, "failed to list saved items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// GetSave handles GET /v1/saves/:id
func (h *SaveHandler) GetSave(c *gin.Context) {
	item, err := h.services.Save.Get(c.Request.Context(), c.Param("id"), userID(c, h.cfg))
	if err != nil {
		writeError(c, h.log, err, "failed to get saved item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ToggleFavorite handles POST /v1/saves/:id/favorite
func (h *SaveHandler) ToggleFavorite(c *gin.Context) {
	item, err := h.services.Save.ToggleFavorite(c.Request.Context(), c.Param("id"), userID(c, h.cfg))
	if err != nil {
		writeError(c, h.log, err, "failed to toggle favorite")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteSave handles DELETE /v1/saves/:id
func (h *SaveHandler) DeleteSave(c *gin.Context) {
	if err := h.services.Save.Delete(c.Request.Context(), c.Param("id"), userID(c, h.cfg)); err != nil {
		writeError(c, h.log, err, "failed to delete saved item")
		return
	}
	c.Status(http.StatusNoContent)
}

// ShareSave handles GET /v1/saves/:id/share
func (h *SaveHandler) ShareSave(c *gin.Context) {
	id := c.Param("id")
	msg, err := h.services.Save.ShareMessage(c.Request.Context(), id, userID(c, h.cfg))
	if err != nil {
		writeError(c, h.log, err, "failed to build share message")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"message": msg,
	})
}
