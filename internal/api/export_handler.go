package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/service"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/saves/export?format=...
// Streams the caller's saved items directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()
	user := userID(c, h.cfg)

	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if !service.ExportFormats[format] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	h.log.Info().
		Str("user_id", user).
		Str("format", format).
		Msg("Starting streaming export")

	if err := h.services.Export.StreamSavedItems(ctx, c.Writer, user, format); err != nil {
		h.log.Error().Err(err).Str("user_id", user).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
