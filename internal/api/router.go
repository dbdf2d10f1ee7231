package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// userHeader carries the caller's user id; absent means the default user
const userHeader = "X-User-ID"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	saveHandler := NewSaveHandler(services, cfg, log)
	feedHandler := NewFeedHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/stats", statsHandler(services))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/v1")
	{
		// Saved item endpoints
		saves := v1.Group("/saves")
		{
			saves.POST("", saveHandler.CreateSave)
			saves.POST("/batch", saveHandler.CreateBatch)
			saves.GET("", saveHandler.ListSaves)
			saves.GET("/export", exportHandler.StreamExport)
			saves.GET("/:id", saveHandler.GetSave)
			saves.POST("/:id/favorite", saveHandler.ToggleFavorite)
			saves.DELETE("/:id", saveHandler.DeleteSave)
			saves.GET("/:id/share", saveHandler.ShareSave)
		}

		// Feed cache endpoints
		feed := v1.Group("/feed")
		{
			feed.GET("", feedHandler.GetFeed)
			feed.POST("/refresh", feedHandler.RefreshFeed)
			feed.DELETE("", feedHandler.ClearFeed)
			feed.POST("/:id/save", feedHandler.SaveArticle)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "readlater",
	})
}

// statsHandler returns saved item counts and worker pool load
func statsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Export.CountByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}

		inFlight := 0
		if services.Workers != nil {
			inFlight = services.Workers.InFlight()
		}

		c.JSON(http.StatusOK, gin.H{
			"saved_items": gin.H{
				"pending": counts[models.ParsingStatusPending],
				"parsed":  counts[models.ParsingStatusParsed],
				"failed":  counts[models.ParsingStatusFailed],
			},
			"workers_in_flight": inFlight,
			"timestamp":         time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+userHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// userID reads the caller from the request, falling back to the configured default
func userID(c *gin.Context, cfg *config.Config) string {
	if id := strings.TrimSpace(c.GetHeader(userHeader)); id != "" {
		return id
	}
	if cfg != nil && cfg.Save.DefaultUserID != "" {
		return cfg.Save.DefaultUserID
	}
	return models.DefaultUserID
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	var fetchErr *service.FeedFetchError
	switch {
	case errors.Is(err, service.ErrEmptyURL), errors.Is(err, service.ErrInvalidURL),
		errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrWorkerPoolStopped):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and renders err as JSON
func writeError(c *gin.Context, log zerolog.Logger, err error, msg string) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": msg})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
