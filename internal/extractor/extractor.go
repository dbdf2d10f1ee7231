package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/rs/zerolog"
)

// ErrExtractionFailed marks any outcome that did not yield parsed metadata
var ErrExtractionFailed = errors.New("content extraction failed")

// wordsPerMinute is the reading speed used for reading time estimates
const wordsPerMinute = 200

// Extractor turns a URL into parsed article metadata
type Extractor interface {
	Extract(ctx context.Context, url string) (*models.Extraction, error)
	// Mode names the implementation for logs and metrics
	Mode() string
}

// New builds the extractor selected by cfg.Mode
func New(cfg config.ExtractionConfig, log zerolog.Logger) (Extractor, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Mode {
	case config.ModeRemote:
		return NewRemoteExtractor(cfg.Endpoint, client, log), nil
	case config.ModeLocal:
		return NewReadabilityExtractor(client, cfg.UserAgent, cfg.MaxBodyBytes, log), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", cfg.Mode)
	}
}

// ReadingTime estimates whole minutes to read words, rounded up
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
