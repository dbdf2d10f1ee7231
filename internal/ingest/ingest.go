package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrIngestionFailed marks any fetch that did not yield a feed snapshot
	ErrIngestionFailed = errors.New("feed ingestion failed")
	// ErrUnknownSource is returned for a source name with no registered feed
	ErrUnknownSource = errors.New("unknown feed source")
)

// Ingestor fetches the current article list for a named feed source
type Ingestor interface {
	Fetch(ctx context.Context, source string) (*models.FeedSnapshot, error)
	// Mode names the implementation for logs
	Mode() string
}

// New builds the ingestor selected by cfg.Mode
func New(cfg config.FeedConfig, log zerolog.Logger) (Ingestor, error) {
	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	switch cfg.Mode {
	case config.ModeRemote:
		return NewRemoteIngestor(cfg.Endpoint, client, log), nil
	case config.ModeLocal:
		sources := DefaultSources()
		if cfg.SourcesFile != "" {
			loaded, err := LoadSources(cfg.SourcesFile)
			if err != nil {
				return nil, err
			}
			sources = loaded
		}
		return NewFeedIngestor(sources, client, log), nil
	default:
		return nil, fmt.Errorf("unknown feed mode %q", cfg.Mode)
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats feeds commonly carry; unparseable input yields nil
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
