package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/rs/zerolog"
)

// remoteResponse is the envelope returned by the parse endpoint
type remoteResponse struct {
	Success *bool              `json:"success"`
	Data    *models.Extraction `json:"data"`
	Error   string             `json:"error,omitempty"`
}

// RemoteExtractor delegates extraction to an HTTP parse endpoint
type RemoteExtractor struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

// NewRemoteExtractor creates an extractor that POSTs {url} to endpoint
func NewRemoteExtractor(endpoint string, client *http.Client, log zerolog.Logger) *RemoteExtractor {
	return &RemoteExtractor{
		endpoint: endpoint,
		client:   client,
		log:      log.With().Str("component", "remote_extractor").Logger(),
	}
}

// Mode implements Extractor
func (e *RemoteExtractor) Mode() string {
	return config.ModeRemote
}

// Extract calls the parse endpoint; anything short of success with data is a failure
func (e *RemoteExtractor) Extract(ctx context.Context, url string) (*models.Extraction, error) {
	body, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: endpoint returned status %d", ErrExtractionFailed, resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrExtractionFailed, err)
	}

	if out.Success == nil || !*out.Success || out.Data == nil {
		e.log.Debug().Str("url", url).Str("error", out.Error).Msg("Parse endpoint reported failure")
		return nil, fmt.Errorf("%w: endpoint reported no success", ErrExtractionFailed)
	}

	return out.Data, nil
}
