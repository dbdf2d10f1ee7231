package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/rs/zerolog"
)

type remoteItem struct {
	Title             string `json:"title"`
	URL               string `json:"url"`
	Description       string `json:"description"`
	PublishedDate     string `json:"publishedDate"`
	Author            string `json:"author"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	Source            string `json:"source"`
	EstimatedReadTime int    `json:"estimatedReadTime"`
}

type remoteResponse struct {
	Success *bool `json:"success"`
	Data    *struct {
		Items   []remoteItem `json:"items"`
		FeedURL string       `json:"feedUrl"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// RemoteIngestor asks an HTTP feed endpoint for a source's articles
type RemoteIngestor struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

// NewRemoteIngestor creates an ingestor that calls GET endpoint?url=<source>
func NewRemoteIngestor(endpoint string, client *http.Client, log zerolog.Logger) *RemoteIngestor {
	return &RemoteIngestor{
		endpoint: endpoint,
		client:   client,
		log:      log.With().Str("component", "remote_ingestor").Logger(),
	}
}

// Mode implements Ingestor
func (i *RemoteIngestor) Mode() string {
	return config.ModeRemote
}

// Fetch calls the feed endpoint and converts its items
func (i *RemoteIngestor) Fetch(ctx context.Context, source string) (*models.FeedSnapshot, error) {
	endpoint, err := url.Parse(i.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint: %v", ErrIngestionFailed, err)
	}
	query := endpoint.Query()
	query.Set("url", source)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrIngestionFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngestionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: endpoint returned status %d", ErrIngestionFailed, resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrIngestionFailed, err)
	}
	if out.Success == nil || !*out.Success || out.Data == nil {
		return nil, fmt.Errorf("%w: endpoint reported no success %s", ErrIngestionFailed, out.Error)
	}

	snapshot := &models.FeedSnapshot{
		FeedURL: out.Data.FeedURL,
		Items:   make([]models.FeedItem, 0, len(out.Data.Items)),
	}
	for _, item := range out.Data.Items {
		if strings.TrimSpace(item.URL) == "" {
			continue
		}
		snapshot.Items = append(snapshot.Items, models.FeedItem{
			Title:             item.Title,
			URL:               strings.TrimSpace(item.URL),
			Description:       item.Description,
			PublishedDate:     ParseDate(item.PublishedDate),
			Author:            item.Author,
			Category:          item.Category,
			Image:             item.Image,
			Source:            item.Source,
			EstimatedReadTime: item.EstimatedReadTime,
		})
	}

	i.log.Debug().Str("source", source).Int("items", len(snapshot.Items)).Msg("Fetched remote feed")
	return snapshot, nil
}
