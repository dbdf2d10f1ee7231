package ingest

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/extractor"
	"github.com/pocktica/readlater/internal/models"
	"github.com/rs/zerolog"
)

const maxFeedBytes = 5 << 20

// FeedIngestor fetches and parses RSS/Atom feeds directly
type FeedIngestor struct {
	sources Sources
	client  *http.Client
	parser  *gofeed.Parser
	strict  *bluemonday.Policy
	log     zerolog.Logger
}

// NewFeedIngestor creates a local ingestor over the given source registry
func NewFeedIngestor(sources Sources, client *http.Client, log zerolog.Logger) *FeedIngestor {
	return &FeedIngestor{
		sources: sources,
		client:  client,
		parser:  gofeed.NewParser(),
		strict:  bluemonday.StrictPolicy(),
		log:     log.With().Str("component", "feed_ingestor").Logger(),
	}
}

// Mode implements Ingestor
func (i *FeedIngestor) Mode() string {
	return config.ModeLocal
}

// Fetch resolves source, downloads the feed and maps its items in document order
func (i *FeedIngestor) Fetch(ctx context.Context, source string) (*models.FeedSnapshot, error) {
	feedURL, err := i.sources.Resolve(source)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrIngestionFailed, err)
	}
	req.Header.Set("User-Agent", "readlater/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrIngestionFailed, feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrIngestionFailed, feedURL, resp.StatusCode)
	}

	parsed, err := i.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrIngestionFailed, feedURL, err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%w: parsing %s: empty document", ErrIngestionFailed, feedURL)
	}

	snapshot := &models.FeedSnapshot{
		FeedURL: feedURL,
		Items:   make([]models.FeedItem, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		snapshot.Items = append(snapshot.Items, i.mapItem(parsed, item))
	}

	i.log.Debug().
		Str("source", source).
		Str("feed_url", feedURL).
		Int("items", len(snapshot.Items)).
		Msg("Fetched feed")

	return snapshot, nil
}

func (i *FeedIngestor) mapItem(feed *gofeed.Feed, item *gofeed.Item) models.FeedItem {
	pubDate := item.PublishedParsed
	if pubDate == nil {
		pubDate = item.UpdatedParsed
	}
	if pubDate != nil {
		utc := pubDate.UTC()
		pubDate = &utc
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	var category string
	if len(item.Categories) > 0 {
		category = strings.TrimSpace(item.Categories[0])
	}

	words := len(strings.Fields(i.plainText(body)))
	readTime := extractor.ReadingTime(words)
	if readTime < 1 {
		readTime = 1
	}

	return models.FeedItem{
		Title:             strings.TrimSpace(html.UnescapeString(item.Title)),
		URL:               strings.TrimSpace(item.Link),
		Description:       i.plainText(item.Description),
		PublishedDate:     pubDate,
		Author:            itemAuthor(item),
		Category:          category,
		Image:             itemImage(item, body),
		Source:            strings.TrimSpace(feed.Title),
		EstimatedReadTime: readTime,
	}
}

// plainText strips markup and collapses whitespace
func (i *FeedIngestor) plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(i.strict.Sanitize(s))), " ")
}

func itemAuthor(item *gofeed.Item) string {
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			return strings.TrimSpace(a.Name)
		}
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

func itemImage(item *gofeed.Item, body string) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if body == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
