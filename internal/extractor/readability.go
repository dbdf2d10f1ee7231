package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// ReadabilityExtractor fetches pages itself and extracts the main content locally
type ReadabilityExtractor struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	policy       *bluemonday.Policy
	now          func() time.Time
	log          zerolog.Logger
}

// NewReadabilityExtractor creates a local extractor
func NewReadabilityExtractor(client *http.Client, userAgent string, maxBodyBytes int64, log zerolog.Logger) *ReadabilityExtractor {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 5 << 20
	}
	return &ReadabilityExtractor{
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
		policy:       bluemonday.UGCPolicy(),
		now:          time.Now,
		log:          log.With().Str("component", "readability_extractor").Logger(),
	}
}

// Mode implements Extractor
func (e *ReadabilityExtractor) Mode() string {
	return config.ModeLocal
}

// Extract downloads url and builds an Extraction from its metadata and readable content
func (e *ReadabilityExtractor) Extract(ctx context.Context, url string) (*models.Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %s: %v", ErrExtractionFailed, url, err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrExtractionFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s returned status %d", ErrExtractionFailed, url, resp.StatusCode)
	}

	utf8Reader, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrExtractionFailed, url, err)
	}
	page, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrExtractionFailed, url, err)
	}

	pageURL := resp.Request.URL
	if pageURL == nil {
		if pageURL, err = nurl.Parse(url); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrExtractionFailed, url, err)
	}

	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting content from %s: %v", ErrExtractionFailed, url, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w: no readable content in %s", ErrExtractionFailed, url)
	}

	words := len(strings.Fields(text))
	domain := validation.Domain(pageURL.String())
	extractedAt := e.now().UTC()

	result := &models.Extraction{
		Title: firstNonEmpty(
			metaContent(doc, "property", "og:title"),
			metaContent(doc, "name", "twitter:title"),
			article.Title,
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			metaContent(doc, "property", "og:description"),
			metaContent(doc, "name", "description"),
			article.Excerpt,
		),
		Image: resolveURL(pageURL, firstNonEmpty(
			metaContent(doc, "property", "og:image"),
			metaContent(doc, "name", "twitter:image"),
			article.Image,
		)),
		Domain: domain,
		SiteName: firstNonEmpty(
			metaContent(doc, "property", "og:site_name"),
			article.SiteName,
			domain,
		),
		Author: firstNonEmpty(
			metaContent(doc, "name", "author"),
			metaContent(doc, "property", "article:author"),
			strings.TrimSpace(article.Byline),
		),
		WordCount:   words,
		ReadingTime: ReadingTime(words),
		Content:     e.policy.Sanitize(article.Content),
		ExtractedAt: &extractedAt,
	}

	e.log.Debug().
		Str("url", url).
		Int("word_count", words).
		Msg("Extracted article")

	return result, nil
}

// metaContent returns the trimmed content of the first <meta attr="key"> tag
func metaContent(doc *goquery.Document, attr, key string) string {
	var value string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok && strings.EqualFold(v, key) {
			value = strings.TrimSpace(s.AttrOr("content", ""))
			return value == ""
		}
		return true
	})
	return value
}

func resolveURL(base *nurl.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := nurl.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
