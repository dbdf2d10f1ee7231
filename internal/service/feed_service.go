package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/ingest"
	"github.com/pocktica/readlater/internal/metrics"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// coldStartKey collapses concurrent cache misses; the cache holds a single snapshot
const coldStartKey = "cold-start"

// feedService is the concrete implementation of FeedService
type feedService struct {
	articles repository.RssArticleRepository
	saved    repository.SavedItemRepository
	ingestor ingest.Ingestor
	save     SaveService
	cfg      config.FeedConfig
	group    singleflight.Group
	log      zerolog.Logger
	newID    func() string
}

// newFeedService creates a new FeedService
func newFeedService(repos *repository.Repositories, ing ingest.Ingestor, save SaveService, cfg config.FeedConfig, log zerolog.Logger) *feedService {
	return &feedService{
		articles: repos.RssArticle,
		saved:    repos.SavedItem,
		ingestor: ing,
		save:     save,
		cfg:      cfg,
		log:      log.With().Str("service", "feed").Logger(),
		newID:    uuid.NewString,
	}
}

// LoadFeed serves the cached snapshot and only fetches when the cache is empty
func (s *feedService) LoadFeed(ctx context.Context, source string, maxItems int) ([]*models.RssArticle, error) {
	source = s.sourceOrDefault(source)
	maxItems = s.clampMaxItems(maxItems)

	articles, err := s.articles.List(ctx, maxItems)
	if err != nil {
		return nil, &StoreError{Op: "list_feed", Err: err}
	}
	if len(articles) > 0 {
		metrics.RecordCacheHit()
		s.log.Debug().Str("source", source).Int("items", len(articles)).Msg("Feed cache hit")
		return articles, nil
	}

	metrics.RecordCacheMiss()
	s.log.Debug().Str("source", source).Msg("Feed cache miss")

	_, err, _ = s.group.Do(coldStartKey, func() (interface{}, error) {
		// Another caller may have filled the cache while this one waited
		count, err := s.articles.Count(ctx)
		if err != nil {
			return nil, &StoreError{Op: "count_feed", Err: err}
		}
		if count > 0 {
			return nil, nil
		}
		return nil, s.Refresh(ctx, source)
	})
	if err != nil {
		return nil, err
	}

	articles, err = s.articles.List(ctx, maxItems)
	if err != nil {
		return nil, &StoreError{Op: "list_feed", Err: err}
	}
	return articles, nil
}

// Refresh replaces the whole cached snapshot with a fresh fetch of source
func (s *feedService) Refresh(ctx context.Context, source string) error {
	source = s.sourceOrDefault(source)

	snapshot, err := s.ingestor.Fetch(ctx, source)
	if err != nil {
		metrics.RecordFeedRefresh(source, "error")
		s.log.Warn().Err(err).Str("source", source).Msg("Feed fetch failed, keeping cached snapshot")
		return &FeedFetchError{Source: source, Err: err}
	}

	articles := make([]*models.RssArticle, 0, len(snapshot.Items))
	for i, item := range snapshot.Items {
		articles = append(articles, &models.RssArticle{
			ID:                s.newID(),
			Position:          i,
			Title:             item.Title,
			URL:               item.URL,
			Description:       item.Description,
			PublishedDate:     item.PublishedDate,
			Author:            item.Author,
			Category:          item.Category,
			ImageURL:          item.Image,
			Source:            item.Source,
			EstimatedReadTime: item.EstimatedReadTime,
			FeedURL:           snapshot.FeedURL,
			IsSaved:           false,
		})
	}

	if err := s.articles.ReplaceAll(ctx, articles); err != nil {
		metrics.RecordFeedRefresh(source, "store_error")
		s.log.Error().Err(err).Str("source", source).Msg("Failed to replace feed snapshot")
		return &StoreError{Op: "replace_feed", Err: err}
	}

	metrics.RecordFeedRefresh(source, "success")
	s.log.Info().
		Str("source", source).
		Str("feed_url", snapshot.FeedURL).
		Int("count", len(articles)).
		Msg("Feed refreshed")
	return nil
}

// ClearCache drops the snapshot so the next load fetches again
func (s *feedService) ClearCache(ctx context.Context) (int64, error) {
	deleted, err := s.articles.DeleteAll(ctx)
	if err != nil {
		return 0, &StoreError{Op: "clear_feed", Err: err}
	}
	s.log.Info().Int64("deleted", deleted).Msg("Feed cache cleared")
	return deleted, nil
}

// SaveArticle saves a cached article's URL through the save pipeline
func (s *feedService) SaveArticle(ctx context.Context, articleID, userID string) (string, error) {
	article, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return "", &StoreError{Op: "get_feed_article", Err: err}
	}
	if article == nil {
		return "", ErrNotFound
	}
	return s.save.Save(ctx, article.URL, userID)
}

// AnnotateSaved sets is_saved on articles from the user's saved items; nothing is written
func (s *feedService) AnnotateSaved(ctx context.Context, userID string, articles []*models.RssArticle) error {
	if len(articles) == 0 {
		return nil
	}
	if strings.TrimSpace(userID) == "" {
		userID = models.DefaultUserID
	}

	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		urls = append(urls, a.URL)
	}

	existing, err := s.saved.ExistingURLs(ctx, userID, urls)
	if err != nil {
		return &StoreError{Op: "annotate_feed", Err: err}
	}
	for _, a := range articles {
		a.IsSaved = existing[a.URL]
	}
	return nil
}

func (s *feedService) sourceOrDefault(source string) string {
	if source = strings.TrimSpace(source); source != "" {
		return source
	}
	return s.cfg.DefaultSource
}

func (s *feedService) clampMaxItems(maxItems int) int {
	if maxItems <= 0 {
		maxItems = s.cfg.DefaultMaxItems
	}
	if s.cfg.MaxItemsLimit > 0 && maxItems > s.cfg.MaxItemsLimit {
		maxItems = s.cfg.MaxItemsLimit
	}
	return maxItems
}
