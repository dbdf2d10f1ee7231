package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/extractor"
	"github.com/pocktica/readlater/internal/metrics"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/pocktica/readlater/internal/validation"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	maxBatchSize     = 100
)

// saveService is the concrete implementation of SaveService
type saveService struct {
	repo      repository.SavedItemRepository
	extractor extractor.Extractor
	workers   WorkerPool
	cfg       config.SaveConfig
	log       zerolog.Logger
	newID     func() string
	now       func() time.Time
}

// newSaveService creates a new SaveService
func newSaveService(repo repository.SavedItemRepository, ext extractor.Extractor, workers WorkerPool, cfg config.SaveConfig, log zerolog.Logger) *saveService {
	return &saveService{
		repo:      repo,
		extractor: ext,
		workers:   workers,
		cfg:       cfg,
		log:       log.With().Str("service", "save").Logger(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Save runs the whole pipeline and returns the item id whatever the extraction outcome
func (s *saveService) Save(ctx context.Context, rawURL, userID string) (string, error) {
	item, err := s.begin(ctx, rawURL, userID)
	if err != nil {
		return "", err
	}

	if err := s.finalize(ctx, item); err != nil {
		return item.ID, err
	}
	return item.ID, nil
}

// SaveAsync writes the pending row and hands extraction to the worker pool
func (s *saveService) SaveAsync(ctx context.Context, rawURL, userID string) (string, error) {
	item, err := s.begin(ctx, rawURL, userID)
	if err != nil {
		return "", err
	}

	err = s.workers.Submit("finalize:"+item.ID, func(taskCtx context.Context) {
		if err := s.finalize(taskCtx, item); err != nil {
			s.log.Error().Err(err).Str("item_id", item.ID).Msg("Background finalize failed")
		}
	})
	if err != nil {
		// Nothing will ever pick the row up, so close it out now
		s.markFailed(ctx, item)
		return item.ID, err
	}
	return item.ID, nil
}

// SaveBatch saves each URL in order and reports per-URL outcomes
func (s *saveService) SaveBatch(ctx context.Context, urls []string, userID string) []models.SaveResult {
	if len(urls) > maxBatchSize {
		urls = urls[:maxBatchSize]
	}

	results := make([]models.SaveResult, 0, len(urls))
	for _, raw := range urls {
		result := models.SaveResult{URL: strings.TrimSpace(raw)}

		id, err := s.Save(ctx, raw, userID)
		result.ID = id
		if err != nil {
			result.Error = err.Error()
		}
		if id != "" {
			if item, getErr := s.repo.GetByID(ctx, id); getErr == nil && item != nil {
				result.ParsingStatus = item.ParsingStatus
			}
		}
		results = append(results, result)
	}
	return results
}

// Get returns a non-deleted item owned by userID
func (s *saveService) Get(ctx context.Context, id, userID string) (*models.SavedItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	if item == nil || item.IsDeleted || item.UserID != s.userOrDefault(userID) {
		return nil, ErrNotFound
	}
	return item, nil
}

// List returns the user's non-deleted items, newest first
func (s *saveService) List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error) {
	filter.UserID = s.userOrDefault(filter.UserID)
	filter.IncludeDeleted = false
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return items, nil
}

// ToggleFavorite flips is_favorite, waits for the write and returns the re-read row
func (s *saveService) ToggleFavorite(ctx context.Context, id, userID string) (*models.SavedItem, error) {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return nil, err
	}

	if err := s.repo.ToggleFavorite(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "toggle_favorite", Err: err}
	}

	item, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("item_id", id).Bool("is_favorite", item.IsFavorite).Msg("Favorite toggled")
	return item, nil
}

// Delete soft-deletes an item
func (s *saveService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return &StoreError{Op: "delete", Err: err}
	}

	s.log.Info().Str("item_id", id).Msg("Item deleted")
	return nil
}

// ShareMessage returns the text shared for an item
func (s *saveService) ShareMessage(ctx context.Context, id, userID string) (string, error) {
	item, err := s.Get(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return ShareText(item), nil
}

// ShareText is the item title, or a prompt with the URL when there is none
func ShareText(item *models.SavedItem) string {
	if strings.TrimSpace(item.Title) != "" {
		return item.Title
	}
	return "Check out this article :" + item.URL
}

// begin validates input, rejects duplicates and durably inserts the pending row
func (s *saveService) begin(ctx context.Context, rawURL, userID string) (*models.SavedItem, error) {
	url, err := validation.NormalizeURL(rawURL, s.cfg.StripTracking)
	if err != nil {
		if errors.Is(err, validation.ErrEmpty) {
			return nil, ErrEmptyURL
		}
		return nil, ErrInvalidURL
	}
	userID = s.userOrDefault(userID)

	existing, err := s.repo.FindActiveByURL(ctx, userID, url)
	if err != nil {
		return nil, &StoreError{Op: "find", Err: err}
	}
	if existing != nil {
		metrics.RecordSave("duplicate")
		return nil, ErrDuplicateURL
	}

	item := &models.SavedItem{
		ID:            s.newID(),
		URL:           url,
		UserID:        userID,
		ParsingStatus: models.ParsingStatusPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		// Lost a race with a concurrent save of the same URL
		if database.IsUniqueViolation(err) {
			metrics.RecordSave("duplicate")
			return nil, ErrDuplicateURL
		}
		return nil, &StoreError{Op: "insert", Err: err}
	}

	s.log.Debug().Str("item_id", item.ID).Str("url", url).Msg("Pending item inserted")
	return item, nil
}

// finalize runs extraction and moves the row to parsed or failed
func (s *saveService) finalize(ctx context.Context, item *models.SavedItem) error {
	start := time.Now()
	extraction, err := s.extractor.Extract(ctx, item.URL)
	elapsed := time.Since(start)
	metrics.RecordExtraction(s.extractor.Mode(), elapsed.Seconds())

	// The outcome is recorded even when the caller has gone away
	writeCtx := context.WithoutCancel(ctx)

	if err != nil || extraction == nil {
		s.log.Warn().
			Err(err).
			Str("item_id", item.ID).
			Str("url", item.URL).
			Dur("duration", elapsed).
			Msg("Extraction failed")
		return s.markFailed(writeCtx, item)
	}

	fields := s.parsedFields(item, extraction)
	if err := s.repo.Update(writeCtx, item.ID, fields); err != nil {
		metrics.RecordSave("store_error")
		s.log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to store parsed item")
		return &StoreError{Op: "finalize", Err: err}
	}
	item.ParsingStatus = models.ParsingStatusParsed
	metrics.RecordSave(string(models.ParsingStatusParsed))

	s.log.Info().
		Str("item_id", item.ID).
		Str("url", item.URL).
		Int("word_count", extraction.WordCount).
		Dur("duration", elapsed).
		Msg("Item parsed")
	return nil
}

func (s *saveService) markFailed(ctx context.Context, item *models.SavedItem) error {
	err := s.repo.Update(context.WithoutCancel(ctx), item.ID, repository.Fields{
		"parsing_status": models.ParsingStatusFailed,
	})
	if err != nil {
		metrics.RecordSave("store_error")
		s.log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to mark item as failed")
		return &StoreError{Op: "finalize", Err: err}
	}
	item.ParsingStatus = models.ParsingStatusFailed
	metrics.RecordSave(string(models.ParsingStatusFailed))
	return nil
}

func (s *saveService) parsedFields(item *models.SavedItem, e *models.Extraction) repository.Fields {
	domain := e.Domain
	if domain == "" {
		domain = validation.Domain(item.URL)
	}
	extractedAt := e.ExtractedAt
	if extractedAt == nil {
		now := s.now().UTC()
		extractedAt = &now
	}

	return repository.Fields{
		"parsing_status": models.ParsingStatusParsed,
		"title":          e.Title,
		"excerpt":        e.Description,
		"image_url":      e.Image,
		"domain":         domain,
		"site_name":      e.SiteName,
		"author":         e.Author,
		"word_count":     e.WordCount,
		"reading_time":   e.ReadingTime,
		"content":        e.Content,
		"extracted_at":   extractedAt,
	}
}

func (s *saveService) userOrDefault(userID string) string {
	if userID = strings.TrimSpace(userID); userID != "" {
		return userID
	}
	if s.cfg.DefaultUserID != "" {
		return s.cfg.DefaultUserID
	}
	return models.DefaultUserID
}
