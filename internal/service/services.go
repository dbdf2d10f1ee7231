package service

import (
	"context"
	"net/http"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/extractor"
	"github.com/pocktica/readlater/internal/ingest"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/rs/zerolog"
)

// SaveService defines the save pipeline and saved item operations
type SaveService interface {
	Save(ctx context.Context, url, userID string) (string, error)
	SaveAsync(ctx context.Context, url, userID string) (string, error)
	SaveBatch(ctx context.Context, urls []string, userID string) []models.SaveResult
	Get(ctx context.Context, id, userID string) (*models.SavedItem, error)
	List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error)
	ToggleFavorite(ctx context.Context, id, userID string) (*models.SavedItem, error)
	Delete(ctx context.Context, id, userID string) error
	ShareMessage(ctx context.Context, id, userID string) (string, error)
}

// FeedService defines the article cache manager operations
type FeedService interface {
	LoadFeed(ctx context.Context, source string, maxItems int) ([]*models.RssArticle, error)
	Refresh(ctx context.Context, source string) error
	ClearCache(ctx context.Context) (int64, error)
	SaveArticle(ctx context.Context, articleID, userID string) (string, error)
	AnnotateSaved(ctx context.Context, userID string, articles []*models.RssArticle) error
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamSavedItems(ctx context.Context, w http.ResponseWriter, userID, format string) error
	GetCount(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error)
}

// WorkerPool runs save finalizations in the background
type WorkerPool interface {
	Start(ctx context.Context)
	Stop()
	Submit(name string, task func(ctx context.Context)) error
	InFlight() int
}

// Services holds all service interfaces
type Services struct {
	Save    SaveService
	Feed    FeedService
	Export  ExportService
	Workers WorkerPool
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, ext extractor.Extractor, ing ingest.Ingestor, cfg *config.Config, log zerolog.Logger) *Services {
	workers := newWorkerPool(cfg.Save.Workers, log)
	saveSvc := newSaveService(repos.SavedItem, ext, workers, cfg.Save, log)
	feedSvc := newFeedService(repos, ing, saveSvc, cfg.Feed, log)
	exportSvc := newExportService(repos, log)

	return &Services{
		Save:    saveSvc,
		Feed:    feedSvc,
		Export:  exportSvc,
		Workers: workers,
	}
}
