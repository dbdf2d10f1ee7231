package mocks

import (
	"context"
	"net/http"

	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/service"
)

// MockSaveService is a mock implementation of SaveService
type MockSaveService struct {
	SaveFunc           func(ctx context.Context, url, userID string) (string, error)
	SaveAsyncFunc      func(ctx context.Context, url, userID string) (string, error)
	GetFunc            func(ctx context.Context, id, userID string) (*models.SavedItem, error)
	ListFunc           func(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error)
	ToggleFavoriteFunc func(ctx context.Context, id, userID string) (*models.SavedItem, error)
	DeleteFunc         func(ctx context.Context, id, userID string) error
	LastUserID         string
	LastFilter         models.SavedItemFilter
}

// Verify interface compliance
var _ service.SaveService = (*MockSaveService)(nil)

func NewMockSaveService() *MockSaveService {
	return &MockSaveService{}
}

func (m *MockSaveService) Save(ctx context.Context, url, userID string) (string, error) {
	m.LastUserID = userID
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, url, userID)
	}
	return "test-item-id", nil
}

func (m *MockSaveService) SaveAsync(ctx context.Context, url, userID string) (string, error) {
	m.LastUserID = userID
	if m.SaveAsyncFunc != nil {
		return m.SaveAsyncFunc(ctx, url, userID)
	}
	return "test-item-id", nil
}

func (m *MockSaveService) SaveBatch(ctx context.Context, urls []string, userID string) []models.SaveResult {
	results := make([]models.SaveResult, 0, len(urls))
	for _, u := range urls {
		id, err := m.Save(ctx, u, userID)
		result := models.SaveResult{URL: u, ID: id, ParsingStatus: models.ParsingStatusParsed}
		if err != nil {
			result = models.SaveResult{URL: u, Error: err.Error()}
		}
		results = append(results, result)
	}
	return results
}

func (m *MockSaveService) Get(ctx context.Context, id, userID string) (*models.SavedItem, error) {
	m.LastUserID = userID
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id, userID)
	}
	return &models.SavedItem{ID: id, UserID: userID, ParsingStatus: models.ParsingStatusParsed}, nil
}

func (m *MockSaveService) List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error) {
	m.LastFilter = filter
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.SavedItem{}, nil
}

func (m *MockSaveService) ToggleFavorite(ctx context.Context, id, userID string) (*models.SavedItem, error) {
	if m.ToggleFavoriteFunc != nil {
		return m.ToggleFavoriteFunc(ctx, id, userID)
	}
	return &models.SavedItem{ID: id, UserID: userID, IsFavorite: true}, nil
}

func (m *MockSaveService) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockSaveService) ShareMessage(ctx context.Context, id, userID string) (string, error) {
	item, err := m.Get(ctx, id, userID)
	if err != nil {
		return "", err
	}
	return service.ShareText(item), nil
}

// MockFeedService is a mock implementation of FeedService
type MockFeedService struct {
	LoadFeedFunc    func(ctx context.Context, source string, maxItems int) ([]*models.RssArticle, error)
	RefreshFunc     func(ctx context.Context, source string) error
	SaveArticleFunc func(ctx context.Context, articleID, userID string) (string, error)
	Articles        []*models.RssArticle
	LastSource      string
	LastMaxItems    int
	ClearCalls      int
}

// Verify interface compliance
var _ service.FeedService = (*MockFeedService)(nil)

func NewMockFeedService() *MockFeedService {
	return &MockFeedService{Articles: make([]*models.RssArticle, 0)}
}

func (m *MockFeedService) LoadFeed(ctx context.Context, source string, maxItems int) ([]*models.RssArticle, error) {
	m.LastSource = source
	m.LastMaxItems = maxItems
	if m.LoadFeedFunc != nil {
		return m.LoadFeedFunc(ctx, source, maxItems)
	}
	return m.Articles, nil
}

func (m *MockFeedService) Refresh(ctx context.Context, source string) error {
	m.LastSource = source
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, source)
	}
	return nil
}

func (m *MockFeedService) ClearCache(ctx context.Context) (int64, error) {
	m.ClearCalls++
	n := int64(len(m.Articles))
	m.Articles = make([]*models.RssArticle, 0)
	return n, nil
}

func (m *MockFeedService) SaveArticle(ctx context.Context, articleID, userID string) (string, error) {
	if m.SaveArticleFunc != nil {
		return m.SaveArticleFunc(ctx, articleID, userID)
	}
	return "test-item-id", nil
}

func (m *MockFeedService) AnnotateSaved(ctx context.Context, userID string, articles []*models.RssArticle) error {
	return nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamFunc   func(ctx context.Context, w http.ResponseWriter, userID, format string) error
	Count        int
	StatusCounts map[models.ParsingStatus]int
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) StreamSavedItems(ctx context.Context, w http.ResponseWriter, userID, format string) error {
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, w, userID, format)
	}
	if !service.ExportFormats[format] {
		return service.ErrUnsupportedFormat
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, userID string) (int, error) {
	return m.Count, nil
}

func (m *MockExportService) CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error) {
	if m.StatusCounts == nil {
		return map[models.ParsingStatus]int{}, nil
	}
	return m.StatusCounts, nil
}

// MockWorkerPool runs submitted tasks synchronously
type MockWorkerPool struct {
	Stopped   bool
	Submitted int
}

// Verify interface compliance
var _ service.WorkerPool = (*MockWorkerPool)(nil)

func (m *MockWorkerPool) Start(ctx context.Context) {}

func (m *MockWorkerPool) Stop() {
	m.Stopped = true
}

func (m *MockWorkerPool) Submit(name string, task func(ctx context.Context)) error {
	if m.Stopped {
		return service.ErrWorkerPoolStopped
	}
	m.Submitted++
	task(context.Background())
	return nil
}

func (m *MockWorkerPool) InFlight() int {
	return 0
}
