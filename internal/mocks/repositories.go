package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
)

// MockSavedItemRepository is an in-memory implementation of SavedItemRepository
type MockSavedItemRepository struct {
	mu          sync.Mutex
	Items       map[string]*models.SavedItem
	CreateError error
	FindError   error
	UpdateError error
	CreateFunc  func(ctx context.Context, item *models.SavedItem) error
	CreateCalls int
	UpdateCalls int
}

// Verify interface compliance
var _ repository.SavedItemRepository = (*MockSavedItemRepository)(nil)

func NewMockSavedItemRepository() *MockSavedItemRepository {
	return &MockSavedItemRepository{
		Items: make(map[string]*models.SavedItem),
	}
}

func (m *MockSavedItemRepository) Create(ctx context.Context, item *models.SavedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, item); err != nil {
			return err
		}
	}
	if m.CreateError != nil {
		return m.CreateError
	}
	stored := *item
	m.Items[item.ID] = &stored
	return nil
}

func (m *MockSavedItemRepository) GetByID(ctx context.Context, id string) (*models.SavedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.Items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (m *MockSavedItemRepository) FindActiveByURL(ctx context.Context, userID, url string) (*models.SavedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindError != nil {
		return nil, m.FindError
	}
	for _, item := range m.Items {
		if item.UserID == userID && item.URL == url && !item.IsDeleted {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockSavedItemRepository) Update(ctx context.Context, id string, fields repository.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.UpdateError != nil {
		return m.UpdateError
	}
	item, ok := m.Items[id]
	if !ok {
		return repository.ErrNotFound
	}
	for col, v := range fields {
		if err := applyField(item, col, v); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockSavedItemRepository) ToggleFavorite(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.Items[id]
	if !ok || item.IsDeleted {
		return repository.ErrNotFound
	}
	item.IsFavorite = !item.IsFavorite
	return nil
}

func (m *MockSavedItemRepository) SoftDelete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.Items[id]
	if !ok || item.IsDeleted {
		return repository.ErrNotFound
	}
	item.IsDeleted = true
	return nil
}

func (m *MockSavedItemRepository) List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]*models.SavedItem, 0)
	for _, item := range m.Items {
		if item.UserID != filter.UserID {
			continue
		}
		if item.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.URL != "" && item.URL != filter.URL {
			continue
		}
		if filter.Status != "" && item.ParsingStatus != filter.Status {
			continue
		}
		if filter.FavoritesOnly && !item.IsFavorite {
			continue
		}
		cp := *item
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(items) {
			return []*models.SavedItem{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(items) {
			end = len(items)
		}
		items = items[filter.Offset:end]
	}
	return items, nil
}

func (m *MockSavedItemRepository) ExistingURLs(ctx context.Context, userID string, urls []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[string]bool, len(urls))
	for _, u := range urls {
		wanted[u] = true
	}
	existing := make(map[string]bool)
	for _, item := range m.Items {
		if item.UserID == userID && !item.IsDeleted && wanted[item.URL] {
			existing[item.URL] = true
		}
	}
	return existing, nil
}

func (m *MockSavedItemRepository) CountActive(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, item := range m.Items {
		if item.UserID == userID && !item.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (m *MockSavedItemRepository) CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[models.ParsingStatus]int{
		models.ParsingStatusPending: 0,
		models.ParsingStatusParsed:  0,
		models.ParsingStatusFailed:  0,
	}
	for _, item := range m.Items {
		if !item.IsDeleted {
			counts[item.ParsingStatus]++
		}
	}
	return counts, nil
}

func (m *MockSavedItemRepository) StreamByUser(ctx context.Context, userID string, callback func(*models.SavedItem) error) error {
	items, _ := m.List(ctx, models.SavedItemFilter{UserID: userID})
	for _, item := range items {
		if err := callback(item); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of the stored item, ignoring ownership and deletion
func (m *MockSavedItemRepository) Snapshot(id string) (models.SavedItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.Items[id]
	if !ok {
		return models.SavedItem{}, false
	}
	return *item, true
}

// Len returns the number of stored rows, deleted ones included
func (m *MockSavedItemRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Items)
}

func applyField(item *models.SavedItem, col string, v interface{}) error {
	switch col {
	case "parsing_status":
		item.ParsingStatus = v.(models.ParsingStatus)
	case "title":
		item.Title = v.(string)
	case "excerpt":
		item.Excerpt = v.(string)
	case "image_url":
		item.ImageURL = v.(string)
	case "domain":
		item.Domain = v.(string)
	case "site_name":
		item.SiteName = v.(string)
	case "author":
		item.Author = v.(string)
	case "content":
		item.Content = v.(string)
	case "word_count":
		item.WordCount = v.(int)
	case "reading_time":
		item.ReadingTime = v.(int)
	case "extracted_at":
		item.ExtractedAt = v.(*time.Time)
	case "is_favorite":
		item.IsFavorite = v.(bool)
	case "is_deleted":
		item.IsDeleted = v.(bool)
	default:
		return fmt.Errorf("column %q is not updatable", col)
	}
	return nil
}

// MockRssArticleRepository is an in-memory implementation of RssArticleRepository
type MockRssArticleRepository struct {
	mu              sync.Mutex
	Articles        []*models.RssArticle
	ListError       error
	ReplaceError    error
	ReplaceAllCalls int
}

// Verify interface compliance
var _ repository.RssArticleRepository = (*MockRssArticleRepository)(nil)

func NewMockRssArticleRepository() *MockRssArticleRepository {
	return &MockRssArticleRepository{
		Articles: make([]*models.RssArticle, 0),
	}
}

func (m *MockRssArticleRepository) List(ctx context.Context, limit int) ([]*models.RssArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListError != nil {
		return nil, m.ListError
	}

	articles := make([]*models.RssArticle, 0, len(m.Articles))
	for _, a := range m.Articles {
		cp := *a
		articles = append(articles, &cp)
	}
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedDate, articles[j].PublishedDate
		switch {
		case a == nil && b == nil:
			return articles[i].Position < articles[j].Position
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return articles[i].Position < articles[j].Position
		default:
			return a.After(*b)
		}
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

func (m *MockRssArticleRepository) GetByID(ctx context.Context, id string) (*models.RssArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.Articles {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRssArticleRepository) ReplaceAll(ctx context.Context, articles []*models.RssArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceAllCalls++
	if m.ReplaceError != nil {
		return m.ReplaceError
	}
	replaced := make([]*models.RssArticle, 0, len(articles))
	for _, a := range articles {
		cp := *a
		replaced = append(replaced, &cp)
	}
	m.Articles = replaced
	return nil
}

func (m *MockRssArticleRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.Articles))
	m.Articles = make([]*models.RssArticle, 0)
	return n, nil
}

func (m *MockRssArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}
