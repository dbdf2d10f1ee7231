package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/models"
)

// ErrNotFound is returned by writes that target a row which does not exist
var ErrNotFound = errors.New("record not found")

// Fields is a partial column set for update-by-id writes
type Fields map[string]interface{}

// SavedItemRepository defines the interface for saved item data operations
type SavedItemRepository interface {
	Create(ctx context.Context, item *models.SavedItem) error
	GetByID(ctx context.Context, id string) (*models.SavedItem, error)
	FindActiveByURL(ctx context.Context, userID, url string) (*models.SavedItem, error)
	Update(ctx context.Context, id string, fields Fields) error
	ToggleFavorite(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error)
	ExistingURLs(ctx context.Context, userID string, urls []string) (map[string]bool, error)
	CountActive(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error)
	StreamByUser(ctx context.Context, userID string, callback func(*models.SavedItem) error) error
}

// RssArticleRepository defines the interface for cached feed article operations
type RssArticleRepository interface {
	List(ctx context.Context, limit int) ([]*models.RssArticle, error)
	GetByID(ctx context.Context, id string) (*models.RssArticle, error)
	ReplaceAll(ctx context.Context, articles []*models.RssArticle) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	SavedItem  SavedItemRepository
	RssArticle RssArticleRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		SavedItem:  NewSavedItemRepo(db),
		RssArticle: NewRssArticleRepo(db),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// placeholders returns "?, ?, ..." with n markers
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',', ' ')
		}
		b = append(b, '?')
	}
	return string(b)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
