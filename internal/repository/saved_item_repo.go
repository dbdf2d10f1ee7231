package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/models"
)

const savedItemColumns = `id, url, user_id, parsing_status, title, excerpt, image_url, domain,
	site_name, author, word_count, reading_time, content, extracted_at,
	is_favorite, is_deleted, created_at`

// updatableSavedItemColumns whitelists the columns Update may write
var updatableSavedItemColumns = map[string]bool{
	"parsing_status": true,
	"title":          true,
	"excerpt":        true,
	"image_url":      true,
	"domain":         true,
	"site_name":      true,
	"author":         true,
	"word_count":     true,
	"reading_time":   true,
	"content":        true,
	"extracted_at":   true,
	"is_favorite":    true,
	"is_deleted":     true,
}

// savedItemRepo is the concrete implementation of SavedItemRepository
type savedItemRepo struct {
	db *database.DB
}

// NewSavedItemRepo creates a new saved item repository
func NewSavedItemRepo(db *database.DB) SavedItemRepository {
	return &savedItemRepo{db: db}
}

// Create inserts a new saved item
func (r *savedItemRepo) Create(ctx context.Context, item *models.SavedItem) error {
	query := r.db.Rebind(`
		INSERT INTO saved_items (id, url, user_id, parsing_status, is_favorite, is_deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.URL, item.UserID, item.ParsingStatus,
		item.IsFavorite, item.IsDeleted, item.CreatedAt.UTC(),
	)
	return err
}

// GetByID retrieves a saved item by ID, deleted or not
func (r *savedItemRepo) GetByID(ctx context.Context, id string) (*models.SavedItem, error) {
	query := r.db.Rebind(`SELECT ` + savedItemColumns + ` FROM saved_items WHERE id = ?`)

	item, err := scanSavedItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// FindActiveByURL returns the non-deleted item for (userID, url), if any
func (r *savedItemRepo) FindActiveByURL(ctx context.Context, userID, url string) (*models.SavedItem, error) {
	query := r.db.Rebind(`
		SELECT ` + savedItemColumns + `
		FROM saved_items
		WHERE user_id = ? AND url = ? AND is_deleted = ?
		LIMIT 1
	`)

	item, err := scanSavedItem(r.db.QueryRowContext(ctx, query, userID, url, false))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes a partial field set to the row identified by id
func (r *savedItemRepo) Update(ctx context.Context, id string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}

	// Sorted keys keep the generated statement stable
	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !updatableSavedItemColumns[col] {
			return fmt.Errorf("column %q is not updatable", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for _, col := range columns {
		sets = append(sets, col+" = ?")
		args = append(args, normalizeValue(fields[col]))
	}
	args = append(args, id)

	query := r.db.Rebind(`UPDATE saved_items SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFavorite flips is_favorite on a non-deleted row in a single statement
func (r *savedItemRepo) ToggleFavorite(ctx context.Context, id string) error {
	query := r.db.Rebind(`
		UPDATE saved_items SET is_favorite = NOT is_favorite
		WHERE id = ? AND is_deleted = ?
	`)
	result, err := r.db.ExecContext(ctx, query, id, false)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete flags a row as deleted without removing it
func (r *savedItemRepo) SoftDelete(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE saved_items SET is_deleted = ? WHERE id = ? AND is_deleted = ?`)
	result, err := r.db.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the items matching filter, most recent first
func (r *savedItemRepo) List(ctx context.Context, filter models.SavedItemFilter) ([]*models.SavedItem, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if !filter.IncludeDeleted {
		where = append(where, "is_deleted = ?")
		args = append(args, false)
	}
	if filter.URL != "" {
		where = append(where, "url = ?")
		args = append(args, filter.URL)
	}
	if filter.Status != "" {
		where = append(where, "parsing_status = ?")
		args = append(args, filter.Status)
	}
	if filter.FavoritesOnly {
		where = append(where, "is_favorite = ?")
		args = append(args, true)
	}

	query := `SELECT ` + savedItemColumns + ` FROM saved_items WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*models.SavedItem, 0)
	for rows.Next() {
		item, err := scanSavedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ExistingURLs reports which of urls the user has among non-deleted items
func (r *savedItemRepo) ExistingURLs(ctx context.Context, userID string, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(urls) == 0 {
		return existing, nil
	}

	args := make([]interface{}, 0, len(urls)+2)
	args = append(args, userID, false)
	for _, u := range urls {
		args = append(args, u)
	}

	query := r.db.Rebind(`
		SELECT url FROM saved_items
		WHERE user_id = ? AND is_deleted = ? AND url IN (` + placeholders(len(urls)) + `)
	`)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		existing[u] = true
	}
	return existing, rows.Err()
}

// CountActive returns the number of non-deleted items owned by userID
func (r *savedItemRepo) CountActive(ctx context.Context, userID string) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM saved_items WHERE user_id = ? AND is_deleted = ?`)
	err := r.db.QueryRowContext(ctx, query, userID, false).Scan(&count)
	return count, err
}

// CountByStatus returns non-deleted item counts grouped by parsing status
func (r *savedItemRepo) CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error) {
	query := r.db.Rebind(`
		SELECT parsing_status, COUNT(*) FROM saved_items
		WHERE is_deleted = ?
		GROUP BY parsing_status
	`)
	rows, err := r.db.QueryContext(ctx, query, false)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ParsingStatus]int, len(models.ValidParsingStatuses))
	for status := range models.ValidParsingStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.ParsingStatus(status)] = n
	}
	return counts, rows.Err()
}

// StreamByUser streams every non-deleted item of userID for export
func (r *savedItemRepo) StreamByUser(ctx context.Context, userID string, callback func(*models.SavedItem) error) error {
	query := r.db.Rebind(`
		SELECT ` + savedItemColumns + `
		FROM saved_items
		WHERE user_id = ? AND is_deleted = ?
		ORDER BY created_at DESC, id DESC
	`)
	rows, err := r.db.QueryContext(ctx, query, userID, false)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanSavedItem(rows)
		if err != nil {
			return err
		}
		if err := callback(item); err != nil {
			return err
		}
	}

	return rows.Err()
}

func scanSavedItem(row rowScanner) (*models.SavedItem, error) {
	var item models.SavedItem
	var status string
	var title, excerpt, imageURL, domain, siteName, author, content sql.NullString
	var wordCount, readingTime sql.NullInt64
	var extractedAt sql.NullTime

	err := row.Scan(
		&item.ID, &item.URL, &item.UserID, &status, &title, &excerpt, &imageURL, &domain,
		&siteName, &author, &wordCount, &readingTime, &content, &extractedAt,
		&item.IsFavorite, &item.IsDeleted, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.ParsingStatus = models.ParsingStatus(status)
	item.Title = title.String
	item.Excerpt = excerpt.String
	item.ImageURL = imageURL.String
	item.Domain = domain.String
	item.SiteName = siteName.String
	item.Author = author.String
	item.Content = content.String
	item.WordCount = int(wordCount.Int64)
	item.ReadingTime = int(readingTime.Int64)
	item.CreatedAt = item.CreatedAt.UTC()
	if extractedAt.Valid {
		t := extractedAt.Time.UTC()
		item.ExtractedAt = &t
	}

	return &item, nil
}

// normalizeValue maps empty strings and zero counts to NULL and pins times to UTC
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return nullString(val)
	case int:
		return nullInt(val)
	case models.ParsingStatus:
		return string(val)
	case time.Time:
		return val.UTC()
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC()
	default:
		return v
	}
}
