package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/models"
)

const rssArticleColumns = `id, position, title, url, description, published_date, author,
	category, image_url, source, estimated_read_time, feed_url, is_saved`

// rssArticleRepo is the concrete implementation of RssArticleRepository
type rssArticleRepo struct {
	db *database.DB
}

// NewRssArticleRepo creates a new cached feed article repository
func NewRssArticleRepo(db *database.DB) RssArticleRepository {
	return &rssArticleRepo{db: db}
}

// List returns up to limit cached articles, newest first; undated entries sort last
func (r *rssArticleRepo) List(ctx context.Context, limit int) ([]*models.RssArticle, error) {
	query := `
		SELECT ` + rssArticleColumns + `
		FROM rss_articles
		ORDER BY (published_date IS NULL), published_date DESC, position ASC
	`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*models.RssArticle, 0)
	for rows.Next() {
		article, err := scanRssArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// GetByID retrieves a cached article by ID
func (r *rssArticleRepo) GetByID(ctx context.Context, id string) (*models.RssArticle, error) {
	query := r.db.Rebind(`SELECT ` + rssArticleColumns + ` FROM rss_articles WHERE id = ?`)

	article, err := scanRssArticle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// ReplaceAll swaps the whole snapshot inside one transaction
func (r *rssArticleRepo) ReplaceAll(ctx context.Context, articles []*models.RssArticle) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rss_articles`); err != nil {
			return err
		}
		if len(articles) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, r.db.Rebind(`
			INSERT INTO rss_articles (`+rssArticleColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range articles {
			var published interface{}
			if a.PublishedDate != nil {
				published = a.PublishedDate.UTC()
			}
			_, err := stmt.ExecContext(ctx,
				a.ID, a.Position, a.Title, a.URL, nullString(a.Description), published,
				nullString(a.Author), nullString(a.Category), nullString(a.ImageURL),
				nullString(a.Source), a.EstimatedReadTime, nullString(a.FeedURL), a.IsSaved,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAll clears the cached snapshot
func (r *rssArticleRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rss_articles`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of cached articles
func (r *rssArticleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rss_articles`).Scan(&count)
	return count, err
}

func scanRssArticle(row rowScanner) (*models.RssArticle, error) {
	var a models.RssArticle
	var description, author, category, imageURL, source, feedURL sql.NullString
	var published sql.NullTime

	err := row.Scan(
		&a.ID, &a.Position, &a.Title, &a.URL, &description, &published, &author,
		&category, &imageURL, &source, &a.EstimatedReadTime, &feedURL, &a.IsSaved,
	)
	if err != nil {
		return nil, err
	}

	a.Description = description.String
	a.Author = author.String
	a.Category = category.String
	a.ImageURL = imageURL.String
	a.Source = source.String
	a.FeedURL = feedURL.String
	if published.Valid {
		t := published.Time.In(time.UTC)
		a.PublishedDate = &t
	}
	return &a, nil
}
