package models

import (
	"time"
)

// RssArticle represents one entry of the cached feed snapshot
type RssArticle struct {
	ID                string     `json:"id" db:"id"`
	Position          int        `json:"-" db:"position"`
	Title             string     `json:"title" db:"title"`
	URL               string     `json:"url" db:"url"`
	Description       string     `json:"description" db:"description"`
	PublishedDate     *time.Time `json:"published_date,omitempty" db:"published_date"`
	Author            string     `json:"author,omitempty" db:"author"`
	Category          string     `json:"category,omitempty" db:"category"`
	ImageURL          string     `json:"image_url,omitempty" db:"image_url"`
	Source            string     `json:"source" db:"source"`
	EstimatedReadTime int        `json:"estimated_read_time" db:"estimated_read_time"`
	FeedURL           string     `json:"feed_url" db:"feed_url"`
	IsSaved           bool       `json:"is_saved" db:"is_saved"`
}

// FeedItem represents an article summary returned by a feed ingestor
type FeedItem struct {
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	Description       string     `json:"description"`
	PublishedDate     *time.Time `json:"publishedDate,omitempty"`
	Author            string     `json:"author"`
	Category          string     `json:"category"`
	Image             string     `json:"image"`
	Source            string     `json:"source"`
	EstimatedReadTime int        `json:"estimatedReadTime"`
}

// FeedSnapshot is the full ordered result of one ingestion call
type FeedSnapshot struct {
	Items   []FeedItem `json:"items"`
	FeedURL string     `json:"feedUrl"`
}
