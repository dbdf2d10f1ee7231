package models

import (
	"time"
)

// ParsingStatus represents the extraction lifecycle of a saved item
type ParsingStatus string

const (
	ParsingStatusPending ParsingStatus = "pending"
	ParsingStatusParsed  ParsingStatus = "parsed"
	ParsingStatusFailed  ParsingStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed
func (s ParsingStatus) IsTerminal() bool {
	return s == ParsingStatusParsed || s == ParsingStatusFailed
}

// ValidParsingStatuses defines allowed parsing statuses
var ValidParsingStatuses = map[ParsingStatus]bool{
	ParsingStatusPending: true,
	ParsingStatusParsed:  true,
	ParsingStatusFailed:  true,
}

// DefaultUserID is the owner assigned when no identity is established
const DefaultUserID = "1"

// SavedItem represents an article durably saved by a user
type SavedItem struct {
	ID            string        `json:"id" db:"id"`
	URL           string        `json:"url" db:"url"`
	UserID        string        `json:"user_id" db:"user_id"`
	ParsingStatus ParsingStatus `json:"parsing_status" db:"parsing_status"`
	Title         string        `json:"title,omitempty" db:"title"`
	Excerpt       string        `json:"excerpt,omitempty" db:"excerpt"`
	ImageURL      string        `json:"image_url,omitempty" db:"image_url"`
	Domain        string        `json:"domain,omitempty" db:"domain"`
	SiteName      string        `json:"site_name,omitempty" db:"site_name"`
	Author        string        `json:"author,omitempty" db:"author"`
	WordCount     int           `json:"word_count,omitempty" db:"word_count"`
	ReadingTime   int           `json:"reading_time,omitempty" db:"reading_time"`
	Content       string        `json:"content,omitempty" db:"content"`
	ExtractedAt   *time.Time    `json:"extracted_at,omitempty" db:"extracted_at"`
	IsFavorite    bool          `json:"is_favorite" db:"is_favorite"`
	IsDeleted     bool          `json:"is_deleted" db:"is_deleted"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// SavedItemFilter narrows a saved item listing
type SavedItemFilter struct {
	UserID         string
	URL            string
	Status         ParsingStatus
	FavoritesOnly  bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Extraction is the parsed metadata returned by a content extractor
type Extraction struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Domain      string     `json:"domain"`
	SiteName    string     `json:"site_name"`
	Author      string     `json:"author"`
	WordCount   int        `json:"word_count"`
	ReadingTime int        `json:"reading_time"`
	Content     string     `json:"content"`
	ExtractedAt *time.Time `json:"extracted_at,omitempty"`
}

// SaveRequest represents a request to save a URL
type SaveRequest struct {
	URL   string `json:"url"`
	Async bool   `json:"async,omitempty"`
}

// BatchSaveRequest represents a request to save several URLs
type BatchSaveRequest struct {
	URLs []string `json:"urls"`
}

// SaveResult reports the outcome of saving a single URL in a batch
type SaveResult struct {
	URL           string        `json:"url"`
	ID            string        `json:"id,omitempty"`
	ParsingStatus ParsingStatus `json:"parsing_status,omitempty"`
	Error         string        `json:"error,omitempty"`
}
