package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/rs/zerolog"
)

// ExportFormats lists the formats StreamSavedItems accepts
var ExportFormats = map[string]bool{
	"ndjson": true,
	"json":   true,
	"csv":    true,
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamSavedItems streams the user's saved items in the specified format
func (s *exportService) StreamSavedItems(ctx context.Context, w http.ResponseWriter, userID, format string) error {
	if !ExportFormats[format] {
		return ErrUnsupportedFormat
	}

	s.log.Info().Str("format", format).Str("user_id", userID).Msg("Starting saved items export")

	switch format {
	case "ndjson":
		return s.streamNDJSON(ctx, w, userID)
	case "json":
		return s.streamJSON(ctx, w, userID)
	default:
		return s.streamCSV(ctx, w, userID)
	}
}

// GetCount returns the number of items an export for userID would contain
func (s *exportService) GetCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repos.SavedItem.CountActive(ctx, userID)
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return count, nil
}

// CountByStatus returns non-deleted item counts per parsing status across all users
func (s *exportService) CountByStatus(ctx context.Context) (map[models.ParsingStatus]int, error) {
	counts, err := s.repos.SavedItem.CountByStatus(ctx)
	if err != nil {
		return nil, &StoreError{Op: "count_by_status", Err: err}
	}
	return counts, nil
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter, userID string) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=saved_items.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.repos.SavedItem.StreamByUser(ctx, userID, func(item *models.SavedItem) error {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Saved items export completed")
	return err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter, userID string) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=saved_items.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.SavedItem.StreamByUser(ctx, userID, func(item *models.SavedItem) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter, userID string) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=saved_items.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	// Write header
	writer.Write([]string{
		"id", "url", "parsing_status", "title", "domain", "author",
		"word_count", "reading_time", "is_favorite", "created_at",
	})

	return s.repos.SavedItem.StreamByUser(ctx, userID, func(item *models.SavedItem) error {
		return writer.Write([]string{
			item.ID,
			item.URL,
			string(item.ParsingStatus),
			item.Title,
			item.Domain,
			item.Author,
			strconv.Itoa(item.WordCount),
			strconv.Itoa(item.ReadingTime),
			strconv.FormatBool(item.IsFavorite),
			item.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
}
