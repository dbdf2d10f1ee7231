package benchmark

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pocktica/readlater/internal/config"
	"github.com/pocktica/readlater/internal/database"
	"github.com/pocktica/readlater/internal/mocks"
	"github.com/pocktica/readlater/internal/models"
	"github.com/pocktica/readlater/internal/repository"
	"github.com/pocktica/readlater/internal/service"
	"github.com/pocktica/readlater/internal/validation"
	"github.com/rs/zerolog"
)

func benchConfig() *config.Config {
	return &config.Config{
		Feed: config.FeedConfig{DefaultSource: "react-native", DefaultMaxItems: 10, MaxItemsLimit: 100},
		Save: config.SaveConfig{DefaultUserID: models.DefaultUserID, Workers: 4, StripTracking: true},
	}
}

func newMockServices() (*service.Services, *mocks.MockSavedItemRepository) {
	saved := mocks.NewMockSavedItemRepository()
	repos := &repository.Repositories{SavedItem: saved, RssArticle: mocks.NewMockRssArticleRepository()}
	ext := mocks.NewMockExtractor(&models.Extraction{Title: "Bench", WordCount: 800, ReadingTime: 4})
	ing := mocks.NewMockIngestor(feedSnapshot(50))
	return service.NewServices(repos, ext, ing, benchConfig(), zerolog.Nop()), saved
}

func feedSnapshot(n int) *models.FeedSnapshot {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.FeedItem, n)
	for i := range items {
		published := base.Add(time.Duration(i) * time.Minute)
		items[i] = models.FeedItem{
			Title:         fmt.Sprintf("Post %d", i),
			URL:           fmt.Sprintf("https://reactnative.dev/blog/%06d", i),
			PublishedDate: &published,
			Source:        "React Native Blog",
		}
	}
	return &models.FeedSnapshot{Items: items, FeedURL: "https://reactnative.dev/blog/rss.xml"}
}

func openSQLite(b *testing.B) *repository.Repositories {
	b.Helper()

	db, err := database.New(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(b.TempDir(), "bench.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		MaxLifetime:  time.Minute,
	}, zerolog.Nop())
	if err != nil {
		b.Fatalf("database.New failed: %v", err)
	}
	b.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		b.Fatalf("RunMigrations failed: %v", err)
	}
	return repository.New(db)
}

// BenchmarkSaveSync benchmarks the full save pipeline over in-memory storage
func BenchmarkSaveSync(b *testing.B) {
	services, _ := newMockServices()
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Save.Save(ctx, fmt.Sprintf("https://example.com/post/%d?utm_source=bench", i), ""); err != nil {
			b.Fatalf("Save failed: %v", err)
		}
	}

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "saves/sec")
}

// BenchmarkSaveAsync benchmarks saves handed to the worker pool
func BenchmarkSaveAsync(b *testing.B) {
	services, _ := newMockServices()
	ctx := context.Background()
	services.Workers.Start(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Save.SaveAsync(ctx, fmt.Sprintf("https://example.com/post/%d", i), ""); err != nil {
			b.Fatalf("SaveAsync failed: %v", err)
		}
	}
	services.Workers.Stop()
}

// BenchmarkFeedCacheHit benchmarks serving the cached snapshot
func BenchmarkFeedCacheHit(b *testing.B) {
	services, _ := newMockServices()
	ctx := context.Background()
	if _, err := services.Feed.LoadFeed(ctx, "", 10); err != nil {
		b.Fatalf("LoadFeed failed: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		services.Feed.LoadFeed(ctx, "", 10)
	}
}

// BenchmarkReplaceAllSQLite benchmarks the transactional snapshot swap
func BenchmarkReplaceAllSQLite(b *testing.B) {
	repos := openSQLite(b)
	ctx := context.Background()
	snapshot := feedSnapshot(100)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		articles := make([]*models.RssArticle, len(snapshot.Items))
		for j, item := range snapshot.Items {
			articles[j] = &models.RssArticle{
				ID:            fmt.Sprintf("%d-%d", i, j),
				Position:      j,
				Title:         item.Title,
				URL:           item.URL,
				PublishedDate: item.PublishedDate,
				Source:        item.Source,
				FeedURL:       snapshot.FeedURL,
			}
		}
		if err := repos.RssArticle.ReplaceAll(ctx, articles); err != nil {
			b.Fatalf("ReplaceAll failed: %v", err)
		}
	}

	b.ReportMetric(float64(100*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkExportNDJSON benchmarks streaming export
func BenchmarkExportNDJSON(b *testing.B) {
	services, _ := newMockServices()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		services.Save.Save(ctx, fmt.Sprintf("https://example.com/post/%d", i), "")
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		if err := services.Export.StreamSavedItems(ctx, w, models.DefaultUserID, "ndjson"); err != nil {
			b.Fatalf("Export failed: %v", err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkNormalizeURL benchmarks URL validation and tracking param removal
func BenchmarkNormalizeURL(b *testing.B) {
	raw := "  https://www.example.com/articles/hooks?utm_source=twitter&utm_medium=social&page=2&fbclid=abc  "

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validation.NormalizeURL(raw, true)
	}
}

// BenchmarkWorkerPoolParallel benchmarks parallel semaphore operations
func BenchmarkWorkerPoolParallel(b *testing.B) {
	sem := make(chan struct{}, 4)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sem <- struct{}{}
			<-sem
		}
	})
}
