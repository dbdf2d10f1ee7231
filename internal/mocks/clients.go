package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pocktica/readlater/internal/extractor"
	"github.com/pocktica/readlater/internal/ingest"
	"github.com/pocktica/readlater/internal/models"
)

// MockExtractor is a scripted content extraction client
type MockExtractor struct {
	ExtractFunc func(ctx context.Context, url string) (*models.Extraction, error)
	Result      *models.Extraction
	Err         error
	calls       int32
	mu          sync.Mutex
	URLs        []string
}

// Verify interface compliance
var _ extractor.Extractor = (*MockExtractor)(nil)

func NewMockExtractor(result *models.Extraction) *MockExtractor {
	return &MockExtractor{Result: result}
}

func (m *MockExtractor) Extract(ctx context.Context, url string) (*models.Extraction, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, url)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return nil, extractor.ErrExtractionFailed
	}
	cp := *m.Result
	return &cp, nil
}

func (m *MockExtractor) Mode() string {
	return "mock"
}

// Calls returns how many times Extract ran
func (m *MockExtractor) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}

// MockIngestor is a scripted feed ingestion client
type MockIngestor struct {
	FetchFunc func(ctx context.Context, source string) (*models.FeedSnapshot, error)
	Snapshot  *models.FeedSnapshot
	Err       error
	calls     int32
	mu        sync.Mutex
	Sources   []string
}

// Verify interface compliance
var _ ingest.Ingestor = (*MockIngestor)(nil)

func NewMockIngestor(snapshot *models.FeedSnapshot) *MockIngestor {
	return &MockIngestor{Snapshot: snapshot}
}

func (m *MockIngestor) Fetch(ctx context.Context, source string) (*models.FeedSnapshot, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.Sources = append(m.Sources, source)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, source)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Snapshot == nil {
		return &models.FeedSnapshot{}, nil
	}
	cp := *m.Snapshot
	cp.Items = append([]models.FeedItem(nil), m.Snapshot.Items...)
	return &cp, nil
}

func (m *MockIngestor) Mode() string {
	return "mock"
}

// Calls returns how many times Fetch ran
func (m *MockIngestor) Calls() int {
	return int(atomic.LoadInt32(&m.calls))
}
