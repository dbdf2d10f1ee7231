package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocktica/readlater/internal/config"
	"github.com/rs/zerolog"
)

func TestReadingTime(t *testing.T) {
	tests := map[int]int{0: 0, 1: 1, 200: 1, 201: 2, 500: 3, 1000: 5}
	for words, want := range tests {
		if got := ReadingTime(words); got != want {
			t.Errorf("ReadingTime(%d): expected %d, got %d", words, want, got)
		}
	}
}

func TestNew_SelectsMode(t *testing.T) {
	local, err := New(config.ExtractionConfig{Mode: config.ModeLocal, Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if local.Mode() != config.ModeLocal {
		t.Errorf("Expected local mode, got %s", local.Mode())
	}

	remote, err := New(config.ExtractionConfig{Mode: config.ModeRemote, Endpoint: "http://x"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if remote.Mode() != config.ModeRemote {
		t.Errorf("Expected remote mode, got %s", remote.Mode())
	}

	if _, err := New(config.ExtractionConfig{Mode: "other"}, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestRemoteExtractor_Success(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotURL = body["url"]

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": true, "data": {
			"title": "A", "description": "desc", "image": "https://example.com/a.png",
			"domain": "example.com", "site_name": "Example", "author": "Jane",
			"word_count": 500, "reading_time": 3, "content": "<p>body</p>",
			"extracted_at": "2024-05-01T12:00:00Z"}}`)
	}))
	defer server.Close()

	e := NewRemoteExtractor(server.URL, server.Client(), zerolog.Nop())
	result, err := e.Extract(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if gotURL != "https://example.com/a" {
		t.Errorf("Expected url to be posted, got %q", gotURL)
	}
	if result.Title != "A" || result.WordCount != 500 || result.SiteName != "Example" {
		t.Errorf("Unexpected extraction: %+v", result)
	}
	if result.ExtractedAt == nil || result.ExtractedAt.Year() != 2024 {
		t.Errorf("Expected extracted_at to be decoded, got %v", result.ExtractedAt)
	}
}

func TestRemoteExtractor_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "success false", status: http.StatusOK, body: `{"success": false, "error": "blocked"}`},
		{name: "success missing", status: http.StatusOK, body: `{"data": {"title": "A"}}`},
		{name: "data missing", status: http.StatusOK, body: `{"success": true}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"success": true, "data": {}}`},
		{name: "malformed json", status: http.StatusOK, body: `{"success": tru`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			e := NewRemoteExtractor(server.URL, server.Client(), zerolog.Nop())
			_, err := e.Extract(context.Background(), "https://example.com/a")
			if !errors.Is(err, ErrExtractionFailed) {
				t.Errorf("Expected ErrExtractionFailed, got %v", err)
			}
		})
	}
}

func TestRemoteExtractor_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	e := NewRemoteExtractor(server.URL, &http.Client{Timeout: time.Second}, zerolog.Nop())
	if _, err := e.Extract(context.Background(), "https://example.com/a"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Expected ErrExtractionFailed, got %v", err)
	}
}

func articlePage(paragraphs int) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head>
<title>Fallback Title</title>
<meta property="og:title" content="Building Offline Apps">
<meta property="og:description" content="How to keep data usable offline.">
<meta property="og:image" content="/images/cover.png">
<meta property="og:site_name" content="Example Blog">
<meta name="author" content="Jane Doe">
</head><body><nav><a href="/">Home</a></nav><article><h1>Building Offline Apps</h1>`)
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, `<p>Paragraph %d explains how a local store keeps saved articles readable without a network connection, and why the write must land before any slow call starts.<script>alert(1)</script></p>`, i)
	}
	b.WriteString(`</article><footer>Copyright</footer></body></html>`)
	return b.String()
}

func TestReadabilityExtractor_Extract(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage(12))
	}))
	defer server.Close()

	e := NewReadabilityExtractor(server.Client(), "readlater-test", 0, zerolog.Nop())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	result, err := e.Extract(context.Background(), server.URL+"/posts/offline")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if gotUA != "readlater-test" {
		t.Errorf("Expected user agent to be sent, got %q", gotUA)
	}
	if result.Title != "Building Offline Apps" {
		t.Errorf("Expected og:title, got %q", result.Title)
	}
	if result.Description != "How to keep data usable offline." {
		t.Errorf("Expected og:description, got %q", result.Description)
	}
	if result.Image != server.URL+"/images/cover.png" {
		t.Errorf("Expected absolute image url, got %q", result.Image)
	}
	if result.SiteName != "Example Blog" || result.Author != "Jane Doe" {
		t.Errorf("Unexpected site/author: %q / %q", result.SiteName, result.Author)
	}
	if result.Domain != "127.0.0.1" {
		t.Errorf("Expected domain 127.0.0.1, got %q", result.Domain)
	}
	if result.WordCount < 200 {
		t.Errorf("Expected a few hundred words, got %d", result.WordCount)
	}
	if result.ReadingTime != ReadingTime(result.WordCount) {
		t.Errorf("Expected reading time %d, got %d", ReadingTime(result.WordCount), result.ReadingTime)
	}
	if strings.Contains(result.Content, "<script") {
		t.Error("Expected scripts to be sanitised from content")
	}
	if result.ExtractedAt == nil || !result.ExtractedAt.Equal(fixed) {
		t.Errorf("Expected extracted_at %v, got %v", fixed, result.ExtractedAt)
	}
}

func TestReadabilityExtractor_NonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	e := NewReadabilityExtractor(server.Client(), "", 0, zerolog.Nop())
	if _, err := e.Extract(context.Background(), server.URL); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Expected ErrExtractionFailed, got %v", err)
	}
}

func TestReadabilityExtractor_NoReadableContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Empty</title></head><body></body></html>`)
	}))
	defer server.Close()

	e := NewReadabilityExtractor(server.Client(), "", 0, zerolog.Nop())
	if _, err := e.Extract(context.Background(), server.URL); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("Expected ErrExtractionFailed, got %v", err)
	}
}
