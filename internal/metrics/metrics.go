// Package metrics provides Prometheus metrics for the save pipeline and feed cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SavesTotal counts finished save pipeline runs by outcome.
	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "saves_total",
			Help:      "Total number of save pipeline runs by outcome",
		},
		[]string{"status"},
	)

	// ExtractionDuration measures content extraction calls.
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "readlater",
			Name:      "extraction_duration_seconds",
			Help:      "Duration of content extraction calls in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"mode"},
	)

	// FeedRefreshTotal counts feed refresh attempts.
	FeedRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "feed_refresh_total",
			Help:      "Total number of feed refresh attempts",
		},
		[]string{"source", "status"},
	)

	// FeedCacheTotal counts feed loads served from cache versus fetched.
	FeedCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "readlater",
			Name:      "feed_cache_total",
			Help:      "Total number of feed loads by cache result",
		},
		[]string{"result"},
	)

	// WorkerPoolInFlight tracks finalizations running on the worker pool.
	WorkerPoolInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "readlater",
			Name:      "worker_pool_in_flight",
			Help:      "Number of save finalizations currently running",
		},
	)
)

// RecordSave records the terminal outcome of a save.
func RecordSave(status string) {
	SavesTotal.WithLabelValues(status).Inc()
}

// RecordExtraction records one extraction call.
func RecordExtraction(mode string, seconds float64) {
	ExtractionDuration.WithLabelValues(mode).Observe(seconds)
}

// RecordFeedRefresh records a refresh attempt for source.
func RecordFeedRefresh(source, status string) {
	FeedRefreshTotal.WithLabelValues(source, status).Inc()
}

// RecordCacheHit records a feed load served from the cache.
func RecordCacheHit() {
	FeedCacheTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a feed load that required ingestion.
func RecordCacheMiss() {
	FeedCacheTotal.WithLabelValues("miss").Inc()
}
