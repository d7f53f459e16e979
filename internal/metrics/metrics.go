// Package metrics records cache activity in Prometheus collectors. There is
// no HTTP endpoint: WriteTextfile dumps the registry for a node_exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/AnyUserName/wallthumb/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every wallthumb collector.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Thumbnail metrics
var (
	ThumbnailsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallthumb_thumbnails_total",
			Help: "Population results per source image",
		},
		[]string{"outcome"}, // "generated", "cached", "failed"
	)

	ThumbnailItemDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wallthumb_thumbnail_item_duration_seconds",
			Help:    "Time spent on one source image during population",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ThumbnailPhaseDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallthumb_thumbnail_phase_duration_seconds",
			Help:    "Thumbnail generation time by phase",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"phase"}, // "decode", "resize", "encode"
	)
)

// Reclamation metrics
var (
	OrphansReclaimedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wallthumb_orphans_reclaimed_total",
			Help: "Cache entries deleted because their source is gone",
		},
	)

	ReclaimFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "wallthumb_reclaim_failures_total",
			Help: "Orphaned entries that could not be deleted",
		},
	)
)

// Cache and run metrics
var (
	CacheEntries = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallthumb_cache_entries",
			Help: "Managed thumbnails in the cache directory",
		},
	)

	CacheBytes = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "wallthumb_cache_bytes",
			Help: "Total size of managed thumbnails",
		},
	)

	LastRunTimestamp = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wallthumb_last_run_timestamp_seconds",
			Help: "Unix time an operation last completed",
		},
		[]string{"operation"}, // "populate", "reclaim"
	)

	WatchEventsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallthumb_watch_events_total",
			Help: "Source directory events handled by watch",
		},
		[]string{"event"},
	)
)

// InitializeMetrics pre-populates label combinations so every series is
// present in the first dump.
func InitializeMetrics() {
	for _, o := range []report.Outcome{report.Generated, report.Cached, report.Failed} {
		ThumbnailsTotal.WithLabelValues(string(o))
	}
	for _, p := range []string{"decode", "resize", "encode"} {
		ThumbnailPhaseDuration.WithLabelValues(p)
	}
	for _, op := range []string{"populate", "reclaim"} {
		LastRunTimestamp.WithLabelValues(op)
	}
	for _, ev := range []string{"create", "write", "remove", "rename"} {
		WatchEventsTotal.WithLabelValues(ev)
	}
}

// SetCacheUsage updates the cache size gauges.
func SetCacheUsage(entries int, bytes int64) {
	CacheEntries.Set(float64(entries))
	CacheBytes.Set(float64(bytes))
}

// MarkRun records that operation finished now.
func MarkRun(operation string) {
	LastRunTimestamp.WithLabelValues(operation).Set(float64(time.Now().Unix()))
}

// WriteTextfile writes the registry in Prometheus text format to path,
// atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
