// Package metrics exposes Prometheus collectors for ingestion runs.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adapterRunsTotal        *prometheus.CounterVec
	adapterRecordsTotal     *prometheus.CounterVec
	adapterDurationSeconds  *prometheus.HistogramVec
	fetchTotal              *prometheus.CounterVec
	detailFallbacksTotal    *prometheus.CounterVec
	rateLimitDelaySeconds   *prometheus.HistogramVec
	dedupDiscardedTotal     prometheus.Counter
	snapshotShows           prometheus.Gauge
	snapshotLastSuccessUnix prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		adapterRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showcrawl_adapter_runs_total",
				Help: "Adapter invocations, labeled by adapter and outcome.",
			},
			[]string{"adapter", "status"},
		)

		adapterRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showcrawl_adapter_records_total",
				Help: "Candidate records returned by adapters.",
			},
			[]string{"adapter"},
		)

		adapterDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "showcrawl_adapter_duration_seconds",
				Help:    "Wall time of one adapter invocation.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"adapter"},
		)

		fetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showcrawl_fetch_total",
				Help: "Document fetches, labeled by host and status.",
			},
			[]string{"host", "status"},
		)

		detailFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "showcrawl_detail_fallbacks_total",
				Help: "Detail fetches that failed and fell back to the listing stub.",
			},
			[]string{"host"},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "showcrawl_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)

		dedupDiscardedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "showcrawl_dedup_discarded_total",
				Help: "Records dropped as duplicates of an earlier record.",
			},
		)

		snapshotShows = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "showcrawl_snapshot_shows",
				Help: "Number of shows in the last written snapshot.",
			},
		)

		snapshotLastSuccessUnix = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "showcrawl_snapshot_last_success_timestamp_seconds",
				Help: "Unix time of the last successfully written snapshot.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveAdapterRun records one adapter invocation.
func ObserveAdapterRun(adapter, status string, records int, duration time.Duration) {
	Init()
	adapterRunsTotal.WithLabelValues(adapter, status).Inc()
	if records > 0 {
		adapterRecordsTotal.WithLabelValues(adapter).Add(float64(records))
	}
	adapterDurationSeconds.WithLabelValues(adapter).Observe(duration.Seconds())
}

// ObserveFetch counts one document fetch.
func ObserveFetch(rawURL, status string) {
	Init()
	fetchTotal.WithLabelValues(SanitizeSite(rawURL), status).Inc()
}

// ObserveDetailFallback counts a detail page that could not be used.
func ObserveDetailFallback(rawURL string) {
	Init()
	detailFallbacksTotal.WithLabelValues(SanitizeSite(rawURL)).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(host string, duration time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(host).Observe(duration.Seconds())
}

// ObserveDedupDiscarded adds n discarded duplicates.
func ObserveDedupDiscarded(n int) {
	Init()
	if n > 0 {
		dedupDiscardedTotal.Add(float64(n))
	}
}

// ObserveSnapshot records a successfully persisted snapshot.
func ObserveSnapshot(shows int, at time.Time) {
	Init()
	snapshotShows.Set(float64(shows))
	snapshotLastSuccessUnix.Set(float64(at.Unix()))
}

// WriteTextfile dumps the default registry in the node exporter textfile
// format.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
