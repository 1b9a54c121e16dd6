// Package metrics exposes the Prometheus instruments shared across the
// application. All collectors are registered on the default registry and
// served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesIngested counts files processed by kind (store-totals, allocator,
	// ignored, error).
	FilesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseiq_ingest_files_total",
		Help: "Workbook files processed, by classification.",
	}, []string{"kind"})

	// FactsInserted counts fact rows written to the database.
	FactsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulseiq_ingest_facts_inserted_total",
		Help: "Sales fact rows inserted.",
	})

	// FactsSkipped counts fact rows skipped as duplicates of an earlier
	// ingest of the same week.
	FactsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulseiq_ingest_facts_skipped_total",
		Help: "Sales fact rows skipped because the (week, store, sku) pair already existed.",
	})

	// IngestDuration observes end to end ingest latency per request.
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulseiq_ingest_duration_seconds",
		Help:    "Time spent ingesting one upload.",
		Buckets: prometheus.DefBuckets,
	})

	// HTTPRequests counts API requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseiq_http_requests_total",
		Help: "HTTP requests served, by route and status.",
	}, []string{"route", "status"})
)
