package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Document store operation latency (seconds)
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"collection", "operation", "status"},
	)

	// Records written per kind
	RecordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_created_total",
			Help: "Total number of records created",
		},
		[]string{"kind"},
	)

	// List cache lookups
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "list_cache_lookups_total",
			Help: "List cache lookups by result",
		},
		[]string{"kind", "result"}, // result: hit, miss, error
	)
)

// RecordHTTPRequestDuration records one HTTP request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordStoreOperation records one store round trip
func RecordStoreOperation(collection, operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOperationDuration.WithLabelValues(collection, operation, status).Observe(duration.Seconds())
}

// IncrementRecordsCreated counts a successful create
func IncrementRecordsCreated(kind string) {
	RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementCacheLookup counts a list cache lookup
func IncrementCacheLookup(kind, result string) {
	CacheLookups.WithLabelValues(kind, result).Inc()
}
