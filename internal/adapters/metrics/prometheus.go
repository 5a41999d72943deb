// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	queryCounter        *prometheus.CounterVec
	queryDuration       prometheus.Histogram
	queryResultCount    prometheus.Histogram
	queryTruncated      prometheus.Counter
	ingestCounter       *prometheus.CounterVec
	ingestDuration      prometheus.Histogram
	storeOperations     *prometheus.CounterVec
	blobOperations      *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "potholemap"
	}

	return &Collector{
		queryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of bounding-box queries",
			},
			[]string{"status"},
		),

		queryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		queryResultCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_result_count",
				Help:      "Number of records per query result",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		),

		queryTruncated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_truncated_total",
				Help:      "Total number of truncated query results",
			},
		),

		ingestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingests_total",
				Help:      "Total number of ingested reports",
			},
			[]string{"status"},
		),

		ingestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingest_duration_seconds",
				Help:      "Ingest duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		storeOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of record store operations",
			},
			[]string{"operation", "status"},
		),

		blobOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blob_operations_total",
				Help:      "Total number of photo blob operations",
			},
			[]string{"operation", "status"},
		),

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// IncQueryCount increments the query counter.
func (c *Collector) IncQueryCount(success bool) {
	c.queryCounter.WithLabelValues(statusLabel(success)).Inc()
}

// ObserveQueryDuration records query duration.
func (c *Collector) ObserveQueryDuration(duration time.Duration) {
	c.queryDuration.Observe(duration.Seconds())
}

// ObserveQueryResultCount records the size of a query result.
func (c *Collector) ObserveQueryResultCount(count int, truncated bool) {
	c.queryResultCount.Observe(float64(count))
	if truncated {
		c.queryTruncated.Inc()
	}
}

// IncIngestCount increments the ingest counter.
func (c *Collector) IncIngestCount(success bool) {
	c.ingestCounter.WithLabelValues(statusLabel(success)).Inc()
}

// ObserveIngestDuration records ingest duration.
func (c *Collector) ObserveIngestDuration(duration time.Duration) {
	c.ingestDuration.Observe(duration.Seconds())
}

// IncStoreOperations increments the store operation counter.
func (c *Collector) IncStoreOperations(operation string, success bool) {
	c.storeOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

// IncBlobOperations increments the blob operation counter.
func (c *Collector) IncBlobOperations(operation string, success bool) {
	c.blobOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

// IncHTTPRequests increments the HTTP request counter.
func (c *Collector) IncHTTPRequests(method, path, status string) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration.
func (c *Collector) ObserveHTTPDuration(method, path string, duration time.Duration) {
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns HTTP middleware for metrics collection.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		c.IncHTTPRequests(r.Method, r.URL.Path, statusToString(wrapped.statusCode))
		c.ObserveHTTPDuration(r.Method, r.URL.Path, time.Since(start))
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// statusToString converts HTTP status code to string category.
func statusToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
