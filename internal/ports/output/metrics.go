package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncQueryCount increments the query counter.
	IncQueryCount(success bool)

	// ObserveQueryDuration records query duration.
	ObserveQueryDuration(duration time.Duration)

	// ObserveQueryResultCount records the size of a query result.
	ObserveQueryResultCount(count int, truncated bool)

	// IncIngestCount increments the ingest counter.
	IncIngestCount(success bool)

	// ObserveIngestDuration records ingest duration.
	ObserveIngestDuration(duration time.Duration)

	// IncStoreOperations increments the store operation counter.
	IncStoreOperations(operation string, success bool)

	// IncBlobOperations increments the blob operation counter.
	IncBlobOperations(operation string, success bool)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncQueryCount implements MetricsCollector.
func (n *NoOpMetrics) IncQueryCount(_ bool) {}

// ObserveQueryDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveQueryDuration(_ time.Duration) {}

// ObserveQueryResultCount implements MetricsCollector.
func (n *NoOpMetrics) ObserveQueryResultCount(_ int, _ bool) {}

// IncIngestCount implements MetricsCollector.
func (n *NoOpMetrics) IncIngestCount(_ bool) {}

// ObserveIngestDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveIngestDuration(_ time.Duration) {}

// IncStoreOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStoreOperations(_ string, _ bool) {}

// IncBlobOperations implements MetricsCollector.
func (n *NoOpMetrics) IncBlobOperations(_ string, _ bool) {}
