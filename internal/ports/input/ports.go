// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/potholemap/internal/domain"
)

// PotholeQuerier defines the primary port for bounding-box queries.
type PotholeQuerier interface {
	// Query returns the records inside the request's bounding box, up
	// to the effective limit, with the truncation flag set when more
	// matches existed.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
}

// PotholeIngester defines the primary port for report ingestion.
type PotholeIngester interface {
	// Ingest persists the photo blob and the record, returning the
	// newly minted record identifier.
	Ingest(ctx context.Context, payload domain.IngestPayload) (string, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy    bool              // Overall health status
	Ready      bool              // Ready to accept requests
	Components map[string]string // Component statuses
}
