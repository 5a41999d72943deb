package application

import (
	"context"
	"time"

	"github.com/jobrunner/potholemap/internal/ports/input"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

// healthTimeout caps the store ping during health checks.
const healthTimeout = 2 * time.Second

// HealthService provides health check functionality.
type HealthService struct {
	store output.PotholeStore
}

// NewHealthService creates a new health service.
func NewHealthService(store output.PotholeStore) *HealthService {
	return &HealthService{store: store}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return true
}

// IsReady returns true if the service can reach its record store.
func (s *HealthService) IsReady(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return s.store.Ping(ctx) == nil
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	components := map[string]string{"store": "ok"}

	ready := s.IsReady(ctx)
	if !ready {
		components["store"] = "unreachable"
	}

	return input.HealthDetails{
		Healthy:    s.IsHealthy(ctx),
		Ready:      ready,
		Components: components,
	}
}
