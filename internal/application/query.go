// Package application contains the query and ingest engines.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobrunner/potholemap/internal/domain"
	"github.com/jobrunner/potholemap/internal/geo"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

// cacheSafetyMargin keeps cached URLs from outliving the URLs themselves.
const cacheSafetyMargin = time.Minute

// QueryService answers bounding-box queries with a geohash range scan.
type QueryService struct {
	store    output.PotholeStore
	photos   output.PhotoStore
	urlCache output.URLCache
	metrics  output.MetricsCollector
	logger   *slog.Logger

	defaultLimit int
	maxLimit     int
	urlTTL       time.Duration
}

// QueryServiceConfig holds configuration for the query service.
type QueryServiceConfig struct {
	DefaultLimit int
	MaxLimit     int
	URLTTL       time.Duration
}

// NewQueryService creates a new query service. urlCache may be nil.
func NewQueryService(
	store output.PotholeStore,
	photos output.PhotoStore,
	urlCache output.URLCache,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg QueryServiceConfig,
) *QueryService {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 100
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 500
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = 15 * time.Minute
	}

	return &QueryService{
		store:        store,
		photos:       photos,
		urlCache:     urlCache,
		metrics:      metrics,
		logger:       logger,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		urlTTL:       cfg.URLTTL,
	}
}

// Query implements the bounding-box query.
//
// The scan fetches limit+1 rows so truncation can be detected without a
// separate count query. The lexicographic interval over geohash keys is
// a best-effort approximation of containment: points near cell
// boundaries may be missed, and antimeridian-crossing boxes are
// rejected as malformed.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	start := time.Now()

	if err := req.Bounds.Validate(); err != nil {
		s.metrics.IncQueryCount(false)
		return nil, err
	}

	limit := s.effectiveLimit(req.Limit)
	low, high := geo.Interval(req.Bounds)

	records, err := s.store.ScanRange(ctx, low, high, limit+1)
	if err != nil {
		s.metrics.IncQueryCount(false)
		s.metrics.IncStoreOperations("scan", false)
		return nil, err
	}
	s.metrics.IncStoreOperations("scan", true)

	truncated := len(records) > limit
	if truncated {
		records = records[:limit]
	}

	result := &domain.QueryResult{
		Potholes:  make([]domain.PotholeView, len(records)),
		Truncated: truncated,
	}

	// URL enrichment must not reorder: views keep the store's order.
	for i, rec := range records {
		result.Potholes[i] = domain.PotholeView{
			ID:         rec.ID,
			DeviceName: rec.DeviceName,
			ObservedAt: rec.ObservedAt,
			Confidence: rec.Confidence,
			Coordinate: rec.Coordinate,
			PhotoURL:   s.resolvePhotoURL(ctx, rec.PhotoKey),
		}
	}

	s.metrics.IncQueryCount(true)
	s.metrics.ObserveQueryDuration(time.Since(start))
	s.metrics.ObserveQueryResultCount(len(result.Potholes), truncated)

	return result, nil
}

// effectiveLimit clamps the requested limit to [1, maxLimit], falling
// back to the configured default when absent.
func (s *QueryService) effectiveLimit(requested int) int {
	if requested <= 0 {
		return s.defaultLimit
	}
	if requested > s.maxLimit {
		return s.maxLimit
	}
	return requested
}

// resolvePhotoURL mints a time-limited access URL for a photo key,
// consulting the URL cache when configured. URL signing is local
// computation; a failure is logged and yields an empty URL rather than
// failing the whole query.
func (s *QueryService) resolvePhotoURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}

	if s.urlCache != nil {
		if url, err := s.urlCache.Get(ctx, key); err == nil && url != "" {
			return url
		}
	}

	url, err := s.photos.DisplayURL(ctx, key, s.urlTTL)
	if err != nil {
		s.logger.Warn("photo URL resolution failed", "key", key, "error", err)
		s.metrics.IncBlobOperations("url", false)
		return ""
	}
	s.metrics.IncBlobOperations("url", true)

	if s.urlCache != nil && s.urlTTL > cacheSafetyMargin {
		if err := s.urlCache.Set(ctx, key, url, s.urlTTL-cacheSafetyMargin); err != nil {
			s.logger.Warn("photo URL cache write failed", "key", key, "error", err)
		}
	}

	return url
}
