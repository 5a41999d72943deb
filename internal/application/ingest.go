package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobrunner/potholemap/internal/domain"
	"github.com/jobrunner/potholemap/internal/geo"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

// IngestService persists new pothole reports: photo blob first, then
// the record with a freshly derived geohash.
type IngestService struct {
	store     output.PotholeStore
	photos    output.PhotoStore
	metrics   output.MetricsCollector
	logger    *slog.Logger
	keyPrefix string
	now       func() time.Time
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	store output.PotholeStore,
	photos output.PhotoStore,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	keyPrefix string,
) *IngestService {
	return &IngestService{
		store:     store,
		photos:    photos,
		metrics:   metrics,
		logger:    logger,
		keyPrefix: keyPrefix,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest persists the payload and returns the new record identifier.
//
// There is no compensating delete of the blob when the record insert
// fails afterwards; the orphaned blob is an accepted gap and is logged.
func (s *IngestService) Ingest(ctx context.Context, payload domain.IngestPayload) (string, error) {
	start := time.Now()

	if err := payload.Coordinate.Validate(); err != nil {
		s.metrics.IncIngestCount(false)
		return "", err
	}

	id := uuid.NewString()
	key := s.keyPrefix + id

	if err := s.photos.Put(ctx, key, payload.PhotoData); err != nil {
		s.metrics.IncIngestCount(false)
		s.metrics.IncBlobOperations("put", false)
		return "", &domain.BlobError{Operation: "put", Key: key, Err: err}
	}
	s.metrics.IncBlobOperations("put", true)

	record := domain.Pothole{
		ID:         id,
		DeviceName: payload.DeviceName,
		ObservedAt: payload.ObservedAt,
		RecordedAt: s.now(),
		Confidence: payload.Confidence,
		Coordinate: payload.Coordinate,
		Geohash:    geo.Encode(payload.Coordinate),
		PhotoKey:   key,
	}

	if err := s.store.Insert(ctx, record); err != nil {
		s.metrics.IncIngestCount(false)
		s.metrics.IncStoreOperations("insert", false)
		s.logger.Warn("record insert failed after blob write, blob orphaned",
			"id", id, "key", key, "error", err)
		return "", err
	}
	s.metrics.IncStoreOperations("insert", true)

	s.metrics.IncIngestCount(true)
	s.metrics.ObserveIngestDuration(time.Since(start))

	s.logger.Info("pothole ingested",
		"id", id,
		"device", record.DeviceName,
		"geohash", record.Geohash,
	)

	return id, nil
}
