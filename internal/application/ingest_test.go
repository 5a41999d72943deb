package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobrunner/potholemap/internal/domain"
	"github.com/jobrunner/potholemap/internal/geo"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

func newTestIngestService(store *mockStore, photos *mockPhotos) *IngestService {
	return NewIngestService(store, photos, &output.NoOpMetrics{}, testLogger(), "potholes/")
}

func testPayload() domain.IngestPayload {
	return domain.IngestPayload{
		DeviceName: "dashcam-7",
		ObservedAt: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		Confidence: 0.92,
		Coordinate: domain.NewCoordinate(51.5013, -0.1418),
		PhotoData:  []byte("jpeg-bytes"),
	}
}

func TestIngestSuccess(t *testing.T) {
	store := &mockStore{}
	photos := &mockPhotos{}
	svc := newTestIngestService(store, photos)

	recordedAt := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return recordedAt }

	id, err := svc.Ingest(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if id == "" {
		t.Fatal("Ingest must return the new record identifier")
	}

	if len(store.inserted) != 1 {
		t.Fatalf("len(inserted) = %d, want 1", len(store.inserted))
	}
	rec := store.inserted[0]

	if rec.ID != id {
		t.Errorf("record ID = %q, want %q", rec.ID, id)
	}
	if rec.PhotoKey != "potholes/"+id {
		t.Errorf("PhotoKey = %q, want prefix plus identifier", rec.PhotoKey)
	}
	if !rec.RecordedAt.Equal(recordedAt) {
		t.Errorf("RecordedAt = %v, want %v", rec.RecordedAt, recordedAt)
	}
	if want := geo.Encode(rec.Coordinate); rec.Geohash != want {
		t.Errorf("Geohash = %q, want %q", rec.Geohash, want)
	}

	blob, ok := photos.blobs[rec.PhotoKey]
	if !ok {
		t.Fatal("photo blob was not stored")
	}
	if string(blob) != "jpeg-bytes" {
		t.Errorf("stored blob = %q", blob)
	}
}

func TestIngestDistinctIdentifiers(t *testing.T) {
	store := &mockStore{}
	svc := newTestIngestService(store, &mockPhotos{})

	a, err := svc.Ingest(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	b, err := svc.Ingest(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if a == b {
		t.Error("identical payloads must still mint distinct identifiers")
	}
}

func TestIngestInvalidCoordinate(t *testing.T) {
	store := &mockStore{}
	photos := &mockPhotos{}
	svc := newTestIngestService(store, photos)

	payload := testPayload()
	payload.Coordinate = domain.NewCoordinate(95, 0)

	_, err := svc.Ingest(context.Background(), payload)
	if err == nil {
		t.Fatal("Ingest should fail for an out-of-range coordinate")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error should wrap ErrInvalidInput, got %v", err)
	}
	if len(photos.blobs) != 0 {
		t.Error("no blob must be written for an invalid payload")
	}
	if store.insertCall {
		t.Error("no record must be inserted for an invalid payload")
	}
}

func TestIngestBlobFailure(t *testing.T) {
	store := &mockStore{}
	photos := &mockPhotos{putErr: domain.ErrBlobUnavailable}
	svc := newTestIngestService(store, photos)

	_, err := svc.Ingest(context.Background(), testPayload())
	if err == nil {
		t.Fatal("Ingest should fail when the blob write fails")
	}

	var be *domain.BlobError
	if !errors.As(err, &be) {
		t.Fatalf("error should be a BlobError, got %T", err)
	}
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("error should wrap ErrUnavailable, got %v", err)
	}
	if store.insertCall {
		t.Error("no record must be inserted when the blob write fails")
	}
}

func TestIngestStoreFailureAfterBlobWrite(t *testing.T) {
	store := &mockStore{insertErr: &domain.StoreError{Operation: "insert", Err: domain.ErrStoreUnavailable}}
	photos := &mockPhotos{}
	svc := newTestIngestService(store, photos)

	_, err := svc.Ingest(context.Background(), testPayload())
	if err == nil {
		t.Fatal("Ingest should fail when the record insert fails")
	}
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("error should wrap ErrUnavailable, got %v", err)
	}

	// The blob stays behind; there is no compensating delete
	if len(photos.blobs) != 1 {
		t.Errorf("len(blobs) = %d, want 1 (orphaned blob)", len(photos.blobs))
	}
}
