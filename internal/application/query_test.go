package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jobrunner/potholemap/internal/domain"
	"github.com/jobrunner/potholemap/internal/geo"
	"github.com/jobrunner/potholemap/internal/ports/output"
)

func testBox() domain.BoundingBox {
	return domain.BoundingBox{
		NorthEast: domain.NewCoordinate(51.52, -0.10),
		SouthWest: domain.NewCoordinate(51.49, -0.15),
	}
}

// testRecords builds n records whose coordinates lie inside testBox.
func testRecords(n int) []domain.Pothole {
	records := make([]domain.Pothole, n)
	for i := range records {
		c := domain.NewCoordinate(51.50, -0.12)
		records[i] = domain.Pothole{
			ID:         fmt.Sprintf("rec-%d", i),
			DeviceName: "dashcam-7",
			ObservedAt: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
			Confidence: 0.9,
			Coordinate: c,
			Geohash:    geo.Encode(c),
			PhotoKey:   fmt.Sprintf("potholes/rec-%d", i),
		}
	}
	return records
}

func newTestQueryService(store *mockStore, photos *mockPhotos, cache output.URLCache) *QueryService {
	return NewQueryService(
		store,
		photos,
		cache,
		&output.NoOpMetrics{},
		testLogger(),
		QueryServiceConfig{
			DefaultLimit: 10,
			MaxLimit:     50,
			URLTTL:       15 * time.Minute,
		},
	)
}

func TestQueryServiceDefaultConfig(t *testing.T) {
	svc := NewQueryService(
		&mockStore{},
		&mockPhotos{},
		nil,
		&output.NoOpMetrics{},
		testLogger(),
		QueryServiceConfig{}, // Empty config
	)

	if svc.defaultLimit != 100 {
		t.Errorf("defaultLimit = %d, want 100", svc.defaultLimit)
	}
	if svc.maxLimit != 500 {
		t.Errorf("maxLimit = %d, want 500", svc.maxLimit)
	}
	if svc.urlTTL != 15*time.Minute {
		t.Errorf("urlTTL = %v, want 15m", svc.urlTTL)
	}
}

func TestQueryMalformedBoundsSkipsStore(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	// Corners swapped
	req := domain.QueryRequest{
		Bounds: domain.BoundingBox{
			NorthEast: domain.NewCoordinate(51.49, -0.15),
			SouthWest: domain.NewCoordinate(51.52, -0.10),
		},
	}

	_, err := svc.Query(context.Background(), req)
	if err == nil {
		t.Fatal("Query should fail with malformed bounds")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("error should wrap ErrInvalidInput, got %v", err)
	}
	if store.scanCalls != 0 {
		t.Error("store must not be scanned for malformed bounds")
	}
}

func TestQueryNotTruncated(t *testing.T) {
	store := &mockStore{records: testRecords(3)}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox(), Limit: 5})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(result.Potholes) != 3 {
		t.Errorf("len(Potholes) = %d, want 3", len(result.Potholes))
	}
	if result.Truncated {
		t.Error("Truncated = true, want false")
	}
	// Scan asks for one extra row to detect truncation
	if store.lastLimit != 6 {
		t.Errorf("scan limit = %d, want 6", store.lastLimit)
	}
}

func TestQueryTruncated(t *testing.T) {
	store := &mockStore{records: testRecords(6)}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox(), Limit: 5})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(result.Potholes) != 5 {
		t.Errorf("len(Potholes) = %d, want 5", len(result.Potholes))
	}
	if !result.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestQueryExactlyLimitNotTruncated(t *testing.T) {
	store := &mockStore{records: testRecords(5)}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox(), Limit: 5})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(result.Potholes) != 5 {
		t.Errorf("len(Potholes) = %d, want 5", len(result.Potholes))
	}
	if result.Truncated {
		t.Error("exactly limit matches must not be reported as truncated")
	}
}

func TestQueryLimitDefaulting(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	if _, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if store.lastLimit != 11 { // default 10, plus one
		t.Errorf("scan limit = %d, want 11", store.lastLimit)
	}
}

func TestQueryLimitClamped(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	if _, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox(), Limit: 9999}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if store.lastLimit != 51 { // clamped to max 50, plus one
		t.Errorf("scan limit = %d, want 51", store.lastLimit)
	}
}

func TestQueryIntervalFromCorners(t *testing.T) {
	store := &mockStore{}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	box := testBox()
	if _, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: box}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	wantLow, wantHigh := geo.Interval(box)
	if store.lastLow != wantLow || store.lastHigh != wantHigh {
		t.Errorf("scan interval = [%q, %q], want [%q, %q]",
			store.lastLow, store.lastHigh, wantLow, wantHigh)
	}
}

func TestQueryStoreError(t *testing.T) {
	store := &mockStore{scanErr: &domain.StoreError{Operation: "scan", Err: domain.ErrStoreUnavailable}}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	_, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err == nil {
		t.Fatal("Query should propagate store errors")
	}
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("error should wrap ErrUnavailable, got %v", err)
	}
}

func TestQueryPreservesStoreOrder(t *testing.T) {
	store := &mockStore{records: testRecords(4)}
	svc := newTestQueryService(store, &mockPhotos{}, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	for i, v := range result.Potholes {
		if v.ID != fmt.Sprintf("rec-%d", i) {
			t.Fatalf("Potholes[%d].ID = %q, enrichment must not reorder", i, v.ID)
		}
	}
}

func TestQueryResolvesPhotoURLs(t *testing.T) {
	store := &mockStore{records: testRecords(2)}
	photos := &mockPhotos{}
	svc := newTestQueryService(store, photos, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	for i, v := range result.Potholes {
		want := "https://photos.test/potholes/rec-" + fmt.Sprint(i)
		if v.PhotoURL != want {
			t.Errorf("Potholes[%d].PhotoURL = %q, want %q", i, v.PhotoURL, want)
		}
	}
}

func TestQueryPhotoURLFailureYieldsEmptyURL(t *testing.T) {
	store := &mockStore{records: testRecords(2)}
	photos := &mockPhotos{urlErr: errors.New("signing failed")}
	svc := newTestQueryService(store, photos, nil)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err != nil {
		t.Fatalf("URL failures must not fail the query: %v", err)
	}

	if len(result.Potholes) != 2 {
		t.Fatalf("len(Potholes) = %d, want 2", len(result.Potholes))
	}
	for i, v := range result.Potholes {
		if v.PhotoURL != "" {
			t.Errorf("Potholes[%d].PhotoURL = %q, want empty", i, v.PhotoURL)
		}
	}
}

func TestQueryURLCacheHit(t *testing.T) {
	store := &mockStore{records: testRecords(1)}
	photos := &mockPhotos{}
	cache := &mockURLCache{entries: map[string]string{
		"potholes/rec-0": "https://cached.test/rec-0",
	}}
	svc := newTestQueryService(store, photos, cache)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if result.Potholes[0].PhotoURL != "https://cached.test/rec-0" {
		t.Errorf("PhotoURL = %q, want cached URL", result.Potholes[0].PhotoURL)
	}
	if photos.urlCalls != 0 {
		t.Error("cache hit must not mint a new URL")
	}
}

func TestQueryURLCacheMissPopulatesCache(t *testing.T) {
	store := &mockStore{records: testRecords(1)}
	photos := &mockPhotos{}
	cache := &mockURLCache{}
	svc := newTestQueryService(store, photos, cache)

	if _, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if photos.urlCalls != 1 {
		t.Errorf("urlCalls = %d, want 1", photos.urlCalls)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
	if got := cache.entries["potholes/rec-0"]; got != "https://photos.test/potholes/rec-0" {
		t.Errorf("cached URL = %q", got)
	}
}

func TestQueryCacheErrorFallsThrough(t *testing.T) {
	store := &mockStore{records: testRecords(1)}
	photos := &mockPhotos{}
	cache := &mockURLCache{getErr: errors.New("redis down")}
	svc := newTestQueryService(store, photos, cache)

	result, err := svc.Query(context.Background(), domain.QueryRequest{Bounds: testBox()})
	if err != nil {
		t.Fatalf("cache failures must not fail the query: %v", err)
	}
	if result.Potholes[0].PhotoURL != "https://photos.test/potholes/rec-0" {
		t.Errorf("PhotoURL = %q, want freshly minted URL", result.Potholes[0].PhotoURL)
	}
}
