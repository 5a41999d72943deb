package application

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jobrunner/potholemap/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockStore implements output.PotholeStore for testing.
type mockStore struct {
	records   []domain.Pothole
	inserted  []domain.Pothole
	insertErr error
	scanErr   error
	pingErr   error

	scanCalls  int
	lastLow    string
	lastHigh   string
	lastLimit  int
	insertCall bool
}

func (m *mockStore) Insert(_ context.Context, p domain.Pothole) error {
	m.insertCall = true
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, p)
	return nil
}

func (m *mockStore) ScanRange(_ context.Context, low, high string, limit int) ([]domain.Pothole, error) {
	m.scanCalls++
	m.lastLow = low
	m.lastHigh = high
	m.lastLimit = limit

	if m.scanErr != nil {
		return nil, m.scanErr
	}
	if limit < len(m.records) {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *mockStore) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockStore) Close() error {
	return nil
}

// mockPhotos implements output.PhotoStore for testing.
type mockPhotos struct {
	blobs   map[string][]byte
	putErr  error
	urlErr  error
	urlFunc func(key string) string

	urlCalls int
}

func (m *mockPhotos) Put(_ context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.blobs == nil {
		m.blobs = make(map[string][]byte)
	}
	m.blobs[key] = data
	return nil
}

func (m *mockPhotos) DisplayURL(_ context.Context, key string, _ time.Duration) (string, error) {
	m.urlCalls++
	if m.urlErr != nil {
		return "", m.urlErr
	}
	if m.urlFunc != nil {
		return m.urlFunc(key), nil
	}
	return "https://photos.test/" + key, nil
}

// mockURLCache implements output.URLCache for testing.
type mockURLCache struct {
	entries map[string]string
	getErr  error
	setErr  error

	sets int
}

func (m *mockURLCache) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.entries[key], nil
}

func (m *mockURLCache) Set(_ context.Context, key, url string, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if m.entries == nil {
		m.entries = make(map[string]string)
	}
	m.entries[key] = url
	return nil
}
