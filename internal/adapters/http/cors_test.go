package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jobrunner/potholemap/internal/config"
)

func TestExtractHost(t *testing.T) {
	tests := []struct {
		name     string
		origin   string
		expected string
	}{
		{"simple https URL", "https://example.com", "example.com"},
		{"https URL with port", "https://example.com:8080", "example.com"},
		{"http URL", "http://example.com", "example.com"},
		{"URL with path", "https://example.com/path/to/resource", "example.com"},
		{"URL with port and path", "https://example.com:443/path", "example.com"},
		{"subdomain", "https://sub.example.com", "sub.example.com"},
		{"localhost", "http://localhost:3000", "localhost"},
		{"IP address", "http://192.168.1.1:8080", "192.168.1.1"},
		{"bare host", "example.com", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractHost(tt.origin); got != tt.expected {
				t.Errorf("extractHost(%q) = %q, want %q", tt.origin, got, tt.expected)
			}
		})
	}
}

func TestMatchOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		pattern string
		want    bool
	}{
		{"exact match", "https://example.com", "https://example.com", true},
		{"exact mismatch", "https://evil.com", "https://example.com", false},
		{"wildcard subdomain", "https://sub.example.com", "*.example.com", true},
		{"wildcard deep subdomain", "https://deep.sub.example.com", "*.example.com", true},
		{"wildcard does not match apex", "https://example.com", "*.example.com", false},
		{"wildcard suffix confusion", "https://notexample.com", "*.example.com", false},
		{"wildcard with port", "https://sub.example.com:8443", "*.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchOrigin(tt.origin, tt.pattern); got != tt.want {
				t.Errorf("matchOrigin(%q, %q) = %v, want %v", tt.origin, tt.pattern, got, tt.want)
			}
		})
	}
}

func newCORSTestServer(origins []string) *Server {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		CORS:         config.CORSConfig{AllowedOrigins: origins},
	}

	return NewServer(cfg, &mockQuerier{}, &mockIngester{}, &mockHealth{healthy: true, ready: true}, logger, time.Second, "")
}

func TestCORSAllowedOrigin(t *testing.T) {
	srv := newCORSTestServer([]string{"https://map.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://map.example.com")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://map.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if rec.Header().Get("Vary") != "Origin" {
		t.Error("Vary: Origin header missing")
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	srv := newCORSTestServer([]string{"https://map.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
	// The request itself still succeeds; CORS is enforced by the browser
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newCORSTestServer([]string{"*.example.com"})

	nextCalled := false
	handler := srv.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/potholes", nil)
	req.Header.Set("Origin", "https://map.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if nextCalled {
		t.Error("preflight request must not reach the next handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}
