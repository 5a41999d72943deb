package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore implements PhotoStore on the local filesystem, for
// development and tests. URLs point at the HTTP server's photo route
// and are not actually time-limited; the ttl parameter is ignored.
type LocalStore struct {
	basePath string
	baseURL  string
}

// NewLocalStore creates a new local photo store.
func NewLocalStore(basePath, baseURL string) *LocalStore {
	return &LocalStore{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// Put stores the photo bytes under the given key.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) error {
	dest := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0640)
}

// DisplayURL returns the served URL for the given key.
func (s *LocalStore) DisplayURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return s.baseURL + "/" + key, nil
}

// BasePath returns the directory photos are stored under.
func (s *LocalStore) BasePath() string {
	return s.basePath
}
