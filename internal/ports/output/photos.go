package output

import (
	"context"
	"time"
)

// PhotoStore defines the secondary port for photo blob storage.
//
// Blobs are content-addressed by an opaque key. Raw URLs are never
// stored; access URLs are minted on demand with a bounded lifetime.
type PhotoStore interface {
	// Put stores the photo bytes under the given key.
	Put(ctx context.Context, key string, data []byte) error

	// DisplayURL returns a time-limited access URL for the given key.
	DisplayURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PhotoBackend identifies the type of photo storage backend.
type PhotoBackend string

const (
	PhotoBackendS3    PhotoBackend = "s3"
	PhotoBackendAzure PhotoBackend = "azure"
	PhotoBackendLocal PhotoBackend = "local"
)

// URLCache defines an optional cache for minted photo URLs, keyed by
// blob key. Entries expire before the URL itself does.
type URLCache interface {
	// Get returns the cached URL for key, or "" on a miss.
	Get(ctx context.Context, key string) (string, error)

	// Set caches a URL for key with the given lifetime.
	Set(ctx context.Context, key, url string, ttl time.Duration) error
}
