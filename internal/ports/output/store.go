// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"

	"github.com/jobrunner/potholemap/internal/domain"
)

// PotholeStore defines the secondary port for record persistence.
//
// The store is treated as an opaque key-ordered persistence engine:
// records carry a precomputed geocode key, and range scans operate on
// the lexicographic order of those keys.
type PotholeStore interface {
	// Insert persists a new record. Returns an error wrapping
	// domain.ErrConflict when the identifier already exists and one
	// wrapping domain.ErrUnavailable when the store cannot be reached.
	Insert(ctx context.Context, p domain.Pothole) error

	// ScanRange returns at most limit records whose geocode key lies
	// lexicographically in [low, high]. Ordering among returned records
	// is deliberately randomized so a capped result set does not
	// systematically favor old or low-key records.
	ScanRange(ctx context.Context, low, high string, limit int) ([]domain.Pothole, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
