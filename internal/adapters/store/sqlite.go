package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/jobrunner/potholemap/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pothole (
	id          TEXT PRIMARY KEY,
	device_name TEXT NOT NULL,
	observed_at DATETIME NOT NULL,
	recorded_at DATETIME NOT NULL,
	confidence  REAL NOT NULL,
	latitude    REAL NOT NULL,
	longitude   REAL NOT NULL,
	geohash     TEXT NOT NULL,
	photo_key   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS pothole_geohash_idx ON pothole (geohash);
`

// SQLiteStore implements the PotholeStore port on SQLite. Intended for
// development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database and ensures the schema
// exists.
func NewSQLiteStore(ctx context.Context, path string, cfg Config) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	applyPool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, unavailable("schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert persists a new record.
func (s *SQLiteStore) Insert(ctx context.Context, p domain.Pothole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pothole (
			id, device_name, observed_at, recorded_at,
			confidence, latitude, longitude, geohash, photo_key
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.DeviceName,
		p.ObservedAt,
		p.RecordedAt,
		p.Confidence,
		p.Coordinate.Lat,
		p.Coordinate.Lng,
		p.Geohash,
		p.PhotoKey,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return conflict("insert")
		}
		return unavailable("insert", err)
	}
	return nil
}

// ScanRange returns at most limit records with geohash in [low, high],
// in randomized order.
func (s *SQLiteStore) ScanRange(ctx context.Context, low, high string, limit int) ([]domain.Pothole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_name, observed_at, recorded_at,
		       confidence, latitude, longitude, geohash, photo_key
		FROM pothole
		WHERE geohash BETWEEN ? AND ?
		ORDER BY RANDOM()
		LIMIT ?`,
		low, high, limit,
	)
	if err != nil {
		return nil, unavailable("scan", err)
	}
	return collectRows(rows)
}

// Ping reports store reachability.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
