package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/jobrunner/potholemap/internal/domain"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

const pgSchema = `
CREATE TABLE IF NOT EXISTS pothole (
	id          TEXT PRIMARY KEY,
	device_name TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	latitude    DOUBLE PRECISION NOT NULL,
	longitude   DOUBLE PRECISION NOT NULL,
	geohash     TEXT NOT NULL,
	photo_key   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS pothole_geohash_idx ON pothole (geohash);
`

// PostgresStore implements the PotholeStore port on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a PostgreSQL connection pool and ensures the
// schema exists.
func NewPostgresStore(ctx context.Context, dsn string, cfg Config) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	applyPool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping", err)
	}

	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		_ = db.Close()
		return nil, unavailable("schema", err)
	}

	return &PostgresStore{db: db}, nil
}

// Insert persists a new record.
func (s *PostgresStore) Insert(ctx context.Context, p domain.Pothole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pothole (
			id, device_name, observed_at, recorded_at,
			confidence, latitude, longitude, geohash, photo_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
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
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return conflict("insert")
		}
		return unavailable("insert", err)
	}
	return nil
}

// ScanRange returns at most limit records with geohash in [low, high],
// in randomized order.
func (s *PostgresStore) ScanRange(ctx context.Context, low, high string, limit int) ([]domain.Pothole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, device_name, observed_at, recorded_at,
		       confidence, latitude, longitude, geohash, photo_key
		FROM pothole
		WHERE geohash BETWEEN $1 AND $2
		ORDER BY random()
		LIMIT $3`,
		low, high, limit,
	)
	if err != nil {
		return nil, unavailable("scan", err)
	}
	return collectRows(rows)
}

// Ping reports store reachability.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
