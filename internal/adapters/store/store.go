// Package store provides the record store adapters. Both adapters
// persist pothole records in a relational table keyed by id and indexed
// on the geohash column, and implement range scans as a lexicographic
// BETWEEN over that column. Result rows are ordered by random() so a
// capped scan does not systematically favor old or low-key records.
package store

import (
	"database/sql"
	"fmt"

	"github.com/jobrunner/potholemap/internal/domain"
)

// Config holds connection pool settings shared by both adapters.
type Config struct {
	MaxOpenConns int
	MaxIdleConns int
}

// applyPool applies bounded connection pool settings.
func applyPool(db *sql.DB, cfg Config) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
}

// collectRows scans all result rows into domain records.
func collectRows(rows *sql.Rows) ([]domain.Pothole, error) {
	defer func() { _ = rows.Close() }()

	var records []domain.Pothole
	for rows.Next() {
		var p domain.Pothole
		if err := rows.Scan(
			&p.ID,
			&p.DeviceName,
			&p.ObservedAt,
			&p.RecordedAt,
			&p.Confidence,
			&p.Coordinate.Lat,
			&p.Coordinate.Lng,
			&p.Geohash,
			&p.PhotoKey,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// unavailable wraps a driver error as a store-unavailable error.
func unavailable(operation string, err error) error {
	return &domain.StoreError{
		Operation: operation,
		Err:       fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err),
	}
}

// conflict wraps a duplicate-key error.
func conflict(operation string) error {
	return &domain.StoreError{
		Operation: operation,
		Err:       domain.ErrDuplicateRecord,
	}
}
