// Package domain contains the core business entities and value objects.
package domain

import (
	"fmt"
	"time"
)

// Coordinate represents a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lng float64
}

// NewCoordinate creates a coordinate from latitude and longitude.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Lat: lat, Lng: lng}
}

// Validate checks the coordinate against WGS84 bounds.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      c.Lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		}
	}
	if c.Lng < -180 || c.Lng > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      c.Lng,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		}
	}
	return nil
}

// String returns a string representation of the coordinate.
func (c Coordinate) String() string {
	return fmt.Sprintf("(%f, %f)", c.Lat, c.Lng)
}

// BoundingBox is an axis-aligned lat/lng rectangle defined by its
// northeast and southwest corners. Boxes crossing the antimeridian
// are not supported.
type BoundingBox struct {
	NorthEast Coordinate
	SouthWest Coordinate
}

// Validate checks corner ranges and corner ordering. A box whose
// northeast corner lies below or left of its southwest corner is
// malformed.
func (b BoundingBox) Validate() error {
	if err := b.NorthEast.Validate(); err != nil {
		return err
	}
	if err := b.SouthWest.Validate(); err != nil {
		return err
	}
	if b.NorthEast.Lat < b.SouthWest.Lat || b.NorthEast.Lng < b.SouthWest.Lng {
		return &ValidationError{
			Field:      "bounds",
			Value:      b.String(),
			Constraint: "northeast >= southwest",
			Message:    "northeast corner must not be below or left of southwest corner",
		}
	}
	return nil
}

// Contains checks if a coordinate lies within the box.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.SouthWest.Lat && c.Lat <= b.NorthEast.Lat &&
		c.Lng >= b.SouthWest.Lng && c.Lng <= b.NorthEast.Lng
}

// String returns a string representation of the box.
func (b BoundingBox) String() string {
	return fmt.Sprintf("ne=%s sw=%s", b.NorthEast, b.SouthWest)
}

// Pothole is a single geotagged report. Records are created once by
// ingestion and are immutable thereafter. The geohash is always derived
// from the coordinates at write time, never supplied by a caller.
type Pothole struct {
	ID         string    // Server-generated identifier
	DeviceName string    // Free-form device label
	ObservedAt time.Time // Caller-supplied observation time, UTC
	RecordedAt time.Time // Server-side insert time, UTC
	Confidence float64   // Detection confidence, expected in [0, 1]
	Coordinate Coordinate
	Geohash    string // Derived sortable geocode key
	PhotoKey   string // Opaque blob key, resolved to a URL at query time
}

// PotholeView is a query-result projection of a Pothole with the photo
// key resolved to a time-limited access URL.
type PotholeView struct {
	ID         string
	DeviceName string
	ObservedAt time.Time
	Confidence float64
	Coordinate Coordinate
	PhotoURL   string
}

// IngestPayload is a validated, typed ingestion request.
type IngestPayload struct {
	DeviceName string
	ObservedAt time.Time
	Confidence float64
	Coordinate Coordinate
	PhotoData  []byte // Decoded photo bytes
}

// QueryRequest is a validated bounding-box query.
type QueryRequest struct {
	Bounds BoundingBox
	Limit  int // 0 means "use the configured default"
}

// QueryResult is an ordered sequence of views plus the truncation flag.
// Truncated is true when the store held more matching records than the
// effective limit.
type QueryResult struct {
	Potholes  []PotholeView
	Truncated bool
}
