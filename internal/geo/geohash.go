// Package geo provides the geocode key encoding used for range-scan
// queries. Keys are geohashes: base32 strings in which spatial proximity
// tends to produce shared prefixes, so a lexicographic interval
// [Encode(southwest), Encode(northeast)] approximates bounding-box
// containment on a key-ordered store.
//
// Known limitation: a single-interval prefix scan misses some points
// near geohash cell boundaries and cannot express boxes crossing the
// antimeridian. Both are accepted; this is a best-effort approximation,
// not an exact spatial index.
package geo

import (
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/jobrunner/potholemap/internal/domain"
)

// Precision is the fixed key length. Twelve base32 characters resolve
// to centimeter scale, comfortably below street granularity, and keep
// keys of identical length so lexicographic comparison is well defined.
const Precision = 12

// Encode returns the geocode key for a coordinate. It is a pure
// function: identical inputs always produce identical keys.
func Encode(c domain.Coordinate) string {
	return geohash.EncodeWithPrecision(c.Lat, c.Lng, Precision)
}

// Compare orders two keys lexicographically, returning -1, 0 or 1.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Interval returns the closed key interval [low, high] covering a
// bounding box: low is the key of the southwest corner, high the key of
// the northeast corner. The box must already be validated.
func Interval(b domain.BoundingBox) (low, high string) {
	return Encode(b.SouthWest), Encode(b.NorthEast)
}
