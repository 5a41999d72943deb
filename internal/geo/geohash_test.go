package geo

import (
	"testing"

	"github.com/jobrunner/potholemap/internal/domain"
)

func TestEncodeDeterministic(t *testing.T) {
	c := domain.NewCoordinate(51.501364, -0.141890)

	first := Encode(c)
	for i := 0; i < 10; i++ {
		if got := Encode(c); got != first {
			t.Fatalf("Encode not deterministic: %q != %q", got, first)
		}
	}
}

func TestEncodePrecision(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Coordinate
	}{
		{"london", domain.NewCoordinate(51.501364, -0.141890)},
		{"sydney", domain.NewCoordinate(-33.856830, 151.215256)},
		{"null island", domain.NewCoordinate(0, 0)},
		{"north pole", domain.NewCoordinate(90, 0)},
		{"date line", domain.NewCoordinate(0, 180)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := Encode(tt.c)
			if len(key) != Precision {
				t.Errorf("len(Encode(%v)) = %d, want %d", tt.c, len(key), Precision)
			}
		})
	}
}

func TestEncodeKnownValue(t *testing.T) {
	// Buckingham Palace, a well-known reference geohash
	key := Encode(domain.NewCoordinate(51.501364, -0.141890))
	if key[:6] != "gcpuuz" {
		t.Errorf("Encode prefix = %q, want %q", key[:6], "gcpuuz")
	}
}

func TestEncodeProximityPrefix(t *testing.T) {
	// Two points meters apart should share a long common prefix
	a := Encode(domain.NewCoordinate(51.5013, -0.1418))
	b := Encode(domain.NewCoordinate(51.5014, -0.1419))

	common := 0
	for common < len(a) && common < len(b) && a[common] == b[common] {
		common++
	}
	if common < 6 {
		t.Errorf("common prefix length = %d, want >= 6 (a=%q b=%q)", common, a, b)
	}
}

func TestCompare(t *testing.T) {
	if Compare("abc", "abd") >= 0 {
		t.Error("Compare(abc, abd) should be negative")
	}
	if Compare("abc", "abc") != 0 {
		t.Error("Compare(abc, abc) should be zero")
	}
	if Compare("abd", "abc") <= 0 {
		t.Error("Compare(abd, abc) should be positive")
	}
}

func TestIntervalOrdering(t *testing.T) {
	box := domain.BoundingBox{
		NorthEast: domain.NewCoordinate(51.52, -0.10),
		SouthWest: domain.NewCoordinate(51.49, -0.15),
	}
	if err := box.Validate(); err != nil {
		t.Fatalf("box should be valid: %v", err)
	}

	low, high := Interval(box)
	if Compare(low, high) > 0 {
		t.Errorf("Interval low > high: %q > %q", low, high)
	}
	if len(low) != Precision || len(high) != Precision {
		t.Errorf("interval keys must have fixed length %d, got %d and %d",
			Precision, len(low), len(high))
	}
}

func TestIntervalCornersMatchEncode(t *testing.T) {
	box := domain.BoundingBox{
		NorthEast: domain.NewCoordinate(40.0, -73.0),
		SouthWest: domain.NewCoordinate(39.0, -74.0),
	}

	low, high := Interval(box)
	if low != Encode(box.SouthWest) {
		t.Errorf("low = %q, want Encode(SouthWest) = %q", low, Encode(box.SouthWest))
	}
	if high != Encode(box.NorthEast) {
		t.Errorf("high = %q, want Encode(NorthEast) = %q", high, Encode(box.NorthEast))
	}
}
