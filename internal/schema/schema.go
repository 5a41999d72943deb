// Package schema implements the request/response translation pipeline:
// an explicit parse function per inbound payload and an explicit format
// function per outbound shape. Parsing performs both structural type
// checks and range checks; a payload with well-typed but out-of-range
// coordinates never reaches the store.
package schema

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/jobrunner/potholemap/internal/domain"
)

// Query parameter names for bounding-box queries.
const (
	ParamNELat = "nelat"
	ParamNELng = "nelng"
	ParamSWLat = "swlat"
	ParamSWLng = "swlng"
	ParamLimit = "limit"
)

// ParseQueryParams parses and validates bounding-box query parameters.
// All four corner parameters are required floats; limit is an optional
// integer >= 1. Returns FieldErrors listing every failing field.
func ParseQueryParams(values url.Values) (domain.QueryRequest, error) {
	var errs domain.FieldErrors

	nelat := parseFloatParam(values, ParamNELat, &errs)
	nelng := parseFloatParam(values, ParamNELng, &errs)
	swlat := parseFloatParam(values, ParamSWLat, &errs)
	swlng := parseFloatParam(values, ParamSWLng, &errs)

	limit := 0
	if raw := values.Get(ParamLimit); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, &domain.ValidationError{
				Field:      ParamLimit,
				Value:      raw,
				Constraint: "integer",
				Message:    "limit must be an integer",
			})
		} else if v < 1 {
			errs = append(errs, &domain.ValidationError{
				Field:      ParamLimit,
				Value:      v,
				Constraint: ">= 1",
				Message:    "limit must be at least 1",
			})
		} else {
			limit = v
		}
	}

	if len(errs) > 0 {
		return domain.QueryRequest{}, errs
	}

	req := domain.QueryRequest{
		Bounds: domain.BoundingBox{
			NorthEast: domain.NewCoordinate(nelat, nelng),
			SouthWest: domain.NewCoordinate(swlat, swlng),
		},
		Limit: limit,
	}

	rangeCheck(req.Bounds.NorthEast, ParamNELat, ParamNELng, &errs)
	rangeCheck(req.Bounds.SouthWest, ParamSWLat, ParamSWLng, &errs)
	if len(errs) > 0 {
		return domain.QueryRequest{}, errs
	}

	return req, nil
}

// parseFloatParam parses a required float parameter, recording a
// validation error when missing or malformed.
func parseFloatParam(values url.Values, name string, errs *domain.FieldErrors) float64 {
	raw := values.Get(name)
	if raw == "" {
		*errs = append(*errs, &domain.ValidationError{
			Field:      name,
			Value:      nil,
			Constraint: "required",
			Message:    "parameter is required",
		})
		return 0
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, &domain.ValidationError{
			Field:      name,
			Value:      raw,
			Constraint: "number",
			Message:    "parameter must be a number",
		})
		return 0
	}
	return v
}

// rangeCheck validates coordinate ranges, attributing failures to the
// given parameter names.
func rangeCheck(c domain.Coordinate, latField, lngField string, errs *domain.FieldErrors) {
	if c.Lat < -90 || c.Lat > 90 {
		*errs = append(*errs, &domain.ValidationError{
			Field:      latField,
			Value:      c.Lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		})
	}
	if c.Lng < -180 || c.Lng > 180 {
		*errs = append(*errs, &domain.ValidationError{
			Field:      lngField,
			Value:      c.Lng,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		})
	}
}

// ingestPayload is the wire shape of an ingestion event.
type ingestPayload struct {
	DeviceName  *string   `json:"device_name"`
	Timestamp   *string   `json:"timestamp"`
	Confidence  *float64  `json:"confidence"`
	Coordinates []float64 `json:"coordinates"`
	PhotoData   *string   `json:"photo_data"`
}

// ParseIngestPayload parses and validates a JSON ingestion payload.
// The photo blob is base64-decoded here; downstream components only see
// raw bytes.
func ParseIngestPayload(raw []byte) (domain.IngestPayload, error) {
	var p ingestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.IngestPayload{}, &domain.ValidationError{
			Field:      "body",
			Value:      nil,
			Constraint: "json",
			Message:    "payload must be a JSON object",
		}
	}

	var errs domain.FieldErrors

	if p.DeviceName == nil || *p.DeviceName == "" {
		errs = append(errs, &domain.ValidationError{
			Field:      "device_name",
			Value:      p.DeviceName,
			Constraint: "non-empty string",
			Message:    "device_name is required",
		})
	}

	var observed time.Time
	if p.Timestamp == nil {
		errs = append(errs, &domain.ValidationError{
			Field:      "timestamp",
			Value:      nil,
			Constraint: "required",
			Message:    "timestamp is required",
		})
	} else {
		t, err := time.Parse(time.RFC3339, *p.Timestamp)
		if err != nil {
			errs = append(errs, &domain.ValidationError{
				Field:      "timestamp",
				Value:      *p.Timestamp,
				Constraint: "ISO-8601",
				Message:    "timestamp must be an ISO-8601 datetime",
			})
		} else {
			observed = t.UTC()
		}
	}

	if p.Confidence == nil {
		errs = append(errs, &domain.ValidationError{
			Field:      "confidence",
			Value:      nil,
			Constraint: "required",
			Message:    "confidence is required",
		})
	}

	var coord domain.Coordinate
	if len(p.Coordinates) != 2 {
		errs = append(errs, &domain.ValidationError{
			Field:      "coordinates",
			Value:      p.Coordinates,
			Constraint: "2 floats",
			Message:    "coordinates must be a [latitude, longitude] pair",
		})
	} else {
		coord = domain.NewCoordinate(p.Coordinates[0], p.Coordinates[1])
		if err := coord.Validate(); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, ve)
			}
		}
	}

	var photo []byte
	if p.PhotoData == nil || *p.PhotoData == "" {
		errs = append(errs, &domain.ValidationError{
			Field:      "photo_data",
			Value:      nil,
			Constraint: "required",
			Message:    "photo_data is required",
		})
	} else {
		decoded, err := base64.StdEncoding.DecodeString(*p.PhotoData)
		if err != nil {
			errs = append(errs, &domain.ValidationError{
				Field:      "photo_data",
				Value:      nil,
				Constraint: "base64",
				Message:    "photo_data must be base64-encoded",
			})
		} else {
			photo = decoded
		}
	}

	if len(errs) > 0 {
		return domain.IngestPayload{}, errs
	}

	return domain.IngestPayload{
		DeviceName: *p.DeviceName,
		ObservedAt: observed,
		Confidence: *p.Confidence,
		Coordinate: coord,
		PhotoData:  photo,
	}, nil
}

// FormatPothole converts a result view to its wire shape.
func FormatPothole(v domain.PotholeView) map[string]interface{} {
	return map[string]interface{}{
		"id":          v.ID,
		"device_name": v.DeviceName,
		"timestamp":   v.ObservedAt.UTC().Format(time.RFC3339),
		"confidence":  v.Confidence,
		"coordinates": []float64{v.Coordinate.Lat, v.Coordinate.Lng},
		"photo_url":   v.PhotoURL,
	}
}

// FormatQueryResult converts a query result to its wire shape.
func FormatQueryResult(r *domain.QueryResult) map[string]interface{} {
	potholes := make([]map[string]interface{}, len(r.Potholes))
	for i, v := range r.Potholes {
		potholes[i] = FormatPothole(v)
	}
	return map[string]interface{}{
		"potholes":  potholes,
		"truncated": r.Truncated,
	}
}
