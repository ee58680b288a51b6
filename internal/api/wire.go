package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"safemap/internal/geo"
	"safemap/internal/models"
)

type hotspotsRequest struct {
	Areas      []string `json:"areas"`
	Crimes     []string `json:"crimes"`
	Severities []string `json:"severities"`
	NClusters  int      `json:"n_clusters"`
}

type hotspotsResponse struct {
	HeatData []heatRow `json:"heat_data"`
	Centers  []coord   `json:"centers"`
}

// heatRow accepts [lat, lon] and [lat, lon, weight] rows
type heatRow models.HeatPoint

func (h *heatRow) UnmarshalJSON(data []byte) error {
	var row []float64
	if err := json.Unmarshal(data, &row); err != nil {
		return fmt.Errorf("heat row: %w", err)
	}
	if len(row) < 2 {
		return fmt.Errorf("heat row: expected at least 2 values, got %d", len(row))
	}

	h.Lat, h.Lon, h.Weight = row[0], row[1], 1
	if len(row) > 2 {
		h.Weight = row[2]
	}
	return nil
}

// coord accepts [lat, lon] arrays and {"lat", "lng"|"lon"} objects
type coord geo.LatLon

func (c *coord) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
			Lon *float64 `json:"lon"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("coordinate: %w", err)
		}
		lon := obj.Lon
		if lon == nil {
			lon = obj.Lng
		}
		if obj.Lat == nil || lon == nil {
			return fmt.Errorf("coordinate: missing lat/lon in %s", trimmed)
		}
		c.Lat, c.Lon = *obj.Lat, *lon
		return nil
	}

	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	if len(pair) < 2 {
		return fmt.Errorf("coordinate: expected [lat, lon], got %d values", len(pair))
	}
	c.Lat, c.Lon = pair[0], pair[1]
	return nil
}

func (c coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lon})
}

type mapContextRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type mapContextResponse struct {
	Amenities []amenity `json:"amenities"`
}

type amenity struct {
	Type string  `json:"type"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type navigateRequest struct {
	Start coord `json:"start"`
	End   coord `json:"end"`
}

type navigateResponse struct {
	Safest []coord `json:"safest"`
}

type incidentsResponse struct {
	Incidents []incident `json:"incidents"`
}

type incident struct {
	ID          int64   `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp"`
}

type reportRequest struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// errorBody is the FastAPI error shape; detail is usually a string but validation
// errors carry a list
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (e errorBody) text() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO form pandas emits
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
