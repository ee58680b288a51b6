package models

import (
	"time"

	"safemap/internal/geo"
)

// Filters selects the subset of the uploaded dataset the backend analyses
type Filters struct {
	Areas      []string `json:"areas"`
	Crimes     []string `json:"crimes"`
	Severities []string `json:"severities"`
}

// HeatPoint is a heatmap sample with a relative weight
type HeatPoint struct {
	geo.LatLon
	Weight float64
}

// HotspotSet is the backend's clustering result for one filter set
type HotspotSet struct {
	HeatPoints []HeatPoint
	Centers    []geo.LatLon
}

// Positions returns the heat sample coordinates
func (h *HotspotSet) Positions() []geo.LatLon {
	if h == nil {
		return nil
	}
	pts := make([]geo.LatLon, len(h.HeatPoints))
	for i, hp := range h.HeatPoints {
		pts[i] = hp.LatLon
	}
	return pts
}

// AmenityType distinguishes the amenity markers
type AmenityType string

const (
	AmenityPolice   AmenityType = "police"
	AmenityHospital AmenityType = "hospital"
)

// Amenity is a police station or hospital near the analysed area
type Amenity struct {
	Type     AmenityType
	Name     string
	Location geo.LatLon
}

// FilterAmenities returns the amenities of one type
func FilterAmenities(amenities []Amenity, t AmenityType) []Amenity {
	out := make([]Amenity, 0, len(amenities))
	for _, a := range amenities {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Incident is a user-submitted report persisted by the backend
type Incident struct {
	ID          int64
	Category    Category
	Description string
	Location    geo.LatLon
	Timestamp   time.Time
}

// IncidentReport is the payload of a new incident submission
type IncidentReport struct {
	Location    geo.LatLon
	Category    Category
	Description string
}

// RouteResult is the risk-weighted path between two endpoints
type RouteResult struct {
	Safest []geo.LatLon
}

// Length returns the safest path length in meters
func (r *RouteResult) Length() float64 {
	if r == nil {
		return 0
	}
	return geo.PathLength(r.Safest)
}
