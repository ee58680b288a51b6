package geo

import "fmt"

// FeatureType represents the type of basemap feature
type FeatureType int

const (
	FeatureBoundary FeatureType = iota
	FeatureCoastline
	FeatureRoad
	FeaturePlace
)

// String returns a string representation of the feature type
func (f FeatureType) String() string {
	switch f {
	case FeatureBoundary:
		return "Boundary"
	case FeatureCoastline:
		return "Coastline"
	case FeatureRoad:
		return "Road"
	case FeaturePlace:
		return "Place"
	default:
		return "Unknown"
	}
}

// LatLon is a geographic coordinate in decimal degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within lat [-90,90] and lon [-180,180]
func (p LatLon) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// String formats the coordinate with hemisphere suffixes
func (p LatLon) String() string {
	lat, lon := p.Lat, p.Lon

	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	return fmt.Sprintf("%.4f%s, %.4f%s", lat, latDir, lon, lonDir)
}

// Feature is a basemap feature: a polyline (roads, borders) or a named point (places)
type Feature struct {
	Type   FeatureType
	Points []LatLon // Polyline points (empty for point features)
	Point  *LatLon  // Single point (places)
	Name   string
}

// NewLineFeature creates a new polyline feature
func NewLineFeature(ftype FeatureType, points []LatLon) *Feature {
	return &Feature{
		Type:   ftype,
		Points: points,
	}
}

// NewPointFeature creates a new named point feature
func NewPointFeature(ftype FeatureType, point LatLon, name string) *Feature {
	return &Feature{
		Type:  ftype,
		Point: &point,
		Name:  name,
	}
}

// IsPoint returns true if this is a point feature
func (f *Feature) IsPoint() bool {
	return f.Point != nil
}

// IsLine returns true if this is a polyline feature
func (f *Feature) IsLine() bool {
	return len(f.Points) > 1
}
