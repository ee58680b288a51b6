package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds represents a geographic bounding box
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// NewBounds creates a bounding box from a center point and radius
func NewBounds(center LatLon, radiusKm float64) *Bounds {
	latDegrees := radiusKm / kmPerDegreeLat
	lonDegrees := radiusKm / (kmPerDegreeLat * math.Cos(center.Lat*math.Pi/180.0))

	return &Bounds{
		MinLat: center.Lat - latDegrees,
		MaxLat: center.Lat + latDegrees,
		MinLon: center.Lon - lonDegrees,
		MaxLon: center.Lon + lonDegrees,
	}
}

// BoundsOf returns the smallest box containing every point, or nil for no points
func BoundsOf(points []LatLon) *Bounds {
	if len(points) == 0 {
		return nil
	}

	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.Lon, p.Lat}
	}
	b := mp.Bound()

	return &Bounds{
		MinLat: b.Min.Lat(),
		MaxLat: b.Max.Lat(),
		MinLon: b.Min.Lon(),
		MaxLon: b.Max.Lon(),
	}
}

// Contains checks if a point is within the bounds
func (b *Bounds) Contains(p LatLon) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the midpoint of the box
func (b *Bounds) Center() LatLon {
	return LatLon{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// SpanKm returns the half-diagonal of the box in kilometers
func (b *Bounds) SpanKm() float64 {
	return Distance(LatLon{Lat: b.MinLat, Lon: b.MinLon}, LatLon{Lat: b.MaxLat, Lon: b.MaxLon}) / 2000
}

// Centroid returns the arithmetic mean of the points, or fallback when there are none
func Centroid(points []LatLon, fallback LatLon) LatLon {
	if len(points) == 0 {
		return fallback
	}

	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}

	n := float64(len(points))
	return LatLon{Lat: lat / n, Lon: lon / n}
}

// FilterByBounds filters features to those with at least one point inside the bounds
func FilterByBounds(features []*Feature, bounds *Bounds) []*Feature {
	filtered := make([]*Feature, 0)

	for _, feature := range features {
		if feature.IsPoint() {
			if bounds.Contains(*feature.Point) {
				filtered = append(filtered, feature)
			}
			continue
		}

		for _, point := range feature.Points {
			if bounds.Contains(point) {
				filtered = append(filtered, feature)
				break
			}
		}
	}

	return filtered
}
