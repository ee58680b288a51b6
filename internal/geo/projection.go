package geo

import (
	"math"
)

const kmPerDegreeLat = 111.32

// ScreenPoint represents a terminal cell coordinate
type ScreenPoint struct {
	X int
	Y int
}

// Projection converts between geographic coordinates and terminal cells
type Projection struct {
	center       LatLon
	radiusKm     float64
	screenWidth  int
	screenHeight int
	aspectRatio  float64
	scaleX       float64
	scaleY       float64
}

// NewProjection creates an equirectangular projection that fits a circle of radiusKm
// around center into the screen. aspectRatio compensates for cells being taller than
// they are wide (typically 2.0).
func NewProjection(center LatLon, radiusKm float64, screenWidth, screenHeight int, aspectRatio float64) *Projection {
	p := &Projection{
		center:       center,
		radiusKm:     radiusKm,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		aspectRatio:  aspectRatio,
	}

	p.calculateScale()
	return p
}

// calculateScale computes the cells-per-degree scaling factors
func (p *Projection) calculateScale() {
	kmPerDegreeLon := kmPerDegreeLat * math.Cos(p.center.Lat*math.Pi/180.0)
	if kmPerDegreeLon < 0.01 {
		kmPerDegreeLon = 0.01
	}

	totalDegreesLat := 2 * p.radiusKm / kmPerDegreeLat
	totalDegreesLon := 2 * p.radiusKm / kmPerDegreeLon

	effectiveHeight := float64(p.screenHeight) * p.aspectRatio
	scaleY := effectiveHeight / totalDegreesLat
	scaleX := float64(p.screenWidth) / totalDegreesLon

	if scaleX < scaleY {
		p.scaleX = scaleX
		p.scaleY = scaleX / p.aspectRatio
	} else {
		p.scaleX = scaleY * p.aspectRatio
		p.scaleY = scaleY
	}
}

// Project converts a coordinate to screen cells with (0, 0) at top-left
func (p *Projection) Project(pt LatLon) ScreenPoint {
	deltaLat := pt.Lat - p.center.Lat
	deltaLon := pt.Lon - p.center.Lon

	// Screen Y grows downward
	x := int(math.Round(deltaLon * p.scaleX))
	y := int(math.Round(-deltaLat * p.scaleY))

	return ScreenPoint{X: x + p.screenWidth/2, Y: y + p.screenHeight/2}
}

// Unproject converts a screen cell back to a coordinate
func (p *Projection) Unproject(x, y int) LatLon {
	x -= p.screenWidth / 2
	y -= p.screenHeight / 2

	return LatLon{
		Lat: p.center.Lat - float64(y)/p.scaleY,
		Lon: p.center.Lon + float64(x)/p.scaleX,
	}
}

// IsInBounds checks if a coordinate would be visible on screen
func (p *Projection) IsInBounds(pt LatLon) bool {
	sp := p.Project(pt)
	return sp.X >= 0 && sp.X < p.screenWidth &&
		sp.Y >= 0 && sp.Y < p.screenHeight
}

// SetCenter recalculates the projection around a new center point
func (p *Projection) SetCenter(center LatLon) {
	p.center = center
	p.calculateScale()
}

// SetRadius recalculates the projection for a new visible radius
func (p *Projection) SetRadius(radiusKm float64) {
	p.radiusKm = radiusKm
	p.calculateScale()
}

// Pan moves the center by a number of cells
func (p *Projection) Pan(dx, dy int) {
	p.SetCenter(p.Unproject(p.screenWidth/2+dx, p.screenHeight/2+dy))
}

// UpdateDimensions updates the screen dimensions and recalculates scaling
func (p *Projection) UpdateDimensions(width, height int) {
	p.screenWidth = width
	p.screenHeight = height
	p.calculateScale()
}

// Center returns the current center point
func (p *Projection) Center() LatLon {
	return p.center
}

// Radius returns the visible radius in kilometers
func (p *Projection) Radius() float64 {
	return p.radiusKm
}

// Bounds returns the geographic bounds visible on screen
func (p *Projection) Bounds() *Bounds {
	topLeft := p.Unproject(0, 0)
	bottomRight := p.Unproject(p.screenWidth-1, p.screenHeight-1)

	return &Bounds{
		MinLat: math.Min(topLeft.Lat, bottomRight.Lat),
		MaxLat: math.Max(topLeft.Lat, bottomRight.Lat),
		MinLon: math.Min(topLeft.Lon, bottomRight.Lon),
		MaxLon: math.Max(topLeft.Lon, bottomRight.Lon),
	}
}
