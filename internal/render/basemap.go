package render

import (
	"safemap/internal/debug"
	"safemap/internal/geo"

	"github.com/mattn/go-runewidth"
)

// BasemapRenderer draws the static reference map under the overlays
type BasemapRenderer struct {
	projection *geo.Projection
	features   geo.Basemap
}

// NewBasemapRenderer creates a new basemap renderer
func NewBasemapRenderer(projection *geo.Projection, features geo.Basemap) *BasemapRenderer {
	return &BasemapRenderer{
		projection: projection,
		features:   features,
	}
}

// Render draws all basemap features to the canvas
func (m *BasemapRenderer) Render(canvas *Canvas) {
	bounds := m.projection.Bounds()

	// Lines first so place labels stay readable
	m.renderLines(canvas, geo.FeatureCoastline, bounds)
	m.renderLines(canvas, geo.FeatureBoundary, bounds)
	m.renderLines(canvas, geo.FeatureRoad, bounds)
	m.renderPlaces(canvas, bounds)
}

func (m *BasemapRenderer) renderLines(canvas *Canvas, ftype geo.FeatureType, bounds *geo.Bounds) {
	features, exists := m.features[ftype]
	if !exists {
		return
	}

	style := GetStyleForFeature(ftype)
	char := GetCharForFeature(ftype)

	for _, feature := range geo.FilterByBounds(features, bounds) {
		if !feature.IsLine() {
			continue
		}
		for i := 0; i < len(feature.Points)-1; i++ {
			p1 := m.projection.Project(feature.Points[i])
			p2 := m.projection.Project(feature.Points[i+1])
			canvas.DrawLine(p1.X, p1.Y, p2.X, p2.Y, char, style)
		}
	}
}

// renderPlaces draws place markers and skips labels that would collide with one already drawn
func (m *BasemapRenderer) renderPlaces(canvas *Canvas, bounds *geo.Bounds) {
	places, exists := m.features[geo.FeaturePlace]
	if !exists {
		return
	}

	visible := geo.FilterByBounds(places, bounds)
	if debug.Enabled() {
		debug.Log("Rendering %d places (of %d total)", len(visible), len(places))
	}

	type span struct{ y, x0, x1 int }
	var taken []span

	for _, place := range visible {
		if place.Point == nil {
			continue
		}

		point := m.projection.Project(*place.Point)
		canvas.Set(point.X, point.Y, '●', StylePlace)

		if place.Name == "" {
			continue
		}
		width := runewidth.StringWidth(place.Name)
		if point.X+1+width >= canvas.Width() {
			continue
		}

		label := span{y: point.Y, x0: point.X - 1, x1: point.X + width + 1}
		overlaps := false
		for _, s := range taken {
			if s.y == label.y && label.x0 <= s.x1 && s.x0 <= label.x1 {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}

		taken = append(taken, label)
		canvas.DrawText(point.X+1, point.Y, place.Name, StyleLabel)
	}
}

// UpdateProjection updates the renderer's projection
func (m *BasemapRenderer) UpdateProjection(projection *geo.Projection) {
	m.projection = projection
}
