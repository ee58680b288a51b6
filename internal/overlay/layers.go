package overlay

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/geo"
)

// Marker is a single point on a marker layer
type Marker struct {
	Position geo.LatLon
	Label    string
}

// MarkerLayer draws a set of markers of one kind
type MarkerLayer struct {
	Kind    MarkerKind
	Markers []Marker
}

// NewMarkerLayer builds a marker layer from plain positions
func NewMarkerLayer(kind MarkerKind, positions ...geo.LatLon) *MarkerLayer {
	markers := make([]Marker, len(positions))
	for i, p := range positions {
		markers[i] = Marker{Position: p}
	}
	return &MarkerLayer{Kind: kind, Markers: markers}
}

// Draw renders each marker glyph with its label to the right
func (l *MarkerLayer) Draw(c Canvas, p Projector) {
	style := l.Kind.Style()
	for _, m := range l.Markers {
		sp := p.Project(m.Position)
		c.Set(sp.X, sp.Y, l.Kind.Glyph(), style)
		if m.Label != "" {
			c.DrawText(sp.X+2, sp.Y, m.Label, StyleMarkerLabel)
		}
	}
}

// PolylineLayer draws a connected path
type PolylineLayer struct {
	Points []geo.LatLon
	Char   rune
	Style  tcell.Style
}

// NewRouteLayer builds the safest-route polyline
func NewRouteLayer(points []geo.LatLon) *PolylineLayer {
	return &PolylineLayer{Points: points, Char: '•', Style: StyleRoute}
}

// Draw renders consecutive segments with Bresenham lines
func (l *PolylineLayer) Draw(c Canvas, p Projector) {
	for i := 0; i+1 < len(l.Points); i++ {
		a := p.Project(l.Points[i])
		b := p.Project(l.Points[i+1])
		c.DrawLine(a.X, a.Y, b.X, b.Y, l.Char, l.Style)
	}
}

// CircleLayer draws the outline of a ground circle
type CircleLayer struct {
	Center geo.LatLon
	Radius float64 // meters
	Style  tcell.Style
}

// Draw samples the circle outline; the projection takes care of the cell aspect ratio
func (l *CircleLayer) Draw(c Canvas, p Projector) {
	const samples = 48
	const metersPerDegree = 111320.0

	cosLat := math.Cos(l.Center.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}

	for i := 0; i < samples; i++ {
		theta := 2 * math.Pi * float64(i) / samples
		pt := geo.LatLon{
			Lat: l.Center.Lat + l.Radius*math.Cos(theta)/metersPerDegree,
			Lon: l.Center.Lon + l.Radius*math.Sin(theta)/(metersPerDegree*cosLat),
		}
		sp := p.Project(pt)
		c.Set(sp.X, sp.Y, '·', l.Style)
	}
}

// Group draws several layers as one attachment
type Group struct {
	Layers []Layer
}

// Draw renders members in order
func (g *Group) Draw(c Canvas, p Projector) {
	for _, l := range g.Layers {
		l.Draw(c, p)
	}
}

// NewUserPositionLayer builds the "you are here" marker with its accuracy circle.
// The circle is drawn at half the reported accuracy.
func NewUserPositionLayer(pos geo.LatLon, accuracy float64) *Group {
	return &Group{Layers: []Layer{
		&CircleLayer{Center: pos, Radius: accuracy / 2, Style: StyleAccuracy},
		&MarkerLayer{Kind: MarkerUser, Markers: []Marker{{Position: pos, Label: "You"}}},
	}}
}

// NewEndpointsLayer builds the start/end markers; either may be nil
func NewEndpointsLayer(start, end *geo.LatLon) Layer {
	g := &Group{}
	if start != nil {
		g.Layers = append(g.Layers, NewMarkerLayer(MarkerRouteStart, *start))
	}
	if end != nil {
		g.Layers = append(g.Layers, NewMarkerLayer(MarkerRouteEnd, *end))
	}
	if len(g.Layers) == 0 {
		return nil
	}
	return g
}

var (
	StyleRoute       = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	StyleAccuracy    = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	StyleMarkerLabel = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)
