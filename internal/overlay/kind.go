package overlay

import (
	"github.com/gdamore/tcell/v2"

	"safemap/internal/geo"
)

// Kind identifies an overlay slot on the map. Kinds draw in declaration order, so
// later kinds render on top.
type Kind int

const (
	KindHeatmap Kind = iota
	KindHotspots
	KindPolice
	KindHospitals
	KindIncidents
	KindRoute
	KindEndpoints
	KindUserPosition
)

// Kinds lists every overlay kind in draw order
var Kinds = []Kind{
	KindHeatmap,
	KindHotspots,
	KindPolice,
	KindHospitals,
	KindIncidents,
	KindRoute,
	KindEndpoints,
	KindUserPosition,
}

// String returns a string representation of the overlay kind
func (k Kind) String() string {
	switch k {
	case KindHeatmap:
		return "Heatmap"
	case KindHotspots:
		return "Hotspots"
	case KindPolice:
		return "Police"
	case KindHospitals:
		return "Hospitals"
	case KindIncidents:
		return "User Reports"
	case KindRoute:
		return "Route"
	case KindEndpoints:
		return "Route Endpoints"
	case KindUserPosition:
		return "User Position"
	default:
		return "Unknown"
	}
}

// Canvas is the drawing capability handed to layers
type Canvas interface {
	Width() int
	Height() int
	Set(x, y int, char rune, style tcell.Style)
	DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style)
	DrawText(x, y int, text string, style tcell.Style)
}

// Projector maps coordinates onto canvas cells
type Projector interface {
	Project(p geo.LatLon) geo.ScreenPoint
}

// Layer is a concrete rendering object attached to the map surface
type Layer interface {
	Draw(c Canvas, p Projector)
}

// Surface is the shared map canvas layers are attached to
type Surface interface {
	AddLayer(kind Kind, layer Layer)
	RemoveLayer(layer Layer)
}
