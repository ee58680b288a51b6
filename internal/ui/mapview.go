package ui

import (
	"github.com/gdamore/tcell/v2"

	"safemap/internal/controller"
	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/render"
)

const (
	minRadiusKm = 0.5
	maxRadiusKm = 200.0
)

// MapView displays the basemap, the overlay scene and a crosshair cursor
type MapView struct {
	scene       *render.Scene
	projection  *geo.Projection
	canvas      *render.Canvas
	width       int
	height      int
	radiusKm    float64
	aspectRatio float64
	cursorX     int
	cursorY     int
}

// NewMapView creates a new map view centred on center
func NewMapView(width, height int, scene *render.Scene, center geo.LatLon, radiusKm, aspectRatio float64) *MapView {
	return &MapView{
		scene:       scene,
		projection:  geo.NewProjection(center, radiusKm, width, height, aspectRatio),
		canvas:      render.NewCanvas(width, height),
		width:       width,
		height:      height,
		radiusKm:    radiusKm,
		aspectRatio: aspectRatio,
		cursorX:     width / 2,
		cursorY:     height / 2,
	}
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen) {
	m.canvas.Clear()
	m.scene.Render(m.canvas, m.projection)

	// Crosshair inverts whatever is under it
	cell := m.canvas.Get(m.cursorX, m.cursorY)
	char := cell.Char
	if char == ' ' {
		char = '+'
		cell.Style = render.StyleCrosshair
	}
	m.canvas.Set(m.cursorX, m.cursorY, char, cell.Style.Reverse(true))

	m.canvas.Blit(screen, 0, 0)
}

// CenterOn moves the map and the cursor to p
func (m *MapView) CenterOn(p geo.LatLon) {
	m.projection.SetCenter(p)
	m.cursorX, m.cursorY = m.width/2, m.height/2
	debug.Log("Map centered at %s", p)
}

// Pan shifts the map by a number of cells
func (m *MapView) Pan(dx, dy int) {
	m.projection.Pan(dx, dy)
}

// MoveCursor moves the crosshair, keeping it on screen
func (m *MapView) MoveCursor(dx, dy int) {
	m.SetCursor(m.cursorX+dx, m.cursorY+dy)
}

// SetCursor places the crosshair at a cell
func (m *MapView) SetCursor(x, y int) {
	m.cursorX = clamp(x, 0, m.width-1)
	m.cursorY = clamp(y, 0, m.height-1)
}

// Cursor returns the coordinate under the crosshair
func (m *MapView) Cursor() geo.LatLon {
	return m.projection.Unproject(m.cursorX, m.cursorY)
}

// LatLonAt returns the coordinate under a screen cell
func (m *MapView) LatLonAt(x, y int) geo.LatLon {
	return m.projection.Unproject(x, y)
}

// EndpointAt returns the route endpoint drawn at or next to a cell
func (m *MapView) EndpointAt(x, y int, route *controller.RouteSession) (controller.Endpoint, bool) {
	near := func(p *geo.LatLon) bool {
		if p == nil {
			return false
		}
		sp := m.projection.Project(*p)
		return abs(sp.X-x) <= 1 && abs(sp.Y-y) <= 1
	}

	// End is drawn above start, so it wins when they overlap
	if near(route.End()) {
		return controller.EndpointEnd, true
	}
	if near(route.Start()) {
		return controller.EndpointStart, true
	}
	return 0, false
}

// ZoomIn decreases the radius (zooms in)
func (m *MapView) ZoomIn() {
	m.SetRadius(m.radiusKm * 0.75)
}

// ZoomOut increases the radius (zooms out)
func (m *MapView) ZoomOut() {
	m.SetRadius(m.radiusKm * 1.33)
}

// SetRadius updates the map radius and recalculates the projection
func (m *MapView) SetRadius(radiusKm float64) {
	if radiusKm < minRadiusKm {
		radiusKm = minRadiusKm
	}
	if radiusKm > maxRadiusKm {
		radiusKm = maxRadiusKm
	}

	m.radiusKm = radiusKm
	m.projection.SetRadius(radiusKm)
	debug.Log("Map radius changed to %.1f km", radiusKm)
}

// Radius returns the current map radius
func (m *MapView) Radius() float64 {
	return m.radiusKm
}

// UpdateDimensions updates the view dimensions when the screen is resized
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.projection.UpdateDimensions(width, height)
	m.canvas = render.NewCanvas(width, height)
	m.SetCursor(m.cursorX, m.cursorY)
}

// Projection returns the current projection
func (m *MapView) Projection() *geo.Projection {
	return m.projection
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
