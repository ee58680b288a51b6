package overlay

import (
	"math/rand"
	"testing"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/geo"
	"safemap/internal/models"
)

// fakeSurface records attachments and fails the test on double attach or stray removal
type fakeSurface struct {
	t        *testing.T
	attached map[Layer]Kind
	adds     int
	removes  int
}

func newFakeSurface(t *testing.T) *fakeSurface {
	return &fakeSurface{t: t, attached: make(map[Layer]Kind)}
}

func (s *fakeSurface) AddLayer(kind Kind, layer Layer) {
	if _, ok := s.attached[layer]; ok {
		s.t.Errorf("Layer of kind %s attached twice", kind)
	}
	s.attached[layer] = kind
	s.adds++
}

func (s *fakeSurface) RemoveLayer(layer Layer) {
	if _, ok := s.attached[layer]; !ok {
		s.t.Error("Removed a layer that was not attached")
	}
	delete(s.attached, layer)
	s.removes++
}

func (s *fakeSurface) countKind(kind Kind) int {
	n := 0
	for _, k := range s.attached {
		if k == kind {
			n++
		}
	}
	return n
}

// recordCanvas captures cells set by layers
type recordCanvas struct {
	w, h  int
	cells map[geo.ScreenPoint]rune
}

func newRecordCanvas(w, h int) *recordCanvas {
	return &recordCanvas{w: w, h: h, cells: make(map[geo.ScreenPoint]rune)}
}

func (c *recordCanvas) Width() int  { return c.w }
func (c *recordCanvas) Height() int { return c.h }

func (c *recordCanvas) Set(x, y int, char rune, style tcell.Style) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[geo.ScreenPoint{X: x, Y: y}] = char
	}
}

func (c *recordCanvas) DrawLine(x0, y0, x1, y1 int, char rune, style tcell.Style) {
	c.Set(x0, y0, char, style)
	c.Set(x1, y1, char, style)
}

func (c *recordCanvas) DrawText(x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		c.Set(x+i, y, r, style)
	}
}

var downtownLA = geo.LatLon{Lat: 34.0522, Lon: -118.2437}

func TestManagerReplaceRemovesBeforeAdd(t *testing.T) {
	s := newFakeSurface(t)
	m := NewManager(s)

	first := NewHeatLayer(nil)
	second := NewHeatLayer(nil)
	m.Replace(KindHeatmap, first)
	m.Replace(KindHeatmap, second)

	if s.countKind(KindHeatmap) != 1 {
		t.Errorf("Expected 1 heatmap layer attached, got %d", s.countKind(KindHeatmap))
	}
	if m.Live(KindHeatmap) != second {
		t.Error("Expected the second heatmap to be live")
	}
	if s.removes != 1 {
		t.Errorf("Expected 1 removal, got %d", s.removes)
	}
}

func TestManagerSingletonUnderRandomToggles(t *testing.T) {
	s := newFakeSurface(t)
	m := NewManager(s)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		kind := Kinds[rng.Intn(len(Kinds))]
		if rng.Intn(3) == 0 {
			m.Clear(kind)
		} else {
			m.Replace(kind, NewMarkerLayer(MarkerHotspot, downtownLA))
		}

		for _, k := range Kinds {
			if n := s.countKind(k); n > 1 {
				t.Fatalf("Step %d: %d layers of kind %s attached", i, n, k)
			}
		}
	}

	if len(s.attached) != m.Count() {
		t.Errorf("Expected surface and manager to agree, got %d vs %d", len(s.attached), m.Count())
	}
}

func TestManagerToggleOffOn(t *testing.T) {
	s := newFakeSurface(t)
	m := NewManager(s)

	m.Replace(KindIncidents, NewMarkerLayer(MarkerReport, downtownLA))
	m.Replace(KindIncidents, nil)
	if s.countKind(KindIncidents) != 0 {
		t.Error("Expected incidents cleared after toggling off")
	}

	m.Replace(KindIncidents, NewMarkerLayer(MarkerReport, downtownLA))
	if s.countKind(KindIncidents) != 1 {
		t.Errorf("Expected exactly 1 incidents layer, got %d", s.countKind(KindIncidents))
	}
}

func TestManagerCloseDetachesEverything(t *testing.T) {
	s := newFakeSurface(t)
	m := NewManager(s)

	for _, k := range Kinds {
		m.Replace(k, NewMarkerLayer(MarkerHotspot, downtownLA))
	}
	m.Close()

	if len(s.attached) != 0 {
		t.Errorf("Expected 0 layers after close, got %d", len(s.attached))
	}

	m.Replace(KindRoute, NewRouteLayer([]geo.LatLon{downtownLA, downtownLA}))
	if len(s.attached) != 0 || m.Count() != 0 {
		t.Error("Expected no attachment after close")
	}
}

func TestSlotIsScopedToItsKind(t *testing.T) {
	s := newFakeSurface(t)
	m := NewManager(s)
	route := m.Slot(KindRoute)

	m.Replace(KindHeatmap, NewHeatLayer(nil))
	route.Replace(NewRouteLayer([]geo.LatLon{downtownLA, downtownLA}))
	route.Clear()

	if route.Kind() != KindRoute {
		t.Errorf("Expected slot kind Route, got %s", route.Kind())
	}
	if s.countKind(KindHeatmap) != 1 || s.countKind(KindRoute) != 0 {
		t.Error("Expected slot to touch only the route kind")
	}
}

func TestMarkerSymbolsCoverEveryKind(t *testing.T) {
	for k := MarkerKind(0); k < markerKindCount; k++ {
		if k.Glyph() == 0 {
			t.Errorf("Marker kind %d has no glyph", k)
		}
	}
}

func TestHeatLayerDraw(t *testing.T) {
	c := newRecordCanvas(40, 20)
	p := geo.NewProjection(downtownLA, 5, 40, 20, 2.0)

	layer := NewHeatLayer([]models.HeatPoint{
		{LatLon: downtownLA, Weight: 1},
		{LatLon: downtownLA, Weight: 1},
	})
	layer.Draw(c, p)

	center := p.Project(downtownLA)
	if c.cells[center] != '█' {
		t.Errorf("Expected densest glyph at center, got %q", c.cells[center])
	}
	if len(c.cells) != 9 {
		t.Errorf("Expected the 3x3 kernel to paint 9 cells, got %d", len(c.cells))
	}
}

func TestHeatColorEndpoints(t *testing.T) {
	lo := HeatColor(-1)
	hi := HeatColor(2)
	if lo == hi {
		t.Error("Expected distinct colours at the ends of the ramp")
	}
	if HeatGlyph(0) != '░' || HeatGlyph(1) != '█' {
		t.Errorf("Unexpected glyph range %q..%q", HeatGlyph(0), HeatGlyph(1))
	}
}

func TestUserPositionLayer(t *testing.T) {
	c := newRecordCanvas(80, 40)
	p := geo.NewProjection(downtownLA, 1, 80, 40, 2.0)

	NewUserPositionLayer(downtownLA, 400).Draw(c, p)

	if c.cells[p.Project(downtownLA)] != MarkerUser.Glyph() {
		t.Error("Expected user marker at the position")
	}
	if len(c.cells) < 10 {
		t.Errorf("Expected an accuracy circle, got %d cells", len(c.cells))
	}
}

func TestEndpointsLayer(t *testing.T) {
	if NewEndpointsLayer(nil, nil) != nil {
		t.Error("Expected no layer without endpoints")
	}
	start := downtownLA
	if NewEndpointsLayer(&start, nil) == nil {
		t.Error("Expected a layer with only a start point")
	}
}
