package render

import (
	"sort"

	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/overlay"
)

type attachment struct {
	kind  overlay.Kind
	seq   int
	layer overlay.Layer
}

// Scene is the map surface: a basemap with overlay layers composed on top in kind order
type Scene struct {
	basemap *BasemapRenderer
	layers  []attachment
	seq     int
}

// NewScene creates a scene over an optional basemap renderer
func NewScene(basemap *BasemapRenderer) *Scene {
	return &Scene{basemap: basemap}
}

// AddLayer attaches a layer. Layers of a later kind draw above earlier ones.
func (s *Scene) AddLayer(kind overlay.Kind, layer overlay.Layer) {
	s.seq++
	s.layers = append(s.layers, attachment{kind: kind, seq: s.seq, layer: layer})
	sort.SliceStable(s.layers, func(i, j int) bool {
		if s.layers[i].kind != s.layers[j].kind {
			return s.layers[i].kind < s.layers[j].kind
		}
		return s.layers[i].seq < s.layers[j].seq
	})
}

// RemoveLayer detaches a layer; unknown layers are ignored
func (s *Scene) RemoveLayer(layer overlay.Layer) {
	for i, a := range s.layers {
		if a.layer == layer {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return
		}
	}
	debug.Log("scene: remove of unattached layer ignored")
}

// Attached returns the number of attached layers of kind
func (s *Scene) Attached(kind overlay.Kind) int {
	n := 0
	for _, a := range s.layers {
		if a.kind == kind {
			n++
		}
	}
	return n
}

// Count returns the number of attached layers
func (s *Scene) Count() int {
	return len(s.layers)
}

// Render draws the basemap then every attached layer
func (s *Scene) Render(canvas *Canvas, projection *geo.Projection) {
	if s.basemap != nil {
		s.basemap.UpdateProjection(projection)
		s.basemap.Render(canvas)
	}
	for _, a := range s.layers {
		a.layer.Draw(canvas, projection)
	}
}
