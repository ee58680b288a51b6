package overlay

import (
	"safemap/internal/debug"
)

// Manager keeps at most one live layer per kind attached to a surface
type Manager struct {
	surface Surface
	live    map[Kind]Layer
	closed  bool
}

// NewManager creates a manager owning the layers it attaches to surface
func NewManager(surface Surface) *Manager {
	return &Manager{
		surface: surface,
		live:    make(map[Kind]Layer),
	}
}

// Replace detaches the live layer of kind, if any, then attaches layer.
// A nil layer leaves the slot empty. After Close the manager attaches nothing.
func (m *Manager) Replace(kind Kind, layer Layer) {
	m.Clear(kind)

	if layer == nil {
		return
	}
	if m.closed {
		debug.Log("overlay: ignoring %s layer after close", kind)
		return
	}

	m.surface.AddLayer(kind, layer)
	m.live[kind] = layer
}

// Clear detaches the live layer of kind
func (m *Manager) Clear(kind Kind) {
	if prev, ok := m.live[kind]; ok {
		m.surface.RemoveLayer(prev)
		delete(m.live, kind)
	}
}

// Live returns the attached layer of kind, or nil
func (m *Manager) Live(kind Kind) Layer {
	return m.live[kind]
}

// Count returns the number of attached layers
func (m *Manager) Count() int {
	return len(m.live)
}

// Close detaches every layer and refuses further attachments
func (m *Manager) Close() {
	for _, kind := range Kinds {
		m.Clear(kind)
	}
	m.closed = true
}

// Slot returns a handle restricted to one kind
func (m *Manager) Slot(kind Kind) Slot {
	return Slot{kind: kind, m: m}
}

// Slot is a capability to manage a single overlay kind
type Slot struct {
	kind Kind
	m    *Manager
}

// Kind returns the kind this slot manages
func (s Slot) Kind() Kind {
	return s.kind
}

// Replace swaps the slot's layer
func (s Slot) Replace(layer Layer) {
	s.m.Replace(s.kind, layer)
}

// Clear empties the slot
func (s Slot) Clear() {
	s.m.Clear(s.kind)
}
