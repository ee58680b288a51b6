package controller

import (
	"safemap/internal/models"
	"safemap/internal/overlay"
)

// Toggleable lists the overlay kinds the user can show and hide
var Toggleable = []overlay.Kind{
	overlay.KindHeatmap,
	overlay.KindHotspots,
	overlay.KindPolice,
	overlay.KindHospitals,
	overlay.KindIncidents,
}

// Visibility holds the user's overlay toggles
type Visibility struct {
	Heatmap   bool
	Hotspots  bool
	Police    bool
	Hospitals bool
	Incidents bool
}

// DefaultVisibility shows every overlay
func DefaultVisibility() Visibility {
	return Visibility{Heatmap: true, Hotspots: true, Police: true, Hospitals: true, Incidents: true}
}

// Get reports whether kind is shown. Kinds without a toggle are always shown.
func (v Visibility) Get(kind overlay.Kind) bool {
	switch kind {
	case overlay.KindHeatmap:
		return v.Heatmap
	case overlay.KindHotspots:
		return v.Hotspots
	case overlay.KindPolice:
		return v.Police
	case overlay.KindHospitals:
		return v.Hospitals
	case overlay.KindIncidents:
		return v.Incidents
	default:
		return true
	}
}

// Set changes a toggle and reports whether it changed
func (v *Visibility) Set(kind overlay.Kind, on bool) bool {
	var flag *bool
	switch kind {
	case overlay.KindHeatmap:
		flag = &v.Heatmap
	case overlay.KindHotspots:
		flag = &v.Hotspots
	case overlay.KindPolice:
		flag = &v.Police
	case overlay.KindHospitals:
		flag = &v.Hospitals
	case overlay.KindIncidents:
		flag = &v.Incidents
	default:
		return false
	}

	if *flag == on {
		return false
	}
	*flag = on
	return true
}

func (c *Controller) markDirty(kind overlay.Kind) {
	c.dirty[kind] = true
}

// syncLayers rebuilds every kind whose data or visibility changed since the last sync
func (c *Controller) syncLayers() {
	if len(c.dirty) == 0 {
		return
	}

	for _, kind := range overlay.Kinds {
		if !c.dirty[kind] {
			continue
		}
		c.layers.Replace(kind, c.buildLayer(kind))
	}
	c.dirty = make(map[overlay.Kind]bool)
}

// buildLayer returns the layer for kind from current state, or nil when nothing is shown
func (c *Controller) buildLayer(kind overlay.Kind) overlay.Layer {
	if !c.visibility.Get(kind) {
		return nil
	}

	switch kind {
	case overlay.KindHeatmap:
		if c.hotspots == nil || len(c.hotspots.HeatPoints) == 0 {
			return nil
		}
		return overlay.NewHeatLayer(c.hotspots.HeatPoints)

	case overlay.KindHotspots:
		if len(c.centers()) == 0 {
			return nil
		}
		return overlay.NewMarkerLayer(overlay.MarkerHotspot, c.centers()...)

	case overlay.KindPolice:
		return amenityLayer(overlay.MarkerPolice, models.FilterAmenities(c.amenities, models.AmenityPolice))

	case overlay.KindHospitals:
		return amenityLayer(overlay.MarkerHospital, models.FilterAmenities(c.amenities, models.AmenityHospital))

	case overlay.KindIncidents:
		if len(c.incidents) == 0 {
			return nil
		}
		layer := &overlay.MarkerLayer{Kind: overlay.MarkerReport}
		for _, inc := range c.incidents {
			layer.Markers = append(layer.Markers, overlay.Marker{Position: inc.Location})
		}
		return layer

	case overlay.KindRoute:
		if c.route.result == nil || len(c.route.result.Safest) < 2 {
			return nil
		}
		return overlay.NewRouteLayer(c.route.result.Safest)

	case overlay.KindEndpoints:
		return overlay.NewEndpointsLayer(c.route.start, c.route.end)

	case overlay.KindUserPosition:
		if !c.tracking || c.position == nil {
			return nil
		}
		return overlay.NewUserPositionLayer(c.position.Position, c.position.Accuracy)
	}

	return nil
}

func amenityLayer(kind overlay.MarkerKind, amenities []models.Amenity) overlay.Layer {
	if len(amenities) == 0 {
		return nil
	}

	layer := &overlay.MarkerLayer{Kind: kind}
	for _, a := range amenities {
		layer.Markers = append(layer.Markers, overlay.Marker{Position: a.Location})
	}
	return layer
}
