package controller

import (
	"context"

	"safemap/internal/geo"
	"safemap/internal/locate"
	"safemap/internal/models"
	"safemap/internal/overlay"
)

// Msg is an input to the reducer: a user intent, a position event or an async result
type Msg interface{}

// Cmd is work run off the event loop. Its result is fed back through Update.
type Cmd func(ctx context.Context) Msg

// Endpoint names one end of the route
type Endpoint int

const (
	EndpointStart Endpoint = iota
	EndpointEnd
)

// User intents
type (
	// Click is a click on the map
	Click struct{ Point geo.LatLon }
	// DragEndpoint moves a route endpoint
	DragEndpoint struct {
		Which Endpoint
		To    geo.LatLon
	}
	// ToggleLayer shows or hides an overlay kind
	ToggleLayer struct {
		Kind    overlay.Kind
		Visible bool
	}
	StartNavigation struct{}
	StartReporting  struct{}
	Reset           struct{}
	ToggleTracking  struct{}
	DismissAlert    struct{}
	// SetFilters reloads the crime data for a new filter set
	SetFilters struct{ Filters models.Filters }
	// Reload refetches data for the current filters
	Reload struct{}

	SetDescription struct{ Text string }
	SetCategory    struct{ Category models.Category }
	SubmitReport   struct{}
	CancelReport   struct{}
)

// Position events forwarded from the tracker
type (
	Position struct {
		Session uint64
		Fix     locate.Fix
	}
	TrackingFailed struct {
		Session uint64
		Err     error
	}
)

// FromLocateEvent converts a tracker event into a message
func FromLocateEvent(ev locate.Event) Msg {
	if ev.Failed() {
		return TrackingFailed{Session: ev.Session, Err: ev.Err}
	}
	return Position{Session: ev.Session, Fix: ev.Fix}
}

// Async results, each tagged with the generation of the request that produced it
type (
	hotspotsLoaded struct {
		gen uint64
		set *models.HotspotSet
		err error
	}
	amenitiesLoaded struct {
		gen       uint64
		amenities []models.Amenity
		err       error
	}
	incidentsLoaded struct {
		gen       uint64
		incidents []models.Incident
		err       error
	}
	routeLoaded struct {
		gen    uint64
		result *models.RouteResult
		err    error
	}
	reportSubmitted struct {
		seq uint64
		err error
	}
	statusExpired struct {
		token uint64
	}
)
