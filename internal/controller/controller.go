package controller

import (
	"context"
	"time"

	"safemap/internal/api"
	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/locate"
	"safemap/internal/models"
	"safemap/internal/overlay"
)

const statusReported = "Incident Reported Successfully!"

// DefaultCenter is used when a data set has no heat points
var DefaultCenter = geo.LatLon{Lat: 34.0522, Lon: -118.2437}

// Backend is the crime analytics service
type Backend interface {
	Hotspots(ctx context.Context, filters models.Filters, nClusters int) (*models.HotspotSet, error)
	MapContext(ctx context.Context, around geo.LatLon) ([]models.Amenity, error)
	Navigate(ctx context.Context, start, end geo.LatLon) (*models.RouteResult, error)
	Incidents(ctx context.Context) ([]models.Incident, error)
	ReportIncident(ctx context.Context, report models.IncidentReport) error
}

// Locator is a position watch that can be started and stopped
type Locator interface {
	Start() uint64
	Stop()
}

// Options tunes the controller
type Options struct {
	Clusters     int
	AlertRadius  float64 // meters
	RouteTimeout time.Duration
	StatusTTL    time.Duration
	Fallback     geo.LatLon
}

func (o *Options) setDefaults() {
	if o.Clusters <= 0 {
		o.Clusters = 15
	}
	if o.AlertRadius <= 0 {
		o.AlertRadius = geo.DefaultAlertRadius
	}
	if o.RouteTimeout <= 0 {
		o.RouteTimeout = 25 * time.Second
	}
	if o.StatusTTL <= 0 {
		o.StatusTTL = 3 * time.Second
	}
	if !o.Fallback.Valid() || o.Fallback == (geo.LatLon{}) {
		o.Fallback = DefaultCenter
	}
}

// Controller owns the map state. All state changes go through Update, which is only
// called from the event loop; network and position work happens in the Cmds it returns.
type Controller struct {
	backend Backend
	locator Locator
	layers  *overlay.Manager
	opts    Options

	mode       Mode
	visibility Visibility
	filters    models.Filters
	route      RouteSession
	report     ReportWorkflow

	hotspots    *models.HotspotSet
	amenities   []models.Amenity
	incidents   []models.Incident
	hotspotGen  uint64
	amenityGen  uint64
	incidentGen uint64

	tracking       bool
	session        uint64
	position       *locate.Fix
	alert          bool
	alertDismissed bool

	status      string
	statusToken uint64

	focus  *geo.LatLon
	dirty  map[overlay.Kind]bool
	closed bool
}

// New creates a controller drawing onto surface
func New(backend Backend, locator Locator, surface overlay.Surface, opts Options) *Controller {
	opts.setDefaults()

	return &Controller{
		backend:    backend,
		locator:    locator,
		layers:     overlay.NewManager(surface),
		opts:       opts,
		visibility: DefaultVisibility(),
		report:     newReportWorkflow(),
		dirty:      make(map[overlay.Kind]bool),
	}
}

// Init starts the first data load for filters
func (c *Controller) Init(filters models.Filters) []Cmd {
	return c.Update(SetFilters{Filters: filters})
}

// Update applies one message and returns the follow-up work
func (c *Controller) Update(msg Msg) []Cmd {
	if c.closed {
		return nil
	}

	cmds := c.reduce(msg)
	c.syncLayers()
	return cmds
}

func (c *Controller) reduce(msg Msg) []Cmd {
	switch m := msg.(type) {
	case Click:
		return c.click(m.Point)
	case DragEndpoint:
		return c.drag(m.Which, m.To)
	case ToggleLayer:
		if c.visibility.Set(m.Kind, m.Visible) {
			c.markDirty(m.Kind)
		}
	case StartNavigation:
		c.resetMap()
		c.report.close()
		c.mode = ModeSelectingStart
	case StartReporting:
		c.resetMap()
		c.report.close()
		c.mode = ModeReporting
	case Reset:
		c.resetMap()
	case ToggleTracking:
		if c.tracking {
			c.stopTracking()
		} else {
			c.startTracking()
		}
	case DismissAlert:
		// Only a banner that is showing can be dismissed
		if c.alert {
			c.alertDismissed = true
		}
	case SetFilters:
		c.filters = m.Filters
		return c.loadData()
	case Reload:
		return c.loadData()

	case SetDescription:
		c.report.setDescription(m.Text)
	case SetCategory:
		c.report.setCategory(m.Category)
	case SubmitReport:
		cmd, err := c.report.submit(c.backend)
		if err != nil {
			debug.Log("controller: report rejected: %v", err)
			return nil
		}
		if cmd != nil {
			return []Cmd{cmd}
		}
	case CancelReport:
		c.report.close()

	case Position:
		c.positionUpdate(m)
	case TrackingFailed:
		return c.trackingFailed(m)

	case hotspotsLoaded:
		return c.hotspotsLoaded(m)
	case amenitiesLoaded:
		return c.amenitiesLoaded(m)
	case incidentsLoaded:
		return c.incidentsLoaded(m)
	case routeLoaded:
		return c.routeLoaded(m)
	case reportSubmitted:
		return c.reportSubmitted(m)
	case statusExpired:
		if m.token == c.statusToken {
			c.status = ""
		}

	case nil:
	default:
		debug.Log("controller: unhandled message %T", msg)
	}
	return nil
}

// click is interpreted by the mode active when it is reduced
func (c *Controller) click(p geo.LatLon) []Cmd {
	if !p.Valid() {
		return nil
	}

	switch c.mode {
	case ModeSelectingStart:
		c.route.set(EndpointStart, p)
		c.mode = ModeSelectingEnd
		c.markDirty(overlay.KindEndpoints)
	case ModeSelectingEnd:
		c.route.set(EndpointEnd, p)
		c.mode = ModeView
		c.markDirty(overlay.KindEndpoints)
		return c.requestRoute()
	case ModeReporting:
		c.report.open(p)
		c.mode = ModeView
	}
	return nil
}

func (c *Controller) drag(which Endpoint, to geo.LatLon) []Cmd {
	if !to.Valid() {
		return nil
	}
	if (which == EndpointStart && c.route.start == nil) || (which == EndpointEnd && c.route.end == nil) {
		return nil
	}

	c.markDirty(overlay.KindEndpoints)
	if !c.route.set(which, to) {
		return nil
	}
	return c.requestRoute()
}

func (c *Controller) requestRoute() []Cmd {
	cmd := c.route.request(c.backend, c.opts.RouteTimeout)
	c.setStatus(statusCalculating)
	c.markDirty(overlay.KindRoute)
	return []Cmd{cmd}
}

// resetMap clears the route, its endpoints and the status, and returns to view mode
func (c *Controller) resetMap() {
	c.route.reset()
	c.setStatus("")
	c.mode = ModeView
	c.markDirty(overlay.KindRoute)
	c.markDirty(overlay.KindEndpoints)
}

func (c *Controller) startTracking() {
	c.session = c.locator.Start()
	c.tracking = true
	c.alertDismissed = false
	debug.Log("controller: tracking session %d", c.session)
}

// stopTracking cancels the watch and removes the user marker before returning
func (c *Controller) stopTracking() {
	c.locator.Stop()
	c.tracking = false
	c.position = nil
	c.alert = false
	c.markDirty(overlay.KindUserPosition)
}

func (c *Controller) positionUpdate(m Position) {
	if !c.tracking || m.Session != c.session {
		return
	}

	if c.position == nil {
		p := m.Fix.Position
		c.focus = &p
	}

	fix := m.Fix
	c.position = &fix
	c.alert = geo.NearDanger(fix.Position, c.centers(), c.opts.AlertRadius)
	c.markDirty(overlay.KindUserPosition)
}

func (c *Controller) trackingFailed(m TrackingFailed) []Cmd {
	if !c.tracking || m.Session != c.session {
		return nil
	}

	debug.Log("controller: tracking failed: %v", m.Err)
	c.stopTracking()
	return c.flash("Location unavailable: " + m.Err.Error())
}

// loadData discards the current crime data and starts the load chain:
// hotspots, then amenities around their centroid, then incidents
func (c *Controller) loadData() []Cmd {
	c.hotspotGen++
	c.amenityGen++
	c.hotspots = nil
	c.amenities = nil
	c.markDirty(overlay.KindHeatmap)
	c.markDirty(overlay.KindHotspots)
	c.markDirty(overlay.KindPolice)
	c.markDirty(overlay.KindHospitals)

	gen, filters, n := c.hotspotGen, c.filters, c.opts.Clusters
	backend := c.backend
	return []Cmd{func(ctx context.Context) Msg {
		set, err := backend.Hotspots(ctx, filters, n)
		return hotspotsLoaded{gen: gen, set: set, err: err}
	}}
}

func (c *Controller) hotspotsLoaded(m hotspotsLoaded) []Cmd {
	if m.gen != c.hotspotGen {
		return nil
	}
	if m.err != nil {
		debug.Log("controller: hotspot load failed: %v", m.err)
		return c.flash(errorStatus("could not load crime data", m.err))
	}

	c.hotspots = m.set
	c.markDirty(overlay.KindHeatmap)
	c.markDirty(overlay.KindHotspots)

	center := geo.Centroid(m.set.Positions(), c.opts.Fallback)
	c.focus = &center

	gen, backend := c.amenityGen, c.backend
	return []Cmd{func(ctx context.Context) Msg {
		amenities, err := backend.MapContext(ctx, center)
		return amenitiesLoaded{gen: gen, amenities: amenities, err: err}
	}}
}

func (c *Controller) amenitiesLoaded(m amenitiesLoaded) []Cmd {
	if m.gen != c.amenityGen {
		return nil
	}

	var cmds []Cmd
	if m.err != nil {
		debug.Log("controller: amenity load failed: %v", m.err)
		cmds = c.flash(errorStatus("could not load amenities", m.err))
	} else {
		c.amenities = m.amenities
		c.markDirty(overlay.KindPolice)
		c.markDirty(overlay.KindHospitals)
	}

	return append(cmds, c.fetchIncidents())
}

func (c *Controller) fetchIncidents() Cmd {
	c.incidentGen++
	gen, backend := c.incidentGen, c.backend
	return func(ctx context.Context) Msg {
		incidents, err := backend.Incidents(ctx)
		return incidentsLoaded{gen: gen, incidents: incidents, err: err}
	}
}

func (c *Controller) incidentsLoaded(m incidentsLoaded) []Cmd {
	if m.gen != c.incidentGen {
		return nil
	}
	if m.err != nil {
		debug.Log("controller: incident load failed: %v", m.err)
		return c.flash(errorStatus("could not load incidents", m.err))
	}

	c.incidents = m.incidents
	c.markDirty(overlay.KindIncidents)
	return nil
}

func (c *Controller) routeLoaded(m routeLoaded) []Cmd {
	status, ok := c.route.apply(m)
	if !ok {
		debug.Log("controller: dropped stale route response %d", m.gen)
		return nil
	}

	c.setStatus(status)
	c.markDirty(overlay.KindRoute)
	return nil
}

func (c *Controller) reportSubmitted(m reportSubmitted) []Cmd {
	c.report.apply(m)
	if m.err != nil {
		debug.Log("controller: report failed: %v", m.err)
		return nil
	}

	// The list is refetched even when the form was discarded meanwhile
	return append(c.flash(statusReported), c.fetchIncidents())
}

// setStatus shows a message until replaced
func (c *Controller) setStatus(text string) {
	c.statusToken++
	c.status = text
}

// flash shows a message that clears itself after the status TTL
func (c *Controller) flash(text string) []Cmd {
	c.setStatus(text)

	token, ttl := c.statusToken, c.opts.StatusTTL
	return []Cmd{func(ctx context.Context) Msg {
		t := time.NewTimer(ttl)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
		return statusExpired{token: token}
	}}
}

func errorStatus(what string, err error) string {
	if detail := api.Detail(err); detail != "" {
		return "Error: " + what + ": " + detail
	}
	return "Error: " + what + "."
}

func (c *Controller) centers() []geo.LatLon {
	if c.hotspots == nil {
		return nil
	}
	return c.hotspots.Centers
}

// Close stops tracking, orphans every in-flight request and detaches all layers
func (c *Controller) Close() {
	if c.closed {
		return
	}

	c.stopTracking()

	c.route.reset()
	c.report.close()
	c.hotspotGen++
	c.amenityGen++
	c.incidentGen++

	c.layers.Close()
	c.closed = true
}

// Mode returns the active interaction mode
func (c *Controller) Mode() Mode { return c.mode }

// Visibility returns the overlay toggles
func (c *Controller) Visibility() Visibility { return c.visibility }

// Filters returns the active filter set
func (c *Controller) Filters() models.Filters { return c.filters }

// Route returns the route session
func (c *Controller) Route() *RouteSession { return &c.route }

// Report returns the incident form
func (c *Controller) Report() *ReportWorkflow { return &c.report }

// Status returns the status line text
func (c *Controller) Status() string { return c.status }

// Tracking reports whether position watching is on
func (c *Controller) Tracking() bool { return c.tracking }

// Position returns the last fix of the current tracking session, or nil
func (c *Controller) Position() *locate.Fix { return c.position }

// AlertActive reports whether the proximity condition holds, dismissed or not
func (c *Controller) AlertActive() bool { return c.alert }

// AlertVisible reports whether the proximity banner should be shown
func (c *Controller) AlertVisible() bool { return c.alert && !c.alertDismissed }

// Hotspots returns the current hotspot set, or nil while loading
func (c *Controller) Hotspots() *models.HotspotSet { return c.hotspots }

// Amenities returns the amenities around the current data set
func (c *Controller) Amenities() []models.Amenity { return c.amenities }

// Incidents returns the last fetched incident list
func (c *Controller) Incidents() []models.Incident { return c.incidents }

// LayerCount returns the number of layers attached to the surface
func (c *Controller) LayerCount() int { return c.layers.Count() }

// TakeFocus returns a point the view should centre on, once
func (c *Controller) TakeFocus() (geo.LatLon, bool) {
	if c.focus == nil {
		return geo.LatLon{}, false
	}
	p := *c.focus
	c.focus = nil
	return p, true
}
