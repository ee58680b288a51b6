package controller

import (
	"context"
	"errors"
	"time"

	"safemap/internal/api"
	"safemap/internal/geo"
	"safemap/internal/models"
)

const (
	statusCalculating = "Calculating route..."
	statusNoPath      = "No path found."
)

// RouteSession holds the two endpoints and the route between them. Every request
// bumps the generation; a result is applied only if it carries the latest one.
type RouteSession struct {
	start    *geo.LatLon
	end      *geo.LatLon
	result   *models.RouteResult
	gen      uint64
	inFlight bool
}

// Start returns the start endpoint, or nil
func (r *RouteSession) Start() *geo.LatLon { return r.start }

// End returns the end endpoint, or nil
func (r *RouteSession) End() *geo.LatLon { return r.end }

// Result returns the rendered route, or nil
func (r *RouteSession) Result() *models.RouteResult { return r.result }

// Pending reports whether the latest request has not resolved yet
func (r *RouteSession) Pending() bool { return r.inFlight }

// set stores an endpoint and reports whether both are now set
func (r *RouteSession) set(which Endpoint, p geo.LatLon) bool {
	if which == EndpointStart {
		r.start = &p
	} else {
		r.end = &p
	}
	return r.start != nil && r.end != nil
}

// request supersedes any in-flight fetch, drops the rendered route and returns the
// fetch for the current endpoint pair
func (r *RouteSession) request(backend Backend, timeout time.Duration) Cmd {
	r.gen++
	r.result = nil
	r.inFlight = true

	gen, start, end := r.gen, *r.start, *r.end
	return func(ctx context.Context) Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := backend.Navigate(ctx, start, end)
		return routeLoaded{gen: gen, result: result, err: err}
	}
}

// apply stores a result if it is current. It returns the status text to show and
// false for stale results.
func (r *RouteSession) apply(msg routeLoaded) (string, bool) {
	if msg.gen != r.gen {
		return "", false
	}

	r.inFlight = false
	if msg.err != nil {
		return routeErrorStatus(msg.err), true
	}

	r.result = msg.result
	return "", true
}

// reset clears the endpoints and route and orphans any in-flight fetch
func (r *RouteSession) reset() {
	r.gen++
	r.start = nil
	r.end = nil
	r.result = nil
	r.inFlight = false
}

func routeErrorStatus(err error) string {
	if detail := api.Detail(err); detail != "" {
		return "Error: " + detail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Error: route request timed out."
	}
	return "Error: " + statusNoPath
}
