package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/models"
)

const (
	hotspotsPath   = "/api/hotspots"
	mapContextPath = "/api/map-context"
	navigatePath   = "/api/navigate"
	incidentsPath  = "/api/incidents"
	reportPath     = "/api/report-incident"
)

// ErrNoPath is matched by errors.Is when the backend found no route between the endpoints
var ErrNoPath = errors.New("api: no path found")

// Error is a non-2xx response from the analytics backend
type Error struct {
	Path   string
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %s returned %d: %s", e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api: %s returned %d", e.Path, e.Status)
}

// Is makes a 404 from the routing endpoint match ErrNoPath
func (e *Error) Is(target error) bool {
	return target == ErrNoPath && e.Path == navigatePath && e.Status == http.StatusNotFound
}

// Detail returns the backend's detail message carried by err, if any
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// Client talks to the crime analytics backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL (e.g. http://localhost:8000).
// timeout bounds every request; callers may set tighter deadlines through the context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Hotspots requests heat samples and cluster centers for a filter set
func (c *Client) Hotspots(ctx context.Context, filters models.Filters, nClusters int) (*models.HotspotSet, error) {
	req := hotspotsRequest{
		Areas:      nonNil(filters.Areas),
		Crimes:     nonNil(filters.Crimes),
		Severities: nonNil(filters.Severities),
		NClusters:  nClusters,
	}

	var resp hotspotsResponse
	if err := c.do(ctx, http.MethodPost, hotspotsPath, req, &resp); err != nil {
		return nil, err
	}

	set := &models.HotspotSet{
		HeatPoints: make([]models.HeatPoint, 0, len(resp.HeatData)),
		Centers:    make([]geo.LatLon, 0, len(resp.Centers)),
	}
	for _, row := range resp.HeatData {
		hp := models.HeatPoint(row)
		if hp.Valid() {
			set.HeatPoints = append(set.HeatPoints, hp)
		}
	}
	for _, center := range resp.Centers {
		if p := geo.LatLon(center); p.Valid() {
			set.Centers = append(set.Centers, p)
		}
	}

	return set, nil
}

// MapContext requests police stations and hospitals around a point
func (c *Client) MapContext(ctx context.Context, around geo.LatLon) ([]models.Amenity, error) {
	var resp mapContextResponse
	if err := c.do(ctx, http.MethodPost, mapContextPath, mapContextRequest{Lat: around.Lat, Lon: around.Lon}, &resp); err != nil {
		return nil, err
	}

	amenities := make([]models.Amenity, 0, len(resp.Amenities))
	for _, a := range resp.Amenities {
		loc := geo.LatLon{Lat: a.Lat, Lon: a.Lon}
		if !loc.Valid() {
			continue
		}
		amenities = append(amenities, models.Amenity{
			Type:     models.AmenityType(a.Type),
			Name:     a.Name,
			Location: loc,
		})
	}

	return amenities, nil
}

// Navigate requests the safest route between two points. A missing route is reported
// as an error matching ErrNoPath.
func (c *Client) Navigate(ctx context.Context, start, end geo.LatLon) (*models.RouteResult, error) {
	var resp navigateResponse
	if err := c.do(ctx, http.MethodPost, navigatePath, navigateRequest{Start: coord(start), End: coord(end)}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Safest) < 2 {
		return nil, &Error{Path: navigatePath, Status: http.StatusNotFound, Detail: "No route found"}
	}

	route := &models.RouteResult{Safest: make([]geo.LatLon, len(resp.Safest))}
	for i, p := range resp.Safest {
		route.Safest[i] = geo.LatLon(p)
	}

	return route, nil
}

// Incidents fetches the full list of user-reported incidents
func (c *Client) Incidents(ctx context.Context) ([]models.Incident, error) {
	var resp incidentsResponse
	if err := c.do(ctx, http.MethodGet, incidentsPath, nil, &resp); err != nil {
		return nil, err
	}

	incidents := make([]models.Incident, 0, len(resp.Incidents))
	for _, inc := range resp.Incidents {
		loc := geo.LatLon{Lat: inc.Lat, Lon: inc.Lon}
		if !loc.Valid() {
			continue
		}
		incidents = append(incidents, models.Incident{
			ID:          inc.ID,
			Category:    models.Category(inc.Category),
			Description: inc.Description,
			Location:    loc,
			Timestamp:   parseTimestamp(inc.Timestamp),
		})
	}

	return incidents, nil
}

// ReportIncident submits a new incident
func (c *Client) ReportIncident(ctx context.Context, report models.IncidentReport) error {
	req := reportRequest{
		Lat:         report.Location.Lat,
		Lon:         report.Location.Lon,
		Description: report.Description,
		Category:    string(report.Category),
	}
	return c.do(ctx, http.MethodPost, reportPath, req, nil)
}

// do sends a JSON request and decodes a JSON response into out (when non-nil)
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: failed to marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: failed to create %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		debug.Log("api %s %s [%s] failed: %v", method, path, requestID, err)
		return fmt.Errorf("api: %s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	debug.Log("api %s %s [%s] %d in %v", method, path, requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		detail := ""
		if json.Unmarshal(raw, &eb) == nil {
			detail = eb.text()
		}
		return &Error{Path: path, Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: failed to decode %s response: %w", path, err)
	}

	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
