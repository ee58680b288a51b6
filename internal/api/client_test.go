package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"safemap/internal/geo"
	"safemap/internal/mockapi"
	"safemap/internal/models"
)

var downtownLA = geo.LatLon{Lat: 34.0522, Lon: -118.2437}

func newMockBackend(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := mockapi.NewStore(downtownLA, 15, 40, 7)
	srv := httptest.NewServer(mockapi.NewRouter(store, mockapi.Options{}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/", 5*time.Second)
}

func newRawBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestHotspotsFromMock(t *testing.T) {
	c := newMockBackend(t)

	set, err := c.Hotspots(context.Background(), models.Filters{}, 15)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(set.HeatPoints) != 15*40 {
		t.Errorf("Expected %d heat points, got %d", 15*40, len(set.HeatPoints))
	}
	if len(set.Centers) != 15 {
		t.Errorf("Expected 15 centers, got %d", len(set.Centers))
	}

	filtered, err := c.Hotspots(context.Background(), models.Filters{Areas: []string{"Central"}}, 15)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(filtered.HeatPoints) == 0 || len(filtered.HeatPoints) >= len(set.HeatPoints) {
		t.Errorf("Expected area filter to narrow the heat points, got %d of %d", len(filtered.HeatPoints), len(set.HeatPoints))
	}
}

func TestHotspotsTolerantShapes(t *testing.T) {
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"heat_data": [[34.05, -118.24], [34.06, -118.25, 0.5], [999, 0]],
			"centers": [[34.05, -118.24], {"lat": 34.07, "lng": -118.26, "label": "#2"}]}`))
	})

	set, err := c.Hotspots(context.Background(), models.Filters{}, 15)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(set.HeatPoints) != 2 {
		t.Fatalf("Expected invalid heat row to be dropped, got %d rows", len(set.HeatPoints))
	}
	if set.HeatPoints[0].Weight != 1 || set.HeatPoints[1].Weight != 0.5 {
		t.Errorf("Unexpected weights %v, %v", set.HeatPoints[0].Weight, set.HeatPoints[1].Weight)
	}
	if len(set.Centers) != 2 || set.Centers[1].Lon != -118.26 {
		t.Errorf("Unexpected centers %+v", set.Centers)
	}
}

func TestHotspotsMalformedPayload(t *testing.T) {
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"heat_data": "nope"}`))
	})

	if _, err := c.Hotspots(context.Background(), models.Filters{}, 15); err == nil {
		t.Error("Expected decode error for malformed payload")
	}
}

func TestMapContext(t *testing.T) {
	c := newMockBackend(t)

	amenities, err := c.MapContext(context.Background(), downtownLA)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(models.FilterAmenities(amenities, models.AmenityPolice)) != 2 {
		t.Errorf("Expected 2 police stations, got %+v", amenities)
	}
	if len(models.FilterAmenities(amenities, models.AmenityHospital)) != 2 {
		t.Errorf("Expected 2 hospitals, got %+v", amenities)
	}
}

func TestNavigate(t *testing.T) {
	c := newMockBackend(t)
	end := geo.LatLon{Lat: 34.0407, Lon: -118.2468}

	route, err := c.Navigate(context.Background(), downtownLA, end)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(route.Safest) < 2 {
		t.Fatalf("Expected a polyline, got %d points", len(route.Safest))
	}
	if route.Safest[0] != downtownLA || route.Safest[len(route.Safest)-1] != end {
		t.Errorf("Expected route to start and end at the endpoints, got %v .. %v", route.Safest[0], route.Safest[len(route.Safest)-1])
	}
}

func TestNavigateNoPath(t *testing.T) {
	c := newMockBackend(t)

	_, err := c.Navigate(context.Background(), downtownLA, geo.LatLon{Lat: 40.7128, Lon: -74.0060})
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("Expected ErrNoPath, got %v", err)
	}
	if Detail(err) != "No route found" {
		t.Errorf("Expected backend detail, got %q", Detail(err))
	}
}

func TestNavigateEmptyRouteIsNoPath(t *testing.T) {
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"safest": []}`))
	})

	if _, err := c.Navigate(context.Background(), downtownLA, downtownLA); !errors.Is(err, ErrNoPath) {
		t.Errorf("Expected ErrNoPath, got %v", err)
	}
}

func TestIncidentsSkipsInvalidCoordinates(t *testing.T) {
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"incidents": [
			{"id": 1, "lat": 34.05, "lon": -118.24, "category": "Theft", "description": "ok", "timestamp": "2026-10-18T20:15:00.000000"},
			{"id": 2, "lat": 134.05, "lon": -118.24, "category": "Theft", "description": "bad lat"},
			{"id": 3, "lat": 34.05, "lon": -218.24, "category": "Other", "description": "bad lon"}
		]}`))
	})

	incidents, err := c.Incidents(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(incidents) != 1 || incidents[0].ID != 1 {
		t.Errorf("Expected only incident 1, got %+v", incidents)
	}
}

func TestNavigateHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Navigate(ctx, downtownLA, downtownLA)
	if err == nil || errors.Is(err, ErrNoPath) {
		t.Errorf("Expected a transport error, got %v", err)
	}
}

func TestIncidentRoundTrip(t *testing.T) {
	c := newMockBackend(t)
	ctx := context.Background()

	report := models.IncidentReport{
		Location:    geo.LatLon{Lat: 34.05, Lon: -118.24},
		Category:    models.CategoryTheft,
		Description: "test",
	}
	if err := c.ReportIncident(ctx, report); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	incidents, err := c.Incidents(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(incidents) != 1 {
		t.Fatalf("Expected 1 incident, got %d", len(incidents))
	}

	got := incidents[0]
	if got.ID != 1 || got.Category != models.CategoryTheft || got.Description != "test" || got.Location != report.Location {
		t.Errorf("Unexpected incident %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("Expected timestamp to be parsed")
	}
}

func TestErrorDetail(t *testing.T) {
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "dataset not loaded"}`))
	})

	err := c.ReportIncident(context.Background(), models.IncidentReport{Description: "x"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Detail != "dataset not loaded" {
		t.Errorf("Unexpected error %+v", apiErr)
	}
	if errors.Is(err, ErrNoPath) {
		t.Error("Expected a non-routing error not to match ErrNoPath")
	}
}

func TestRequestID(t *testing.T) {
	var got string
	c := newRawBackend(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"incidents": []}`))
	})

	if _, err := c.Incidents(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 36 {
		t.Errorf("Expected a UUID request id, got %q", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []string{
		"2024-05-01T12:34:56.123456",
		"2024-05-01T12:34:56Z",
		"2024-05-01 12:34:56",
	}
	for _, s := range tests {
		if parseTimestamp(s).IsZero() {
			t.Errorf("Expected %q to parse", s)
		}
	}
	if !parseTimestamp("yesterday").IsZero() {
		t.Error("Expected unparseable timestamp to be zero")
	}
}
