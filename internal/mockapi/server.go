package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"safemap/internal/geo"
)

// maxRouteMeters is the longest trip the mock router will plan
const maxRouteMeters = 50000

type hotspotsRequest struct {
	Areas      []string `json:"areas"`
	Crimes     []string `json:"crimes"`
	Severities []string `json:"severities"`
	NClusters  int      `json:"n_clusters"`
}

type pointRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

type navigateRequest struct {
	Start []float64 `json:"start" binding:"required,len=2"`
	End   []float64 `json:"end" binding:"required,len=2"`
}

type reportRequest struct {
	Lat         *float64 `json:"lat" binding:"required"`
	Lon         *float64 `json:"lon" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category"`
}

// Options tunes the mock server
type Options struct {
	// Latency delays every response, useful to exercise out-of-order route responses
	Latency time.Duration
	// Logging enables gin's request logger
	Logging bool
}

// NewRouter builds the gin engine serving the analytics endpoints from store
func NewRouter(store *Store, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logging {
		r.Use(gin.Logger())
	}
	if opts.Latency > 0 {
		r.Use(func(c *gin.Context) {
			select {
			case <-time.After(opts.Latency):
			case <-c.Request.Context().Done():
			}
			c.Next()
		})
	}

	h := &handler{store: store}
	api := r.Group("/api")
	api.POST("/hotspots", h.hotspots)
	api.POST("/map-context", h.mapContext)
	api.POST("/navigate", h.navigate)
	api.GET("/incidents", h.incidents)
	api.POST("/report-incident", h.reportIncident)

	return r
}

type handler struct {
	store *Store
}

func (h *handler) hotspots(c *gin.Context) {
	var req hotspotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.NClusters <= 0 {
		req.NClusters = 15
	}

	samples, centers := h.store.Hotspots(req.Areas, req.Crimes, req.Severities, req.NClusters)

	heat := make([][]float64, 0, len(samples))
	for _, s := range samples {
		heat = append(heat, []float64{s.Location.Lat, s.Location.Lon, severityWeight(s.Severity)})
	}
	out := make([][]float64, 0, len(centers))
	for _, p := range centers {
		out = append(out, []float64{p.Lat, p.Lon})
	}

	c.JSON(http.StatusOK, gin.H{"heat_data": heat, "centers": out})
}

func (h *handler) mapContext(c *gin.Context) {
	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	lat, lon := *req.Lat, *req.Lon
	offsets := []struct {
		kind, name string
		dLat, dLon float64
	}{
		{"police", "Central Community Police Station", 0.012, -0.018},
		{"police", "Rampart Community Police Station", -0.021, 0.009},
		{"hospital", "County General Hospital", 0.017, 0.022},
		{"hospital", "Good Samaritan Hospital", -0.008, -0.026},
	}

	amenities := make([]gin.H, 0, len(offsets))
	for _, o := range offsets {
		amenities = append(amenities, gin.H{
			"type": o.kind,
			"name": o.name,
			"lat":  lat + o.dLat,
			"lon":  lon + o.dLon,
		})
	}

	c.JSON(http.StatusOK, gin.H{"amenities": amenities})
}

func (h *handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	start := geo.LatLon{Lat: req.Start[0], Lon: req.Start[1]}
	end := geo.LatLon{Lat: req.End[0], Lon: req.End[1]}
	if !start.Valid() || !end.Valid() || geo.Distance(start, end) > maxRouteMeters {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No route found"})
		return
	}

	path := safestPath(start, end, h.store.Centers())
	safest := make([][]float64, len(path))
	for i, p := range path {
		safest[i] = []float64{p.Lat, p.Lon}
	}

	c.JSON(http.StatusOK, gin.H{"safest": safest})
}

func (h *handler) incidents(c *gin.Context) {
	stored := h.store.Incidents()
	out := make([]gin.H, 0, len(stored))
	for _, inc := range stored {
		out = append(out, gin.H{
			"id":          inc.ID,
			"lat":         inc.Location.Lat,
			"lon":         inc.Location.Lon,
			"category":    inc.Category,
			"description": inc.Description,
			"timestamp":   inc.Timestamp.Format("2006-01-02T15:04:05.000000"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"incidents": out})
}

func (h *handler) reportIncident(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	loc := geo.LatLon{Lat: *req.Lat, Lon: *req.Lon}
	if !loc.Valid() || strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid incident report"})
		return
	}
	if req.Category == "" {
		req.Category = "General"
	}

	inc := h.store.AddIncident(loc, req.Category, req.Description)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Incident reported successfully.",
		"report":        gin.H{"id": inc.ID, "lat": loc.Lat, "lon": loc.Lon, "category": inc.Category, "description": inc.Description},
		"total_reports": len(h.store.Incidents()),
	})
}

// safestPath walks the straight line between the endpoints and pushes intermediate
// points away from any cluster center closer than avoidMeters
func safestPath(start, end geo.LatLon, centers []geo.LatLon) []geo.LatLon {
	const steps = 24
	const avoidMeters = 400.0

	path := make([]geo.LatLon, 0, steps+1)
	path = append(path, start)
	for i := 1; i < steps; i++ {
		t := float64(i) / steps
		p := geo.LatLon{
			Lat: start.Lat + (end.Lat-start.Lat)*t,
			Lon: start.Lon + (end.Lon-start.Lon)*t,
		}

		for _, c := range centers {
			d := geo.Distance(p, c)
			if d >= avoidMeters || d == 0 {
				continue
			}
			push := (avoidMeters - d) / d
			p.Lat += (p.Lat - c.Lat) * push
			p.Lon += (p.Lon - c.Lon) * push
		}
		path = append(path, p)
	}

	return append(path, end)
}

func severityWeight(severity string) float64 {
	switch severity {
	case "High":
		return 1.0
	case "Medium":
		return 0.6
	default:
		return 0.3
	}
}
