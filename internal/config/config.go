package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultRadiusKm     = 15.0
	DefaultAspectRatio  = 2.0
	DefaultAlertMeters  = 500.0
	DefaultRoadDetail   = 6
	DefaultClusters     = 15
	DefaultRouteTimeout = 25 * time.Second
	DefaultFixTimeout   = 30 * time.Second

	// DefaultRequestTimeout bounds every backend call at the transport. Route
	// fetches carry their own, tighter RouteTimeout.
	DefaultRequestTimeout = 2 * time.Minute
)

// Config holds runtime settings. Values come from .env, then the environment,
// then command-line flags applied by main.
type Config struct {
	APIURL         string
	GPSAddr        string
	GPSReplay      string
	GPSCommand     string
	CacheDir       string
	RadiusKm       float64
	AspectRatio    float64
	AlertMeters    float64
	RoadDetail     int
	Clusters       int
	RouteTimeout   time.Duration
	RequestTimeout time.Duration
	FixTimeout     time.Duration
	DebugLog       string
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		RadiusKm:       DefaultRadiusKm,
		AspectRatio:    DefaultAspectRatio,
		AlertMeters:    DefaultAlertMeters,
		RoadDetail:     DefaultRoadDetail,
		Clusters:       DefaultClusters,
		RouteTimeout:   DefaultRouteTimeout,
		RequestTimeout: DefaultRequestTimeout,
		FixTimeout:     DefaultFixTimeout,
	}
}

// Load reads the optional env files (default: .env) and applies SAFEMAP_* variables
// over the defaults.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing files are fine; variables may come from the environment
		_ = godotenv.Load(f)
	}

	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("SAFEMAP_API_URL", &cfg.APIURL)
	str("SAFEMAP_GPS_ADDR", &cfg.GPSAddr)
	str("SAFEMAP_GPS_REPLAY", &cfg.GPSReplay)
	str("SAFEMAP_GPS_CMD", &cfg.GPSCommand)
	str("SAFEMAP_CACHE_DIR", &cfg.CacheDir)
	str("SAFEMAP_DEBUG_LOG", &cfg.DebugLog)

	if err := envFloat("SAFEMAP_RADIUS_KM", &cfg.RadiusKm); err != nil {
		return nil, err
	}
	if err := envFloat("SAFEMAP_ALERT_METERS", &cfg.AlertMeters); err != nil {
		return nil, err
	}
	if err := envDuration("SAFEMAP_ROUTE_TIMEOUT", &cfg.RouteTimeout); err != nil {
		return nil, err
	}
	if err := envDuration("SAFEMAP_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks ranges the rest of the program relies on
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL must be set")
	}
	if c.RadiusKm <= 0 || c.RadiusKm > 500 {
		return fmt.Errorf("map radius must be between 0 and 500 km, got %v", c.RadiusKm)
	}
	if c.AspectRatio < 1.0 || c.AspectRatio > 4.0 {
		return fmt.Errorf("aspect ratio must be between 1.0 and 4.0, got %v", c.AspectRatio)
	}
	if c.AlertMeters <= 0 {
		return fmt.Errorf("alert radius must be positive, got %v", c.AlertMeters)
	}
	if c.RoadDetail < 1 || c.RoadDetail > 10 {
		return fmt.Errorf("road detail level must be between 1 and 10, got %d", c.RoadDetail)
	}
	sources := 0
	for _, s := range []string{c.GPSAddr, c.GPSReplay, c.GPSCommand} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("only one of GPS address, replay file and GPS command may be set")
	}
	if c.RouteTimeout <= 0 {
		return fmt.Errorf("route timeout must be positive, got %v", c.RouteTimeout)
	}
	if c.RequestTimeout < c.RouteTimeout {
		return fmt.Errorf("request timeout %v must not be shorter than the route timeout %v", c.RequestTimeout, c.RouteTimeout)
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
