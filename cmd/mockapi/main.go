// Command mockapi serves the crime analytics endpoints from synthetic data, for
// development without the real backend.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"safemap/internal/geo"
	"safemap/internal/mockapi"
)

func main() {
	addr := flag.String("addr", ":8000", "Listen address")
	latency := flag.Duration("latency", 0, "Delay added to every response (e.g., 800ms)")
	lat := flag.Float64("lat", 34.0522, "Latitude of the synthetic city centre")
	lon := flag.Float64("lon", -118.2437, "Longitude of the synthetic city centre")
	clusters := flag.Int("clusters", 8, "Number of synthetic crime clusters")
	perCluster := flag.Int("per-cluster", 40, "Crimes generated around each cluster")
	seed := flag.Int64("seed", 1, "Random seed")
	quiet := flag.Bool("q", false, "Disable request logging")
	flag.Parse()

	center := geo.LatLon{Lat: *lat, Lon: *lon}
	if !center.Valid() {
		fmt.Fprintf(os.Stderr, "Error: invalid centre %s\n", center)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	store := mockapi.NewStore(center, *clusters, *perCluster, *seed)
	router := mockapi.NewRouter(store, mockapi.Options{Latency: *latency, Logging: !*quiet})

	fmt.Printf("Mock analytics backend listening on %s\n", *addr)
	if err := router.Run(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
