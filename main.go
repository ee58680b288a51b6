package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"safemap/internal/api"
	"safemap/internal/cache"
	"safemap/internal/config"
	"safemap/internal/controller"
	"safemap/internal/debug"
	"safemap/internal/geo"
	"safemap/internal/locate"
	"safemap/internal/models"
	"safemap/internal/render"
	"safemap/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Parse command line flags; they override .env and the environment
	help := flag.Bool("h", false, "Show help message")
	flag.StringVar(&cfg.APIURL, "api", cfg.APIURL, "Crime analytics backend URL")
	flag.StringVar(&cfg.GPSAddr, "gps", cfg.GPSAddr, "NMEA position feed address (e.g., localhost:10110)")
	flag.StringVar(&cfg.GPSReplay, "replay", cfg.GPSReplay, "Replay NMEA sentences from a file instead of a live feed")
	flag.StringVar(&cfg.GPSCommand, "gps-cmd", cfg.GPSCommand, "Run a local program that prints NMEA (e.g., \"gpspipe -r\")")
	flag.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Cache directory for map data (default: ~/.safemap/data)")
	flag.StringVar(&cfg.DebugLog, "d", cfg.DebugLog, "Debug log file (e.g., debug.log)")
	flag.Float64Var(&cfg.RadiusKm, "r", cfg.RadiusKm, "Map radius in kilometers")
	flag.Float64Var(&cfg.AspectRatio, "a", cfg.AspectRatio, "Character aspect ratio - adjust for font width (1.0-4.0)")
	flag.IntVar(&cfg.RoadDetail, "H", cfg.RoadDetail, "Road detail level - lower shows fewer roads (1-10)")
	areas := flag.String("areas", "", "Comma-separated area filter")
	crimes := flag.String("crimes", "", "Comma-separated crime type filter")
	severities := flag.String("severities", "", "Comma-separated severity filter")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("safemap - Terminal crime safety map")
		fmt.Println("\nUsage: safemap [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Println("\nKeys: n navigate, i report, x reset, t tracking, d dismiss alert, 1-5 layers, L reports, q quit")
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up debug logging if requested
	if cfg.DebugLog != "" {
		logFile, err := os.Create(cfg.DebugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			debug.SetOutput(logFile)
			debug.Log("safemap debug log started")
			fmt.Printf("Debug logging enabled: %s\n", cfg.DebugLog)
		}
	}

	// Initialize cache manager
	fmt.Println("Initializing map data cache...")
	cacheManager, err := cache.NewManager(cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize cache: %v\n", err)
		os.Exit(1)
	}

	// The basemap is context only; run without it when the download fails
	fmt.Println("Checking Natural Earth data...")
	if err := cacheManager.EnsureData(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: basemap unavailable: %v\n", err)
	}

	fmt.Println("Loading geographic features...")
	features := geo.NewBasemapLoader(cacheManager.GetCacheDir()).LoadAll(cfg.RoadDetail)
	fmt.Printf("Loaded %d features\n", features.Count())

	client := api.NewClient(cfg.APIURL, cfg.RequestTimeout)

	var source locate.Source
	switch {
	case cfg.GPSAddr != "":
		source = &locate.NetworkSource{Addr: cfg.GPSAddr}
	case cfg.GPSReplay != "":
		source = &locate.ReplaySource{Path: cfg.GPSReplay, Loop: true}
	case cfg.GPSCommand != "":
		cmd, err := locate.ParseCommand(cfg.GPSCommand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = cmd
	}
	if source != nil {
		fmt.Printf("Position source: %s\n", source)
	}
	tracker := locate.NewTracker(source, cfg.FixTimeout)

	scene := render.NewScene(render.NewBasemapRenderer(nil, features))
	ctrl := controller.New(client, tracker, scene, controller.Options{
		Clusters:     cfg.Clusters,
		AlertRadius:  cfg.AlertMeters,
		RouteTimeout: cfg.RouteTimeout,
	})

	fmt.Printf("Starting safemap (backend: %s, radius: %.0f km)...\n", cfg.APIURL, cfg.RadiusKm)
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(screen, ctrl, scene, tracker, ui.ViewOptions{
		Center:      controller.DefaultCenter,
		RadiusKm:    cfg.RadiusKm,
		AspectRatio: cfg.AspectRatio,
		Filters: models.Filters{
			Areas:      splitList(*areas),
			Crimes:     splitList(*crimes),
			Severities: splitList(*severities),
		},
	})

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	fmt.Println("\nGoodbye!")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
