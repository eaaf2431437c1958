package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

// lublinBounds is the fixed bounding box for the target city. Geocoding
// candidates outside it are rejected, never stored.
var lublinBounds = models.BoundingBox{
	MinLat: 51.15,
	MaxLat: 51.35,
	MinLon: 22.35,
	MaxLon: 22.75,
}

type Config struct {
	ProjectID      string
	Port           string
	BaseURL        string
	SearchURL      string
	GeocoderURL    string
	GeocodeDelay   time.Duration
	PageDelay      time.Duration
	MaxPages       int
	DetailWorkers  int
	MapOutputPath  string
	City           string
	CityBounds     models.BoundingBox
	AllowedDomains []string
}

func Load() (*Config, error) {
	// A local .env is a development convenience; absence is fine.
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	baseURL := os.Getenv("OLX_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.olx.pl"
	}

	searchURL := os.Getenv("OLX_SEARCH_URL")
	if searchURL == "" {
		searchURL = "https://www.olx.pl/nieruchomosci/stancje-pokoje/lublin/"
	}

	geocoderURL := os.Getenv("GEOCODER_URL")
	if geocoderURL == "" {
		geocoderURL = "https://nominatim.openstreetmap.org/search"
	}

	geocodeDelay, err := durationEnv("GEOCODE_DELAY", 1200*time.Millisecond)
	if err != nil {
		return nil, err
	}

	pageDelay, err := durationEnv("PAGE_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	maxPages, err := intEnv("MAX_PAGES", 100)
	if err != nil {
		return nil, err
	}

	detailWorkers, err := intEnv("DETAIL_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	mapOutputPath := os.Getenv("MAP_OUTPUT_PATH")
	if mapOutputPath == "" {
		mapOutputPath = "docs/index.html"
	}

	return &Config{
		ProjectID:      projectID,
		Port:           port,
		BaseURL:        baseURL,
		SearchURL:      searchURL,
		GeocoderURL:    geocoderURL,
		GeocodeDelay:   geocodeDelay,
		PageDelay:      pageDelay,
		MaxPages:       maxPages,
		DetailWorkers:  detailWorkers,
		MapOutputPath:  mapOutputPath,
		City:           "Lublin",
		CityBounds:     lublinBounds,
		AllowedDomains: []string{"www.olx.pl", "olx.pl"},
	}, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

func intEnv(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return parsed, nil
}
