package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("PORT", "9090")
	t.Setenv("OLX_SEARCH_URL", "https://www.olx.pl/test/lublin/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("Expected test-project, got %s", cfg.ProjectID)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected 9090, got %s", cfg.Port)
	}
	if cfg.SearchURL != "https://www.olx.pl/test/lublin/" {
		t.Errorf("Unexpected SearchURL %s", cfg.SearchURL)
	}
	if cfg.GeocodeDelay != 1200*time.Millisecond {
		t.Errorf("Expected default geocode delay 1.2s, got %s", cfg.GeocodeDelay)
	}
	if cfg.MaxPages != 100 {
		t.Errorf("Expected default MaxPages 100, got %d", cfg.MaxPages)
	}
	if cfg.City != "Lublin" {
		t.Errorf("Expected city Lublin, got %s", cfg.City)
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return an error when GOOGLE_CLOUD_PROJECT is not set")
	}
}

func TestLoad_CustomGeocodeDelay(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("GEOCODE_DELAY", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.GeocodeDelay != 3*time.Second {
		t.Errorf("Expected 3s, got %s", cfg.GeocodeDelay)
	}
}

func TestLoad_InvalidGeocodeDelay(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("GEOCODE_DELAY", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return error for invalid GEOCODE_DELAY")
	}
}

func TestLoad_InvalidMaxPages(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("MAX_PAGES", "many")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return error for invalid MAX_PAGES")
	}
}

func TestLoad_CityBounds(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	b := cfg.CityBounds
	if b.MinLat != 51.15 || b.MaxLat != 51.35 || b.MinLon != 22.35 || b.MaxLon != 22.75 {
		t.Errorf("Unexpected city bounds: %+v", b)
	}
}
