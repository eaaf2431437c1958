package mapgen

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/config"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

func testRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	outputPath := filepath.Join(t.TempDir(), "maps", "index.html")
	return New(&config.Config{MapOutputPath: outputPath, City: "Lublin"}), outputPath
}

func sampleOffer(id string, price int, lat, lon float64, active bool) models.Offer {
	now := time.Now()
	return models.Offer{
		OfferID:      id,
		Title:        "Pokój " + id,
		PriceText:    "cena",
		PriceNumeric: price,
		URL:          "https://www.olx.pl/d/oferta/pokoj-ID" + id + ".html",
		FullAddress:  "ul. Narutowicza 14, Lublin",
		Latitude:     lat,
		Longitude:    lon,
		FirstSeen:    now,
		LastSeen:     now,
		IsActive:     active,
	}
}

func TestRender_WritesMapFile(t *testing.T) {
	renderer, outputPath := testRenderer(t)

	offers := []models.Offer{
		sampleOffer("aaa1", 650, 51.25, 22.56, true),
		sampleOffer("bbb2", 900, 51.24, 22.57, false),
	}
	stats := models.PassStats{ActiveOffers: 1, InactiveOffers: 1, NewOffers: 1}

	if err := renderer.Render(offers, stats); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read rendered map: %v", err)
	}
	html := string(content)

	for _, want := range []string{
		"Pokój aaa1",
		"ul. Narutowicza 14, Lublin",
		"Aktywne: 1",
		"Nieaktywne: 1",
		"leaflet",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Rendered map missing %q", want)
		}
	}
}

func TestRender_SkipsUnlocatedOffers(t *testing.T) {
	renderer, outputPath := testRenderer(t)

	offers := []models.Offer{
		sampleOffer("aaa1", 650, 51.25, 22.56, true),
		sampleOffer("nowhere", 700, 0, 0, true),
	}
	if err := renderer.Render(offers, models.PassStats{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read rendered map: %v", err)
	}
	if strings.Contains(string(content), "Pokój nowhere") {
		t.Error("Offer without coordinates must not appear on the map")
	}
}

func TestRender_OverwritesPreviousFile(t *testing.T) {
	renderer, outputPath := testRenderer(t)

	if err := renderer.Render([]models.Offer{sampleOffer("old1", 650, 51.25, 22.56, true)}, models.PassStats{}); err != nil {
		t.Fatalf("First Render() error = %v", err)
	}
	if err := renderer.Render([]models.Offer{sampleOffer("new2", 650, 51.25, 22.56, true)}, models.PassStats{}); err != nil {
		t.Fatalf("Second Render() error = %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read rendered map: %v", err)
	}
	if strings.Contains(string(content), "Pokój old1") {
		t.Error("Previous render must be fully replaced")
	}
	if !strings.Contains(string(content), "Pokój new2") {
		t.Error("New render missing current offer")
	}
}

func TestMarkerColor(t *testing.T) {
	tests := []struct {
		name   string
		price  int
		active bool
		want   string
	}{
		{"cheap", 550, true, "green"},
		{"band edge 600", 600, true, "blue"},
		{"mid", 850, true, "orange"},
		{"band edge 1000", 1000, true, "red"},
		{"expensive", 1200, true, "darkred"},
		{"inactive overrides price", 550, false, "gray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := models.Offer{PriceNumeric: tt.price, IsActive: tt.active}
			if got := markerColor(offer); got != tt.want {
				t.Errorf("markerColor(price=%d, active=%v) = %q, want %q", tt.price, tt.active, got, tt.want)
			}
		})
	}
}

func TestMapCenter(t *testing.T) {
	offers := []models.Offer{
		{Latitude: 51.20, Longitude: 22.50, IsActive: true},
		{Latitude: 51.30, Longitude: 22.60, IsActive: true},
		{Latitude: 51.90, Longitude: 23.90, IsActive: false}, // ignored
	}
	center := mapCenter(offers)
	if math.Abs(center.Latitude-51.25) > 1e-9 || math.Abs(center.Longitude-22.55) > 1e-9 {
		t.Errorf("mapCenter = %v, want mean of active offers", center)
	}
}

func TestMapCenter_DefaultsWhenNoActiveOffers(t *testing.T) {
	center := mapCenter([]models.Offer{{Latitude: 51.25, Longitude: 22.56, IsActive: false}})
	if center != defaultCenter {
		t.Errorf("mapCenter = %v, want default city center", center)
	}
}
