// Package mapgen renders the offer table as a self-contained Leaflet map
// page, published by overwriting a single HTML file.
package mapgen

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/config"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

// defaultCenter is used when no active offer has coordinates.
var defaultCenter = models.GeoPoint{Latitude: 51.2465, Longitude: 22.5684}

const inactiveColor = "gray"

// marker is the per-offer payload embedded into the page as JSON.
type marker struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Color      string  `json:"color"`
	Title      string  `json:"title"`
	PriceText  string  `json:"priceText"`
	Address    string  `json:"address"`
	URL        string  `json:"url"`
	FirstSeen  string  `json:"firstSeen"`
	LastSeen   string  `json:"lastSeen"`
	DaysActive int     `json:"daysActive"`
	Active     bool    `json:"active"`
}

type pageData struct {
	GeneratedAt string
	Center      models.GeoPoint
	Markers     []marker
	Stats       models.PassStats
}

type Renderer struct {
	outputPath string
}

func New(cfg *config.Config) *Renderer {
	return &Renderer{outputPath: cfg.MapOutputPath}
}

// Render writes the map page atomically: readers of the published file never
// observe a partial write. Offers without coordinates are tracked in the
// table but cannot be placed and are left off the map.
func (r *Renderer) Render(offers []models.Offer, stats models.PassStats) error {
	located := make([]models.Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.Latitude == 0 && offer.Longitude == 0 {
			continue
		}
		located = append(located, offer)
	}

	data := pageData{
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		Center:      mapCenter(located),
		Markers:     make([]marker, 0, len(located)),
		Stats:       stats,
	}
	for _, offer := range located {
		data.Markers = append(data.Markers, marker{
			Lat:        offer.Latitude,
			Lon:        offer.Longitude,
			Color:      markerColor(offer),
			Title:      offer.Title,
			PriceText:  offer.PriceText,
			Address:    offer.FullAddress,
			URL:        offer.URL,
			FirstSeen:  offer.FirstSeen.Format("2006-01-02"),
			LastSeen:   offer.LastSeen.Format("2006-01-02"),
			DaysActive: offer.DaysActive,
			Active:     offer.IsActive,
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render map page: %w", err)
	}
	return r.writeAtomic(buf.Bytes())
}

func (r *Renderer) writeAtomic(content []byte) error {
	dir := filepath.Dir(r.outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create map output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".map-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp map file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write map file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close map file: %w", err)
	}
	if err := os.Rename(tmpName, r.outputPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish map file: %w", err)
	}
	return nil
}

// mapCenter is the mean position of the active located offers, falling back
// to the city center for an empty or fully inactive table.
func mapCenter(located []models.Offer) models.GeoPoint {
	var sumLat, sumLon float64
	count := 0
	for _, offer := range located {
		if !offer.IsActive {
			continue
		}
		sumLat += offer.Latitude
		sumLon += offer.Longitude
		count++
	}
	if count == 0 {
		return defaultCenter
	}
	return models.GeoPoint{
		Latitude:  sumLat / float64(count),
		Longitude: sumLon / float64(count),
	}
}

// markerColor maps the monthly price to a band color; inactive offers are
// gray regardless of price.
func markerColor(offer models.Offer) string {
	if !offer.IsActive {
		return inactiveColor
	}
	switch price := offer.PriceNumeric; {
	case price < 600:
		return "green"
	case price < 800:
		return "blue"
	case price < 1000:
		return "orange"
	case price < 1200:
		return "red"
	default:
		return "darkred"
	}
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="pl">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pokoje w Lublinie</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body { height: 100%; margin: 0; }
  #map { height: 100%; }
  .panel {
    position: absolute; z-index: 1000; background: white;
    padding: 10px 14px; border-radius: 6px; box-shadow: 0 1px 4px rgba(0,0,0,0.4);
    font: 13px/1.5 sans-serif;
  }
  #stats { top: 10px; right: 10px; }
  #legend { bottom: 20px; right: 10px; }
  .dot { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 6px; }
</style>
</head>
<body>
<div id="map"></div>
<div id="stats" class="panel">
  <b>Pokoje w Lublinie</b><br>
  Aktywne: {{.Stats.ActiveOffers}} &middot; Nieaktywne: {{.Stats.InactiveOffers}}<br>
  Nowe: {{.Stats.NewOffers}} &middot; Zmienione: {{.Stats.UpdatedOffers}}<br>
  <small>Aktualizacja: {{.GeneratedAt}}</small>
</div>
<div id="legend" class="panel">
  <span class="dot" style="background:green"></span>&lt; 600 zł<br>
  <span class="dot" style="background:blue"></span>600&ndash;799 zł<br>
  <span class="dot" style="background:orange"></span>800&ndash;999 zł<br>
  <span class="dot" style="background:red"></span>1000&ndash;1199 zł<br>
  <span class="dot" style="background:darkred"></span>&ge; 1200 zł<br>
  <span class="dot" style="background:gray"></span>nieaktywne
</div>
<script>
  var map = L.map('map').setView([{{.Center.Latitude}}, {{.Center.Longitude}}], 13);
  L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    maxZoom: 19,
    attribution: '&copy; OpenStreetMap contributors'
  }).addTo(map);

  var markers = {{.Markers}};
  markers.forEach(function (m) {
    var popup = '<b>' + escapeHtml(m.title) + '</b><br>' +
      escapeHtml(m.priceText) + '<br>' +
      escapeHtml(m.address) + '<br>' +
      'Od ' + m.firstSeen + ' do ' + m.lastSeen + ' (' + m.daysActive + ' dni)<br>' +
      (m.active ? '' : '<i>oferta nieaktywna</i><br>') +
      '<a href="' + encodeURI(m.url) + '" target="_blank" rel="noopener">Zobacz ofertę</a>';
    L.circleMarker([m.lat, m.lon], {
      radius: 8,
      color: m.color,
      fillColor: m.color,
      fillOpacity: m.active ? 0.8 : 0.4
    }).addTo(map).bindPopup(popup);
  });

  function escapeHtml(s) {
    var div = document.createElement('div');
    div.appendChild(document.createTextNode(s));
    return div.innerHTML;
  }
</script>
</body>
</html>
`))
