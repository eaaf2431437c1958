// Package geocoder resolves extracted street addresses to coordinates via
// the Nominatim search API, with a durable cache in front of it.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/config"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

const userAgent = "Room-Scanner-Lublin/1.0 (Educational)"

// Cache is a durable point lookup/insert mapping from cache key to
// coordinates. Entries are never expired or invalidated.
type Cache interface {
	Get(ctx context.Context, key string) (models.GeoPoint, bool, error)
	Put(ctx context.Context, key string, pt models.GeoPoint) error
}

// Resolver owns its HTTP client, rate limiter and cache handle. Construct
// one per process and share it by reference.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	baseURL    string
	city       string
	bounds     models.BoundingBox
}

func New(cache Cache, cfg *config.Config) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(cfg.GeocodeDelay), 1),
		cache:      cache,
		baseURL:    cfg.GeocoderURL,
		city:       cfg.City,
		bounds:     cfg.CityBounds,
	}
}

// Resolve maps (street, number) to coordinates inside the city bounding box.
// Cache hits return immediately without a network call. On a miss it walks a
// fixed sequence of differently-phrased queries and accepts the first
// in-bounds candidate, persisting it to the cache before returning. A false
// second return value means every query was exhausted; the returned error is
// non-nil only when the context is cancelled.
func (r *Resolver) Resolve(ctx context.Context, street, number string) (models.GeoPoint, bool, error) {
	key := r.cacheKey(street, number)

	pt, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("Geocode cache read failed, falling through to lookup", "key", key, "error", err)
	} else if ok {
		return pt, true, nil
	}

	for _, query := range r.queries(street, number) {
		// Politeness spacing applies to every query attempt, successful
		// or not; the limiter blocks in the calling flow.
		if err := r.limiter.Wait(ctx); err != nil {
			return models.GeoPoint{}, false, err
		}

		candidates, err := r.lookup(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return models.GeoPoint{}, false, ctx.Err()
			}
			// A single failed query is not fatal; try the next phrasing.
			slog.Warn("Geocoding query failed", "query", query, "error", err)
			continue
		}

		for _, candidate := range candidates {
			if !r.bounds.Contains(candidate) {
				continue
			}
			if err := r.cache.Put(ctx, key, candidate); err != nil {
				slog.Warn("Failed to persist geocode cache entry", "key", key, "error", err)
			}
			slog.Info("Geocoded address",
				"street", street, "number", number,
				"lat", candidate.Latitude, "lon", candidate.Longitude)
			return candidate, true, nil
		}
	}

	slog.Error("Could not geocode address", "street", street, "number", number)
	return models.GeoPoint{}, false, nil
}

func (r *Resolver) cacheKey(street, number string) string {
	return strings.ToLower(street) + "_" + number + "_" + strings.ToLower(r.city)
}

// queries returns the fallback sequence, most precise phrasing first. The
// final street-only query drops the building number as a last resort.
func (r *Resolver) queries(street, number string) []string {
	return []string{
		fmt.Sprintf("%s %s, %s, Polska", street, number, r.city),
		fmt.Sprintf("ul. %s %s, %s, Poland", street, number, r.city),
		fmt.Sprintf("ulica %s %s, %s, Polska", street, number, r.city),
		fmt.Sprintf("al. %s %s, %s, Polska", street, number, r.city),
		fmt.Sprintf("aleja %s %s, %s, Polska", street, number, r.city),
		fmt.Sprintf("%s, %s, Polska", street, r.city),
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (r *Resolver) lookup(ctx context.Context, query string) ([]models.GeoPoint, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "3")
	params.Set("countrycodes", "pl")
	params.Set("bounded", "1")
	params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g",
		r.bounds.MinLon, r.bounds.MinLat, r.bounds.MaxLon, r.bounds.MaxLat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	points := make([]models.GeoPoint, 0, len(results))
	for _, res := range results {
		lat, latErr := strconv.ParseFloat(res.Lat, 64)
		lon, lonErr := strconv.ParseFloat(res.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		points = append(points, models.GeoPoint{Latitude: lat, Longitude: lon})
	}
	return points, nil
}
