// Package monitor runs the reconciliation pass: scraped listings in, a
// consistent offer table and one stats row out.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/extractor"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/util"
	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/validator"
)

// maxDescriptionRunes caps the stored description length.
const maxDescriptionRunes = 2000

// OfferStore is the durable offer table the pass reconciles against.
type OfferStore interface {
	UpsertOffer(ctx context.Context, offer models.Offer) (models.UpsertResult, error)
	MarkInactive(ctx context.Context, activeIDs map[string]struct{}, ts time.Time) (int, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
	SaveStats(ctx context.Context, stats models.PassStats) error
}

// Geocoder resolves a street address to coordinates, or reports that it
// could not.
type Geocoder interface {
	Resolve(ctx context.Context, street, number string) (models.GeoPoint, bool, error)
}

// Scraper produces the current batch of raw listings.
type Scraper interface {
	ScrapeOffers(ctx context.Context) ([]models.RawOffer, error)
}

// MapRenderer publishes the offer table as a map artifact.
type MapRenderer interface {
	Render(offers []models.Offer, stats models.PassStats) error
}

type Engine struct {
	store    OfferStore
	geocoder Geocoder
	scraper  Scraper
	renderer MapRenderer
	validate *validator.Validator
}

func New(store OfferStore, geocoder Geocoder, scraper Scraper, renderer MapRenderer) *Engine {
	return &Engine{
		store:    store,
		geocoder: geocoder,
		scraper:  scraper,
		renderer: renderer,
		validate: validator.New(),
	}
}

// Run executes one full monitoring cycle: scrape, reconcile, render.
func (e *Engine) Run(ctx context.Context) error {
	raws, err := e.scraper.ScrapeOffers(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	stats, err := e.RunPass(ctx, raws, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reconciliation pass failed: %w", err)
	}

	offers, err := e.store.ListOffers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list offers for map: %w", err)
	}
	if err := e.renderer.Render(offers, stats); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}

	slog.Info("Monitoring cycle complete",
		"totalFound", stats.TotalFound,
		"withAddresses", stats.WithAddresses,
		"new", stats.NewOffers,
		"updated", stats.UpdatedOffers,
		"unchanged", stats.UnchangedOffers,
		"active", stats.ActiveOffers,
		"inactive", stats.InactiveOffers)
	return nil
}

// RunPass reconciles one scraped batch against the offer table at timestamp
// ts. Offers without an extractable address are counted in the total only;
// offers whose address cannot be geocoded are logged and skipped, so an
// already-stored offer that stops resolving is retired by the deactivation
// sweep. Cancellation is honored at offer boundaries: a cancelled pass
// returns the partial stats and skips deactivation, so offers missing from
// the truncated batch are not wrongly retired.
func (e *Engine) RunPass(ctx context.Context, raws []models.RawOffer, ts time.Time) (models.PassStats, error) {
	stats := models.PassStats{
		Timestamp:  ts,
		TotalFound: len(raws),
	}
	activeIDs := make(map[string]struct{})

	for _, raw := range raws {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		addr, ok := extractor.Extract(raw.Title + " " + raw.Description)
		if !ok {
			continue
		}

		point, located, err := e.geocoder.Resolve(ctx, addr.StreetName, addr.BuildingNumber)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			slog.Error("Geocoder fault, skipping offer", "offerId", raw.OfferID, "error", err)
			continue
		}
		if !located {
			slog.Warn("Skipping offer with unresolvable address", "offerId", raw.OfferID, "address", addr.FullAddress)
			continue
		}
		stats.WithAddresses++

		offer := buildOffer(raw, addr, point, ts)
		if err := e.validate.ValidateStruct(offer); err != nil {
			slog.Warn("Dropping offer that failed validation", "offerId", raw.OfferID, "error", err)
			stats.WithAddresses--
			continue
		}

		result, err := e.store.UpsertOffer(ctx, offer)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			slog.Error("Failed to upsert offer", "offerId", offer.OfferID, "error", err)
			continue
		}

		switch result {
		case models.UpsertNew:
			stats.NewOffers++
			slog.Info("New offer", "offerId", offer.OfferID, "address", offer.FullAddress, "price", offer.PriceText)
		case models.UpsertUpdated:
			stats.UpdatedOffers++
		case models.UpsertUnchanged:
			stats.UnchangedOffers++
		}
		activeIDs[offer.OfferID] = struct{}{}
	}

	if ctx.Err() != nil {
		return stats, ctx.Err()
	}

	deactivated, err := e.store.MarkInactive(ctx, activeIDs, ts)
	if err != nil {
		return stats, fmt.Errorf("failed to deactivate missing offers: %w", err)
	}
	if deactivated > 0 {
		slog.Info("Deactivated offers missing from batch", "count", deactivated)
	}

	offers, err := e.store.ListOffers(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to tally offers: %w", err)
	}
	for _, offer := range offers {
		if offer.IsActive {
			stats.ActiveOffers++
		} else {
			stats.InactiveOffers++
		}
	}

	if err := e.store.SaveStats(ctx, stats); err != nil {
		// Stats are an audit trail; losing one row does not invalidate
		// the reconciled table.
		slog.Warn("Failed to save pass stats", "error", err)
	}
	return stats, nil
}

func buildOffer(raw models.RawOffer, addr models.StructuredAddress, point models.GeoPoint, ts time.Time) models.Offer {
	description := util.TruncateRunes(raw.Description, maxDescriptionRunes)
	return models.Offer{
		OfferID:        raw.OfferID,
		Title:          raw.Title,
		PriceText:      raw.PriceText,
		PriceNumeric:   raw.PriceNumeric,
		URL:            raw.URL,
		Description:    description,
		StreetName:     addr.StreetName,
		BuildingNumber: addr.BuildingNumber,
		UnitNumber:     addr.UnitNumber,
		FullAddress:    addr.FullAddress,
		Latitude:       point.Latitude,
		Longitude:      point.Longitude,
		FirstSeen:      ts,
		LastSeen:       ts,
		IsActive:       true,
		ContentHash:    contentHash(raw.Title, raw.PriceText, description),
	}
}

// contentHash fingerprints the fields whose change should surface as an
// update. Field separators keep adjacent fields from colliding.
func contentHash(title, priceText, description string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(priceText))
	h.Write([]byte{0})
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))
}
