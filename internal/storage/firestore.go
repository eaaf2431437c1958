// Package storage persists offers, pass statistics and the geocode cache in
// Cloud Firestore.
package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

const (
	offersCollection   = "offers"
	geocacheCollection = "geocache"
	statsCollection    = "stats"
)

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// UpsertOffer merges one resolved offer into the durable table and reports
// what happened. firstSeen is preserved once set; a content-hash change or a
// stored-inactive record refreshes the mutable fields and reactivates the
// offer; otherwise only lastSeen advances.
func (c *Client) UpsertOffer(ctx context.Context, offer models.Offer) (models.UpsertResult, error) {
	docRef := c.client.Collection(offersCollection).Doc(offer.OfferID)

	var result models.UpsertResult
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return err
			}
			result = models.UpsertNew
			return tx.Set(docRef, offer)
		}

		var existing models.Offer
		if err := doc.DataTo(&existing); err != nil {
			return fmt.Errorf("failed to unmarshal stored offer: %w", err)
		}

		result = classifyUpsert(existing.ContentHash, existing.IsActive, offer.ContentHash)
		if result == models.UpsertUnchanged {
			return tx.Update(docRef, []firestore.Update{
				{Path: "lastSeen", Value: offer.LastSeen},
			})
		}
		return tx.Update(docRef, []firestore.Update{
			{Path: "title", Value: offer.Title},
			{Path: "priceText", Value: offer.PriceText},
			{Path: "priceNumeric", Value: offer.PriceNumeric},
			{Path: "description", Value: offer.Description},
			{Path: "lastSeen", Value: offer.LastSeen},
			{Path: "isActive", Value: true},
			{Path: "contentHash", Value: offer.ContentHash},
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert offer %s: %w", offer.OfferID, err)
	}
	return result, nil
}

// classifyUpsert decides how an incoming observation of an already-stored
// offer is applied.
func classifyUpsert(storedHash string, storedActive bool, incomingHash string) models.UpsertResult {
	if storedHash != incomingHash || !storedActive {
		return models.UpsertUpdated
	}
	return models.UpsertUnchanged
}

// MarkInactive deactivates every currently-active offer whose id is absent
// from activeIDs, stamping lastSeen with the pass timestamp. An empty set
// deactivates everything: a pass that legitimately found no listings retires
// all previously active offers. Returns the number deactivated.
func (c *Client) MarkInactive(ctx context.Context, activeIDs map[string]struct{}, ts time.Time) (int, error) {
	iter := c.client.Collection(offersCollection).
		Where("isActive", "==", true).
		Documents(ctx)
	defer iter.Stop()

	bulkWriter := c.client.BulkWriter(ctx)
	defer bulkWriter.End()

	deactivated := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deactivated, fmt.Errorf("failed to iterate active offers: %w", err)
		}
		if _, seen := activeIDs[doc.Ref.ID]; seen {
			continue
		}

		_, err = bulkWriter.Update(doc.Ref, []firestore.Update{
			{Path: "isActive", Value: false},
			{Path: "lastSeen", Value: ts},
		})
		if err != nil {
			return deactivated, fmt.Errorf("failed to queue deactivation for %s: %w", doc.Ref.ID, err)
		}
		deactivated++
	}

	if deactivated > 0 {
		bulkWriter.Flush()
	}
	return deactivated, nil
}

// ListOffers returns every offer with a resolved location, oldest first,
// with daysActive recomputed from firstSeen/lastSeen at read time.
func (c *Client) ListOffers(ctx context.Context) ([]models.Offer, error) {
	iter := c.client.Collection(offersCollection).
		OrderBy("firstSeen", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var offers []models.Offer
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate offers: %w", err)
		}

		var offer models.Offer
		if err := doc.DataTo(&offer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal offer %s: %w", doc.Ref.ID, err)
		}
		if offer.Latitude == 0 && offer.Longitude == 0 {
			continue
		}
		offer.DaysActive = daysActive(offer.FirstSeen, offer.LastSeen)
		offers = append(offers, offer)
	}
	return offers, nil
}

func daysActive(firstSeen, lastSeen time.Time) int {
	if lastSeen.Before(firstSeen) {
		return 0
	}
	return int(lastSeen.Sub(firstSeen).Hours() / 24)
}

// SaveStats appends one audit row for a finished pass. Rows are never
// mutated after insertion.
func (c *Client) SaveStats(ctx context.Context, stats models.PassStats) error {
	_, _, err := c.client.Collection(statsCollection).Add(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to save pass stats: %w", err)
	}
	return nil
}

// GeoCache adapts the geocache collection to the resolver's cache contract.
type GeoCache struct {
	client *firestore.Client
}

func (c *Client) GeoCache() *GeoCache {
	return &GeoCache{client: c.client}
}

func (g *GeoCache) Get(ctx context.Context, key string) (models.GeoPoint, bool, error) {
	doc, err := g.client.Collection(geocacheCollection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.GeoPoint{}, false, nil
		}
		return models.GeoPoint{}, false, fmt.Errorf("failed to read geocache entry %s: %w", key, err)
	}

	var pt models.GeoPoint
	if err := doc.DataTo(&pt); err != nil {
		return models.GeoPoint{}, false, fmt.Errorf("failed to unmarshal geocache entry %s: %w", key, err)
	}
	return pt, true, nil
}

// Put writes the entry durably; the resolver relies on the write completing
// before it returns a freshly resolved point.
func (g *GeoCache) Put(ctx context.Context, key string, pt models.GeoPoint) error {
	_, err := g.client.Collection(geocacheCollection).Doc(key).Set(ctx, pt)
	if err != nil {
		return fmt.Errorf("failed to write geocache entry %s: %w", key, err)
	}
	return nil
}
