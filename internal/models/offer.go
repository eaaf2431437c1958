package models

import (
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when the offer store cannot be opened.
// It is the only fault that aborts a monitoring pass outright.
var ErrStoreUnavailable = errors.New("offer store unavailable")

// UpsertResult classifies what an upsert did to the stored record.
type UpsertResult string

const (
	UpsertNew       UpsertResult = "new"
	UpsertUpdated   UpsertResult = "updated"
	UpsertUnchanged UpsertResult = "unchanged"
)

// RawOffer is what the scraper hands over for one listing: identity plus
// the free-text fields the pipeline mines for an address.
type RawOffer struct {
	OfferID      string
	Title        string
	PriceText    string
	PriceNumeric int
	URL          string
	Description  string
}

// Offer is the durable record tracked across monitoring passes.
type Offer struct {
	OfferID        string    `firestore:"offerId" validate:"required"`
	Title          string    `firestore:"title" validate:"required"`
	PriceText      string    `firestore:"priceText"`
	PriceNumeric   int       `firestore:"priceNumeric" validate:"gte=0"`
	URL            string    `firestore:"url" validate:"required,url"`
	Description    string    `firestore:"description,omitempty"`
	StreetName     string    `firestore:"streetName" validate:"required"`
	BuildingNumber string    `firestore:"buildingNumber" validate:"required"`
	UnitNumber     string    `firestore:"unitNumber,omitempty"`
	FullAddress    string    `firestore:"fullAddress" validate:"required"`
	Latitude       float64   `firestore:"latitude"`
	Longitude      float64   `firestore:"longitude"`
	FirstSeen      time.Time `firestore:"firstSeen" validate:"required"`
	LastSeen       time.Time `firestore:"lastSeen" validate:"required"`
	IsActive       bool      `firestore:"isActive"`
	ContentHash    string    `firestore:"contentHash" validate:"required"`

	// Derived from firstSeen/lastSeen at read time, never stored.
	DaysActive int `firestore:"-"`
}

// Location returns the offer's resolved coordinates.
func (o *Offer) Location() GeoPoint {
	return GeoPoint{Latitude: o.Latitude, Longitude: o.Longitude}
}

// PassStats summarizes one reconciliation pass. Persisted as an audit row.
type PassStats struct {
	Timestamp       time.Time `firestore:"timestamp"`
	TotalFound      int       `firestore:"totalFound"`
	WithAddresses   int       `firestore:"withAddresses"`
	NewOffers       int       `firestore:"newOffers"`
	UpdatedOffers   int       `firestore:"updatedOffers"`
	UnchangedOffers int       `firestore:"unchangedOffers"`
	ActiveOffers    int       `firestore:"activeOffers"`
	InactiveOffers  int       `firestore:"inactiveOffers"`
}
