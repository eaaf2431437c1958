package validator

import (
	"testing"
	"time"

	"github.com/Bonaventura-EW/Room-scanner-lublin/internal/models"
)

func validOffer() models.Offer {
	now := time.Now()
	return models.Offer{
		OfferID:        "abc12",
		Title:          "Pokój w centrum",
		PriceText:      "650 zł",
		PriceNumeric:   650,
		URL:            "https://www.olx.pl/d/oferta/pokoj-w-centrum-IDabc12.html",
		Description:    "Ul. Narutowicza 14, blisko UMCS.",
		StreetName:     "Narutowicza",
		BuildingNumber: "14",
		FullAddress:    "ul. Narutowicza 14, Lublin",
		FirstSeen:      now,
		LastSeen:       now,
		IsActive:       true,
		ContentHash:    "deadbeef",
	}
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(*models.Offer)
		wantErr bool
	}{
		{
			name:    "Valid Offer",
			mutate:  func(o *models.Offer) {},
			wantErr: false,
		},
		{
			name:    "Missing Title",
			mutate:  func(o *models.Offer) { o.Title = "" },
			wantErr: true,
		},
		{
			name:    "Invalid URL",
			mutate:  func(o *models.Offer) { o.URL = "not-a-url" },
			wantErr: true,
		},
		{
			name:    "Missing Street",
			mutate:  func(o *models.Offer) { o.StreetName = "" },
			wantErr: true,
		},
		{
			name:    "Negative Price",
			mutate:  func(o *models.Offer) { o.PriceNumeric = -1 },
			wantErr: true,
		},
		{
			name:    "Missing Content Hash",
			mutate:  func(o *models.Offer) { o.ContentHash = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := validOffer()
			tt.mutate(&offer)
			if err := v.ValidateStruct(offer); (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
