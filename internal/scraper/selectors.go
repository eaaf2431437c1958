package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

// SelectorConfig holds the CSS selectors for the listing site. Detail fields
// carry candidate lists because the site rotates its markup between
// generated class names and data attributes.
type SelectorConfig struct {
	OfferList    ListSelectors   `json:"offer_list"`
	OfferDetails DetailSelectors `json:"offer_details"`
}

type ListSelectors struct {
	OfferLink string `json:"offer_link"` // anchors pointing at offer pages
}

type DetailSelectors struct {
	Title       []string `json:"title"`
	Price       []string `json:"price"`
	Description []string `json:"description"`
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// This supports loading from embedded data via go:embed.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	var config SelectorConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}

	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is
// loaded. The embedded selectors.json should be preferred.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		OfferList: ListSelectors{
			OfferLink: "a[href*='/d/oferta/']",
		},
		OfferDetails: DetailSelectors{
			Title: []string{
				"h1[data-cy='ad_title']",
				"h1",
				"[data-testid='ad-title']",
			},
			Price: []string{
				"[data-testid='ad-price-container']",
				"[data-cy='ad-price']",
				".price-label",
			},
			Description: []string{
				"[data-cy='ad_description']",
				".css-g5mtl5",
				"[data-testid='description']",
			},
		},
	}
}
