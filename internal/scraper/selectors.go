package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

// SelectorConfig describes how to locate listings in OLX markup. Every
// element is a prioritized list of CSS selectors tried in order; the
// first strategy that yields a non-empty result wins. OLX reshuffles its
// markup regularly, so the strategies are data, not code.
type SelectorConfig struct {
	SearchResults  SearchSelectors `json:"search_results"`
	ListingDetails DetailSelectors `json:"listing_details"`
}

type SearchSelectors struct {
	Items []string `json:"items"`
	Title []string `json:"title"`
	Price []string `json:"price"`
	Link  []string `json:"link"`
}

type DetailSelectors struct {
	Description []string `json:"description"`
}

// LoadSelectors loads the selector configuration from a JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}
	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON.
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
		SearchResults: SearchSelectors{
			Items: []string{
				"div[data-cy=l-card]",
				"div[data-testid=l-card]",
				"div.offer-wrapper",
			},
			Title: []string{
				"a[data-cy=listing-ad-title]",
				"h6",
				"h5",
				"h4",
			},
			Price: []string{
				"p[data-testid=ad-price]",
				"span[data-testid=ad-price]",
				"p.price",
			},
			Link: []string{
				"a[href]",
			},
		},
		ListingDetails: DetailSelectors{
			Description: []string{
				"div[data-cy=ad_description]",
				"div[data-testid=ad_description]",
				"div#textContent",
			},
		},
	}
}
