package catalog

import (
	"housie/internal/domain"
	"housie/internal/domain/geo"
)

// SearchQuery combines the three browse filters. Location is resolved in
// this order: explicit Lat/Lng, UseMyLocation (default coordinate), then
// the free-text Location string.
type SearchQuery struct {
	Text          string
	Category      string
	Lat           *float64
	Lng           *float64
	UseMyLocation bool
	Location      string
	RadiusKM      float64
}

type CleanerResult struct {
	domain.Cleaner
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

type SearchResult struct {
	Cleaners []CleanerResult `json:"cleaners"`
	Total    int             `json:"total"`
	Origin   *geo.Location   `json:"origin,omitempty"`
	RadiusKM float64         `json:"radius_km,omitempty"`
	// LocationFallback is set when geocoding failed and the location string
	// was matched as text instead.
	LocationFallback bool `json:"location_fallback"`
}
