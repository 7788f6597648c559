package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google calls the Google Geocoding API. The key comes from configuration
// and never reaches the browser; clients go through GET /geocode.
type Google struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewGoogle(client *http.Client, baseURL, apiKey string) *Google {
	if baseURL == "" {
		baseURL = googleGeocodeURL
	}
	return &Google{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (g *Google) Name() string { return "google" }

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *Google) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("address", query)
	params.Set("components", "country:CA")
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create google request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google status %d", ErrUnavailable, resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode google response: %v", ErrUnavailable, err)
	}

	switch body.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: google status %s %s", ErrUnavailable, body.Status, body.ErrorMessage)
	}
	if len(body.Results) == 0 {
		return nil, ErrNotFound
	}

	r := body.Results[0]
	loc := &Location{
		Point:       Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		DisplayName: r.FormattedAddress,
		Provider:    g.Name(),
	}
	for _, c := range r.AddressComponents {
		for _, t := range c.Types {
			if t == "locality" {
				loc.City = c.LongName
			}
		}
	}
	return loc, nil
}
