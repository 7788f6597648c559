package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Nominatim queries an OpenStreetMap Nominatim instance, restricted to Canada.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

func NewNominatim(client *http.Client, baseURL, userAgent string) *Nominatim {
	return &Nominatim{client: client, baseURL: strings.TrimRight(baseURL, "/"), userAgent: userAgent}
}

func (n *Nominatim) Name() string { return "nominatim" }

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
	} `json:"address"`
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	params.Set("countrycodes", "ca")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create nominatim request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: nominatim status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode nominatim response: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	r := results[0]
	lat, errLat := strconv.ParseFloat(r.Lat, 64)
	lng, errLng := strconv.ParseFloat(r.Lon, 64)
	if errLat != nil || errLng != nil {
		return nil, fmt.Errorf("%w: bad coordinates %q,%q", ErrUnavailable, r.Lat, r.Lon)
	}

	return &Location{
		Point:       Point{Lat: lat, Lng: lng},
		DisplayName: r.DisplayName,
		City:        firstNonEmpty(r.Address.City, r.Address.Town, r.Address.Village, r.Address.Municipality),
		Provider:    n.Name(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
