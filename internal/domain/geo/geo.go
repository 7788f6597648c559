package geo

import (
	"context"
	"errors"
	"math"
)

var (
	ErrEmptyQuery  = errors.New("location query is empty")
	ErrNotFound    = errors.New("location not found")
	ErrUnavailable = errors.New("geocoder unavailable")
)

const earthRadiusKM = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type Location struct {
	Point
	DisplayName string `json:"display_name"`
	City        string `json:"city,omitempty"`
	Provider    string `json:"provider"`
}

// Geocoder resolves free text ("Plateau-Mont-Royal, Montréal") to a point.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Location, error)
	Name() string
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DefaultLocation is used when the caller shares no usable location, the
// same way a browser falls back when geolocation is denied.
func DefaultLocation(p Point) *Location {
	return &Location{Point: p, DisplayName: "default", Provider: "default"}
}
