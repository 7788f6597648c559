package catalog

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"housie/internal/domain"
	"housie/internal/domain/geo"
	"housie/internal/metrics"
)

type cleanerLister interface {
	ListCleaners(ctx context.Context) ([]domain.Cleaner, error)
}

type Service struct {
	repo          cleanerLister
	taxonomy      *Taxonomy
	geocoder      geo.Geocoder
	defaultPoint  geo.Point
	defaultRadius float64
}

func NewService(repo cleanerLister, taxonomy *Taxonomy, geocoder geo.Geocoder, defaultPoint geo.Point, defaultRadiusKM float64) *Service {
	return &Service{
		repo:          repo,
		taxonomy:      taxonomy,
		geocoder:      geocoder,
		defaultPoint:  defaultPoint,
		defaultRadius: defaultRadiusKM,
	}
}

func (s *Service) Taxonomy() *Taxonomy { return s.taxonomy }

// SearchCleaners fetches every cleaner and applies the text, category and
// location predicates in memory. A geocoding failure never fails the search.
func (s *Service) SearchCleaners(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	var categories map[string]struct{}
	if q.Category != "" {
		slugs, err := s.taxonomy.Expand(q.Category)
		if err != nil {
			return nil, err
		}
		categories = make(map[string]struct{}, len(slugs))
		for _, slug := range slugs {
			categories[slug] = struct{}{}
		}
	}

	origin, locationText, err := s.resolveOrigin(ctx, q)
	if err != nil {
		return nil, err
	}

	cleaners, err := s.repo.ListCleaners(ctx)
	if err != nil {
		return nil, err
	}

	radius := q.RadiusKM
	if radius <= 0 {
		radius = s.defaultRadius
	}

	text := geo.Fold(q.Text)
	results := make([]CleanerResult, 0, len(cleaners))
	for _, c := range cleaners {
		if text != "" && !matchesText(c, text) {
			continue
		}
		if categories != nil && !offersAny(c, categories) {
			continue
		}
		if locationText != "" && !matchesLocationText(c, locationText) {
			continue
		}

		r := CleanerResult{Cleaner: c}
		if origin != nil {
			if c.Profile == nil || !c.Profile.HasLocation() {
				continue
			}
			d := geo.Haversine(origin.Point, geo.Point{Lat: *c.Profile.Latitude, Lng: *c.Profile.Longitude})
			if d > radius {
				continue
			}
			r.DistanceKM = &d
		}
		results = append(results, r)
	}

	if origin != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].DistanceKM < *results[j].DistanceKM
		})
	}

	out := &SearchResult{
		Cleaners:         results,
		Total:            len(results),
		Origin:           origin,
		LocationFallback: locationText != "",
	}
	if origin != nil {
		out.RadiusKM = radius
	}
	return out, nil
}

// resolveOrigin returns either a point to measure from, or a folded
// location string to match as text when geocoding failed.
func (s *Service) resolveOrigin(ctx context.Context, q SearchQuery) (*geo.Location, string, error) {
	if q.Lat != nil || q.Lng != nil {
		if q.Lat == nil || q.Lng == nil {
			return nil, "", ErrInvalidLocation
		}
		p := geo.Point{Lat: *q.Lat, Lng: *q.Lng}
		if !p.Valid() {
			return nil, "", ErrInvalidLocation
		}
		return &geo.Location{Point: p, Provider: "client"}, "", nil
	}

	if q.UseMyLocation {
		return geo.DefaultLocation(s.defaultPoint), "", nil
	}

	location := strings.TrimSpace(q.Location)
	if location == "" {
		return nil, "", nil
	}

	if s.geocoder != nil {
		loc, err := s.geocoder.Geocode(ctx, location)
		if err == nil {
			return loc, "", nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, "", err
		}
		log.Printf("catalog: geocode fallback provider=%s location=%q err=%v", s.geocoder.Name(), location, err)
		metrics.GeocoderFallbacks.WithLabelValues(s.geocoder.Name()).Inc()
	}
	return nil, geo.Fold(location), nil
}

func matchesText(c domain.Cleaner, text string) bool {
	fields := []string{c.User.FullName}
	if c.User.ServiceArea != nil {
		fields = append(fields, *c.User.ServiceArea)
	}
	if p := c.Profile; p != nil {
		fields = append(fields, p.Bio, p.City)
		fields = append(fields, p.Services...)
	}
	return containsAny(fields, text)
}

func matchesLocationText(c domain.Cleaner, location string) bool {
	var fields []string
	if c.User.ServiceArea != nil {
		fields = append(fields, *c.User.ServiceArea)
	}
	if p := c.Profile; p != nil {
		fields = append(fields, p.City, p.Address)
	}
	if containsAny(fields, location) {
		return true
	}
	// "Plateau, Montréal" should still match a cleaner in Montréal.
	for _, part := range strings.Split(location, ",") {
		if part = strings.TrimSpace(part); part != "" && part != location && containsAny(fields, part) {
			return true
		}
	}
	return false
}

func containsAny(fields []string, needle string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(geo.Fold(f), needle) {
			return true
		}
	}
	return false
}

func offersAny(c domain.Cleaner, categories map[string]struct{}) bool {
	if c.Profile == nil {
		return false
	}
	for _, s := range c.Profile.Services {
		if _, ok := categories[s]; ok {
			return true
		}
	}
	return false
}
