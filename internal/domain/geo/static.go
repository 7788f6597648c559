package geo

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed cities.yaml
var citiesYAML []byte

type staticCity struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Lat     float64  `yaml:"lat"`
	Lng     float64  `yaml:"lng"`
}

// Static resolves queries against a small table of Canadian cities. It
// needs no network and backs local development and tests.
type Static struct {
	cities []staticCity
	index  map[string]int
}

func NewStatic() (*Static, error) {
	var doc struct {
		Cities []staticCity `yaml:"cities"`
	}
	if err := yaml.Unmarshal(citiesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse cities.yaml: %w", err)
	}

	s := &Static{cities: doc.Cities, index: make(map[string]int)}
	for i, c := range doc.Cities {
		s.index[Fold(c.Name)] = i
		for _, a := range c.Aliases {
			s.index[Fold(a)] = i
		}
	}
	return s, nil
}

func (s *Static) Name() string { return "static" }

// Geocode matches any comma-separated part of the query, last part first,
// so "123 rue Ontario, Montréal" resolves to Montréal.
func (s *Static) Geocode(_ context.Context, query string) (*Location, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	parts := strings.Split(query, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		idx, ok := s.index[Fold(parts[i])]
		if !ok {
			continue
		}
		c := s.cities[idx]
		return &Location{
			Point:       Point{Lat: c.Lat, Lng: c.Lng},
			DisplayName: c.Name,
			City:        c.Name,
			Provider:    s.Name(),
		}, nil
	}
	return nil, ErrNotFound
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips accents so "Montréal" and "montreal" compare equal.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
