package booking

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"math"

	"gopkg.in/yaml.v3"

	"housie/internal/domain"
)

//go:embed prices.yaml
var pricesYAML []byte

const (
	SourceDatabase = "database"
	SourceStatic   = "static"

	defaultPriceKey = "default"
)

type priceRow struct {
	BasePrice     float64 `yaml:"base_price"`
	HourlyRate    float64 `yaml:"hourly_rate"`
	DurationHours float64 `yaml:"duration_hours"`
}

// PriceOverrides looks up a service_prices row. A nil row means no override.
type PriceOverrides interface {
	GetServicePrice(ctx context.Context, serviceType string) (*domain.ServicePrice, error)
}

// Pricer quotes from database overrides and falls back to the built-in table
// when the override is missing or the lookup fails.
type Pricer struct {
	overrides PriceOverrides
	static    map[string]priceRow
}

func NewPricer(overrides PriceOverrides) (*Pricer, error) {
	var doc struct {
		Prices map[string]priceRow `yaml:"prices"`
	}
	if err := yaml.Unmarshal(pricesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse prices.yaml: %w", err)
	}
	if _, ok := doc.Prices[defaultPriceKey]; !ok {
		return nil, fmt.Errorf("parse prices.yaml: missing %q row", defaultPriceKey)
	}
	return &Pricer{overrides: overrides, static: doc.Prices}, nil
}

// Estimate prices serviceType for hours of work; hours <= 0 uses the
// service's typical duration.
func (p *Pricer) Estimate(ctx context.Context, serviceType string, hours float64) Estimate {
	row, source := p.lookup(ctx, serviceType)
	if hours <= 0 {
		hours = row.DurationHours
	}
	return Estimate{
		ServiceType:   serviceType,
		Price:         math.Round((row.BasePrice+row.HourlyRate*hours)*100) / 100,
		DurationHours: hours,
		Source:        source,
	}
}

func (p *Pricer) lookup(ctx context.Context, serviceType string) (priceRow, string) {
	if p.overrides != nil {
		sp, err := p.overrides.GetServicePrice(ctx, serviceType)
		switch {
		case err != nil:
			log.Printf("booking: price override lookup failed service_type=%s err=%v", serviceType, err)
		case sp != nil:
			return priceRow{BasePrice: sp.BasePrice, HourlyRate: sp.HourlyRate, DurationHours: sp.DurationHours}, SourceDatabase
		}
	}

	if row, ok := p.static[serviceType]; ok {
		return row, SourceStatic
	}
	return p.static[defaultPriceKey], SourceStatic
}
