package geo

import (
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	Provider  string
	BaseURL   string
	UserAgent string
	APIKey    string
	Timeout   time.Duration
}

// New builds the geocoder named by cfg.Provider.
func New(cfg Config) (Geocoder, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case "nominatim", "":
		return NewNominatim(client, cfg.BaseURL, cfg.UserAgent), nil
	case "google":
		return NewGoogle(client, "", cfg.APIKey), nil
	case "static":
		return NewStatic()
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}
}
