package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr           = ":8080"
	defaultOpsAddr            = ":9090"
	defaultDatabaseURL        = "housie.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultRefreshTokenPepper = "change-me-refresh-pepper"
	defaultJWTAccessTTL       = "15m"
	defaultRefreshTTL         = "168h"
	defaultResetTokenTTL      = "1h"
	defaultPresenceTTL        = "60s"
	defaultPresenceSweep      = "30s"
	defaultOnboardingTTL      = "24h"
	defaultGeocoderProvider   = "nominatim"
	defaultGeocoderURL        = "https://nominatim.openstreetmap.org"
	defaultGeocoderUserAgent  = "housie-api/1.0"
	defaultGeocoderTimeout    = "5s"
	defaultNotifyTimeout      = "5s"

	// Montréal, used when the caller has no usable location.
	defaultLat = 45.5017
	defaultLng = -73.5673

	defaultSearchRadiusKM = 25.0
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	OpsAddr  string

	DatabaseURL string
	RedisURL    string

	JWTSecret          string
	JWTAccessTTL       time.Duration
	RefreshTTL         time.Duration
	RefreshTokenPepper string
	ResetTokenTTL      time.Duration

	CORSAllowedOrigins []string

	PresenceTTL           time.Duration
	PresenceSweepInterval time.Duration
	OnboardingTTL         time.Duration

	GeocoderProvider  string
	GeocoderURL       string
	GeocoderUserAgent string
	GoogleMapsAPIKey  string
	GeocoderTimeout   time.Duration
	DefaultLat        float64
	DefaultLng        float64

	NotifyFunctionURL     string
	NotifyFunctionTimeout time.Duration

	SearchDefaultRadiusKM float64
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.OpsAddr = strings.TrimSpace(getEnv("OPS_ADDR", defaultOpsAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RefreshTokenPepper = strings.TrimSpace(getEnv("REFRESH_TOKEN_PEPPER", defaultRefreshTokenPepper))

	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	cfg.GeocoderProvider = strings.ToLower(strings.TrimSpace(getEnv("GEOCODER_PROVIDER", defaultGeocoderProvider)))
	cfg.GeocoderURL = strings.TrimRight(strings.TrimSpace(getEnv("GEOCODER_URL", defaultGeocoderURL)), "/")
	cfg.GeocoderUserAgent = strings.TrimSpace(getEnv("GEOCODER_USER_AGENT", defaultGeocoderUserAgent))
	cfg.GoogleMapsAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	cfg.NotifyFunctionURL = strings.TrimSpace(os.Getenv("NOTIFY_FUNCTION_URL"))

	var err error
	durations := []struct {
		name     string
		fallback string
		dst      *time.Duration
	}{
		{"JWT_ACCESS_TTL", defaultJWTAccessTTL, &cfg.JWTAccessTTL},
		{"REFRESH_TTL", defaultRefreshTTL, &cfg.RefreshTTL},
		{"RESET_TOKEN_TTL", defaultResetTokenTTL, &cfg.ResetTokenTTL},
		{"PRESENCE_TTL", defaultPresenceTTL, &cfg.PresenceTTL},
		{"PRESENCE_SWEEP_INTERVAL", defaultPresenceSweep, &cfg.PresenceSweepInterval},
		{"ONBOARDING_TTL", defaultOnboardingTTL, &cfg.OnboardingTTL},
		{"GEOCODER_TIMEOUT", defaultGeocoderTimeout, &cfg.GeocoderTimeout},
		{"NOTIFY_FUNCTION_TIMEOUT", defaultNotifyTimeout, &cfg.NotifyFunctionTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.name, d.fallback); err != nil {
			return nil, err
		}
	}

	if cfg.DefaultLat, err = parseFloatEnv("DEFAULT_LAT", defaultLat); err != nil {
		return nil, err
	}
	if cfg.DefaultLng, err = parseFloatEnv("DEFAULT_LNG", defaultLng); err != nil {
		return nil, err
	}
	if cfg.SearchDefaultRadiusKM, err = parseFloatEnv("SEARCH_DEFAULT_RADIUS_KM", defaultSearchRadiusKM); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s http=%s ops=%s redis=%t geocoder=%s", cfg.AppEnv, cfg.HTTPAddr, cfg.OpsAddr, cfg.RedisURL != "", cfg.GeocoderProvider)

	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	for name, d := range map[string]time.Duration{
		"JWT_ACCESS_TTL":          cfg.JWTAccessTTL,
		"REFRESH_TTL":             cfg.RefreshTTL,
		"RESET_TOKEN_TTL":         cfg.ResetTokenTTL,
		"PRESENCE_TTL":            cfg.PresenceTTL,
		"PRESENCE_SWEEP_INTERVAL": cfg.PresenceSweepInterval,
		"ONBOARDING_TTL":          cfg.OnboardingTTL,
		"GEOCODER_TIMEOUT":        cfg.GeocoderTimeout,
		"NOTIFY_FUNCTION_TIMEOUT": cfg.NotifyFunctionTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.SearchDefaultRadiusKM <= 0 {
		return fmt.Errorf("SEARCH_DEFAULT_RADIUS_KM must be > 0")
	}
	if cfg.DefaultLat < -90 || cfg.DefaultLat > 90 || cfg.DefaultLng < -180 || cfg.DefaultLng > 180 {
		return fmt.Errorf("DEFAULT_LAT/DEFAULT_LNG out of range")
	}

	switch cfg.GeocoderProvider {
	case "nominatim", "static":
	case "google":
		if cfg.GoogleMapsAPIKey == "" {
			return fmt.Errorf("GOOGLE_MAPS_API_KEY is required when GEOCODER_PROVIDER=google")
		}
	default:
		return fmt.Errorf("GEOCODER_PROVIDER must be one of: nominatim, google, static")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenPepper, defaultRefreshTokenPepper) {
			return fmt.Errorf("in prod/release REFRESH_TOKEN_PEPPER must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseFloatEnv(name string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseListEnv(name, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(name, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
