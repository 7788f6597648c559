package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"housie/internal/config"
	"housie/internal/domain/auth"
	"housie/internal/domain/booking"
	"housie/internal/domain/catalog"
	"housie/internal/domain/chat"
	"housie/internal/domain/geo"
	"housie/internal/domain/notification"
	"housie/internal/domain/onboarding"
	"housie/internal/domain/preferences"
	"housie/internal/domain/presence"
	"housie/internal/domain/profile"
	"housie/internal/metrics"
	"housie/internal/middleware"
	jwtsvc "housie/internal/pkg/jwt"
	"housie/internal/realtime"
)

// app holds the wired services. Background loops are started by main.
type app struct {
	router   *gin.Engine
	tokens   *jwtsvc.Service
	bridge   *realtime.RedisBridge
	presence *presence.Service
	sessions *onboarding.MemoryStore
	checks   []metrics.Check
}

// newApp wires every service against db and, when non-nil, redis. Without
// redis, presence and onboarding sessions live in the database and in
// memory, and realtime changes stay on this instance.
func newApp(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*app, error) {
	a := &app{}

	broker := realtime.NewBroker()
	var publisher realtime.Publisher = broker
	if redisClient != nil {
		a.bridge = realtime.NewRedisBridge(redisClient, broker)
		publisher = a.bridge
	}

	geocoder, err := geo.New(geo.Config{
		Provider:  cfg.GeocoderProvider,
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderUserAgent,
		APIKey:    cfg.GoogleMapsAPIKey,
		Timeout:   cfg.GeocoderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}
	taxonomy, err := catalog.LoadTaxonomy()
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}

	a.tokens = jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	var invoker notification.Invoker = notification.NewLogInvoker(!cfg.IsProdLike())
	if cfg.NotifyFunctionURL != "" {
		invoker = notification.NewHTTPInvoker(cfg.NotifyFunctionURL, cfg.NotifyFunctionTimeout)
	}
	notificationService := notification.NewService(notification.NewNotificationRepository(db), publisher, invoker)

	authService := auth.NewService(
		auth.NewUserRepository(db),
		auth.NewTokenRepository(db),
		auth.NewResetRepository(db),
		a.tokens,
		notificationService,
		cfg.RefreshTokenPepper,
		cfg.RefreshTTL,
		cfg.ResetTokenTTL,
	)

	profileRepo, err := profile.NewRepository(db)
	if err != nil {
		return nil, err
	}
	profileService := profile.NewService(profileRepo, geocoder, taxonomy, publisher)

	catalogService := catalog.NewService(
		catalog.NewCleanerRepository(db),
		taxonomy,
		geocoder,
		geo.Point{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng},
		cfg.SearchDefaultRadiusKM,
	)

	var presenceStore presence.Store = presence.NewGormStore(db, cfg.PresenceTTL)
	var sessionStore onboarding.Store
	if redisClient != nil {
		presenceStore = presence.NewRedisStore(redisClient, cfg.PresenceTTL)
		sessionStore = onboarding.NewRedisStore(redisClient, cfg.OnboardingTTL)
	} else {
		a.sessions = onboarding.NewMemoryStore(cfg.OnboardingTTL)
		sessionStore = a.sessions
	}
	a.presence = presence.NewService(presenceStore, publisher)
	hub := realtime.NewHub(broker, a.presence)

	chatService := chat.NewService(chat.NewRepository(db), publisher, notificationService)

	bookingRepo := booking.NewBookingRepository(db)
	pricer, err := booking.NewPricer(bookingRepo)
	if err != nil {
		return nil, fmt.Errorf("pricing: %w", err)
	}
	bookingService := booking.NewService(bookingRepo, pricer, taxonomy, notificationService, publisher)

	onboardingService := onboarding.NewService(sessionStore, catalogService, profileService)
	preferencesService := preferences.NewService(preferences.NewRepository(db))

	authHandler := auth.NewHandler(authService)
	profileHandler := profile.NewHandler(profileService)
	catalogHandler := catalog.NewHandler(catalogService)
	geoHandler := geo.NewHandler(geocoder)
	presenceHandler := presence.NewHandler(a.presence)
	chatHandler := chat.NewHandler(chatService)
	bookingHandler := booking.NewHandler(bookingService)
	notificationHandler := notification.NewHandler(notificationService)
	onboardingHandler := onboarding.NewHandler(onboardingService)
	preferencesHandler := preferences.NewHandler(preferencesService)
	realtimeHandler := realtime.NewHandler(hub, a.tokens, cfg.CORSAllowedOrigins)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Locale())
	r.Use(middleware.Metrics())

	v1 := r.Group("/api/v1")
	{
		auth.RegisterPublicRoutes(v1, authHandler)
		catalog.RegisterRoutes(v1, catalogHandler)
		geo.RegisterRoutes(v1, geoHandler)
		profile.RegisterPublicRoutes(v1, profileHandler)
		booking.RegisterPublicRoutes(v1, bookingHandler)
		realtimeHandler.RegisterRoutes(v1)

		onboarding.RegisterRoutes(v1.Group("", middleware.OptionalAuth(a.tokens)), onboardingHandler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.tokens))
		{
			auth.RegisterProtectedRoutes(protected, authHandler)
			profile.RegisterProtectedRoutes(protected, profileHandler)
			presence.RegisterRoutes(protected, presenceHandler)
			chat.RegisterRoutes(protected, chatHandler)
			booking.RegisterProtectedRoutes(protected, bookingHandler)
			notification.RegisterRoutes(protected, notificationHandler)
			preferences.RegisterRoutes(protected, preferencesHandler)
		}
	}
	a.router = r

	a.checks = []metrics.Check{{Name: "database", Fn: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}}
	if redisClient != nil {
		a.checks = append(a.checks, metrics.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	return a, nil
}
