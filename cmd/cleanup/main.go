package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"housie/internal/config"
	"housie/internal/database"
	"housie/internal/domain/auth"
	"housie/internal/domain/presence"
	"housie/internal/realtime"
)

// Revoked refresh tokens are kept this long for reuse detection.
const revokedRetention = 30 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	now := time.Now().UTC()
	tokens, err := auth.NewTokenRepository(db).DeleteExpired(ctx, now, now.Add(-revokedRetention))
	if err != nil {
		log.Fatalf("cleanup tokens failed: %v", err)
	}

	// Sweep through redis when configured so open sockets hear the flips.
	var publisher realtime.Publisher = realtime.NewBroker()
	var store presence.Store = presence.NewGormStore(db, cfg.PresenceTTL)
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		publisher = realtime.NewRedisBridge(client, realtime.NewBroker())
		store = presence.NewRedisStore(client, cfg.PresenceTTL)
	}

	swept, err := presence.NewService(store, publisher).Sweep(ctx)
	if err != nil {
		log.Fatalf("presence sweep failed: %v", err)
	}

	log.Printf("cleanup completed: tokens_and_resets=%d presence_swept=%d", tokens, swept)
}
