package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"housie/internal/config"
	"housie/internal/database"
	"housie/internal/domain"
	"housie/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, domain.Models()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		if redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
	}

	a, err := newApp(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	apiServer := &http.Server{Addr: cfg.HTTPAddr, Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	opsServer := &http.Server{Addr: cfg.OpsAddr, Handler: metrics.OpsRouter(a.checks...), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	if a.bridge != nil {
		g.Go(func() error { return a.bridge.Run(gctx) })
	}
	g.Go(func() error { return a.presence.RunSweeper(gctx, cfg.PresenceSweepInterval) })
	if a.sessions != nil {
		g.Go(func() error { return a.sessions.Run(gctx, time.Minute) })
	}
	g.Go(func() error { return serve(apiServer, "api") })
	g.Go(func() error { return serve(opsServer, "ops") })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Printf("shutting down")
		return errors.Join(apiServer.Shutdown(shutdownCtx), opsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func serve(srv *http.Server, name string) error {
	log.Printf("%s server listening addr=%s", name, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
