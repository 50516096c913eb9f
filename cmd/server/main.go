package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geotrack/asset-tracker/internal/api"
	"github.com/geotrack/asset-tracker/internal/bus"
	"github.com/geotrack/asset-tracker/internal/config"
	"github.com/geotrack/asset-tracker/internal/service"
	"github.com/geotrack/asset-tracker/internal/store"
	ws "github.com/geotrack/asset-tracker/internal/websocket"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize PostgreSQL (with PostGIS)
	ctx := context.Background()
	pgStore, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()
	logger.Info("connected to PostgreSQL")

	if err := pgStore.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	if cfg.SeedDemoData {
		if err := pgStore.SeedDemoData(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data seeded")
	}

	// Optional Redis-backed snapshot cache
	var snapshotCache *store.SnapshotCache
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		snapshotCache = store.NewSnapshotCache(redisStore, logger)
		logger.Info("connected to Redis, snapshot cache enabled")
	} else {
		logger.Info("REDIS_URL not set, snapshot cache disabled")
	}

	// Event fan-out and subscription gateway
	eventBus := bus.New(logger)
	gateway := ws.NewGateway(eventBus, logger)

	// Services
	assetService := service.NewAssetService(pgStore, eventBus, snapshotCache, logger)
	fenceService := service.NewGeoFenceService(pgStore, logger)

	router := api.NewRouter(assetService, fenceService, eventBus, gateway)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
