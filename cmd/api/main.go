package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fraudlens/internal/api"
	"fraudlens/internal/api/handlers"
	apimiddleware "fraudlens/internal/api/middleware"
	"fraudlens/internal/config"
	"fraudlens/internal/domain/services"
	"fraudlens/internal/infrastructure/cache"
	"fraudlens/internal/metrics"
	"fraudlens/internal/upload"
	"fraudlens/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
	})

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting fraudlens")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional; without it the service runs unthrottled
	redisCache := initRedis(ctx, cfg, log)
	defer func() {
		if redisCache != nil {
			_ = redisCache.Close()
		}
	}()

	recorder := metrics.Recorder{}
	engine := services.NewEngine(recorder, log)
	stager := upload.NewStager(cfg.Upload.Dir, cfg.Upload.MaxBytes, log)

	deps := handlers.Dependencies{
		Engine:       engine,
		Stager:       stager,
		Rejections:   recorder,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Version:      cfg.App.Version,
		Logger:       log,
	}
	var limiter apimiddleware.RateLimitStore
	if redisCache != nil {
		deps.Cache = redisCache
		limiter = redisCache
	}

	router := api.NewRouter(*cfg, handlers.NewHandlers(deps), limiter, log)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initRedis connects to Redis when enabled. Connection failures are
// logged and the service continues without it.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		if cfg.RateLimit.Enabled {
			log.Warn().Msg("rate limiting enabled but Redis is disabled, requests will not be throttled")
		}
		return nil
	}

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without rate limiting")
		return nil
	}
	return redisCache
}
