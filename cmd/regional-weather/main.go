package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/regional-weather/internal/api/http"
	"github.com/i474232898/regional-weather/internal/config"
	"github.com/i474232898/regional-weather/internal/logging"
	"github.com/i474232898/regional-weather/internal/metrics"
	"github.com/i474232898/regional-weather/internal/scheduler"
	"github.com/i474232898/regional-weather/internal/store"
	"github.com/i474232898/regional-weather/internal/weather"
	"github.com/i474232898/regional-weather/internal/weather/geocoding"
	"github.com/i474232898/regional-weather/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	blobs, err := openBlobStore(cfg)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer blobs.Close()
	regionStore := store.NewRegionStore(blobs, cfg.StoreKey, log.With("component", "store"))

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	endpoint := weather.NewEndpoint(cfg.WeatherBaseURL, cfg.DarkSkyAPIKey, cfg.Language)
	provider := providers.NewDarkSkyProviderWithBackoff(httpClient, endpoint, providers.BackoffConfig{
		MaxRetries: cfg.FetchRetries,
	})
	client := metrics.Instrument(provider)

	indicator := metrics.NewIndicator()
	refresher := weather.NewRefresher(client,
		weather.WithIndicator(indicator),
		weather.WithMaxConcurrency(cfg.RefreshMaxConcurrency),
		weather.WithLogger(log.With("component", "refresher")),
	)

	opts := []weather.ServiceOption{
		weather.WithServiceIndicator(indicator),
		weather.WithServiceLogger(log.With("component", "regions")),
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, weather.WithGeocoder(geocoding.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := weather.NewService(ctx, client, regionStore, refresher, opts...)
	defer service.Close()

	// Refreshes on start, then every interval.
	sched := scheduler.New(cfg.RefreshInterval, service, log.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "regional-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Refresh waits for every region's fetch.
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "regional-weather",
		})
	})
	app.Get("/metrics", metrics.Handler())

	httpapi.RegisterRoutes(app, service, indicator)

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

func openBlobStore(cfg *config.AppConfig) (store.BlobStore, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return store.NewSQLite(cfg.StorePath)
	case "valkey":
		return store.NewValkey(cfg.ValkeyAddr)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
