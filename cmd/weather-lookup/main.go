package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/device"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// levelLogger drops DEBUG lines unless debug logging is enabled.
type levelLogger struct {
	debug bool
}

func (l levelLogger) Printf(format string, v ...any) {
	if !l.debug && strings.HasPrefix(format, "DEBUG:") {
		return
	}
	log.Output(2, fmt.Sprintf(format, v...))
}

type appStore interface {
	weather.CacheStore
	weather.PreferenceStore
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	diag := levelLogger{debug: strings.EqualFold(cfg.LogLevel, "DEBUG")}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One store serves both the weather cache and the preferences.
	var st appStore
	switch cfg.StoreBackend {
	case config.BackendMemory:
		st = store.NewMemoryStore(cfg.StoreMaxHistory, diag)
	default:
		sqliteStore := store.NewSQLiteStore(cfg.DatabasePath, cfg.StoreMaxHistory, diag)
		// A failed open leaves the store in no-op mode; the app keeps running.
		if err := sqliteStore.Initialize(ctx); err != nil {
			log.Printf("INFO: continuing without cache: %v", err)
		}
		defer sqliteStore.Close()
		st = sqliteStore
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	gateway := providers.NewOpenWeather(httpClient, providers.OpenWeatherConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		APIBaseURL: cfg.APIBaseURL,
		GeoBaseURL: cfg.GeoBaseURL,
		Exclude:    cfg.Exclude,
		Logger:     diag,
	})

	ctrl := weather.NewController(weather.Dependencies{
		Gateway:     gateway,
		Locator:     device.StaticLocator{Position: cfg.DevicePosition},
		Network:     device.DialCheck{Address: cfg.NetworkCheckAddr, Timeout: cfg.NetworkCheckTimeout},
		Cache:       st,
		Preferences: st,
		Logger:      diag,
	})
	// Startup lookups have no timeout; serve the view while they run.
	go ctrl.Start(ctx)

	sched := scheduler.New(cfg.RefreshInterval, ctrl)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-lookup",
		DisableStartupMessage: true,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-lookup",
		})
	})

	httpapi.RegisterRoutes(app, ctrl)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
