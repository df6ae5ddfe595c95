package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	APIBaseURL        string
	GeoBaseURL        string
	Exclude           string // One Call blocks to omit, e.g. "minutely,alerts"

	// Persistence.
	StoreBackend    string // "sqlite" or "memory"
	DatabasePath    string
	StoreMaxHistory int // weather rows kept per location (0 = unlimited)

	// DevicePosition stands in for the device GPS; nil means unavailable.
	DevicePosition *weather.Coordinates

	// Connectivity check.
	NetworkCheckAddr    string
	NetworkCheckTimeout time.Duration

	// RefreshInterval re-runs the weather fetch periodically (0 = disabled).
	RefreshInterval time.Duration

	// HTTPTimeout bounds outbound API calls (0 = no timeout).
	HTTPTimeout time.Duration

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.APIBaseURL = getenvDefault("API_BASE_URL", "https://api.openweathermap.org/data/3.0")
	cfg.GeoBaseURL = getenvDefault("GEO_BASE_URL", "https://api.openweathermap.org/geo/1.0")
	cfg.Exclude = os.Getenv("WEATHER_EXCLUDE")

	cfg.StoreBackend = getenvDefault("STORE_BACKEND", BackendSQLite)
	if cfg.StoreBackend != BackendSQLite && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: expected %q or %q", cfg.StoreBackend, BackendSQLite, BackendMemory)
	}
	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "data/weather_app.db")

	maxHistory, err := getenvInt("STORE_MAX_HISTORY", 0)
	if err != nil {
		return nil, err
	}
	if maxHistory < 0 {
		return nil, fmt.Errorf("invalid STORE_MAX_HISTORY: must not be negative")
	}
	cfg.StoreMaxHistory = maxHistory

	pos, err := loadDevicePosition()
	if err != nil {
		return nil, err
	}
	cfg.DevicePosition = pos

	cfg.NetworkCheckAddr = getenvDefault("NETWORK_CHECK_ADDR", "api.openweathermap.org:443")
	if cfg.NetworkCheckTimeout, err = getenvDuration("NETWORK_CHECK_TIMEOUT", "3s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0"); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "INFO")

	return cfg, nil
}

func loadDevicePosition() (*weather.Coordinates, error) {
	latStr := os.Getenv("DEVICE_LATITUDE")
	lonStr := os.Getenv("DEVICE_LONGITUDE")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("DEVICE_LATITUDE and DEVICE_LONGITUDE must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid DEVICE_LATITUDE %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid DEVICE_LONGITUDE %q", lonStr)
	}
	return &weather.Coordinates{Latitude: lat, Longitude: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
