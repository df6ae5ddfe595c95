package weather

import (
	"context"
)

// Gateway abstracts the weather and geocoding API (e.g. OpenWeatherMap).
type Gateway interface {
	FetchCurrentWeather(ctx context.Context, lat, lon float64, unit Unit) (*Report, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) ([]Place, error)
	ForwardGeocode(ctx context.Context, city string) ([]Place, error)
}

// Locator reads the device position.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// NetworkStatus reports whether the device is online.
type NetworkStatus interface {
	Connected(ctx context.Context) bool
}

// CacheStore is the contract of the weather cache. Implementations log and
// swallow their own failures; a nil report means "nothing usable".
type CacheStore interface {
	SaveWeatherData(ctx context.Context, location, data string)
	GetWeatherData(ctx context.Context, location string) *Report
}

// PreferenceStore persists user settings as string key/value pairs.
// Set never reports failure; Get returns false when the key is absent or
// could not be read.
type PreferenceStore interface {
	Set(ctx context.Context, key, value string)
	Get(ctx context.Context, key string) (string, bool)
}

// Logger receives diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}
