package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultAPIBaseURL = "https://api.openweathermap.org/data/3.0"
	DefaultGeoBaseURL = "https://api.openweathermap.org/geo/1.0"
)

// OpenWeatherConfig configures an OpenWeather gateway.
type OpenWeatherConfig struct {
	APIKey     string
	APIBaseURL string // One Call base, e.g. https://api.openweathermap.org/data/3.0
	GeoBaseURL string // geocoding base, e.g. https://api.openweathermap.org/geo/1.0
	Exclude    string // comma-separated One Call blocks to omit
	Logger     weather.Logger
}

// OpenWeather implements weather.Gateway against OpenWeatherMap.
type OpenWeather struct {
	cfg    OpenWeatherConfig
	client *http.Client

	// The One Call and geocoding endpoints trip independently.
	weatherCircuit *gobreaker.CircuitBreaker
	geoCircuit     *gobreaker.CircuitBreaker
}

func NewOpenWeather(client *http.Client, cfg OpenWeatherConfig) *OpenWeather {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.GeoBaseURL == "" {
		cfg.GeoBaseURL = DefaultGeoBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.GeoBaseURL = strings.TrimRight(cfg.GeoBaseURL, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &OpenWeather{
		cfg:            cfg,
		client:         client,
		weatherCircuit: newCircuit("openweather-onecall", logger),
		geoCircuit:     newCircuit("openweather-geo", logger),
	}
}

func newCircuit(name string, logger weather.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("INFO: circuit %s changed from %s to %s", name, from, to)
		},
	})
}

// FetchCurrentWeather calls the One Call endpoint.
func (p *OpenWeather) FetchCurrentWeather(ctx context.Context, lat, lon float64, unit weather.Unit) (*weather.Report, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrGateway)
	}

	values := url.Values{}
	values.Set("lat", formatFloat(lat))
	values.Set("lon", formatFloat(lon))
	values.Set("exclude", p.cfg.Exclude)
	values.Set("appid", p.cfg.APIKey)
	values.Set("units", string(unit))

	var report weather.Report
	if err := getJSON(ctx, p.client, p.weatherCircuit, p.cfg.APIBaseURL+"/onecall?"+values.Encode(), &report); err != nil {
		return nil, err
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}

// ReverseGeocode returns place names for a position.
func (p *OpenWeather) ReverseGeocode(ctx context.Context, lat, lon float64) ([]weather.Place, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrGateway)
	}

	values := url.Values{}
	values.Set("lat", formatFloat(lat))
	values.Set("lon", formatFloat(lon))
	values.Set("limit", "1")
	values.Set("appid", p.cfg.APIKey)

	var places []weather.Place
	if err := getJSON(ctx, p.client, p.geoCircuit, p.cfg.GeoBaseURL+"/reverse?"+values.Encode(), &places); err != nil {
		return nil, err
	}
	return places, nil
}

// ForwardGeocode resolves a city name to coordinates.
func (p *OpenWeather) ForwardGeocode(ctx context.Context, city string) ([]weather.Place, error) {
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrGateway)
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("limit", "1")
	values.Set("appid", p.cfg.APIKey)

	var places []weather.Place
	if err := getJSON(ctx, p.client, p.geoCircuit, p.cfg.GeoBaseURL+"/direct?"+values.Encode(), &places); err != nil {
		return nil, err
	}
	return places, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
