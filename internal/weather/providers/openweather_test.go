package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *OpenWeather {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenWeather(srv.Client(), OpenWeatherConfig{
		APIKey:     "test-key",
		APIBaseURL: srv.URL + "/data/3.0",
		GeoBaseURL: srv.URL + "/geo/1.0/",
	})
}

func TestFetchCurrentWeatherBuildsOneCallQuery(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotQuery = map[string]string{
			"lat":     q.Get("lat"),
			"lon":     q.Get("lon"),
			"units":   q.Get("units"),
			"appid":   q.Get("appid"),
			"exclude": q.Get("exclude"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"lat":48.8566,"lon":2.3522,"timezone":"Europe/Paris","timezone_offset":7200,
			"current":{"dt":1700000000,"temp":12.5,"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}]}}`))
	})

	report, err := gw.FetchCurrentWeather(context.Background(), 48.8566, 2.3522, weather.UnitImperial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/data/3.0/onecall" {
		t.Fatalf("expected onecall path, got %s", gotPath)
	}
	if gotQuery["lat"] != "48.8566" || gotQuery["lon"] != "2.3522" {
		t.Fatalf("unexpected coordinates in query: %v", gotQuery)
	}
	if gotQuery["units"] != "imperial" || gotQuery["appid"] != "test-key" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if report.Current == nil || report.Current.Temp != 12.5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Current.Weather[0].Icon != "01d" {
		t.Fatalf("expected icon 01d, got %q", report.Current.Weather[0].Icon)
	}
}

func TestFetchCurrentWeatherRejectsMalformedPayload(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lat":1,"lon":2}`))
	})

	_, err := gw.FetchCurrentWeather(context.Background(), 1, 2, weather.UnitMetric)
	if !errors.Is(err, weather.ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}

func TestFetchCurrentWeatherHTTPError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	})

	_, err := gw.FetchCurrentWeather(context.Background(), 1, 2, weather.UnitMetric)
	if !errors.Is(err, weather.ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	gw := NewOpenWeather(http.DefaultClient, OpenWeatherConfig{})
	if _, err := gw.ForwardGeocode(context.Background(), "Paris"); !errors.Is(err, weather.ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}

func TestGeocoding(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geo/1.0/direct":
			if r.URL.Query().Get("q") != "Paris" || r.URL.Query().Get("limit") != "1" {
				t.Errorf("unexpected direct query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`[{"name":"Paris","lat":48.8566,"lon":2.3522,"country":"FR"}]`))
		case "/geo/1.0/reverse":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	})

	places, err := gw.ForwardGeocode(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].Lat != 48.8566 || places[0].Lon != 2.3522 || places[0].Name != "Paris" {
		t.Fatalf("unexpected places: %+v", places)
	}

	names, err := gw.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no names, got %+v", names)
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

// TestGeocodeFailuresDoNotTripWeatherCircuit checks that the One Call
// endpoint keeps working while the geocoding circuit is open.
func TestGeocodeFailuresDoNotTripWeatherCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/3.0/onecall":
			w.Write([]byte(`{"lat":1,"lon":2,"current":{"dt":1700000000,"temp":5}}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	logger := &recordingLogger{}
	gw := NewOpenWeather(srv.Client(), OpenWeatherConfig{
		APIKey:     "test-key",
		APIBaseURL: srv.URL + "/data/3.0",
		GeoBaseURL: srv.URL + "/geo/1.0",
		Logger:     logger,
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if _, err := gw.ReverseGeocode(ctx, 1, 2); !errors.Is(err, weather.ErrGateway) {
			t.Fatalf("attempt %d: expected ErrGateway, got %v", i, err)
		}
	}
	if _, err := gw.ForwardGeocode(ctx, "Paris"); err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("expected geocoding circuit to be open, got %v", err)
	}

	report, err := gw.FetchCurrentWeather(ctx, 1, 2, weather.UnitMetric)
	if err != nil {
		t.Fatalf("expected weather fetch to succeed, got %v", err)
	}
	if report.Current.Temp != 5 {
		t.Fatalf("unexpected report: %+v", report.Current)
	}

	if log := logger.joined(); !strings.Contains(log, "circuit openweather-geo changed from closed to open") {
		t.Fatalf("expected state change on the injected logger, got %q", log)
	}
	if strings.Contains(logger.joined(), "openweather-onecall") {
		t.Fatalf("weather circuit should not have changed state")
	}
}
