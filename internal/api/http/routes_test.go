package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type stubGateway struct {
	lastLat, lastLon float64
}

func (g *stubGateway) FetchCurrentWeather(_ context.Context, lat, lon float64, _ weather.Unit) (*weather.Report, error) {
	g.lastLat, g.lastLon = lat, lon
	return &weather.Report{Current: &weather.Conditions{Dt: 1700000000, Temp: 18,
		Weather: []weather.Summary{{Description: "few clouds", Icon: "02d"}}}}, nil
}

func (g *stubGateway) ReverseGeocode(context.Context, float64, float64) ([]weather.Place, error) {
	return []weather.Place{{Name: "Paris"}}, nil
}

func (g *stubGateway) ForwardGeocode(_ context.Context, city string) ([]weather.Place, error) {
	if city == "Paris" {
		return []weather.Place{{Name: "Paris", Lat: 48.8566, Lon: 2.3522}}, nil
	}
	return nil, nil
}

type noLocation struct{}

func (noLocation) CurrentPosition(context.Context) (weather.Coordinates, error) {
	return weather.Coordinates{}, weather.ErrLocationUnavailable
}

type online struct{}

func (online) Connected(context.Context) bool { return true }

func newTestApp(t *testing.T) (*fiber.App, *stubGateway, *store.MemoryStore) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	st := store.NewMemoryStore(0, logger)
	gw := &stubGateway{}
	ctrl := weather.NewController(weather.Dependencies{
		Gateway:     gw,
		Locator:     noLocation{},
		Network:     online{},
		Cache:       st,
		Preferences: st,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, ctrl)
	return app, gw, st
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func TestViewDefaults(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, view := do(t, app, http.MethodGet, "/api/v1/view", "")
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if view["theme"] != "light" || view["unit"] != "metric" {
		t.Fatalf("unexpected view: %v", view)
	}
}

func TestSearchCityRoute(t *testing.T) {
	app, gw, _ := newTestApp(t)

	code, view := do(t, app, http.MethodPost, "/api/v1/location/search", `{"city":"Paris"}`)
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if gw.lastLat != 48.8566 || gw.lastLon != 2.3522 {
		t.Fatalf("expected Paris coordinates, got %v,%v", gw.lastLat, gw.lastLon)
	}
	if view["locationName"] != "Paris" {
		t.Fatalf("unexpected view: %v", view)
	}
	current, ok := view["current"].(map[string]any)
	if !ok || current["iconUrl"] != "https://openweathermap.org/img/wn/02d@2x.png" {
		t.Fatalf("unexpected current block: %v", view["current"])
	}
}

func TestSearchCityBlankShowsMessage(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, view := do(t, app, http.MethodPost, "/api/v1/location/search", `{"city":"  "}`)
	if code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}
	if view["errorMessage"] != weather.MsgInvalidCity {
		t.Fatalf("unexpected error message: %v", view["errorMessage"])
	}
}

func TestUseCurrentLocationRoute(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, view := do(t, app, http.MethodPost, "/api/v1/location/current", "")
	if view["errorMessage"] != weather.MsgLocationUnavailable {
		t.Fatalf("unexpected error message: %v", view["errorMessage"])
	}
}

func TestPreferenceRoutes(t *testing.T) {
	app, _, st := newTestApp(t)
	ctx := context.Background()

	code, view := do(t, app, http.MethodPut, "/api/v1/preferences/theme", `{"dark":true}`)
	if code != http.StatusOK || view["bodyClass"] != "dark" {
		t.Fatalf("unexpected theme response %d: %v", code, view)
	}
	if v, _ := st.Get(ctx, weather.PrefTheme); v != "dark" {
		t.Fatalf("expected theme persisted, got %q", v)
	}

	code, _ = do(t, app, http.MethodPut, "/api/v1/preferences/notifications", `{"enabled":false}`)
	if code != http.StatusOK {
		t.Fatalf("unexpected notifications status %d", code)
	}
	if v, _ := st.Get(ctx, weather.PrefNotifications); v != "false" {
		t.Fatalf("expected notifications persisted, got %q", v)
	}

	code, view = do(t, app, http.MethodPut, "/api/v1/preferences/unit", `{"unit":"imperial"}`)
	if code != http.StatusOK || view["unit"] != "imperial" {
		t.Fatalf("unexpected unit response %d: %v", code, view)
	}
}

func TestPreferenceRoutesValidation(t *testing.T) {
	app, _, _ := newTestApp(t)

	tests := []struct {
		path, body string
	}{
		{"/api/v1/preferences/unit", `{"unit":"kelvin"}`},
		{"/api/v1/preferences/unit", `{}`},
		{"/api/v1/preferences/theme", `{}`},
		{"/api/v1/preferences/notifications", `not json`},
	}
	for _, tt := range tests {
		code, body := do(t, app, http.MethodPut, tt.path, tt.body)
		if code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected status %d, got %d", tt.path, tt.body, http.StatusBadRequest, code)
		}
		if body["error"] != true {
			t.Fatalf("%s %s: expected error body, got %v", tt.path, tt.body, body)
		}
	}
}
