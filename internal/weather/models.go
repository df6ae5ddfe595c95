package weather

import (
	"fmt"
	"strconv"
)

// Unit is the measurement system requested from the weather API.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// Theme is the display theme derived from the stored preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preference keys persisted by the PreferenceStore.
const (
	PrefUnit          = "unit"
	PrefNotifications = "notifications"
	PrefTheme         = "theme"
)

// Coordinates is a resolved position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns the cache key "<lat>,<lon>". Coordinates are written at full
// precision, so only byte-identical positions share a key.
func (c Coordinates) Key() string {
	return formatCoord(c.Latitude) + "," + formatCoord(c.Longitude)
}

func formatCoord(v float64) string {
	if v == 0 {
		v = 0 // -0 prints as "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Place is a geocoding candidate.
type Place struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country,omitempty"`
	State   string  `json:"state,omitempty"`
}

// Summary is one entry of the "weather" array in a One Call payload.
type Summary struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Conditions is a current or hourly data point.
type Conditions struct {
	Dt        int64     `json:"dt"`
	Temp      float64   `json:"temp"`
	FeelsLike float64   `json:"feels_like"`
	Humidity  float64   `json:"humidity"`
	Pressure  float64   `json:"pressure"`
	WindSpeed float64   `json:"wind_speed"`
	Weather   []Summary `json:"weather"`
}

// DayTemp holds the daily temperature envelope.
type DayTemp struct {
	Day float64 `json:"day"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Day is a daily forecast entry.
type Day struct {
	Dt        int64     `json:"dt"`
	Temp      DayTemp   `json:"temp"`
	Humidity  float64   `json:"humidity"`
	WindSpeed float64   `json:"wind_speed"`
	Weather   []Summary `json:"weather"`
}

// Report is the subset of the One Call response the application uses.
// It is also the shape stored in the weather cache.
type Report struct {
	Lat            float64      `json:"lat"`
	Lon            float64      `json:"lon"`
	Timezone       string       `json:"timezone"`
	TimezoneOffset int          `json:"timezone_offset"`
	Current        *Conditions  `json:"current"`
	Hourly         []Conditions `json:"hourly,omitempty"`
	Daily          []Day        `json:"daily,omitempty"`
}

// Validate rejects payloads that cannot be displayed.
func (r *Report) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty weather payload", ErrGateway)
	}
	if r.Current == nil {
		return fmt.Errorf("%w: weather payload has no current conditions", ErrGateway)
	}
	if r.Current.Dt <= 0 {
		return fmt.Errorf("%w: weather payload has no observation time", ErrGateway)
	}
	return nil
}

// ParseUnit validates a unit string.
func ParseUnit(s string) (Unit, error) {
	if err := validate.Var(s, "required,oneof=metric imperial"); err != nil {
		return "", fmt.Errorf("%w: unsupported unit %q", ErrValidation, s)
	}
	return Unit(s), nil
}
