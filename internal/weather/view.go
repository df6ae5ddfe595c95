package weather

import (
	"fmt"
	"time"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

// IconURL returns the OpenWeatherMap image URL for an icon code.
func IconURL(code string) string {
	return fmt.Sprintf(iconURLFormat, code)
}

// ThemeFor maps the dark-mode flag to a theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// View is the render configuration handed to the presentation layer.
type View struct {
	Theme                Theme        `json:"theme"`
	BodyClass            string       `json:"bodyClass"`
	Phase                Phase        `json:"phase"`
	Unit                 Unit         `json:"unit"`
	NotificationsEnabled bool         `json:"notificationsEnabled"`
	Location             *Coordinates `json:"location,omitempty"`
	LocationName         string       `json:"locationName,omitempty"`
	ManualLocation       string       `json:"manualLocation,omitempty"`
	ErrorMessage         string       `json:"errorMessage,omitempty"`
	Current              *CurrentView `json:"current,omitempty"`
	Hourly               []HourView   `json:"hourly,omitempty"`
	Daily                []DayView    `json:"daily,omitempty"`
}

// CurrentView is the headline block of the screen.
type CurrentView struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description,omitempty"`
	IconURL     string  `json:"iconUrl,omitempty"`
}

// HourView is one hourly forecast cell.
type HourView struct {
	Hour    string  `json:"hour"`
	Temp    float64 `json:"temp"`
	IconURL string  `json:"iconUrl,omitempty"`
}

// DayView is one daily forecast row.
type DayView struct {
	Day     string  `json:"day"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	IconURL string  `json:"iconUrl,omitempty"`
}

// Render derives the view from state. It has no side effects.
func Render(s State) View {
	theme := ThemeFor(s.DarkModeEnabled)
	v := View{
		Theme:                theme,
		Phase:                s.Phase,
		Unit:                 s.Unit,
		NotificationsEnabled: s.NotificationsEnabled,
		Location:             s.Location,
		LocationName:         s.LocationName,
		ManualLocation:       s.ManualLocation,
		ErrorMessage:         s.ErrorMessage,
	}
	if theme == ThemeDark {
		v.BodyClass = "dark"
	}

	r := s.Weather
	if r == nil || r.Current == nil {
		return v
	}

	zone := time.FixedZone(r.Timezone, r.TimezoneOffset)
	desc, icon := firstSummary(r.Current.Weather)
	v.Current = &CurrentView{
		Temp:        r.Current.Temp,
		FeelsLike:   r.Current.FeelsLike,
		Humidity:    r.Current.Humidity,
		WindSpeed:   r.Current.WindSpeed,
		Description: desc,
		IconURL:     icon,
	}
	for _, h := range r.Hourly {
		_, icon := firstSummary(h.Weather)
		v.Hourly = append(v.Hourly, HourView{
			Hour:    HourLabel(h.Dt, zone),
			Temp:    h.Temp,
			IconURL: icon,
		})
	}
	for _, d := range r.Daily {
		_, icon := firstSummary(d.Weather)
		v.Daily = append(v.Daily, DayView{
			Day:     DayLabel(d.Dt, zone),
			Min:     d.Temp.Min,
			Max:     d.Temp.Max,
			IconURL: icon,
		})
	}
	return v
}

// HourLabel formats unix seconds as "15:04" in zone.
func HourLabel(unix int64, zone *time.Location) string {
	return time.Unix(unix, 0).In(zone).Format("15:04")
}

// DayLabel formats unix seconds as a weekday name in zone.
func DayLabel(unix int64, zone *time.Location) string {
	return time.Unix(unix, 0).In(zone).Weekday().String()
}

func firstSummary(items []Summary) (description, iconURL string) {
	if len(items) == 0 {
		return "", ""
	}
	if items[0].Icon != "" {
		iconURL = IconURL(items[0].Icon)
	}
	return items[0].Description, iconURL
}
