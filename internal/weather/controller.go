package weather

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Phase is the controller's position in the fetch flow.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseLocatingDevice  Phase = "locating_device"
	PhaseCheckingNetwork Phase = "checking_network"
	PhaseFetchingLive    Phase = "fetching_live"
	PhaseLoadingCache    Phase = "loading_cache"
	PhaseDisplaying      Phase = "displaying"
)

// User-visible messages. Only one is shown at a time.
const (
	MsgLocationUnavailable  = "Unable to retrieve location. Please check your device settings."
	MsgFetchFailed          = "Unable to fetch weather data. Loading cached data..."
	MsgNoLocationForCache   = "No location available to load cached weather data."
	MsgNoCachedData         = "No cached weather data available."
	MsgNoLocationName       = "No location name found."
	MsgLocationNameFailed   = "Unable to fetch location name. Please try again later."
	MsgInvalidCity          = "Please enter a valid city name."
	MsgCityNotFound         = "City not found. Please try again."
	MsgManualLocationFailed = "Unable to fetch weather data for the specified location."
	MsgInvalidUnit          = "Please choose a supported unit."
)

// State is what the view renders.
type State struct {
	Phase                Phase
	Location             *Coordinates
	LocationName         string
	Weather              *Report
	ErrorMessage         string
	ManualLocation       string
	Unit                 Unit
	NotificationsEnabled bool
	DarkModeEnabled      bool
}

// Dependencies bundles the collaborators of a Controller.
type Dependencies struct {
	Gateway     Gateway
	Locator     Locator
	Network     NetworkStatus
	Cache       CacheStore
	Preferences PreferenceStore
	Logger      Logger
}

// Controller orchestrates preferences, location, live fetches and the cache
// fallback. Location and Weather pointers held in State are never mutated
// after being stored, so snapshots can share them.
type Controller struct {
	gateway Gateway
	locator Locator
	network NetworkStatus
	cache   CacheStore
	prefs   PreferenceStore
	logger  Logger

	mu    sync.Mutex
	state State
}

// NewController creates a new Controller in the idle phase.
func NewController(deps Dependencies) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		gateway: deps.Gateway,
		locator: deps.Locator,
		network: deps.Network,
		cache:   deps.Cache,
		prefs:   deps.Preferences,
		logger:  logger,
		state: State{
			Phase: PhaseIdle,
			Unit:  UnitMetric,
		},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start loads preferences and resolves the device location.
func (c *Controller) Start(ctx context.Context) {
	c.LoadPreferences(ctx)
	c.LocateDevice(ctx)
}

// LoadPreferences reads unit, notifications and theme from the preference store.
func (c *Controller) LoadPreferences(ctx context.Context) {
	unitRaw, _ := c.prefs.Get(ctx, PrefUnit)
	notifications, _ := c.prefs.Get(ctx, PrefNotifications)
	theme, _ := c.prefs.Get(ctx, PrefTheme)

	c.logger.Printf("INFO: loaded preferences unit=%q notifications=%q theme=%q", unitRaw, notifications, theme)

	unit := UnitMetric
	if unitRaw != "" {
		parsed, err := ParseUnit(unitRaw)
		if err != nil {
			c.logger.Printf("ERROR: ignoring stored unit: %v", err)
		} else {
			unit = parsed
		}
	}

	c.mu.Lock()
	c.state.Unit = unit
	c.state.NotificationsEnabled = notifications == "true"
	c.state.DarkModeEnabled = theme == string(ThemeDark)
	c.mu.Unlock()
}

// LocateDevice resolves the device position and then fetches the weather and
// the location name concurrently.
func (c *Controller) LocateDevice(ctx context.Context) {
	c.setPhase(PhaseLocatingDevice)

	pos, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		c.logger.Printf("ERROR: getting location: %v", err)
		c.fail(MsgLocationUnavailable)
		c.settle()
		return
	}
	c.logger.Printf("INFO: current location %s", pos.Key())

	c.mu.Lock()
	c.state.Location = &pos
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.GetWeather(ctx)
	}()
	go func() {
		defer wg.Done()
		c.LoadLocationName(ctx)
	}()
	wg.Wait()
}

// GetWeather fetches live weather when online and falls back to the cache
// when offline or when the live fetch fails.
func (c *Controller) GetWeather(ctx context.Context) {
	c.setPhase(PhaseCheckingNetwork)

	if !c.network.Connected(ctx) {
		c.logger.Printf("INFO: %v; loading cached data", ErrNetworkUnreachable)
		c.loadCached(ctx)
		return
	}

	c.mu.Lock()
	loc := c.state.Location
	unit := c.state.Unit
	c.mu.Unlock()

	if loc == nil {
		c.logger.Printf("DEBUG: no location resolved; skipping weather fetch")
		c.settle()
		return
	}

	c.setPhase(PhaseFetchingLive)
	report, err := c.gateway.FetchCurrentWeather(ctx, loc.Latitude, loc.Longitude, unit)
	if err != nil {
		c.logger.Printf("ERROR: fetching weather data for %s: %v", loc.Key(), err)
		c.fail(MsgFetchFailed)
		c.loadCached(ctx)
		return
	}

	c.mu.Lock()
	c.state.Weather = report
	c.state.Phase = PhaseDisplaying
	c.mu.Unlock()

	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Printf("ERROR: encoding weather data for %s: %v", loc.Key(), err)
		return
	}
	c.cache.SaveWeatherData(ctx, loc.Key(), string(data))
}

func (c *Controller) loadCached(ctx context.Context) {
	c.mu.Lock()
	loc := c.state.Location
	c.state.Phase = PhaseLoadingCache
	c.mu.Unlock()

	if loc == nil {
		c.logger.Printf("ERROR: %s", MsgNoLocationForCache)
		c.fail(MsgNoLocationForCache)
		c.settle()
		return
	}

	report := c.cache.GetWeatherData(ctx, loc.Key())
	if report == nil {
		c.fail(MsgNoCachedData)
		c.settle()
		return
	}

	c.logger.Printf("INFO: loaded cached weather data for %s", loc.Key())
	c.mu.Lock()
	c.state.Weather = report
	c.state.Phase = PhaseDisplaying
	c.mu.Unlock()
}

// LoadLocationName reverse-geocodes the active location.
func (c *Controller) LoadLocationName(ctx context.Context) {
	c.mu.Lock()
	loc := c.state.Location
	c.mu.Unlock()
	if loc == nil {
		return
	}

	places, err := c.gateway.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		c.logger.Printf("ERROR: fetching location name for %s: %v", loc.Key(), err)
		c.fail(MsgLocationNameFailed)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(places) == 0 {
		c.logger.Printf("ERROR: no location name found for %s", loc.Key())
		c.state.LocationName = ""
		c.state.ErrorMessage = MsgNoLocationName
		return
	}
	c.state.LocationName = places[0].Name
}

// SearchCity makes the first geocoding match for city the active location
// and fetches its weather. Blank input is rejected without calling the gateway.
func (c *Controller) SearchCity(ctx context.Context, city string) {
	c.mu.Lock()
	c.state.ManualLocation = city
	c.mu.Unlock()

	city = strings.TrimSpace(city)
	if err := validate.Var(city, "required"); err != nil {
		c.logger.Printf("ERROR: %v: %s", ErrValidation, MsgInvalidCity)
		c.fail(MsgInvalidCity)
		return
	}

	places, err := c.gateway.ForwardGeocode(ctx, city)
	if err != nil {
		c.logger.Printf("ERROR: geocoding %q: %v", city, err)
		c.fail(MsgManualLocationFailed)
		return
	}
	if len(places) == 0 {
		c.logger.Printf("ERROR: %v: city %q not found", ErrValidation, city)
		c.fail(MsgCityNotFound)
		return
	}

	first := places[0]
	c.mu.Lock()
	c.state.Location = &Coordinates{Latitude: first.Lat, Longitude: first.Lon}
	c.state.LocationName = first.Name
	c.mu.Unlock()

	c.GetWeather(ctx)
}

// UseCurrentLocation drops the manual location and resolves the device again.
func (c *Controller) UseCurrentLocation(ctx context.Context) {
	c.mu.Lock()
	c.state.ManualLocation = ""
	c.state.ErrorMessage = ""
	c.mu.Unlock()

	c.LocateDevice(ctx)
}

// SetUnit switches the unit, refetches and persists the preference.
func (c *Controller) SetUnit(ctx context.Context, raw string) {
	unit, err := ParseUnit(raw)
	if err != nil {
		c.logger.Printf("ERROR: %v", err)
		c.fail(MsgInvalidUnit)
		return
	}

	c.mu.Lock()
	c.state.Unit = unit
	c.mu.Unlock()

	c.GetWeather(ctx)
	c.prefs.Set(ctx, PrefUnit, string(unit))
}

// SetDarkMode applies the theme and persists it.
func (c *Controller) SetDarkMode(ctx context.Context, enabled bool) {
	c.mu.Lock()
	c.state.DarkModeEnabled = enabled
	c.mu.Unlock()

	c.prefs.Set(ctx, PrefTheme, string(ThemeFor(enabled)))
}

// SetNotifications persists the notifications toggle.
func (c *Controller) SetNotifications(ctx context.Context, enabled bool) {
	c.mu.Lock()
	c.state.NotificationsEnabled = enabled
	c.mu.Unlock()

	if enabled {
		c.logger.Printf("INFO: notifications enabled")
	} else {
		c.logger.Printf("INFO: notifications disabled")
	}
	c.prefs.Set(ctx, PrefNotifications, boolString(enabled))
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	c.state.Phase = p
	c.mu.Unlock()
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	c.state.ErrorMessage = msg
	c.mu.Unlock()
}

// settle leaves a transient phase once an operation has finished.
func (c *Controller) settle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Weather != nil {
		c.state.Phase = PhaseDisplaying
	} else {
		c.state.Phase = PhaseIdle
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
