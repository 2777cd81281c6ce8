package owm

// Units selects the temperature unit system for requests. Kelvin is
// the provider default and is expressed by omitting the units
// parameter entirely.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
	UnitsKelvin   Units = "kelvin"
)

// Provider endpoint defaults. The premium base is tried first; the
// free-tier base is the fallback for authentication failures.
const (
	DefaultBaseURL       = "https://pro.openweathermap.org/data/2.5"
	DefaultFreeBaseURL   = "https://api.openweathermap.org/data/2.5"
	DefaultOneCallURL    = "https://api.openweathermap.org/data/2.5/onecall"
	DefaultHistoryURL    = "https://api.openweathermap.org/data/2.5/onecall/timemachine"
	DefaultGeocodingURL  = "https://api.openweathermap.org/geo/1.0"
	DefaultPollutionURL  = "https://api.openweathermap.org/data/2.5/air_pollution"
	DefaultMapsURL       = "https://tile.openweathermap.org/map"
	DefaultStatisticsURL = "https://history.openweathermap.org/data/2.5/aggregated/year"
)

// Student Pack subscription details, surfaced in authentication
// failure remediation messages.
const (
	SubscriptionPlan   = "Student Pack (Developer)"
	RateLimitPerMinute = 3000
	RateLimitPerMonth  = 100000000
	HistoryCallsPerDay = 50000
)

// ClientConfig carries everything a Client needs. Zero-value URL
// fields are filled with the provider defaults by New; APIKey must be
// non-empty. The config is copied on construction and never mutated
// afterwards, so a single Client is safe for concurrent use.
type ClientConfig struct {
	APIKey        string
	BackupAPIKey  string
	BaseURL       string
	FreeBaseURL   string
	OneCallURL    string
	HistoryURL    string
	GeocodingURL  string
	PollutionURL  string
	MapsURL       string
	StatisticsURL string
	DefaultUnits  Units
}

func (c *ClientConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.FreeBaseURL == "" {
		c.FreeBaseURL = DefaultFreeBaseURL
	}
	if c.OneCallURL == "" {
		c.OneCallURL = DefaultOneCallURL
	}
	if c.HistoryURL == "" {
		c.HistoryURL = DefaultHistoryURL
	}
	if c.GeocodingURL == "" {
		c.GeocodingURL = DefaultGeocodingURL
	}
	if c.PollutionURL == "" {
		c.PollutionURL = DefaultPollutionURL
	}
	if c.MapsURL == "" {
		c.MapsURL = DefaultMapsURL
	}
	if c.StatisticsURL == "" {
		c.StatisticsURL = DefaultStatisticsURL
	}
	if c.DefaultUnits == "" {
		c.DefaultUnits = UnitsMetric
	}
}

// MaskKey renders an API key as its first 8 characters for operator
// display. Shorter keys are masked entirely.
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:8] + "..."
}
