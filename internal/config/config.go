package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/weatherdesk/weatherdesk/internal/owm"
)

// Environment variables the provider resolves.
const (
	EnvAPIKey       = "OPENWEATHER_API_KEY"
	EnvBackupAPIKey = "OPENWEATHER_BACKUP_API_KEY"
	EnvDefaultCity  = "DEFAULT_CITY"
	EnvUnits        = "TEMPERATURE_UNITS"
)

const (
	defaultCity  = "New York"
	defaultUnits = owm.UnitsMetric
)

// Config is the resolved application configuration: the client
// settings plus UI-facing defaults. It is built once and read-only
// afterwards.
type Config struct {
	Client      owm.ClientConfig
	DefaultCity string
}

// Load resolves configuration from the process environment. The
// primary API key is required; everything else falls back to
// documented defaults. Safe to call repeatedly.
func Load() (*Config, error) {
	return LoadWith(os.Getenv)
}

// LoadWith is Load with an injectable lookup, so tests can run
// without mutating the process environment.
func LoadWith(getenv func(string) string) (*Config, error) {
	apiKey := getenv(EnvAPIKey)
	if apiKey == "" {
		return nil, &owm.Error{
			Kind:    owm.KindConfig,
			Message: fmt.Sprintf("%s is required; set it in your environment or .env file", EnvAPIKey),
		}
	}

	units := defaultUnits
	switch v := owm.Units(strings.ToLower(getenv(EnvUnits))); v {
	case owm.UnitsMetric, owm.UnitsImperial, owm.UnitsKelvin:
		units = v
	case "":
	default:
		return nil, &owm.Error{
			Kind:    owm.KindConfig,
			Message: fmt.Sprintf("%s must be one of metric, imperial, kelvin (got %q)", EnvUnits, v),
		}
	}

	city := getenv(EnvDefaultCity)
	if city == "" {
		city = defaultCity
	}

	return &Config{
		Client: owm.ClientConfig{
			APIKey:       apiKey,
			BackupAPIKey: getenv(EnvBackupAPIKey),
			DefaultUnits: units,
		},
		DefaultCity: city,
	}, nil
}

// Default returns a config built around an explicitly supplied API
// key, for callers that resolve the key outside the environment.
func Default(apiKey string) *Config {
	return &Config{
		Client:      owm.ClientConfig{APIKey: apiKey, DefaultUnits: defaultUnits},
		DefaultCity: defaultCity,
	}
}

// Summary renders the resolved settings for operator display. The
// API key is masked to its first 8 characters.
func (c *Config) Summary() string {
	backup := "not set"
	if c.Client.BackupAPIKey != "" {
		backup = "available"
	}
	return fmt.Sprintf(
		"api key: %s\nbackup key: %s\nplan: %s\ndefault city: %s\nunits: %s",
		owm.MaskKey(c.Client.APIKey), backup, owm.SubscriptionPlan, c.DefaultCity, c.Client.DefaultUnits,
	)
}
