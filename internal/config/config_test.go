package config_test

import (
	"strings"
	"testing"

	"github.com/weatherdesk/weatherdesk/internal/config"
	"github.com/weatherdesk/weatherdesk/internal/owm"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Parallel()
	_, err := config.LoadWith(env(nil))
	if !owm.IsKind(err, owm.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	if !strings.Contains(err.Error(), config.EnvAPIKey) {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadWith(env(map[string]string{
		config.EnvAPIKey: "abcdef1234567890",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultCity != "New York" {
		t.Errorf("default city = %q, want New York", cfg.DefaultCity)
	}
	if cfg.Client.DefaultUnits != owm.UnitsMetric {
		t.Errorf("units = %q, want metric", cfg.Client.DefaultUnits)
	}
	if cfg.Client.BackupAPIKey != "" {
		t.Errorf("backup key = %q, want empty", cfg.Client.BackupAPIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadWith(env(map[string]string{
		config.EnvAPIKey:       "abcdef1234567890",
		config.EnvBackupAPIKey: "backup9876543210",
		config.EnvDefaultCity:  "Bright",
		config.EnvUnits:        "Imperial",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultCity != "Bright" {
		t.Errorf("city = %q, want Bright", cfg.DefaultCity)
	}
	if cfg.Client.DefaultUnits != owm.UnitsImperial {
		t.Errorf("units = %q, want imperial", cfg.Client.DefaultUnits)
	}
	if cfg.Client.BackupAPIKey != "backup9876543210" {
		t.Errorf("backup key not carried: %q", cfg.Client.BackupAPIKey)
	}
}

func TestLoadRejectsUnknownUnits(t *testing.T) {
	t.Parallel()
	_, err := config.LoadWith(env(map[string]string{
		config.EnvAPIKey: "abcdef1234567890",
		config.EnvUnits:  "fahrenheit",
	}))
	if !owm.IsKind(err, owm.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	t.Parallel()
	lookup := env(map[string]string{config.EnvAPIKey: "abcdef1234567890"})
	first, err := config.LoadWith(lookup)
	if err != nil {
		t.Fatal(err)
	}
	second, err := config.LoadWith(lookup)
	if err != nil {
		t.Fatal(err)
	}
	if *first != *second {
		t.Errorf("repeated loads differ: %+v vs %+v", first, second)
	}
}

func TestSummaryMasksKey(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadWith(env(map[string]string{
		config.EnvAPIKey:       "abcdef1234567890",
		config.EnvBackupAPIKey: "backup9876543210",
	}))
	if err != nil {
		t.Fatal(err)
	}
	summary := cfg.Summary()
	if strings.Contains(summary, "abcdef1234567890") {
		t.Errorf("summary leaks the full key: %s", summary)
	}
	if !strings.Contains(summary, "abcdef12...") {
		t.Errorf("summary should show the first 8 characters: %s", summary)
	}
	if !strings.Contains(summary, "backup key: available") {
		t.Errorf("summary should report backup key availability: %s", summary)
	}
	if strings.Contains(summary, "backup9876543210") {
		t.Errorf("summary leaks the backup key: %s", summary)
	}
}
