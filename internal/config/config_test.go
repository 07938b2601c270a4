package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
server:
  port: "9090"
`

func writeConfigFile(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "dev.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir back: %v", err)
		}
	})
}

func chdirTemp(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	writeConfigFile(t, dir, contents)
	chdir(t, dir)
}

func TestLoad_DefaultsFromMinimalFile(t *testing.T) {
	chdirTemp(t, minimalYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.GeocodingURL != DefaultGeocodingURL {
		t.Errorf("GeocodingURL = %q", cfg.GeocodingURL)
	}
	if cfg.ForecastURL != DefaultForecastURL || cfg.AirQualityURL != DefaultAirQualityURL {
		t.Errorf("endpoint defaults not applied")
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Errorf("UpstreamTimeout = %v, want %v", cfg.UpstreamTimeout, DefaultUpstreamTimeout)
	}
	if cfg.RecordBackend != "xlsx" || cfg.RecordPath != "weather_records.xlsx" {
		t.Errorf("record log defaults = %q %q", cfg.RecordBackend, cfg.RecordPath)
	}
	if cfg.RateLimitRPS != 100 || cfg.RateLimitBurst != 250 {
		t.Errorf("rate limit defaults = %d/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.CityMinLength != 1 || cfg.CityMaxLength != 100 {
		t.Errorf("city length defaults = %d/%d", cfg.CityMinLength, cfg.CityMaxLength)
	}
}

func TestLoad_FullFile(t *testing.T) {
	chdirTemp(t, `
server:
  port: "8081"
open_meteo:
  geocoding_url: "http://localhost:1001/search"
  forecast_url: "http://localhost:1002/forecast"
  air_quality_url: "http://localhost:1003/aq"
  timeout: 2s
request:
  timeout: 8s
record_log:
  backend: sqlite
  path: /tmp/records.db
reliability:
  rate_limit_rps: 10
  rate_limit_burst: 20
health:
  window: 30s
  error_pct: 25
validation:
  city_min_length: 2
  city_max_length: 64
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeocodingURL != "http://localhost:1001/search" {
		t.Errorf("GeocodingURL = %q", cfg.GeocodingURL)
	}
	if cfg.UpstreamTimeout != 2*time.Second || cfg.RequestTimeout != 8*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.UpstreamTimeout, cfg.RequestTimeout)
	}
	if cfg.RecordBackend != "sqlite" || cfg.RecordPath != "/tmp/records.db" {
		t.Errorf("record log = %q %q", cfg.RecordBackend, cfg.RecordPath)
	}
	if cfg.HealthWindow != 30*time.Second || cfg.HealthErrorPct != 25 {
		t.Errorf("health = %v / %d", cfg.HealthWindow, cfg.HealthErrorPct)
	}
	if cfg.CityMinLength != 2 || cfg.CityMaxLength != 64 {
		t.Errorf("city lengths = %d / %d", cfg.CityMinLength, cfg.CityMaxLength)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t, minimalYAML)
	t.Setenv("RECORD_LOG_BACKEND", "sqlite")
	t.Setenv("RECORD_LOG_PATH", "/tmp/override.db")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecordBackend != "sqlite" {
		t.Errorf("RecordBackend = %q, want sqlite", cfg.RecordBackend)
	}
	if cfg.RecordPath != "/tmp/override.db" {
		t.Errorf("RecordPath = %q", cfg.RecordPath)
	}
	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want 7070", cfg.ServerPort)
	}
}

func TestLoad_SqliteDefaultPath(t *testing.T) {
	chdirTemp(t, `
record_log:
  backend: sqlite
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecordPath != "weather_records.db" {
		t.Errorf("RecordPath = %q, want weather_records.db", cfg.RecordPath)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	chdirTemp(t, `
record_log:
  backend: csv
`)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "record_log.backend") {
		t.Errorf("Load error = %v, want backend validation error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load error = %v, want missing-file error", err)
	}
}

func TestLoad_RequestTimeoutAutoAdjust(t *testing.T) {
	chdirTemp(t, `
open_meteo:
  timeout: 10s
request:
  timeout: 5s
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		t.Errorf("RequestTimeout = %v not adjusted above UpstreamTimeout %v", cfg.RequestTimeout, cfg.UpstreamTimeout)
	}
}
