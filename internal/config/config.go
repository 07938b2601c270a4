package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default Open-Meteo endpoints. Public APIs, no key required.
const (
	DefaultGeocodingURL  = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

// DefaultUpstreamTimeout is the fixed per-call bound for Open-Meteo requests.
const DefaultUpstreamTimeout = 10 * time.Second

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	GeocodingURL    string
	ForecastURL     string
	AirQualityURL   string
	UpstreamTimeout time.Duration

	RequestTimeout time.Duration

	RecordBackend string // "xlsx" or "sqlite"
	RecordPath    string

	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	HealthWindow   time.Duration
	HealthErrorPct int

	CityMinLength int
	CityMaxLength int
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	OpenMeteo struct {
		GeocodingURL  string `yaml:"geocoding_url"`
		ForecastURL   string `yaml:"forecast_url"`
		AirQualityURL string `yaml:"air_quality_url"`
		Timeout       string `yaml:"timeout"`
	} `yaml:"open_meteo"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	RecordLog struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"record_log"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`

	Health struct {
		Window   string `yaml:"window"`
		ErrorPct int    `yaml:"error_pct"`
	} `yaml:"health"`

	Validation struct {
		CityMinLength int `yaml:"city_min_length"`
		CityMaxLength int `yaml:"city_max_length"`
	} `yaml:"validation"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev), after
// loading a .env file when present. Env overrides: RECORD_LOG_BACKEND,
// RECORD_LOG_PATH, PORT. Call from project root.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.GeocodingURL = stringOr(fc.OpenMeteo.GeocodingURL, DefaultGeocodingURL)
	cfg.ForecastURL = stringOr(fc.OpenMeteo.ForecastURL, DefaultForecastURL)
	cfg.AirQualityURL = stringOr(fc.OpenMeteo.AirQualityURL, DefaultAirQualityURL)
	cfg.UpstreamTimeout = parseDuration(fc.OpenMeteo.Timeout, DefaultUpstreamTimeout)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.RecordBackend = strings.TrimSpace(strings.ToLower(os.Getenv("RECORD_LOG_BACKEND")))
	if cfg.RecordBackend == "" {
		cfg.RecordBackend = strings.TrimSpace(strings.ToLower(fc.RecordLog.Backend))
	}
	if cfg.RecordBackend == "" {
		cfg.RecordBackend = "xlsx"
	}
	cfg.RecordPath = strings.TrimSpace(os.Getenv("RECORD_LOG_PATH"))
	if cfg.RecordPath == "" {
		cfg.RecordPath = strings.TrimSpace(fc.RecordLog.Path)
	}
	if cfg.RecordPath == "" {
		switch cfg.RecordBackend {
		case "sqlite":
			cfg.RecordPath = "weather_records.db"
		default:
			cfg.RecordPath = "weather_records.xlsx"
		}
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.HealthWindow = parseDuration(fc.Health.Window, 60*time.Second)
	cfg.HealthErrorPct = fc.Health.ErrorPct
	if cfg.HealthErrorPct <= 0 {
		cfg.HealthErrorPct = 50
	}

	cfg.CityMinLength = fc.Validation.CityMinLength
	if cfg.CityMinLength <= 0 {
		cfg.CityMinLength = 1
	}
	cfg.CityMaxLength = fc.Validation.CityMaxLength
	if cfg.CityMaxLength <= 0 {
		cfg.CityMaxLength = 100
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringOr(s, defaultVal string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	return s
}

// parseDuration parses a duration string, returning defaultVal on empty
// string, parse error, or non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. The request timeout must exceed
// the per-call upstream timeout so a single slow upstream call cannot
// consume the whole request budget; it is auto-adjusted when it does not.
func validate(cfg *Config) error {
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("open_meteo.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		cfg.RequestTimeout = cfg.UpstreamTimeout + 5*time.Second
	}
	switch cfg.RecordBackend {
	case "xlsx", "sqlite":
		// valid
	default:
		return fmt.Errorf("record_log.backend must be xlsx or sqlite, got %q", cfg.RecordBackend)
	}
	if cfg.CityMinLength > cfg.CityMaxLength {
		return fmt.Errorf("validation.city_min_length %d exceeds city_max_length %d", cfg.CityMinLength, cfg.CityMaxLength)
	}
	return nil
}
