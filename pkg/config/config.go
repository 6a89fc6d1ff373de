// Package config loads widgetctl settings from defaults, an optional YAML
// file, .env files and DASHBOARD_* environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. DASHBOARD_REPORTING_BASE_URL.
const EnvPrefix = "DASHBOARD"

// Config is the full widgetctl configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Reporting ReportingConfig `mapstructure:"reporting"`
	Board     BoardConfig     `mapstructure:"board"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls the API listener and the ops listener that serves
// metrics and health.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	OpsAddr         string        `mapstructure:"ops_addr"`
	BasePath        string        `mapstructure:"base_path" validate:"required,startswith=/"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// ReportingConfig points the dashboard at the reporting backend.
type ReportingConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"omitempty,url"`
	HeaderName        string        `mapstructure:"header_name"`
	HeaderValue       string        `mapstructure:"header_value"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"min=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"min=0"`
	Burst             int           `mapstructure:"burst" validate:"min=0"`
	SchemaCacheTTL    time.Duration `mapstructure:"schema_cache_ttl" validate:"min=0"`
	// Mock serves built-in fixtures instead of calling BaseURL.
	Mock bool `mapstructure:"mock"`
}

// BoardConfig seeds the board and tunes chart rendering.
type BoardConfig struct {
	// Manifest is a seed YAML file; empty seeds the sample board.
	Manifest      string        `mapstructure:"manifest"`
	Seed          bool          `mapstructure:"seed"`
	ChartCacheTTL time.Duration `mapstructure:"chart_cache_ttl" validate:"min=0"`
	ChartTheme    string        `mapstructure:"chart_theme"`
	// ChartAssetsHost serves the ECharts runtime from a CDN or bucket.
	ChartAssetsHost string `mapstructure:"chart_assets_host" validate:"omitempty,url"`
	Title           string `mapstructure:"title"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TelemetryConfig names the Prometheus metric namespace.
type TelemetryConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}

var defaults = map[string]any{
	"server.addr":                   ":8080",
	"server.ops_addr":               ":9090",
	"server.base_path":              "/api",
	"server.shutdown_timeout":       "10s",
	"reporting.base_url":            "",
	"reporting.header_name":         "ngrok-skip-browser-warning",
	"reporting.header_value":        "69420",
	"reporting.timeout":             "10s",
	"reporting.requests_per_second": 0,
	"reporting.burst":               1,
	"reporting.schema_cache_ttl":    "5m",
	"reporting.mock":                false,
	"board.manifest":                "",
	"board.seed":                    true,
	"board.chart_cache_ttl":         "5m",
	"board.chart_theme":             "westeros",
	"board.chart_assets_host":       "",
	"board.title":                   "Dashboard Builder",
	"log.level":                     "info",
	"log.format":                    "json",
	"telemetry.namespace":           "dashboard",
}

// Load reads the configuration. path may be empty, in which case
// ./dashboard.yaml is used when present. envFiles default to ".env"; missing
// env files are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	return LoadWithOverrides(path, nil, envFiles...)
}

// LoadWithOverrides is Load with explicit values, keyed like the YAML file
// (e.g. "reporting.mock"), that take precedence over every other source.
func LoadWithOverrides(path string, overrides map[string]any, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("dashboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read config: %w", err)
			}
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that a reporting backend is set.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !c.Reporting.Mock && c.Reporting.BaseURL == "" {
		return errors.New("config: reporting.base_url is required unless reporting.mock is set")
	}
	return nil
}
