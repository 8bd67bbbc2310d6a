// Package config loads runtime configuration from an optional YAML file
// with LFDASH_-prefixed environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration root.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the events API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures event persistence.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// UpstreamConfig points at the Langfuse-compatible ingestion API the
// tracker forwards to. Empty BaseURL disables forwarding.
type UpstreamConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	PublicKey string `mapstructure:"public_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// DashboardConfig configures the live terminal dashboard pipeline.
type DashboardConfig struct {
	APIBaseURL      string        `mapstructure:"api_base_url"`
	StreamURL       string        `mapstructure:"stream_url"`
	MaxRetained     int           `mapstructure:"max_retained"`
	MaxPoints       int           `mapstructure:"max_points"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	ReconnectDelay  time.Duration `mapstructure:"reconnect_delay"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (optional; "config.yaml" in the
// working directory when empty), applies environment overrides, and
// fills defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LFDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Dashboard.StreamURL == "" {
		cfg.Dashboard.StreamURL = strings.TrimRight(cfg.Dashboard.APIBaseURL, "/") + "/events/stream"
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.dsn", "")

	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.public_key", "")
	v.SetDefault("upstream.secret_key", "")

	v.SetDefault("dashboard.api_base_url", "http://127.0.0.1:8765")
	v.SetDefault("dashboard.stream_url", "")
	v.SetDefault("dashboard.max_retained", 300)
	v.SetDefault("dashboard.max_points", 50)
	v.SetDefault("dashboard.refresh_interval", 5*time.Second)
	v.SetDefault("dashboard.reconnect_delay", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
