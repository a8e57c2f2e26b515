package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Link          LinkConfig          `mapstructure:"link"`
	Cleanup       CleanupConfig       `mapstructure:"cleanup"`
	Shortener     ShortenerConfig     `mapstructure:"shortener"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type LinkConfig struct {
	TTLSeconds        int `mapstructure:"ttl_seconds"`
	DefaultClickLimit int `mapstructure:"default_click_limit"`
}

// TTL returns the link time-to-live as a duration.
func (c LinkConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type CleanupConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// Interval returns the cleanup period as a duration.
func (c CleanupConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

type ShortenerConfig struct {
	CodeLength int    `mapstructure:"code_length"`
	Domain     string `mapstructure:"domain"`
}

// Notification sink kinds.
const (
	SinkConsole = "console"
	SinkNATS    = "nats"
)

type NotificationsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sink    string `mapstructure:"sink"`
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads configuration from config.yaml (searched in . and ./config),
// with environment variables overriding file values. A local .env file is
// picked up first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Allow environment variables to override YAML entries
	// (link.ttl_seconds becomes LINK_TTL_SECONDS).
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("link.ttl_seconds", 86400)
	v.SetDefault("link.default_click_limit", 100)
	v.SetDefault("cleanup.interval_seconds", 3600)
	v.SetDefault("shortener.code_length", 6)
	v.SetDefault("shortener.domain", "short.ly")
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.sink", SinkConsole)
	v.SetDefault("nats.host", "localhost")
	v.SetDefault("nats.port", 4222)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}

func bindEnvVars(v *viper.Viper) {
	// Preserve the short env variable names used by earlier deployments.
	v.BindEnv("shortener.code_length", "SHORT_CODE_LENGTH")
	v.BindEnv("shortener.domain", "SHORT_DOMAIN")
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")
}

func (c *Config) validate() error {
	if c.Link.TTLSeconds <= 0 {
		return fmt.Errorf("link.ttl_seconds must be positive, got %d", c.Link.TTLSeconds)
	}
	if c.Link.DefaultClickLimit < -1 {
		return fmt.Errorf("link.default_click_limit must be >= 0 or -1, got %d", c.Link.DefaultClickLimit)
	}
	if c.Cleanup.IntervalSeconds <= 0 {
		return fmt.Errorf("cleanup.interval_seconds must be positive, got %d", c.Cleanup.IntervalSeconds)
	}
	if c.Shortener.CodeLength <= 0 {
		return fmt.Errorf("shortener.code_length must be positive, got %d", c.Shortener.CodeLength)
	}
	switch c.Notifications.Sink {
	case SinkConsole, SinkNATS:
	default:
		return fmt.Errorf("notifications.sink must be %q or %q, got %q",
			SinkConsole, SinkNATS, c.Notifications.Sink)
	}
	return nil
}
