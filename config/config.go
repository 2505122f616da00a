// Package config loads service settings from the environment, an optional
// .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"access-gateway-api/db"
	"access-gateway-api/events"
	"access-gateway-api/keyword"
	"access-gateway-api/relay"
)

type Config struct {
	Database db.Config

	HTTPAddr       string
	WebhookSecret  string
	DefaultKeyword string
	SettingsTTL    time.Duration

	Relay relay.Config

	NATSURL     string
	NATSSubject string
}

var defaults = map[string]any{
	"DB_DRIVER":             "pgx",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "",
	"DB_NAME":               "access_gateway",
	"DB_SSLMODE":            "disable",
	"HTTP_ADDR":             ":8080",
	"WEBHOOK_SECRET":        "",
	"DEFAULT_KEYWORD":       keyword.DefaultKeyword,
	"SETTINGS_CACHE_TTL":    "5s",
	"RELAY_TIMEOUT":         relay.DefaultTimeout.String(),
	"RELAY_RATE_PER_SECOND": relay.DefaultRatePerSecond,
	"RELAY_API_ENDPOINT":    "",
	"NATS_URL":              "",
	"NATS_SUBJECT":          events.DefaultSubject,
}

// Load reads .env (when present) into the process environment and then
// resolves every key from the environment, config.yaml, or its default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/access-gateway")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading the configuration file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper resolves the configuration from v with environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	driver := strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER")))
	switch driver {
	case "postgres", "postgresql":
		driver = "pgx"
	case "sqlite3":
		driver = "sqlite"
	case "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	ttl, err := duration(v, "SETTINGS_CACHE_TTL")
	if err != nil {
		return nil, err
	}
	timeout, err := duration(v, "RELAY_TIMEOUT")
	if err != nil {
		return nil, err
	}
	ratePerSecond := v.GetFloat64("RELAY_RATE_PER_SECOND")
	if ratePerSecond <= 0 {
		return nil, fmt.Errorf("RELAY_RATE_PER_SECOND must be positive, got %v", ratePerSecond)
	}

	return &Config{
		Database: db.Config{
			Driver:   driver,
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		WebhookSecret:  v.GetString("WEBHOOK_SECRET"),
		DefaultKeyword: v.GetString("DEFAULT_KEYWORD"),
		SettingsTTL:    ttl,
		Relay: relay.Config{
			Endpoint:      v.GetString("RELAY_API_ENDPOINT"),
			Timeout:       timeout,
			RatePerSecond: ratePerSecond,
		},
		NATSURL:     v.GetString("NATS_URL"),
		NATSSubject: v.GetString("NATS_SUBJECT"),
	}, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
