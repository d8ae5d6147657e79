// Package config loads process configuration from an optional .env
// file and from the environment. Environment variables always win over
// file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob the storefront binary needs. Session key
// names live here so no component hard-codes them.
type Config struct {
	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	SQLitePath   string `mapstructure:"SQLITE_PATH"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	SessionCookie   string `mapstructure:"SESSION_COOKIE"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`

	CartSessionKey   string `mapstructure:"CART_SESSION_KEY"`
	CouponSessionKey string `mapstructure:"COUPON_SESSION_KEY"`
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Load reads configuration from the .env file in the working directory
// (if present) and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SQLITE_PATH", "./data/storefront.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SERVICE_NAME", "storefront")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_COOKIE", "storefront_session")
	v.SetDefault("SESSION_TTL_HOURS", 24*14)
	v.SetDefault("CART_SESSION_KEY", "cart")
	v.SetDefault("COUPON_SESSION_KEY", "coupon_id")

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; defaults plus environment apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
