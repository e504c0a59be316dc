// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
//
// GA4_MEASUREMENT_ID is intentionally absent: the analytics reporter reads
// it on every exchange so it can change without a restart.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	AppPort  int    `env:"APP_PORT" envDefault:"8080"`
	AppTitle string `env:"APP_TITLE" envDefault:"SaaSKit"`

	// Public origin, used for billing return URLs
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// GA4 collector
	GA4Endpoint    string        `env:"GA4_ENDPOINT" envDefault:"https://www.google-analytics.com/g/collect"`
	GA4SendTimeout time.Duration `env:"GA4_SEND_TIMEOUT" envDefault:"5s"`

	// Billing (optional; the account portal route 404s without a key)
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	StripeAPIURL    string `env:"STRIPE_API_URL" envDefault:"https://api.stripe.com"`

	// Prometheus /metrics endpoint
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// BillingEnabled returns true when a Stripe key is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.GA4SendTimeout <= 0 {
		return nil, fmt.Errorf("GA4_SEND_TIMEOUT must be positive, got %s", cfg.GA4SendTimeout)
	}
	return cfg, nil
}
