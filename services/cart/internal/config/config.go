package config

import (
	"fmt"
	"time"

	"github.com/orjumedia/storefront/pkg/config"
	"github.com/orjumedia/storefront/pkg/database"
	"github.com/orjumedia/storefront/services/cart/internal/store"
)

// Storage backends.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the cart CLI.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn error"`

	// Storage selects the cart backend. Memory state lives only as long as
	// the process.
	Storage   string `env:"CART_STORAGE" envDefault:"redis" validate:"oneof=redis memory"`
	Namespace string `env:"CART_NAMESPACE" envDefault:"storefront" validate:"required,excludesall=:"`
	Redis     database.RedisConfig

	DefaultCurrency string `env:"CART_DEFAULT_CURRENCY" envDefault:"CZK" validate:"oneof=USD CZK EUR PHP"`
	// FailOnCorruptCart refuses to open an unreadable stored cart instead of
	// starting from an empty one.
	FailOnCorruptCart bool `env:"CART_FAIL_ON_CORRUPT" envDefault:"false"`

	// Checkout relay.
	RelayURL               string `env:"CHECKOUT_RELAY_URL" envDefault:"http://localhost:4242/create-checkout-session" validate:"required,url"`
	PlatformKey            string `env:"PLATFORM_API_KEY"`
	SiteOrigin             string `env:"SITE_ORIGIN" envDefault:"http://localhost:5173" validate:"required,url"`
	CheckoutTimeoutSeconds int    `env:"CHECKOUT_TIMEOUT_SECONDS" envDefault:"20" validate:"gte=1,lte=120"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load cart config: %w", err)
	}
	return cfg, nil
}

// StoreOptions returns the Cart Store settings.
func (c *Config) StoreOptions() store.Options {
	opts := store.Options{DefaultCurrency: c.DefaultCurrency, OnCorruptState: store.ResetToEmpty}
	if c.FailOnCorruptCart {
		opts.OnCorruptState = store.FailLoud
	}
	return opts
}

// CheckoutTimeout bounds one checkout submission.
func (c *Config) CheckoutTimeout() time.Duration {
	return time.Duration(c.CheckoutTimeoutSeconds) * time.Second
}
