package config

import (
	"fmt"
	"time"

	"github.com/orjumedia/storefront/pkg/config"
	"github.com/orjumedia/storefront/pkg/httpclient"
	"github.com/orjumedia/storefront/pkg/tracing"
)

// Deployment variants of the relay.
const (
	VariantStandalone = "standalone"
	VariantFunction   = "function"
)

// Config holds all configuration for the checkout relay.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTPPort is the standalone listen port. PlatformPort, when the hosting
	// platform assigns one, takes precedence.
	HTTPPort     int `env:"CHECKOUT_HTTP_PORT" envDefault:"4242" validate:"gte=1,lte=65535"`
	PlatformPort int `env:"PORT" validate:"gte=0,lte=65535"`

	// Payment gateway. The secret is never logged. An empty secret is not a
	// startup error: requests fail with 500 until it is set.
	GatewaySecretKey      string `env:"STRIPE_SECRET_KEY"`
	GatewayAPIKey         string `env:"STRIPE_API_KEY"`
	GatewayBaseURL        string `env:"STRIPE_API_BASE" envDefault:"https://api.stripe.com" validate:"required,url"`
	GatewayTimeoutSeconds int    `env:"GATEWAY_TIMEOUT_SECONDS" envDefault:"10" validate:"gte=1,lte=120"`

	SuccessURL   string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:5173/buy?success=true" validate:"required,url"`
	CancelURL    string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:5173/buy?canceled=true" validate:"required,url"`
	MaxCartItems int    `env:"MAX_CART_ITEMS" envDefault:"100" validate:"gte=1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Optional; events are disabled when empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Circuit breaker for the gateway.
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBIntervalSecs int     `env:"CB_INTERVAL_SECONDS" envDefault:"60" validate:"gte=0"`
	CBTimeoutSecs  int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30" validate:"gte=1"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5" validate:"gt=0,lte=1"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load checkout config: %w", err)
	}
	return cfg, nil
}

// ListenPort returns the port the HTTP server binds to.
func (c *Config) ListenPort() int {
	if c.PlatformPort > 0 {
		return c.PlatformPort
	}
	return c.HTTPPort
}

// SecretKey returns the gateway secret, preferring STRIPE_SECRET_KEY.
func (c *Config) SecretKey() string {
	if c.GatewaySecretKey != "" {
		return c.GatewaySecretKey
	}
	return c.GatewayAPIKey
}

// GatewayTimeout is the upper bound on a single gateway call.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutSeconds) * time.Second
}

// CircuitBreaker returns the breaker settings for the gateway client.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "payment-gateway",
		MaxRequests:  c.CBMaxRequests,
		Interval:     time.Duration(c.CBIntervalSecs) * time.Second,
		Timeout:      time.Duration(c.CBTimeoutSecs) * time.Second,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}

// TracingConfig returns the tracing settings with the service name filled in.
func (c *Config) TracingConfig(serviceName string) tracing.Config {
	tc := c.Tracing
	if tc.ServiceName == "" {
		tc.ServiceName = serviceName
	}
	if tc.Environment == "" {
		tc.Environment = c.Environment
	}
	return tc
}
