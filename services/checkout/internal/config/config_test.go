package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs sets multiple env vars for the duration of the test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.HTTPPort)
	assert.Equal(t, 4242, cfg.ListenPort())
	assert.Equal(t, "https://api.stripe.com", cfg.GatewayBaseURL)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout())
	assert.Equal(t, "http://localhost:5173/buy?success=true", cfg.SuccessURL)
	assert.Equal(t, "http://localhost:5173/buy?canceled=true", cfg.CancelURL)
	assert.Equal(t, 100, cfg.MaxCartItems)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_FromEnvVars(t *testing.T) {
	setEnvs(t, map[string]string{
		"CHECKOUT_HTTP_PORT":      "8080",
		"STRIPE_API_BASE":         "http://127.0.0.1:12111",
		"GATEWAY_TIMEOUT_SECONDS": "3",
		"MAX_CART_ITEMS":          "20",
		"CORS_ALLOWED_ORIGINS":    "https://orju.media,https://www.orju.media",
		"KAFKA_BROKERS":           "k1:9092,k2:9092",
		"CB_FAILURE_RATIO":        "0.25",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ListenPort())
	assert.Equal(t, "http://127.0.0.1:12111", cfg.GatewayBaseURL)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout())
	assert.Equal(t, 20, cfg.MaxCartItems)
	assert.Equal(t, []string{"https://orju.media", "https://www.orju.media"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 0.25, cfg.CircuitBreaker().FailureRatio)
}

func TestListenPort_PlatformPortWins(t *testing.T) {
	setEnvs(t, map[string]string{
		"CHECKOUT_HTTP_PORT": "4242",
		"PORT":               "8000",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.ListenPort())
}

func TestSecretKey_FallsBackToAPIKey(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_KEY", "sk_test_fallback")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sk_test_fallback", cfg.SecretKey())

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_primary")
	cfg, err = Load()

	require.NoError(t, err)
	assert.Equal(t, "sk_test_primary", cfg.SecretKey())
}

func TestLoad_MissingSecretIsNotAnError(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("STRIPE_API_KEY", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Empty(t, cfg.SecretKey())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CHECKOUT_HTTP_PORT", "70000")

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "load checkout config")
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("STRIPE_API_BASE", "not a url")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidFailureRatio(t *testing.T) {
	t.Setenv("CB_FAILURE_RATIO", "1.5")

	_, err := Load()

	require.Error(t, err)
}

func TestCircuitBreaker_Durations(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cb := cfg.CircuitBreaker()
	assert.Equal(t, "payment-gateway", cb.Name)
	assert.Equal(t, 60*time.Second, cb.Interval)
	assert.Equal(t, 30*time.Second, cb.Timeout)
	assert.Equal(t, uint32(5), cb.MinRequests)
}

func TestTracingConfig_FillsServiceName(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	tc := cfg.TracingConfig("checkout-relay")
	assert.Equal(t, "checkout-relay", tc.ServiceName)

	t.Setenv("OTEL_SERVICE_NAME", "custom")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.TracingConfig("checkout-relay").ServiceName)
}
