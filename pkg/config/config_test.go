package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port       int      `env:"TEST_CFG_PORT" envDefault:"4242" validate:"gte=1,lte=65535"`
	SuccessURL string   `env:"TEST_CFG_SUCCESS_URL" envDefault:"http://localhost:5173/buy?success=true" validate:"required,url"`
	LogLevel   string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Brokers    []string `env:"TEST_CFG_BROKERS" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Port)
	assert.Equal(t, "http://localhost:5173/buy?success=true", cfg.SuccessURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_SUCCESS_URL", "https://orju.media/?checkout=success")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://orju.media/?checkout=success", cfg.SuccessURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_FailsValidation(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "70000")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
	assert.Contains(t, err.Error(), "Port")
}

func TestLoad_RejectsBadURL(t *testing.T) {
	t.Setenv("TEST_CFG_SUCCESS_URL", "not a url")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SuccessURL")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_CFG_DOTENV_PORT=7070\nTEST_CFG_DOTENV_KEEP=file\n"), 0o600))
	t.Setenv("TEST_CFG_DOTENV_KEEP", "process")
	t.Cleanup(func() { _ = os.Unsetenv("TEST_CFG_DOTENV_PORT") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "7070", os.Getenv("TEST_CFG_DOTENV_PORT"))
	assert.Equal(t, "process", os.Getenv("TEST_CFG_DOTENV_KEEP"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
