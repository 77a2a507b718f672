package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantra/gardeparents/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.AllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GARDEPARENTS_ADDR", ":9090")
	t.Setenv("GARDEPARENTS_BACKEND", "sqlite")
	t.Setenv("GARDEPARENTS_DB_PATH", "/var/lib/garde/garde.db")
	t.Setenv("GARDEPARENTS_DATA_DIR", "/tmp/garde")
	t.Setenv("GARDEPARENTS_RATE_LIMIT", "5")
	t.Setenv("GARDEPARENTS_ALLOWED_ORIGINS", "http://example.test")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, []string{"http://example.test"}, cfg.AllowedOrigins)
	assert.Equal(t, config.Storage{
		Backend: "sqlite",
		DBPath:  "/var/lib/garde/garde.db",
		DataDir: "/tmp/garde",
	}, cfg.Storage())
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	t.Setenv("GARDEPARENTS_RATE_LIMIT", "lots")

	_, err := config.FromEnv()
	assert.Error(t, err)
}
