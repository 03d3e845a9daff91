package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load([]string{"-a", ":9090", "-l", "debug", "-origins", "http://a.test, http://b.test"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadEnvOverridesFlags(t *testing.T) {
	t.Setenv("RUN_ADDR", ":7070")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://chatty@localhost/chatty?sslmode=disable")
	t.Setenv("ALLOWED_ORIGINS", "*")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "20")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "3")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")

	cfg, err := Load([]string{"-a", ":9090"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://chatty@localhost/chatty?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestLoadIgnoresInvalidEnv(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "-1")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0")

	cfg, err := Load(nil)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.MaxMessageSize, cfg.MaxMessageSize)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	_, err := Load([]string{"-nope"})
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	cfg := Sanitize(Config{})
	def := Default()

	assert.Equal(t, def.Addr, cfg.Addr)
	assert.Equal(t, def.DBDriver, cfg.DBDriver)
	assert.Equal(t, def.DatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, def.RateLimit, cfg.RateLimit)
	assert.Equal(t, 0, cfg.RateLimit.Burst, "rate limiting is off unless configured")
	assert.Empty(t, cfg.AllowedOrigins)

	cfg = Sanitize(Config{RateLimit: RateLimitConfig{Burst: -3}})
	assert.Equal(t, 0, cfg.RateLimit.Burst)
	assert.Equal(t, def.RateLimit.RefillInterval, cfg.RateLimit.RefillInterval)
}
