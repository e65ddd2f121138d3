package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "admin", cfg.AdminHandle)
	assert.Equal(t, "ridelink.events", cfg.KafkaTopic)
	assert.Equal(t, 15*time.Minute, cfg.TokenLifetime())
	assert.Equal(t, 10, cfg.SendRateBurst)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADMIN_HANDLE", "ops")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SEND_RATE_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.AdminHandle)
	assert.Equal(t, time.Hour, cfg.TokenLifetime())
	assert.InDelta(t, 2.5, cfg.SendRateRPS, 0.001)
}

func TestLoad_RejectsDevKeyInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{TokenTTL: "garbage", RequestTimeout: "-1s"}
	assert.Equal(t, 15*time.Minute, cfg.TokenLifetime())
	assert.Equal(t, 10*time.Second, cfg.RequestTimeoutDuration())
}
