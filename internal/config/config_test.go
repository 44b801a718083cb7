package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 8700, cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.GracePeriod)
	assert.Equal(t, "host=localhost port=5432 user=bigtwo password=bigtwo_secret dbname=bigtwo sslmode=disable", cfg.DSN())
	assert.Equal(t, 30*time.Second, cfg.Room().GracePeriod)
	assert.Equal(t, 20*time.Second, cfg.Matchmaking().BotFillAfter)
}

func TestEnvironmentAndFlags(t *testing.T) {
	t.Setenv("GRACE_PERIOD", "45s")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("BOT_THINK_TIME", "0s")

	cfg, err := Load([]string{"--port", "9100", "--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.GracePeriod)
	assert.Equal(t, 9100, cfg.AppPort, "flags win over the environment")
	assert.Zero(t, cfg.BotThinkTime)
	assert.Equal(t, "debug", cfg.Level().String())
}

func TestRejectsBadTimings(t *testing.T) {
	_, err := Load([]string{"--grace-period=-1s"})
	assert.ErrorContains(t, err, "grace-period")

	_, err = Load([]string{"--match-interval=0s"})
	assert.ErrorContains(t, err, "match-interval")

	_, err = Load([]string{"--log-level=loud"})
	assert.Error(t, err)
}
