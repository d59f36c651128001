package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DATABASE_DSN", "postgres://localhost/playpal_test")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DAILY_POINT_CAP", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.DiscordToken)
	assert.Equal(t, "postgres://localhost/playpal_test", cfg.DatabaseDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultDailyPointCap, cfg.DailyPointCap)
}

func TestLoadMissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DISCORD_TOKEN", cfgErr.Field)
}

func TestLoadMissingDSN(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_DSN", "")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "DATABASE_DSN", cfgErr.Field)
}

func TestLoadCapOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("DAILY_POINT_CAP", "75.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 75.5, cfg.DailyPointCap)
}

func TestLoadInvalidCap(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not a number", raw: "plenty"},
		{name: "zero", raw: "0"},
		{name: "negative", raw: "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("DAILY_POINT_CAP", tt.raw)

			_, err := Load()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "DAILY_POINT_CAP", cfgErr.Field)
		})
	}
}

func TestLoadLogLevelOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}
