package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USER_NAME", "호박")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "enhance-bot", cfg.ServiceName)
	assert.Equal(t, "플레이봇", cfg.BotName)
	assert.Equal(t, "매크로", cfg.MacroName)
	assert.Equal(t, 200, cfg.MinSamples)
	assert.InDelta(t, 0.02, cfg.MaxBreakHalfwidth, 1e-12)
	assert.Equal(t, 18, cfg.MaxLevel)
	assert.Equal(t, 2, cfg.MaxReloadCalls)
	assert.InDelta(t, 30, cfg.ReloadCooldownSec, 1e-12)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("USER_NAME", "호박")
	t.Setenv("MIN_SAMPLES", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIN_SAMPLES")
}

func TestValidateRejectsMissingUser(t *testing.T) {
	t.Setenv("USER_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UserName")
}

func TestValidateRejectsBadLevel(t *testing.T) {
	t.Setenv("USER_NAME", "호박")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestValidateRejectsHalfwidthOutOfRange(t *testing.T) {
	t.Setenv("USER_NAME", "호박")
	t.Setenv("MAX_BREAK_HALFWIDTH", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxBreakHalfwidth")
}
