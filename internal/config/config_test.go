package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.OpenRouter.Model)
	assert.Equal(t, 3, cfg.Analyze.MaxAttempts)
	assert.Equal(t, 500, cfg.Analyze.InitialBackoffMs)
	assert.Equal(t, "count", cfg.Analyze.Pacing)
	assert.Equal(t, 1, cfg.Analyze.Workers)
	assert.Equal(t, "adlens.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ADLENS_OPENROUTER_KEY", "sk-or-test")
	t.Setenv("ADLENS_ANALYZE_WORKERS", "4")
	t.Setenv("ADLENS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-or-test", cfg.OpenRouter.Key)
	assert.Equal(t, 4, cfg.Analyze.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
