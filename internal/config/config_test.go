package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8112", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "", cfg.GeminiAPIKey)
	assert.Equal(t, "http://localhost:8600", cfg.LocalModelURL)
	assert.Equal(t, "distilgpt2", cfg.LocalModelName)
	assert.Equal(t, "INR", cfg.BaseCurrency)
	assert.Equal(t, 100, cfg.ResultCacheSize)
	assert.Equal(t, time.Hour, cfg.ResultCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("RESULT_CACHE_SIZE", "50")
	t.Setenv("RESULT_CACHE_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, 50, cfg.ResultCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.ResultCacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("RESULT_CACHE_SIZE", "lots")
	t.Setenv("RESULT_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 100, cfg.ResultCacheSize)
	assert.Equal(t, time.Hour, cfg.ResultCacheTTL)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.Port = "not-a-port"
	assert.Error(t, cfg.Validate())

	cfg.Port = "70000"
	assert.Error(t, cfg.Validate())

	cfg.Port = "8112"
	cfg.ResultCacheSize = 0
	assert.Error(t, cfg.Validate())

	cfg.ResultCacheSize = 100
	cfg.ResultCacheTTL = 0
	assert.Error(t, cfg.Validate())
}
