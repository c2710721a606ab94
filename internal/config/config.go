// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP Server
	Port           string
	AllowedOrigins []string

	// Narrative providers
	GeminiAPIKey   string
	LocalModelURL  string
	LocalModelName string
	TranslatorURL  string

	// Forecast service
	BaseCurrency    string
	ResultCacheSize int
	ResultCacheTTL  time.Duration

	// Provider-response cache
	ResponseCacheSize int
	ResponseCacheTTL  time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8112"),
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		LocalModelURL:  getEnv("LOCAL_MODEL_URL", "http://localhost:8600"),
		LocalModelName: getEnv("LOCAL_MODEL_NAME", "distilgpt2"),
		TranslatorURL:  getEnv("TRANSLATOR_URL", ""),

		BaseCurrency:    getEnv("BASE_CURRENCY", "INR"),
		ResultCacheSize: getEnvInt("RESULT_CACHE_SIZE", 100),
		ResultCacheTTL:  getEnvDuration("RESULT_CACHE_TTL", time.Hour),

		ResponseCacheSize: getEnvInt("RESPONSE_CACHE_SIZE", 100),
		ResponseCacheTTL:  getEnvDuration("RESPONSE_CACHE_TTL", time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate returns an error when the configuration cannot start a server.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.ResultCacheSize < 1 {
		return fmt.Errorf("invalid result cache size %d", c.ResultCacheSize)
	}
	if c.ResultCacheTTL <= 0 {
		return fmt.Errorf("invalid result cache TTL %s", c.ResultCacheTTL)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
