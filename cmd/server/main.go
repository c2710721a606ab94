package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/spendcast/backend/internal/cache"
	"github.com/spendcast/backend/internal/config"
	"github.com/spendcast/backend/internal/forecast"
	"github.com/spendcast/backend/internal/narrative"
	"github.com/spendcast/backend/internal/server"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Provider-response cache shared by the secondary tier.
	responses := cache.New[string](cfg.ResponseCacheSize, cfg.ResponseCacheTTL)
	defer responses.Stop()

	var providers []narrative.Provider
	if cfg.GeminiAPIKey != "" {
		providers = append(providers, narrative.NewGeminiClient(cfg.GeminiAPIKey))
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, primary narrative tier disabled")
	}
	if cfg.LocalModelURL != "" {
		providers = append(providers, narrative.NewLocalModelClient(cfg.LocalModelURL, cfg.LocalModelName, responses))
	}

	var translator narrative.Translator
	if cfg.TranslatorURL != "" {
		translator = narrative.NewHTTPTranslator(cfg.TranslatorURL)
	}

	narrator := narrative.NewGenerator(providers, translator, logger.With().Str("component", "narrative").Logger())

	svc := forecast.NewService(forecast.ServiceOptions{
		BaseCurrency: cfg.BaseCurrency,
		CacheSize:    cfg.ResultCacheSize,
		CacheTTL:     cfg.ResultCacheTTL,
		Narrator:     narrator,
		Logger:       logger.With().Str("component", "forecast").Logger(),
	})
	defer svc.Close()

	srv := server.New(logger, svc, server.Config{
		Addr:            ":" + cfg.Port,
		AllowedOrigins:  cfg.AllowedOrigins,
		ShutdownTimeout: 10 * time.Second,
	})
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
