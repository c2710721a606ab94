// Package narrative produces free-text forecast summaries through an ordered
// chain of text-generation providers, falling back to a fixed sentinel when
// every tier fails.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/spendcast/backend/internal/forecast"
)

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=narrative

const (
	// maxNarrativeTokens is the token budget handed to every tier.
	maxNarrativeTokens = 500
	// tierTimeout bounds each provider call so a hung tier cannot stall the
	// request.
	tierTimeout = 30 * time.Second
	// defaultLanguage is the locale narratives are generated in.
	defaultLanguage = "en"
)

// Provider is one tier in the narrative fallback chain.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Generate returns text for prompt within the given token budget.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Translator converts text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Generator walks an ordered list of providers, stopping at the first success.
// Its failures are fully absorbed: Narrate always returns some narrative
// string, at worst forecast.FallbackNarrative.
type Generator struct {
	providers  []Provider
	translator Translator
	logger     zerolog.Logger
}

// NewGenerator creates a Generator. translator may be nil, in which case
// non-default locales are served in the original language.
func NewGenerator(providers []Provider, translator Translator, logger zerolog.Logger) *Generator {
	return &Generator{providers: providers, translator: translator, logger: logger}
}

// Narrate builds the forecast prompt for series and runs it through the
// provider chain. Tiers are strictly sequential: a later tier only runs after
// the previous one definitively failed.
func (g *Generator) Narrate(ctx context.Context, series []forecast.MonthlyPoint, lang string) string {
	prompt := buildPrompt(series)

	text := ""
	for _, p := range g.providers {
		generated, err := g.generateWithTimeout(ctx, p, prompt)
		if err != nil {
			g.logger.Warn().Err(err).Str("provider", p.Name()).Msg("narrative tier failed")
			continue
		}
		if strings.TrimSpace(generated) == "" {
			g.logger.Warn().Str("provider", p.Name()).Msg("narrative tier returned empty text")
			continue
		}
		text = strings.TrimSpace(generated)
		break
	}
	if text == "" {
		return forecast.FallbackNarrative
	}

	if needsTranslation(lang) && g.translator != nil {
		translated, err := g.translator.Translate(ctx, text, lang)
		if err != nil {
			g.logger.Warn().Err(err).Str("language", lang).Msg("narrative translation failed")
		} else if strings.TrimSpace(translated) != "" {
			text = strings.TrimSpace(translated)
		}
	}
	return text
}

func (g *Generator) generateWithTimeout(ctx context.Context, p Provider, prompt string) (string, error) {
	tierCtx, cancel := context.WithTimeout(ctx, tierTimeout)
	defer cancel()
	return p.Generate(tierCtx, prompt, maxNarrativeTokens)
}

// buildPrompt embeds the monthly series and asks for a 12-month narrative
// covering trend, seasonality, and spending patterns.
func buildPrompt(series []forecast.MonthlyPoint) string {
	type promptPoint struct {
		Month string  `json:"month"`
		Total float64 `json:"total"`
	}
	points := make([]promptPoint, len(series))
	for i, pt := range series {
		points[i] = promptPoint{Month: pt.Period.Format("2006-01"), Total: pt.Total}
	}
	encoded, err := json.Marshal(points)
	if err != nil {
		encoded = []byte("[]")
	}
	return fmt.Sprintf("Based on monthly expenses: %s, provide a narrative forecast for expenses "+
		"over the next 12 months, focusing on trends, seasonality, and spending patterns.", encoded)
}

// needsTranslation reports whether lang is a valid locale code outside the
// default language. Invalid codes are served untranslated.
func needsTranslation(lang string) bool {
	if lang == "" || lang == defaultLanguage {
		return false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() != defaultLanguage
}
