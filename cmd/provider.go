package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/ai"
	"github.com/spigell/kindred/internal/ai/gemini"
	"github.com/spigell/kindred/internal/ai/openai"
	"github.com/spigell/kindred/internal/logger"
	"github.com/spigell/kindred/internal/secrets"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// newGenerator builds the content generator for the configured provider.
func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.ContentGenerator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerGemini:
		gcfg := cfg.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gcfg.APIKey,
			File:  gcfg.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		genLogger := logger.ForProvider(log, providerGemini, gcfg.Model)
		generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.JSONMode, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil

	case providerOpenAI:
		ocfg := cfg.OpenAI
		if ocfg == nil {
			ocfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: ocfg.APIKey,
			File:  ocfg.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		genLogger := logger.ForProvider(log, providerOpenAI, ocfg.Model)
		generator, err := openai.NewGenerator(apiKey, ocfg.BaseURL, ocfg.Model, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// prepareJudge returns nil when the narrative stage is disabled. When the provider cannot be
// built the judge still runs without a generator, so every candidate gets the fallback narrative.
func prepareJudge(ctx context.Context, cfg *AIConfig, log *zap.Logger) ai.NarrativeJudge {
	if cfg == nil || !cfg.Enabled {
		log.Info("narrative judge disabled, ranking by formula score only")
		return nil
	}

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		log.Warn("building ai generator failed, narratives will use the fallback", zap.Error(err))
		return ai.NewJudge(nil, log, cfg.MaxLogLength)
	}

	return ai.NewJudge(generator, logger.ForProvider(log, providerName(cfg), ""), cfg.MaxLogLength)
}

func providerName(cfg *AIConfig) string {
	if p := strings.TrimSpace(strings.ToLower(cfg.Provider)); p != "" {
		return p
	}
	return providerGemini
}
