package cmd

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/logger"
)

const redactedValue = "<redacted>"

func newCommandLogger() (*zap.Logger, error) {
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"))
}

func withRun(l *zap.Logger, runID, subjectID string) *zap.Logger {
	return logger.ForRun(l, runID, subjectID)
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) *Config {
	if config == nil {
		return nil
	}

	out := *config
	if config.AI != nil {
		aiCfg := *config.AI
		if aiCfg.Gemini != nil {
			gemini := *aiCfg.Gemini
			if gemini.APIKey != "" {
				gemini.APIKey = redactedValue
			}
			aiCfg.Gemini = &gemini
		}
		if aiCfg.OpenAI != nil {
			openai := *aiCfg.OpenAI
			if openai.APIKey != "" {
				openai.APIKey = redactedValue
			}
			aiCfg.OpenAI = &openai
		}
		out.AI = &aiCfg
	}
	return &out
}
