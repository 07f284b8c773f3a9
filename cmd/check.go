package cmd

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/ai"
	"github.com/spigell/kindred/internal/utils"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a fixed prompt to the configured ai provider and verify the reply format",
	Run: func(cmd *cobra.Command, _ []string) {
		check(cmd)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command) {
	logger, err := newCommandLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	generator, err := newGenerator(cmd.Context(), config.AI, logger)
	if err != nil {
		logger.Fatal("building ai generator", zap.Error(err))
	}

	logger.Info("sending probe prompt", zap.String("provider", providerName(config.AI)))

	result, err := ai.Probe(cmd.Context(), generator)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if result != nil {
			fields = append(fields, zap.String("raw_reply", utils.TruncateForLog(result.Raw, 500)))
		}
		logger.Fatal("probe failed", fields...)
	}

	logger.Info("probe succeeded",
		zap.Float64("score", result.Score),
		zap.String("reason", result.Reason),
		zap.String("conversation_starters", strings.Join(result.ConversationStarters, " | ")),
	)
}
