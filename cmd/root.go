package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/kindred/internal/ranking"
	"github.com/spigell/kindred/internal/scoring"
)

const (
	app       = "kindred"
	envPrefix = "KINDRED"
)

type Config struct {
	ProfilesFile string         `mapstructure:"profiles-file"`
	ExcludeFile  string         `mapstructure:"exclude-file"`
	Ranking      ranking.Config `mapstructure:"ranking"`
	Scoring      scoring.Config `mapstructure:"scoring"`
	Filters      FiltersConfig  `mapstructure:"filters"`
	AI           *AIConfig      `mapstructure:"ai"`
}

type FiltersConfig struct {
	MinTraits int `mapstructure:"min-traits"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	JSONMode   bool   `mapstructure:"json-mode"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "kindred ranks candidate profiles by compatibility with a subject profile",
	}
)

// Execute executes the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is kindred.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every key so that environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	rankingDefaults := ranking.DefaultConfig()
	v.SetDefault("ranking.formula-threshold", rankingDefaults.FormulaThreshold)
	v.SetDefault("ranking.top-n", rankingDefaults.TopN)
	v.SetDefault("ranking.formula-weight", rankingDefaults.FormulaWeight)
	v.SetDefault("ranking.narrative-weight", rankingDefaults.NarrativeWeight)
	v.SetDefault("ranking.concurrency", rankingDefaults.Concurrency)

	scoringDefaults := scoring.DefaultConfig()
	v.SetDefault("scoring.keywords", scoringDefaults.Keywords)
	v.SetDefault("scoring.keyword-bonus", scoringDefaults.KeywordBonus)
	v.SetDefault("scoring.bonus-cap", scoringDefaults.BonusCap)

	v.SetDefault("profiles-file", "")
	v.SetDefault("exclude-file", "")
	v.SetDefault("filters.min-traits", 0)

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.max-log-length", 0)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.json-mode", true)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "")
	v.SetDefault("ai.openai.base-url", "")
}

func initConfig() {
	// .env is optional; values already present in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the file is optional.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
