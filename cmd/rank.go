package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/filtering"
	"github.com/spigell/kindred/internal/profile"
	"github.com/spigell/kindred/internal/ranking"
	"github.com/spigell/kindred/internal/scoring"
)

const (
	PromptShowReport          = "Show report"
	PromptResultsToFile       = "Dump results to file"
	PromptCandidatesToFile    = "Dump ranked candidates"
	PromptAppendToExcludeFile = "Append ranked candidates to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates for the subject profile",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("profiles-file", "p", "", "yaml or json file with the subject and candidate profiles")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "print the report and exit without the interactive menu")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")
	rankCmd.Flags().Int("top-n", ranking.DefaultTopN, "number of candidates sent to the narrative judge")
	rankCmd.Flags().Float64("threshold", ranking.DefaultFormulaThreshold, "formula score a candidate must exceed")
	rankCmd.Flags().Int("concurrency", ranking.DefaultConcurrency, "parallel narrative judge calls")
	rankCmd.Flags().Bool("no-ai", false, "rank by formula score only")

	viper.BindPFlag("profiles-file", rankCmd.Flags().Lookup("profiles-file"))
	viper.BindPFlag("exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("ranking.top-n", rankCmd.Flags().Lookup("top-n"))
	viper.BindPFlag("ranking.formula-threshold", rankCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("ranking.concurrency", rankCmd.Flags().Lookup("concurrency"))
}

func rank(cmd *cobra.Command) {
	ctx := cmd.Context()

	logger, err := newCommandLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI && config.AI != nil {
		config.AI.Enabled = false
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	doc, err := profile.Load(config.ProfilesFile)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err), zap.String("hint", "set profiles-file in the config or pass -p"))
	}

	runID := uuid.NewString()
	runLogger := withRun(logger, runID, doc.Subject.ID)
	runLogger.Info("starting the ranking", zap.String("version", version), zap.Int("candidates", len(doc.Candidates)))

	candidates := doc.CandidatesOf()

	filters := prepareFilters(doc.Subject, config, runLogger)
	filtered, err := filters.RunFilters(ctx, candidates)
	if err != nil {
		runLogger.Fatal("filtering failed", zap.Error(err))
	}

	if filtered.Len() == 0 {
		runLogger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	scorer, err := scoring.New(config.Scoring)
	if err != nil {
		runLogger.Fatal("building the scorer", zap.Error(err))
	}

	ranker, err := ranking.New(config.Ranking, scorer, runLogger)
	if err != nil {
		runLogger.Fatal("building the ranker", zap.Error(err))
	}

	judge := prepareJudge(ctx, config.AI, runLogger)

	results, err := ranker.Rank(ctx, doc.Subject, filtered.Items, judge)
	if err != nil {
		runLogger.Fatal("ranking failed", zap.Error(err))
	}
	results.RunID = runID

	if results.Len() == 0 {
		runLogger.Info("exiting", zap.String("reason", "no candidates above the formula threshold"))
		return
	}

	if auto, _ := cmd.Flags().GetBool("auto-approve"); auto {
		showReport(runLogger, results)
		return
	}

	for {
		items := []string{PromptShowReport, PromptResultsToFile, PromptCandidatesToFile}
		if config.ExcludeFile != "" && results.Len() != 0 {
			items = append(items, PromptAppendToExcludeFile)
		}

		menu := promptui.Select{
			Label: "Choose an action",
			Items: append(items, PromptExit),
		}

		_, action, err := menu.Run()
		if err != nil {
			runLogger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, runLogger, config, results, filtered); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			runLogger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, results *ranking.Results, pool *profile.Profiles) error {
	switch action {
	case PromptShowReport:
		showReport(logger, results)
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptCandidatesToFile:
		filename, err := results.Candidates(pool).DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump ranked candidates to file: %w", err)
		}
		logger.Info("dumping ranked candidates to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		excluded, err := profile.GetExcludedFromFile(config.ExcludeFile)
		if err != nil {
			return err
		}

		excluded.Append(results.Candidates(pool).ToExcluded(profile.ExcludeActorUser, "ranked in run "+results.RunID))

		if err := excluded.ToFile(config.ExcludeFile); err != nil {
			return err
		}

		logger.Info("appended to exclude file", zap.String("filename", config.ExcludeFile), zap.Int("count", results.Len()))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showReport(logger *zap.Logger, results *ranking.Results) {
	pretty, _ := json.MarshalIndent(results.Report(), "", "  ")
	logger.Info(string(pretty), zap.Int("matches count", results.Len()))
}

func prepareFilters(subject profile.Profile, config *Config, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewSelf(subject.ID),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewMinTraits(config.Filters.MinTraits),
	}

	f := filtering.New(steps, logger)
	for _, status := range f.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
	return f
}
