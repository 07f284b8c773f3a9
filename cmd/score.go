package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/profile"
	"github.com/spigell/kindred/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the formula score of every candidate without calling a model",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("profiles-file", "p", "", "yaml or json file with the subject and candidate profiles")
}

type scoreRow struct {
	CandidateID     string   `json:"candidate_id"`
	Candidate       string   `json:"candidate"`
	TraitSimilarity float64  `json:"trait_similarity"`
	TextBonus       float64  `json:"text_bonus"`
	SharedKeywords  []string `json:"shared_keywords,omitempty"`
	Score           float64  `json:"score"`
}

func score(cmd *cobra.Command) {
	logger, err := newCommandLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	path := config.ProfilesFile
	if flag := strings.TrimSpace(cmd.Flag("profiles-file").Value.String()); flag != "" {
		path = flag
	}

	doc, err := profile.Load(path)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err))
	}

	scorer, err := scoring.New(config.Scoring)
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err))
	}

	rows := scoreTable(scorer, doc.Subject, doc.Candidates)

	pretty, _ := json.MarshalIndent(rows, "", "  ")
	logger.Info(fmt.Sprintf("formula scores for %s:\n%s", doc.Subject, pretty), zap.Int("candidates", len(rows)))
}

// scoreTable scores every candidate except the subject, best first. Ties keep input order.
func scoreTable(scorer *scoring.Scorer, subject profile.Profile, candidates []profile.Profile) []scoreRow {
	rows := make([]scoreRow, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == subject.ID {
			continue
		}

		b := scorer.Breakdown(subject, candidate)
		rows = append(rows, scoreRow{
			CandidateID:     candidate.ID,
			Candidate:       candidate.DisplayName,
			TraitSimilarity: b.TraitSimilarity,
			TextBonus:       b.TextBonus,
			SharedKeywords:  b.SharedKeywords,
			Score:           b.Score,
		})
	}

	slices.SortStableFunc(rows, func(a, b scoreRow) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return rows
}
