// Package ranking selects the best candidates for a subject by formula score and
// blends in a model-produced narrative score.
package ranking

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/kindred/internal/ai"
	"github.com/spigell/kindred/internal/logger"
	"github.com/spigell/kindred/internal/profile"
	"github.com/spigell/kindred/internal/scoring"
)

type Ranker struct {
	cfg    Config
	scorer *scoring.Scorer
	logger *zap.Logger
}

type scoredCandidate struct {
	index     int
	candidate profile.Profile
	breakdown scoring.Breakdown
}

// New validates cfg and builds a ranker. A nil scorer uses the default formula.
func New(cfg Config, scorer *scoring.Scorer, logger *zap.Logger) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil {
		scorer = scoring.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ranker{cfg: cfg, scorer: scorer, logger: logger}, nil
}

// Rank scores candidates against subject, keeps the best TopN above the threshold and
// asks judge for a narrative on each. A failed judge call is replaced by ai.Fallback.
// With a nil judge the narrative stage is skipped and the final score is the formula score.
// The only error returned is the context's.
func (r *Ranker) Rank(ctx context.Context, subject profile.Profile, candidates []profile.Profile, judge ai.NarrativeJudge) (*Results, error) {
	selected := r.selectCandidates(subject, candidates)

	r.logger.Info("candidates selected for narrative evaluation",
		zap.String("subject_id", subject.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Float64("formula_threshold", r.cfg.FormulaThreshold),
		zap.Int("top_n", r.cfg.TopN),
	)

	matches := make([]MatchResult, len(selected))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, sc := range selected {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			matches[i] = r.match(gCtx, subject, sc, judge)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking %s: %w", subject.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking %s: %w", subject.ID, err)
	}

	slices.SortStableFunc(matches, func(a, b MatchResult) int {
		if c := compareDesc(a.FinalScore, b.FinalScore); c != 0 {
			return c
		}
		return a.order - b.order
	})

	return &Results{SubjectID: subject.ID, Items: matches}, nil
}

// selectCandidates returns the candidates that pass the formula threshold, best first, truncated to TopN.
// Candidates with the subject's ID are skipped.
func (r *Ranker) selectCandidates(subject profile.Profile, candidates []profile.Profile) []scoredCandidate {
	scored := make([]scoredCandidate, 0, len(candidates))
	for idx, candidate := range candidates {
		if candidate.ID == subject.ID {
			continue
		}

		breakdown := r.scorer.Breakdown(subject, candidate)
		if breakdown.Score <= r.cfg.FormulaThreshold {
			r.logger.Debug("candidate below formula threshold",
				zap.String("candidate_id", candidate.ID),
				zap.Float64("formula_score", breakdown.Score),
			)
			continue
		}

		scored = append(scored, scoredCandidate{index: idx, candidate: candidate, breakdown: breakdown})
	}

	slices.SortStableFunc(scored, func(a, b scoredCandidate) int {
		return compareDesc(a.breakdown.Score, b.breakdown.Score)
	})

	if len(scored) > r.cfg.TopN {
		scored = scored[:r.cfg.TopN]
	}
	return scored
}

func (r *Ranker) match(ctx context.Context, subject profile.Profile, sc scoredCandidate, judge ai.NarrativeJudge) MatchResult {
	result := MatchResult{
		ID:              fmt.Sprintf("match_%s_%s", subject.ID, sc.candidate.ID),
		SubjectID:       subject.ID,
		CandidateID:     sc.candidate.ID,
		CandidateName:   sc.candidate.DisplayName,
		FormulaScore:    sc.breakdown.Score,
		TraitSimilarity: sc.breakdown.TraitSimilarity,
		TextBonus:       sc.breakdown.TextBonus,
		SharedKeywords:  sc.breakdown.SharedKeywords,
		order:           sc.index,
	}

	if judge == nil {
		result.FinalScore = result.FormulaScore
		return result
	}

	log := logger.ForCandidate(r.logger, sc.candidate.ID)

	narrative, err := judge.Evaluate(ctx, subject, sc.candidate)
	if err == nil {
		err = narrative.Validate()
	}
	if err != nil {
		log.Warn("narrative evaluation failed, using fallback", zap.Error(err))
		narrative = ai.Fallback(subject, sc.candidate)
		result.Fallback = true
		result.FallbackReason = err.Error()
	}

	result.Judged = true
	result.NarrativeScore = narrative.Score
	result.NarrativeScoreNormalized = narrative.Score / 100.0
	result.FinalScore = result.FormulaScore*r.cfg.FormulaWeight + result.NarrativeScoreNormalized*r.cfg.NarrativeWeight
	result.Summary = narrative.Summary
	result.ConversationStarters = append([]string(nil), narrative.ConversationStarters...)

	log.Info("candidate evaluated",
		zap.Float64("formula_score", result.FormulaScore),
		zap.Float64("narrative_score", result.NarrativeScore),
		zap.Float64("final_score", result.FinalScore),
		zap.Bool("fallback", result.Fallback),
	)

	return result
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
