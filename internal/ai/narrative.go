package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/kindred/internal/profile"
)

var (
	// ErrJudgeUnavailable reports that the model could not be reached or refused the request.
	ErrJudgeUnavailable = errors.New("narrative judge unavailable")
	// ErrJudgeMalformedOutput reports that the model replied but the reply could not be used.
	ErrJudgeMalformedOutput = errors.New("narrative judge returned malformed output")
)

const (
	FallbackScore = 50

	fallbackStarterJoy   = "What brings you joy in your creative pursuits?"
	fallbackStarterStory = "What's a story or experience that shaped your perspective?"
)

// NarrativeResult is the qualitative assessment of a pair produced by a model.
type NarrativeResult struct {
	Summary              string   `json:"summary"`
	Score                float64  `json:"score"`
	ConversationStarters []string `json:"conversation_starters"`
	Raw                  string   `json:"-"`
}

// Validate checks the result against the judge contract: a score within 0..100, a
// non-blank summary and exactly two non-blank conversation starters.
func (r *NarrativeResult) Validate() error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: no result", ErrJudgeMalformedOutput)
	case math.IsNaN(r.Score) || r.Score < 0 || r.Score > 100:
		return fmt.Errorf("%w: score %v is outside 0..100", ErrJudgeMalformedOutput, r.Score)
	case strings.TrimSpace(r.Summary) == "":
		return fmt.Errorf("%w: summary is empty", ErrJudgeMalformedOutput)
	case len(r.ConversationStarters) != 2:
		return fmt.Errorf("%w: expected 2 conversation starters, got %d", ErrJudgeMalformedOutput, len(r.ConversationStarters))
	}
	for _, starter := range r.ConversationStarters {
		if strings.TrimSpace(starter) == "" {
			return fmt.Errorf("%w: empty conversation starter", ErrJudgeMalformedOutput)
		}
	}
	return nil
}

// NarrativeJudge evaluates a subject/candidate pair. Implementations return either a
// complete result or an error wrapping ErrJudgeUnavailable or ErrJudgeMalformedOutput.
type NarrativeJudge interface {
	Evaluate(ctx context.Context, subject, candidate profile.Profile) (*NarrativeResult, error)
}

// ContentGenerator sends a prompt to a model and returns its textual reply.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Fallback is the result used in place of a failed judge call.
func Fallback(subject, candidate profile.Profile) *NarrativeResult {
	return &NarrativeResult{
		Summary: fmt.Sprintf("%s and %s share some interesting traits that could lead to meaningful conversations.",
			subject.DisplayName, candidate.DisplayName),
		Score:                FallbackScore,
		ConversationStarters: []string{fallbackStarterJoy, fallbackStarterStory},
	}
}
