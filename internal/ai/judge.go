package ai

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/profile"
	"github.com/spigell/kindred/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Judge is a NarrativeJudge backed by a text generation model.
type Judge struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewJudge(generator ContentGenerator, logger *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (j *Judge) Evaluate(ctx context.Context, subject, candidate profile.Profile) (*NarrativeResult, error) {
	if j.generator == nil {
		return nil, fmt.Errorf("%w: generator is not configured", ErrJudgeUnavailable)
	}

	prompt := BuildPrompt(subject, candidate)

	j.logger.Debug("narrative request",
		zap.String("subject_id", subject.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		if errors.Is(err, ErrJudgeUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrJudgeUnavailable, err)
	}

	j.logger.Debug("narrative response",
		zap.String("subject_id", subject.ID),
		zap.String("candidate_id", candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return parseNarrative(raw)
}

// BuildPrompt renders the matchmaking prompt for a pair of profiles.
func BuildPrompt(subject, candidate profile.Profile) string {
	replacer := strings.NewReplacer(
		"{{SUBJECT_NAME}}", subject.DisplayName,
		"{{SUBJECT_TRAITS}}", formatTraits(subject.Traits),
		"{{SUBJECT_TEXT}}", utils.OneLine(subject.FreeText),
		"{{CANDIDATE_NAME}}", candidate.DisplayName,
		"{{CANDIDATE_TRAITS}}", formatTraits(candidate.Traits),
		"{{CANDIDATE_TEXT}}", utils.OneLine(candidate.FreeText),
	)
	return replacer.Replace(promptTemplate)
}

func formatTraits(traits []string) string {
	if len(traits) == 0 {
		return "none"
	}
	return strings.Join(traits, ", ")
}
