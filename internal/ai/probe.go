package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

const probePrompt = `You are a matchmaker for a social app for artistic people. Rate how well these two people might get along.

Person A:
- Traits: storyteller, night owl
- Description: "Loves rainy nights and old books."

Person B:
- Traits: listener, dreamer
- Description: "Finds magic in quiet moments and whispered stories."

Give a compatibility score from 0 to 100, a short reason (2-3 sentences) and two conversation starter questions.
Reply with JSON only:
{"score": number, "reason": "string", "conversationStarters": ["question1", "question2"]}`

// ProbeResult is the parsed reply to the connectivity probe.
type ProbeResult struct {
	Score                float64
	Reason               string
	ConversationStarters []string
	Raw                  string
}

// Probe sends a fixed prompt and checks that the reply can be parsed. It verifies that
// credentials work and that the model follows the JSON reply format.
func Probe(ctx context.Context, generator ContentGenerator) (*ProbeResult, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: generator is not configured", ErrJudgeUnavailable)
	}

	raw, err := generator.GenerateContent(ctx, probePrompt)
	if err != nil {
		if errors.Is(err, ErrJudgeUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrJudgeUnavailable, err)
	}

	result := &ProbeResult{Raw: raw}

	cleaned := normalizeReply(raw)
	if cleaned == "" {
		return result, fmt.Errorf("%w: no json object in reply", ErrJudgeMalformedOutput)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return result, fmt.Errorf("%w: %w", ErrJudgeMalformedOutput, err)
	}

	result.Score = coerceFloat(data["score"])
	result.Reason = coerceString(data["reason"])
	if starters, ok := data["conversationStarters"].([]any); ok {
		for _, starter := range starters {
			if s := coerceString(starter); s != "" {
				result.ConversationStarters = append(result.ConversationStarters, s)
			}
		}
	}

	if math.IsNaN(result.Score) || result.Reason == "" {
		return result, fmt.Errorf("%w: reply lacks score or reason", ErrJudgeMalformedOutput)
	}

	return result, nil
}
