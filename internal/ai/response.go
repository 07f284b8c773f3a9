package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var replySchemaJSON string

var (
	replySchemaOnce sync.Once
	replySchema     *gojsonschema.Schema
	replySchemaErr  error
)

type narrativeReply struct {
	Summary              string   `json:"summary"`
	AIScore              any      `json:"aiScore"`
	ConversationStarters []string `json:"conversationStarters"`
}

func loadReplySchema() (*gojsonschema.Schema, error) {
	replySchemaOnce.Do(func() {
		replySchema, replySchemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchemaJSON))
	})
	return replySchema, replySchemaErr
}

// parseNarrative turns a raw model reply into a NarrativeResult. Every failure wraps
// ErrJudgeMalformedOutput.
func parseNarrative(raw string) (*NarrativeResult, error) {
	cleaned := normalizeReply(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: no json object in reply", ErrJudgeMalformedOutput)
	}

	if err := validateReply(cleaned); err != nil {
		return nil, err
	}

	var reply narrativeReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJudgeMalformedOutput, err)
	}

	score := coerceFloat(reply.AIScore)
	if math.IsNaN(score) {
		return nil, fmt.Errorf("%w: aiScore %v is not a number", ErrJudgeMalformedOutput, reply.AIScore)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: aiScore %v is outside 0..100", ErrJudgeMalformedOutput, score)
	}

	summary := strings.TrimSpace(reply.Summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is empty", ErrJudgeMalformedOutput)
	}

	starters := make([]string, 0, len(reply.ConversationStarters))
	for _, starter := range reply.ConversationStarters {
		starter = strings.TrimSpace(starter)
		if starter == "" {
			return nil, fmt.Errorf("%w: empty conversation starter", ErrJudgeMalformedOutput)
		}
		starters = append(starters, starter)
	}

	return &NarrativeResult{
		Summary:              summary,
		Score:                score,
		ConversationStarters: starters,
		Raw:                  raw,
	}, nil
}

func validateReply(doc string) error {
	schema, err := loadReplySchema()
	if err != nil {
		return fmt.Errorf("load reply schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJudgeMalformedOutput, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
	}
	return fmt.Errorf("%w: %s", ErrJudgeMalformedOutput, strings.Join(problems, "; "))
}

// normalizeReply strips markdown fences around a reply and returns the first JSON object in it.
func normalizeReply(raw string) string {
	return extractFirstJSONObject(stripFences(raw))
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF"))
	start := strings.Index(raw, "```")
	if start == -1 {
		return raw
	}

	body := raw[start+3:]
	body = strings.TrimPrefix(body, "json")
	body = strings.TrimPrefix(body, "JSON")
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}

	// A fence with no object inside (e.g. a dangling trailing fence) is noise.
	if !strings.Contains(body, "{") {
		return raw
	}
	return strings.TrimSpace(body)
}

func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
