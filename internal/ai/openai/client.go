// Package openai provides a text generator backed by OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/ai"
)

const defaultModel = "gpt-4o-mini"

type chatCompletions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Generator struct {
	completions chatCompletions
	modelName   string
	logger      *zap.Logger
}

// NewGenerator creates a generator for the given API key. An empty baseURL keeps the
// library default endpoint.
func NewGenerator(apiKey, baseURL, model string, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Failures are absorbed by the ranker fallback; the SDK must not retry on its own.
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return newGenerator(&client.Chat.Completions, model, logger), nil
}

func newGenerator(completions chatCompletions, model string, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completions: completions, modelName: model, logger: logger}
}

// GenerateContent sends the prompt as a single user message and returns the first choice.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.completions == nil {
		return "", fmt.Errorf("%w: openai generator is not initialized", ai.ErrJudgeUnavailable)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			g.logger.Debug("openai api error", zap.Int("status_code", apiErr.StatusCode))
		}
		return "", fmt.Errorf("%w: chat completion: %w", ai.ErrJudgeUnavailable, err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai api returned no choices", ai.ErrJudgeUnavailable)
	}

	message := resp.Choices[0].Message
	if refusal := strings.TrimSpace(message.Refusal); refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ai.ErrJudgeUnavailable, refusal)
	}

	output := strings.TrimSpace(message.Content)
	if output == "" {
		return "", fmt.Errorf("%w: openai api returned empty response", ai.ErrJudgeUnavailable)
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
