package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/kindred/internal/ai"
)

type fakeCompletions struct {
	resp  *openai.ChatCompletion
	err   error
	calls []openai.ChatCompletionNewParams
}

func (f *fakeCompletions) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.calls = append(f.calls, body)
	return f.resp, f.err
}

func completion(content, refusal string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content, Refusal: refusal},
		}},
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	fake := &fakeCompletions{resp: completion("  {\"summary\": \"ok\"}  ", "")}
	g := newGenerator(fake, "", zap.NewNop())

	output, err := g.GenerateContent(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "{\"summary\": \"ok\"}", output)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, openai.ChatModel(defaultModel), fake.calls[0].Model)
	assert.Len(t, fake.calls[0].Messages, 1)
	assert.Equal(t, defaultModel, g.Model())
}

func TestGeneratorFailuresAreUnavailable(t *testing.T) {
	cases := map[string]*fakeCompletions{
		"transport error": {err: errors.New("connection reset")},
		"no choices":      {resp: &openai.ChatCompletion{}},
		"empty content":   {resp: completion("   ", "")},
		"refusal":         {resp: completion("", "I can't help with that.")},
	}

	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGenerator(fake, "gpt-4o", nil)
			_, err := g.GenerateContent(context.Background(), "prompt")
			assert.ErrorIs(t, err, ai.ErrJudgeUnavailable)
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	fake := &fakeCompletions{resp: completion("ok", "")}
	g := newGenerator(fake, "gpt-4o", zap.NewNop())

	_, err := g.GenerateContent(context.Background(), " ")
	assert.Error(t, err)
	assert.Empty(t, fake.calls)
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	_, err := NewGenerator("", "", "gpt-4o", zap.NewNop())
	assert.Error(t, err)

	g, err := NewGenerator("sk-test", "http://localhost:11434/v1", "llama3", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "llama3", g.Model())
}
