package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/kindred/internal/ai"
	"github.com/spigell/kindred/internal/profile"
)

var (
	profileA = profile.New("a", "A", []string{"storyteller"}, "night walks")
	profileB = profile.New("b", "B", []string{"listener"}, "quiet nights")
)

type modelCall struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeModels struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls []modelCall
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	call := modelCall{model: model, config: config}
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		call.prompt = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, call)
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGeneratorGenerateContent(t *testing.T) {
	models := &fakeModels{resp: textResponse(" {\"summary\": ", "", "\"ok\"} ")}
	g := newGenerator(models, "", true, zap.NewNop())

	output, err := g.GenerateContent(context.Background(), "  prompt  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "{\"summary\":\n\"ok\"}" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}

	call := models.calls[0]
	if call.model != defaultModel {
		t.Fatalf("expected default model %q, got %q", defaultModel, call.model)
	}
	if call.prompt != "prompt" {
		t.Fatalf("unexpected prompt: %q", call.prompt)
	}
	if call.config == nil || call.config.ResponseMIMEType != jsonMIMEType {
		t.Fatalf("expected json response mime type to be requested")
	}
}

func TestGeneratorSkipsThoughtParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "answer"},
			}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "second candidate"}}}},
		},
	}
	g := newGenerator(&fakeModels{resp: resp}, "gemini-pro", false, nil)

	output, err := g.GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output != "answer" {
		t.Fatalf("unexpected output: %q", output)
	}
	if g.Model() != "gemini-pro" {
		t.Fatalf("unexpected model: %q", g.Model())
	}
}

func TestGeneratorErrorsAreUnavailable(t *testing.T) {
	apiErr := genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "quota exhausted"}

	cases := map[string]*fakeModels{
		"api error":      {err: apiErr},
		"empty response": {resp: &genai.GenerateContentResponse{}},
		"nil response":   {},
	}

	for name, models := range cases {
		t.Run(name, func(t *testing.T) {
			g := newGenerator(models, "gemini-pro", false, zap.NewNop())

			_, err := g.GenerateContent(context.Background(), "prompt")
			if !errors.Is(err, ai.ErrJudgeUnavailable) {
				t.Fatalf("expected unavailable error, got %v", err)
			}
		})
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	models := &fakeModels{resp: textResponse("ok")}
	g := newGenerator(models, "gemini-pro", false, zap.NewNop())

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no api calls, got %d", len(models.calls))
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "gemini-pro", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGeneratorDrivesJudge(t *testing.T) {
	models := &fakeModels{resp: textResponse("```json\n{\"summary\": \"Kindred spirits.\", \"aiScore\": 90, \"conversationStarters\": [\"a?\", \"b?\"]}\n```")}
	judge := ai.NewJudge(newGenerator(models, "gemini-pro", true, zap.NewNop()), zap.NewNop(), 0)

	result, err := judge.Evaluate(context.Background(), profileA, profileB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 90 || result.Summary != "Kindred spirits." {
		t.Fatalf("unexpected result: %+v", result)
	}
}
