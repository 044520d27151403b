package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// --- Mocks ---

type mockModels struct {
	generateFn func(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.generateFn(ctx, model, contents, config)
}

func TestGenerator_JoinsParts(t *testing.T) {
	var gotModel string
	m := &mockModels{generateFn: func(_ context.Context, model string, contents []*genai.Content,
		_ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		if len(contents) != 1 || contents[0].Parts[0].Text != "rank these" {
			t.Errorf("unexpected contents: %+v", contents)
		}
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				nil,
				{Content: &genai.Content{Parts: []*genai.Part{{Text: " [ "}, nil, {Text: "  "}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "]"}}}},
			},
		}, nil
	}}

	g := newGenerator(m, "")
	out, err := g.Generate(context.Background(), "  rank these ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "[\n]" {
		t.Errorf("output = %q", out)
	}
	if gotModel != defaultModel || g.Model() != defaultModel {
		t.Errorf("model = %q", gotModel)
	}
}

func TestGenerator_EmptyPrompt(t *testing.T) {
	g := newGenerator(&mockModels{}, "m")
	if _, err := g.Generate(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGenerator_APIError(t *testing.T) {
	m := &mockModels{generateFn: func(context.Context, string, []*genai.Content,
		*genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("503 overloaded")
	}}
	_, err := newGenerator(m, "gemini-2.5-pro").Generate(context.Background(), "p")
	if !errors.Is(err, domain.ErrJudgeUnavailable) {
		t.Fatalf("expected ErrJudgeUnavailable, got %v", err)
	}
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), " ", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
