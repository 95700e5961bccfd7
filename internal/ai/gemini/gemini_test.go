package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/applicant-pipeline/internal/applicant"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model  string
	config *genai.GenerateContentConfig
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeneratorAppliesLimits(t *testing.T) {
	models := &fakeModels{resp: textResponse("Summary: ok", "Score: 5")}
	g := newGenerator(models, Options{MaxTokens: 500, Temperature: 0.3})

	out, err := g.GenerateContent(context.Background(), "  hello  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if out != "Summary: ok\nScore: 5" {
		t.Fatalf("unexpected output %q", out)
	}
	if models.model != defaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if models.config.MaxOutputTokens != 500 {
		t.Fatalf("unexpected max tokens %d", models.config.MaxOutputTokens)
	}
	if models.config.Temperature == nil || *models.config.Temperature != 0.3 {
		t.Fatalf("unexpected temperature %v", models.config.Temperature)
	}
	if models.prompt != "hello" {
		t.Fatalf("expected trimmed prompt, got %q", models.prompt)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
		prompt string
	}{
		{name: "api error", models: &fakeModels{err: errors.New("quota")}, prompt: "p"},
		{name: "empty response", models: &fakeModels{resp: textResponse("  ")}, prompt: "p"},
		{name: "no candidates", models: &fakeModels{resp: &genai.GenerateContentResponse{}}, prompt: "p"},
		{name: "empty prompt", models: &fakeModels{resp: textResponse("x")}, prompt: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.models, Options{Model: "gemini-test"})
			if _, err := g.GenerateContent(context.Background(), tt.prompt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestReviewerReview(t *testing.T) {
	stub := &stubGenerator{response: "Summary: Solid profile.\nScore: 7\nIssues: No LinkedIn\nFollow-Ups: • Share LinkedIn?"}
	reviewer := NewReviewer(stub, zap.NewNop(), 0)

	doc := &applicant.Document{
		Personal:   &applicant.Personal{Name: "Ada", Email: "ada@example.com", Location: "UK"},
		Experience: []applicant.Job{{Company: "Acme", Technologies: []string{"Go"}}},
		Salary:     &applicant.Salary{PreferredRate: 50, Currency: "USD", Availability: 30},
	}

	got, err := reviewer.Review(context.Background(), doc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got.Summary != "Solid profile." || got.Score != 7 || got.Issues != "No LinkedIn" || got.FollowUps != "• Share LinkedIn?" {
		t.Fatalf("unexpected assessment: %+v", got)
	}

	if !strings.Contains(stub.lastPrompt, `"name": "Ada"`) {
		t.Fatalf("expected prompt to embed the document, got:\n%s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{{APPLICANT_JSON}}") {
		t.Fatal("expected placeholder to be replaced")
	}
	if !strings.Contains(stub.lastPrompt, "Follow-Ups:") {
		t.Fatal("expected prompt to describe the reply format")
	}
}

func TestReviewerPropagatesGeneratorError(t *testing.T) {
	reviewer := NewReviewer(&stubGenerator{err: errors.New("boom")}, nil, 0)

	if _, err := reviewer.Review(context.Background(), &applicant.Document{}); err == nil {
		t.Fatal("expected error")
	}
}
