package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/ai"
	"github.com/spigell/applicant-pipeline/internal/applicant"
	"github.com/spigell/applicant-pipeline/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Reviewer asks Gemini for a qualitative review of an applicant document.
type Reviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewReviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) Review(ctx context.Context, doc *applicant.Document) (*ai.Assessment, error) {
	if doc == nil {
		return nil, fmt.Errorf("applicant document is required")
	}

	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal applicant document: %w", err)
	}

	prompt := buildPrompt(string(docJSON))

	r.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	assessment := ai.ParseResponse(raw)
	return &assessment, nil
}

func buildPrompt(applicantJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Applicant Data:\n{{APPLICANT_JSON}}\n\nSummary:"
	}
	return strings.ReplaceAll(template, "{{APPLICANT_JSON}}", applicantJSON)
}
