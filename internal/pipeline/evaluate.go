package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/ai"
	"github.com/spigell/applicant-pipeline/internal/applicant"
	"github.com/spigell/applicant-pipeline/internal/logger"
	"github.com/spigell/applicant-pipeline/internal/store"
	"github.com/spigell/applicant-pipeline/internal/utils"
)

// EvaluateOne reviews one applicant with the language model and stores the result,
// even when a review is already stored.
func (p *Pipeline) EvaluateOne(ctx context.Context, applicantID string) (*ai.Assessment, error) {
	a, err := p.store.FindApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	return p.evaluate(ctx, a)
}

// EvaluateAll reviews every applicant with a stored document and no stored summary.
// Applicants whose review keeps failing are counted as failed and the pass goes on.
func (p *Pipeline) EvaluateAll(ctx context.Context) (Step, error) {
	applicants, err := p.store.Applicants(ctx)
	if err != nil {
		return Step{}, err
	}

	info := Step{Total: len(applicants)}
	attempted := false
	for _, a := range applicants {
		if !a.HasDocument() || a.HasReview() {
			info.Skipped++
			continue
		}

		if attempted {
			if err := utils.WaitFor(ctx, p.cfg.Throttle); err != nil {
				return info, err
			}
		}
		attempted = true

		logger.WithApplicant(p.logger, a.ApplicantID).Info("evaluating applicant with llm")

		if _, err := p.evaluate(ctx, a); err != nil {
			if errors.Is(err, ErrMalformedDocument) || errors.Is(err, ErrReviewFailed) {
				info.Failed++
				continue
			}
			return info, err
		}

		info.Processed++
	}

	p.logStep(PassEvaluate, info)
	return info, nil
}

func (p *Pipeline) evaluate(ctx context.Context, a *store.Applicant) (*ai.Assessment, error) {
	log := logger.WithApplicant(p.logger, a.ApplicantID)

	if p.reviewer == nil {
		return nil, errors.New("llm reviewer is not configured")
	}

	doc, err := parse(a)
	if err != nil {
		log.Warn("skipping applicant", zap.Error(err))
		return nil, err
	}

	assessment, err := p.review(ctx, log, doc)
	if err != nil {
		log.Error("failed to get llm response", zap.Error(err))
		return nil, err
	}

	if err := p.store.SaveAssessment(ctx, a, assessment.Summary, assessment.Score, assessment.FollowUps); err != nil {
		return nil, err
	}

	log.Info("llm evaluation completed",
		zap.Int("score", assessment.Score),
		zap.String("issues", assessment.Issues),
	)

	return assessment, nil
}

// review calls the reviewer up to MaxRetries times, waiting RetryDelay, 2*RetryDelay, ... between attempts.
func (p *Pipeline) review(ctx context.Context, log *zap.Logger, doc *applicant.Document) (*ai.Assessment, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		assessment, err := p.reviewer.Review(ctx, doc)
		if err == nil && assessment != nil {
			return assessment, nil
		}
		if err == nil {
			err = errors.New("empty assessment")
		}
		lastErr = err

		if attempt+1 == p.cfg.MaxRetries {
			break
		}

		wait := utils.Backoff(p.cfg.RetryDelay, attempt)
		log.Warn("llm call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		if err := utils.WaitFor(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrReviewFailed, p.cfg.MaxRetries, lastErr)
}
