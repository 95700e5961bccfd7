package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/logger"
	"github.com/spigell/applicant-pipeline/internal/shortlist"
	"github.com/spigell/applicant-pipeline/internal/store"
)

// ShortlistOne evaluates one applicant and persists the verdict.
func (p *Pipeline) ShortlistOne(ctx context.Context, applicantID string) (shortlist.Verdict, error) {
	a, err := p.store.FindApplicant(ctx, applicantID)
	if err != nil {
		return shortlist.Verdict{}, err
	}

	verdict, _, err := p.shortlist(ctx, a)
	return verdict, err
}

// ShortlistAll evaluates every applicant with a stored document. Applicants
// without a document or with a malformed one are logged and skipped.
func (p *Pipeline) ShortlistAll(ctx context.Context) (Step, error) {
	applicants, err := p.store.Applicants(ctx)
	if err != nil {
		return Step{}, err
	}

	info := Step{Total: len(applicants)}
	for _, a := range applicants {
		if !a.HasDocument() {
			logger.WithApplicant(p.logger, a.ApplicantID).Info("skipping applicant", zap.String("reason", "no compressed data"))
			info.Skipped++
			continue
		}

		_, created, err := p.shortlist(ctx, a)
		if err != nil {
			if errors.Is(err, ErrMalformedDocument) {
				info.Failed++
				continue
			}
			return info, err
		}

		info.Processed++
		if created {
			info.Created++
		}
	}

	p.logStep(PassShortlist, info)
	return info, nil
}

// shortlist writes the status and, for shortlisted applicants, a lead unless one exists.
func (p *Pipeline) shortlist(ctx context.Context, a *store.Applicant) (shortlist.Verdict, bool, error) {
	log := logger.WithApplicant(p.logger, a.ApplicantID)

	doc, err := parse(a)
	if err != nil {
		log.Warn("skipping applicant", zap.Error(err))
		return shortlist.Verdict{}, false, err
	}

	verdict := p.criteria.Evaluate(doc)

	status := store.StatusRejected
	if verdict.Shortlisted {
		status = store.StatusShortlisted
	}

	if err := p.store.SetShortlistStatus(ctx, a, status); err != nil {
		return verdict, false, err
	}

	if !verdict.Shortlisted {
		log.Info("rejected applicant", zap.String("reason", verdict.Reason))
		return verdict, false, nil
	}

	created, err := p.store.EnsureLead(ctx, store.Lead{
		ApplicantID:    a.ApplicantID,
		CompressedJSON: a.CompressedJSON,
		ScoreReason:    verdict.Reason,
		CreatedAt:      p.now(),
	})
	if err != nil {
		return verdict, false, err
	}

	if created {
		log.Info("shortlisted applicant", zap.String("reason", verdict.Reason))
	} else {
		log.Info("applicant already shortlisted")
	}

	return verdict, created, nil
}
