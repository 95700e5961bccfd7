package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/applicant"
	"github.com/spigell/applicant-pipeline/internal/logger"
	"github.com/spigell/applicant-pipeline/internal/store"
)

// CompressOne compresses the applicant's child rows and stores the document,
// replacing any document already stored.
func (p *Pipeline) CompressOne(ctx context.Context, applicantID string) (*applicant.Document, error) {
	a, err := p.store.FindApplicant(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	return p.compress(ctx, a)
}

// CompressAll compresses every applicant without a stored document.
// Incomplete documents are logged and skipped.
func (p *Pipeline) CompressAll(ctx context.Context) (Step, error) {
	applicants, err := p.store.Applicants(ctx)
	if err != nil {
		return Step{}, err
	}

	info := Step{Total: len(applicants)}
	for _, a := range applicants {
		log := logger.WithApplicant(p.logger, a.ApplicantID)

		if a.HasDocument() || strings.TrimSpace(a.ApplicantID) == "" {
			info.Skipped++
			continue
		}

		log.Info("compressing applicant")

		if _, err := p.compress(ctx, a); err != nil {
			if errors.Is(err, applicant.ErrIncomplete) {
				info.Failed++
				continue
			}
			return info, err
		}

		info.Processed++
	}

	p.logStep(PassCompress, info)
	return info, nil
}

func (p *Pipeline) compress(ctx context.Context, a *store.Applicant) (*applicant.Document, error) {
	log := logger.WithApplicant(p.logger, a.ApplicantID)

	doc, err := p.mapper.Compress(ctx, a.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", a.ApplicantID, err)
	}

	if err := doc.Validate(); err != nil {
		log.Warn("incomplete data for applicant", zap.Error(err))
		return nil, err
	}

	raw, err := doc.JSON()
	if err != nil {
		return nil, err
	}

	if err := p.store.SaveDocument(ctx, a, raw); err != nil {
		return nil, fmt.Errorf("save document of %s: %w", a.ApplicantID, err)
	}

	log.Info("updated compressed json")
	return doc, nil
}

// DecompressOne expands the stored document back into the child tables.
func (p *Pipeline) DecompressOne(ctx context.Context, applicantID string) error {
	a, err := p.store.FindApplicant(ctx, applicantID)
	if err != nil {
		return err
	}

	return p.decompress(ctx, a)
}

// DecompressAll expands every applicant with a stored document. Malformed documents are skipped.
func (p *Pipeline) DecompressAll(ctx context.Context) (Step, error) {
	applicants, err := p.store.Applicants(ctx)
	if err != nil {
		return Step{}, err
	}

	info := Step{Total: len(applicants)}
	for _, a := range applicants {
		if !a.HasDocument() {
			info.Skipped++
			continue
		}

		logger.WithApplicant(p.logger, a.ApplicantID).Info("decompressing applicant")

		if err := p.decompress(ctx, a); err != nil {
			if errors.Is(err, ErrMalformedDocument) {
				info.Failed++
				continue
			}
			return info, err
		}

		info.Processed++
	}

	p.logStep(PassDecompress, info)
	return info, nil
}

func (p *Pipeline) decompress(ctx context.Context, a *store.Applicant) error {
	log := logger.WithApplicant(p.logger, a.ApplicantID)

	doc, err := parse(a)
	if err != nil {
		log.Warn("cannot decompress applicant", zap.Error(err))
		return err
	}

	if err := p.mapper.Expand(ctx, doc, a.ApplicantID); err != nil {
		return fmt.Errorf("decompress %s: %w", a.ApplicantID, err)
	}

	log.Info("decompression completed")
	return nil
}
