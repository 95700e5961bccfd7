package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/ai"
	"github.com/spigell/applicant-pipeline/internal/applicant"
	"github.com/spigell/applicant-pipeline/internal/logger"
	"github.com/spigell/applicant-pipeline/internal/shortlist"
	"github.com/spigell/applicant-pipeline/internal/store"
	"github.com/spigell/applicant-pipeline/internal/utils"
)

const (
	PassCompress   = "compress"
	PassShortlist  = "shortlist"
	PassEvaluate   = "evaluate"
	PassDecompress = "decompress"
)

var (
	ErrNoDocument        = errors.New("applicant has no compressed document")
	ErrMalformedDocument = errors.New("malformed compressed document")
	ErrReviewFailed      = errors.New("llm review failed")
)

// Store is the part of the record synchronizer the passes depend on.
type Store interface {
	Applicants(ctx context.Context) ([]*store.Applicant, error)
	FindApplicant(ctx context.Context, applicantID string) (*store.Applicant, error)
	SaveDocument(ctx context.Context, a *store.Applicant, raw string) error
	SetShortlistStatus(ctx context.Context, a *store.Applicant, status store.Status) error
	SaveAssessment(ctx context.Context, a *store.Applicant, summary string, score int, followUps string) error
	EnsureLead(ctx context.Context, lead store.Lead) (bool, error)
}

type Mapper interface {
	Compress(ctx context.Context, applicantID string) (*applicant.Document, error)
	Expand(ctx context.Context, doc *applicant.Document, applicantID string) error
}

// Deps aggregates collaborators shared across all passes.
// Reviewer may be nil when only compress, decompress and shortlist are used.
type Deps struct {
	Store    Store
	Mapper   Mapper
	Criteria shortlist.Criteria
	Reviewer ai.Reviewer
	Logger   *zap.Logger
}

type Config struct {
	// MaxRetries bounds the attempts of one LLM review.
	MaxRetries int
	// RetryDelay is doubled after every failed attempt.
	RetryDelay time.Duration
	// Throttle is the pause between two LLM reviews.
	Throttle time.Duration
	// PhasePause is the pause between passes of Run.
	PhasePause time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: time.Second,
		Throttle:   time.Second,
		PhasePause: 2 * time.Second,
	}
}

// Step describes the result of executing a pass over the applicants table.
type Step struct {
	Total     int
	Processed int
	Skipped   int
	Failed    int
	// Created counts records created by the pass (shortlisted leads).
	Created int
}

type Report struct {
	Compress  Step
	Shortlist Step
	Evaluate  Step
}

type Pipeline struct {
	store    Store
	mapper   Mapper
	criteria shortlist.Criteria
	reviewer ai.Reviewer
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time
}

func New(deps Deps, cfg Config) *Pipeline {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	return &Pipeline{
		store:    deps.Store,
		mapper:   deps.Mapper,
		criteria: deps.Criteria,
		reviewer: deps.Reviewer,
		logger:   logger.WithFields(deps.Logger),
		cfg:      cfg,
		now:      time.Now,
	}
}

type pass struct {
	name   string
	run    func(ctx context.Context) (Step, error)
	report *Step
}

// Run executes the compress, shortlist and evaluate passes in order, pausing between them.
// A pass that fails with a record store error stops the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	passes := []pass{
		{name: PassCompress, run: p.CompressAll, report: &report.Compress},
		{name: PassShortlist, run: p.ShortlistAll, report: &report.Shortlist},
		{name: PassEvaluate, run: p.EvaluateAll, report: &report.Evaluate},
	}

	for i, ps := range passes {
		if i > 0 {
			if err := utils.WaitFor(ctx, p.cfg.PhasePause); err != nil {
				return report, err
			}
		}

		logger.WithPass(p.logger, ps.name).Info("starting pass")

		info, err := ps.run(ctx)
		*ps.report = info
		if err != nil {
			return report, fmt.Errorf("%s: %w", ps.name, err)
		}
	}

	return report, nil
}

func (p *Pipeline) logStep(name string, info Step) {
	logger.WithPass(p.logger, name).Info("pass step",
		zap.Int("total", info.Total),
		zap.Int("processed", info.Processed),
		zap.Int("skipped", info.Skipped),
		zap.Int("failed", info.Failed),
		zap.Int("created", info.Created),
	)
}

// parse decodes the stored document of a.
func parse(a *store.Applicant) (*applicant.Document, error) {
	if !a.HasDocument() {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, a.ApplicantID)
	}

	doc, err := applicant.ParseDocument(a.CompressedJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedDocument, a.ApplicantID, err)
	}

	return doc, nil
}
