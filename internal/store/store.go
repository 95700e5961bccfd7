package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/airtable"
	"github.com/spigell/applicant-pipeline/internal/applicant"
)

const (
	fieldApplicantID     = applicant.FieldApplicantID
	fieldCompressedJSON  = "Compressed JSON"
	fieldShortlistStatus = "Shortlist Status"
	fieldLLMSummary      = "LLM Summary"
	fieldLLMScore        = "LLM Score"
	fieldLLMFollowUps    = "LLM Follow-Ups"

	fieldLeadApplicant = "Applicant"
	fieldScoreReason   = "Score Reason"
	fieldCreatedAt     = "Created At"
)

var ErrNotFound = errors.New("applicant not found")

type Status string

const (
	StatusUnset       Status = ""
	StatusShortlisted Status = "Shortlisted"
	StatusRejected    Status = "Rejected"
)

// Client is the record store boundary.
type Client interface {
	List(ctx context.Context, table, formula string) ([]airtable.Record, error)
	Create(ctx context.Context, table string, fields map[string]any) (*airtable.Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (*airtable.Record, error)
	Delete(ctx context.Context, table, id string) error
}

type Tables struct {
	Applicants  string `mapstructure:"applicants"`
	Personal    string `mapstructure:"personal"`
	Experience  string `mapstructure:"experience"`
	Salary      string `mapstructure:"salary"`
	Shortlisted string `mapstructure:"shortlisted"`
}

func DefaultTables() Tables {
	return Tables{
		Applicants:  "Applicants",
		Personal:    "Personal Details",
		Experience:  "Work Experience",
		Salary:      "Salary Preferences",
		Shortlisted: "Shortlisted Leads",
	}
}

// Applicant is a record of the applicants table.
type Applicant struct {
	RecordID string

	ApplicantID     string `mapstructure:"Applicant ID"`
	CompressedJSON  string `mapstructure:"Compressed JSON"`
	ShortlistStatus Status `mapstructure:"Shortlist Status"`
	LLMSummary      string `mapstructure:"LLM Summary"`
	LLMScore        int    `mapstructure:"LLM Score"`
	LLMFollowUps    string `mapstructure:"LLM Follow-Ups"`
}

// HasDocument reports whether a compressed document is stored. "{}" counts as absent.
func (a *Applicant) HasDocument() bool {
	raw := strings.TrimSpace(a.CompressedJSON)
	return raw != "" && raw != "{}"
}

func (a *Applicant) HasReview() bool {
	return strings.TrimSpace(a.LLMSummary) != ""
}

// Lead is a record of the shortlisted leads table.
type Lead struct {
	ApplicantID    string
	CompressedJSON string
	ScoreReason    string
	CreatedAt      time.Time
}

// Synchronizer reconciles applicants and their child rows with the record store.
// Every method issues one or more independent remote calls.
type Synchronizer struct {
	client Client
	tables Tables
	logger *zap.Logger
}

func New(client Client, tables Tables, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := DefaultTables()
	if tables.Applicants == "" {
		tables.Applicants = defaults.Applicants
	}
	if tables.Personal == "" {
		tables.Personal = defaults.Personal
	}
	if tables.Experience == "" {
		tables.Experience = defaults.Experience
	}
	if tables.Salary == "" {
		tables.Salary = defaults.Salary
	}
	if tables.Shortlisted == "" {
		tables.Shortlisted = defaults.Shortlisted
	}

	return &Synchronizer{client: client, tables: tables, logger: logger}
}

// Applicants lists the whole applicants table in store order.
func (s *Synchronizer) Applicants(ctx context.Context) ([]*Applicant, error) {
	records, err := s.client.List(ctx, s.tables.Applicants, "")
	if err != nil {
		return nil, err
	}

	applicants := make([]*Applicant, 0, len(records))
	for _, record := range records {
		a, err := decodeApplicant(record)
		if err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}

	return applicants, nil
}

// FindApplicant returns the first applicant record with the given ID or ErrNotFound.
func (s *Synchronizer) FindApplicant(ctx context.Context, applicantID string) (*Applicant, error) {
	record, err := s.first(ctx, s.tables.Applicants, fieldApplicantID, applicantID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, applicantID)
	}

	return decodeApplicant(*record)
}

func (s *Synchronizer) SaveDocument(ctx context.Context, a *Applicant, raw string) error {
	if err := s.updateApplicant(ctx, a, map[string]any{fieldCompressedJSON: raw}); err != nil {
		return err
	}

	a.CompressedJSON = raw
	return nil
}

func (s *Synchronizer) SetShortlistStatus(ctx context.Context, a *Applicant, status Status) error {
	if err := s.updateApplicant(ctx, a, map[string]any{fieldShortlistStatus: string(status)}); err != nil {
		return err
	}

	a.ShortlistStatus = status
	return nil
}

func (s *Synchronizer) SaveAssessment(ctx context.Context, a *Applicant, summary string, score int, followUps string) error {
	fields := map[string]any{
		fieldLLMSummary:   summary,
		fieldLLMScore:     score,
		fieldLLMFollowUps: followUps,
	}
	if err := s.updateApplicant(ctx, a, fields); err != nil {
		return err
	}

	a.LLMSummary = summary
	a.LLMScore = score
	a.LLMFollowUps = followUps
	return nil
}

// EnsureLead creates the lead unless one already exists for the applicant.
// It reports whether a record was created.
func (s *Synchronizer) EnsureLead(ctx context.Context, lead Lead) (bool, error) {
	existing, err := s.first(ctx, s.tables.Shortlisted, fieldLeadApplicant, lead.ApplicantID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		s.logger.Debug("lead already exists",
			zap.String("applicant_id", lead.ApplicantID),
			zap.String("record_id", existing.ID),
		)
		return false, nil
	}

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	_, err = s.client.Create(ctx, s.tables.Shortlisted, map[string]any{
		fieldLeadApplicant:  lead.ApplicantID,
		fieldCompressedJSON: lead.CompressedJSON,
		fieldScoreReason:    lead.ScoreReason,
		fieldCreatedAt:      lead.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Synchronizer) updateApplicant(ctx context.Context, a *Applicant, fields map[string]any) error {
	if a == nil || a.RecordID == "" {
		return errors.New("applicant record id is required")
	}

	if _, err := s.client.Update(ctx, s.tables.Applicants, a.RecordID, fields); err != nil {
		return err
	}

	return nil
}

// first returns the first record whose field equals value, or nil.
func (s *Synchronizer) first(ctx context.Context, table, field, value string) (*airtable.Record, error) {
	records, err := s.client.List(ctx, table, airtable.Equals(field, value))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	return &records[0], nil
}

func decodeApplicant(record airtable.Record) (*Applicant, error) {
	var a Applicant
	if err := record.Decode(&a); err != nil {
		return nil, err
	}

	a.RecordID = record.ID
	return &a, nil
}
