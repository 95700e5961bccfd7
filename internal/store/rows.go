package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/airtable"
	"github.com/spigell/applicant-pipeline/internal/applicant"
)

var _ applicant.RowStore = (*Synchronizer)(nil)

func (s *Synchronizer) PersonalRows(ctx context.Context, applicantID string) ([]applicant.PersonalRow, error) {
	records, err := s.childRecords(ctx, s.tables.Personal, applicantID)
	if err != nil {
		return nil, err
	}

	rows := make([]applicant.PersonalRow, 0, len(records))
	for _, record := range records {
		var row applicant.PersonalRow
		if err := record.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *Synchronizer) ExperienceRows(ctx context.Context, applicantID string) ([]applicant.ExperienceRow, error) {
	records, err := s.childRecords(ctx, s.tables.Experience, applicantID)
	if err != nil {
		return nil, err
	}

	rows := make([]applicant.ExperienceRow, 0, len(records))
	for _, record := range records {
		var row applicant.ExperienceRow
		if err := record.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *Synchronizer) SalaryRows(ctx context.Context, applicantID string) ([]applicant.SalaryRow, error) {
	records, err := s.childRecords(ctx, s.tables.Salary, applicantID)
	if err != nil {
		return nil, err
	}

	rows := make([]applicant.SalaryRow, 0, len(records))
	for _, record := range records {
		var row applicant.SalaryRow
		if err := record.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *Synchronizer) SavePersonal(ctx context.Context, applicantID string, row applicant.PersonalRow) error {
	return s.upsert(ctx, s.tables.Personal, applicantID, row.Fields())
}

func (s *Synchronizer) SaveSalary(ctx context.Context, applicantID string, row applicant.SalaryRow) error {
	return s.upsert(ctx, s.tables.Salary, applicantID, row.Fields())
}

// ReplaceExperience deletes the applicant's experience rows and recreates them from rows.
func (s *Synchronizer) ReplaceExperience(ctx context.Context, applicantID string, rows []applicant.ExperienceRow) error {
	existing, err := s.childRecords(ctx, s.tables.Experience, applicantID)
	if err != nil {
		return err
	}

	for _, record := range existing {
		if err := s.client.Delete(ctx, s.tables.Experience, record.ID); err != nil {
			return err
		}
	}

	for _, row := range rows {
		fields := row.Fields()
		fields[fieldApplicantID] = applicantID
		if _, err := s.client.Create(ctx, s.tables.Experience, fields); err != nil {
			return err
		}
	}

	s.logger.Debug("replaced work experience",
		zap.String("applicant_id", applicantID),
		zap.Int("deleted", len(existing)),
		zap.Int("created", len(rows)),
	)

	return nil
}

// upsert updates the first row of the applicant in table or creates one carrying the applicant ID.
func (s *Synchronizer) upsert(ctx context.Context, table, applicantID string, fields map[string]any) error {
	existing, err := s.first(ctx, table, fieldApplicantID, applicantID)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = s.client.Update(ctx, table, existing.ID, fields)
		return err
	}

	fields[fieldApplicantID] = applicantID
	_, err = s.client.Create(ctx, table, fields)
	return err
}

func (s *Synchronizer) childRecords(ctx context.Context, table, applicantID string) ([]airtable.Record, error) {
	return s.client.List(ctx, table, airtable.Equals(fieldApplicantID, applicantID))
}
