package applicant

import (
	"context"
	"fmt"
)

// RowStore reads and writes the child tables of a single applicant.
type RowStore interface {
	PersonalRows(ctx context.Context, applicantID string) ([]PersonalRow, error)
	ExperienceRows(ctx context.Context, applicantID string) ([]ExperienceRow, error)
	SalaryRows(ctx context.Context, applicantID string) ([]SalaryRow, error)

	// SavePersonal and SaveSalary update the existing row or create one.
	SavePersonal(ctx context.Context, applicantID string, row PersonalRow) error
	SaveSalary(ctx context.Context, applicantID string, row SalaryRow) error
	// ReplaceExperience deletes every existing row and creates the given ones in order.
	ReplaceExperience(ctx context.Context, applicantID string, rows []ExperienceRow) error
}

// Mapper converts between child table rows and the canonical document.
type Mapper struct {
	rows RowStore
}

func NewMapper(rows RowStore) *Mapper {
	return &Mapper{rows: rows}
}

// Compress merges the applicant's child table rows into one document.
func (m *Mapper) Compress(ctx context.Context, applicantID string) (*Document, error) {
	personal, err := m.rows.PersonalRows(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("get personal details: %w", err)
	}

	experience, err := m.rows.ExperienceRows(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("get work experience: %w", err)
	}

	salary, err := m.rows.SalaryRows(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("get salary preferences: %w", err)
	}

	return FromRows(personal, experience, salary), nil
}

// Expand writes the document back into the child tables.
// Experience rows are recreated, so their record IDs change on every call.
func (m *Mapper) Expand(ctx context.Context, doc *Document, applicantID string) error {
	if doc == nil {
		return fmt.Errorf("document is required")
	}

	personal, experience, salary := doc.Rows()

	if err := m.rows.SavePersonal(ctx, applicantID, personal); err != nil {
		return fmt.Errorf("save personal details: %w", err)
	}

	if err := m.rows.ReplaceExperience(ctx, applicantID, experience); err != nil {
		return fmt.Errorf("replace work experience: %w", err)
	}

	if err := m.rows.SaveSalary(ctx, applicantID, salary); err != nil {
		return fmt.Errorf("save salary preferences: %w", err)
	}

	return nil
}
