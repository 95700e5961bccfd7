package applicant

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type memoryRows struct {
	personal   map[string][]PersonalRow
	experience map[string][]ExperienceRow
	salary     map[string][]SalaryRow

	// experienceGen counts ReplaceExperience calls per applicant to model new row identities.
	experienceGen map[string]int
	failOn        string
}

func newMemoryRows() *memoryRows {
	return &memoryRows{
		personal:      make(map[string][]PersonalRow),
		experience:    make(map[string][]ExperienceRow),
		salary:        make(map[string][]SalaryRow),
		experienceGen: make(map[string]int),
	}
}

func (m *memoryRows) PersonalRows(_ context.Context, id string) ([]PersonalRow, error) {
	if m.failOn == "personal" {
		return nil, errors.New("boom")
	}
	return m.personal[id], nil
}

func (m *memoryRows) ExperienceRows(_ context.Context, id string) ([]ExperienceRow, error) {
	return m.experience[id], nil
}

func (m *memoryRows) SalaryRows(_ context.Context, id string) ([]SalaryRow, error) {
	return m.salary[id], nil
}

func (m *memoryRows) SavePersonal(_ context.Context, id string, row PersonalRow) error {
	if len(m.personal[id]) > 0 {
		m.personal[id][0] = row
		return nil
	}
	m.personal[id] = []PersonalRow{row}
	return nil
}

func (m *memoryRows) SaveSalary(_ context.Context, id string, row SalaryRow) error {
	if len(m.salary[id]) > 0 {
		m.salary[id][0] = row
		return nil
	}
	m.salary[id] = []SalaryRow{row}
	return nil
}

func (m *memoryRows) ReplaceExperience(_ context.Context, id string, rows []ExperienceRow) error {
	m.experienceGen[id]++
	m.experience[id] = append([]ExperienceRow(nil), rows...)
	return nil
}

func fullDocument() *Document {
	return &Document{
		Personal: &Personal{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Location: "London, UK",
			LinkedIn: "https://linkedin.com/in/ada",
		},
		Experience: []Job{
			{Company: "Google LLC", Title: "Engineer", Start: "2020-01-01", End: "2022-01-01", Technologies: []string{"Go", "Python"}},
			{Company: "Acme", Title: "Lead", Start: "2022-06-01", End: "2023-06-01", Technologies: []string{"Rust"}},
		},
		Salary: &Salary{PreferredRate: 90, MinimumRate: 70, Currency: "GBP", Availability: 30},
	}
}

func TestCompressExpandRoundTrip(t *testing.T) {
	ctx := context.Background()
	rows := newMemoryRows()
	mapper := NewMapper(rows)

	original := fullDocument()
	if err := mapper.Expand(ctx, original, "A-1"); err != nil {
		t.Fatalf("expand: %v", err)
	}

	compressed, err := mapper.Compress(ctx, "A-1")
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if diff := cmp.Diff(original, compressed, cmp.AllowUnexported(Personal{})); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := mapper.Expand(ctx, compressed, "A-1"); err != nil {
		t.Fatalf("second expand: %v", err)
	}
	if rows.experienceGen["A-1"] != 2 {
		t.Fatalf("expected experience rows to be recreated twice, got %d", rows.experienceGen["A-1"])
	}
	if len(rows.personal["A-1"]) != 1 || len(rows.salary["A-1"]) != 1 {
		t.Fatalf("expected personal and salary to be upserted, got %d and %d rows", len(rows.personal["A-1"]), len(rows.salary["A-1"]))
	}
}

func TestCompressDefaults(t *testing.T) {
	rows := newMemoryRows()
	rows.experience["A-2"] = []ExperienceRow{{Company: "Initech"}}

	doc, err := NewMapper(rows).Compress(context.Background(), "A-2")
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	want := &Document{
		Personal:   &Personal{},
		Experience: []Job{{Company: "Initech", Technologies: []string{}}},
		Salary:     &Salary{Currency: "USD"},
	}
	if diff := cmp.Diff(want, doc, cmp.AllowUnexported(Personal{})); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}
	if !doc.Valid() {
		t.Fatalf("expected compressed document to be valid: %v", doc.Validate())
	}
}

func TestCompressTakesFirstRow(t *testing.T) {
	rows := newMemoryRows()
	rows.personal["A-3"] = []PersonalRow{{FullName: "First"}, {FullName: "Second"}}
	rows.salary["A-3"] = []SalaryRow{{PreferredRate: 10, Currency: "EUR"}, {PreferredRate: 20}}

	doc, err := NewMapper(rows).Compress(context.Background(), "A-3")
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if doc.Personal.Name != "First" {
		t.Fatalf("expected first personal row, got %q", doc.Personal.Name)
	}
	if doc.Salary.PreferredRate != 10 || doc.Salary.Currency != "EUR" {
		t.Fatalf("expected first salary row, got %+v", doc.Salary)
	}
}

func TestCompressPropagatesStoreErrors(t *testing.T) {
	rows := newMemoryRows()
	rows.failOn = "personal"

	if _, err := NewMapper(rows).Compress(context.Background(), "A-4"); err == nil {
		t.Fatal("expected error from row store")
	}
}

func TestExpandJoinsTechnologies(t *testing.T) {
	rows := newMemoryRows()
	doc := fullDocument()

	if err := NewMapper(rows).Expand(context.Background(), doc, "A-5"); err != nil {
		t.Fatalf("expand: %v", err)
	}

	got := rows.experience["A-5"]
	if len(got) != 2 {
		t.Fatalf("expected 2 experience rows, got %d", len(got))
	}
	if got[0].Technologies != "Go, Python" || got[1].Technologies != "Rust" {
		t.Fatalf("unexpected technologies: %q, %q", got[0].Technologies, got[1].Technologies)
	}
}
