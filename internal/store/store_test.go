package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/applicant-pipeline/internal/airtable/airtabletest"
	"github.com/spigell/applicant-pipeline/internal/applicant"
)

func newSynchronizer() (*Synchronizer, *airtabletest.Memory) {
	mem := airtabletest.NewMemory()
	return New(mem, Tables{}, zap.NewNop()), mem
}

func TestFindApplicant(t *testing.T) {
	s, mem := newSynchronizer()
	mem.Seed("Applicants", map[string]any{"Applicant ID": "A-1", "LLM Score": float64(6)})

	a, err := s.FindApplicant(context.Background(), "A-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a.RecordID == "" || a.ApplicantID != "A-1" || a.LLMScore != 6 {
		t.Fatalf("unexpected applicant: %+v", a)
	}

	_, err = s.FindApplicant(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplicantUpdatesWriteThrough(t *testing.T) {
	ctx := context.Background()
	s, mem := newSynchronizer()
	mem.Seed("Applicants", map[string]any{"Applicant ID": "A-1"})

	applicants, err := s.Applicants(ctx)
	if err != nil {
		t.Fatalf("list applicants: %v", err)
	}
	a := applicants[0]

	if err := s.SaveDocument(ctx, a, `{"personal":{}}`); err != nil {
		t.Fatalf("save document: %v", err)
	}
	if err := s.SetShortlistStatus(ctx, a, StatusRejected); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := s.SaveAssessment(ctx, a, "summary", 8, "• Q1"); err != nil {
		t.Fatalf("save assessment: %v", err)
	}

	fields := mem.Records("Applicants")[0].Fields
	if fields["Compressed JSON"] != `{"personal":{}}` || fields["Shortlist Status"] != "Rejected" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["LLM Summary"] != "summary" || fields["LLM Score"] != 8 || fields["LLM Follow-Ups"] != "• Q1" {
		t.Fatalf("unexpected llm fields: %+v", fields)
	}
	if !a.HasDocument() || !a.HasReview() || a.ShortlistStatus != StatusRejected {
		t.Fatalf("expected in-memory applicant to be updated: %+v", a)
	}
}

func TestEnsureLeadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, mem := newSynchronizer()

	lead := Lead{
		ApplicantID:    "A-1",
		CompressedJSON: "{}",
		ScoreReason:    "Location acceptable",
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	created, err := s.EnsureLead(ctx, lead)
	if err != nil || !created {
		t.Fatalf("expected lead to be created, got created=%t err=%v", created, err)
	}

	created, err = s.EnsureLead(ctx, lead)
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got created=%t err=%v", created, err)
	}

	records := mem.Records("Shortlisted Leads")
	if len(records) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(records))
	}
	if records[0].Fields["Created At"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected created at %v", records[0].Fields["Created At"])
	}
}

func TestUpsertAndReplaceRows(t *testing.T) {
	ctx := context.Background()
	s, mem := newSynchronizer()

	mem.Seed("Personal Details", map[string]any{"Applicant ID": "A-1", "Full Name": "Old"})
	mem.Seed("Work Experience", map[string]any{"Applicant ID": "A-1", "Company": "Old Co"})
	mem.Seed("Work Experience", map[string]any{"Applicant ID": "A-2", "Company": "Other"})

	if err := s.SavePersonal(ctx, "A-1", applicant.PersonalRow{FullName: "New"}); err != nil {
		t.Fatalf("save personal: %v", err)
	}
	if err := s.SaveSalary(ctx, "A-1", applicant.SalaryRow{PreferredRate: 50, Currency: "EUR"}); err != nil {
		t.Fatalf("save salary: %v", err)
	}
	if err := s.ReplaceExperience(ctx, "A-1", []applicant.ExperienceRow{{Company: "First"}, {Company: "Second"}}); err != nil {
		t.Fatalf("replace experience: %v", err)
	}

	personal := mem.Records("Personal Details")
	if len(personal) != 1 || personal[0].Fields["Full Name"] != "New" {
		t.Fatalf("expected personal row to be updated in place: %+v", personal)
	}

	salary := mem.Records("Salary Preferences")
	if len(salary) != 1 || salary[0].Fields["Applicant ID"] != "A-1" {
		t.Fatalf("expected salary row to be created with applicant id: %+v", salary)
	}

	rows, err := s.ExperienceRows(ctx, "A-1")
	if err != nil {
		t.Fatalf("experience rows: %v", err)
	}
	if len(rows) != 2 || rows[0].Company != "First" || rows[1].Company != "Second" {
		t.Fatalf("unexpected experience rows: %+v", rows)
	}

	other, err := s.ExperienceRows(ctx, "A-2")
	if err != nil || len(other) != 1 {
		t.Fatalf("expected other applicant rows untouched, got %+v (%v)", other, err)
	}
	if mem.Count("delete", "Work Experience") != 1 {
		t.Fatalf("expected one delete, got %d", mem.Count("delete", "Work Experience"))
	}
}

func TestCompressThroughSynchronizer(t *testing.T) {
	ctx := context.Background()
	s, mem := newSynchronizer()

	mem.Seed("Personal Details", map[string]any{"Applicant ID": "A-1", "Full Name": "Ada", "Email": "ada@example.com", "Location": "UK"})
	mem.Seed("Work Experience", map[string]any{"Applicant ID": "A-1", "Company": "Acme", "Technologies": "Go, SQL"})
	mem.Seed("Salary Preferences", map[string]any{"Applicant ID": "A-1", "Preferred Rate": float64(80), "Availability": float64(25)})

	doc, err := applicant.NewMapper(s).Compress(ctx, "A-1")
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if doc.Personal.Name != "Ada" || doc.Salary.Currency != "USD" || doc.Salary.PreferredRate != 80 {
		t.Fatalf("unexpected document: %+v %+v", doc.Personal, doc.Salary)
	}
	if len(doc.Experience) != 1 || len(doc.Experience[0].Technologies) != 2 {
		t.Fatalf("unexpected experience: %+v", doc.Experience)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	s, mem := newSynchronizer()
	mem.Err["Applicants"] = errors.New("rate limited")

	if _, err := s.Applicants(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestHasDocumentTreatsEmptyObjectAsAbsent(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"  ", false},
		{"{}", false},
		{" {} \n", false},
		{`{"personal":{}}`, true},
	}

	for _, tt := range tests {
		a := &Applicant{CompressedJSON: tt.raw}
		if got := a.HasDocument(); got != tt.want {
			t.Fatalf("HasDocument(%q) = %t, want %t", tt.raw, got, tt.want)
		}
	}
}
