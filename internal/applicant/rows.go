package applicant

import "strings"

// Field names shared by every child table.
const (
	FieldApplicantID = "Applicant ID"

	technologiesSeparator = ", "
)

// PersonalRow mirrors a record of the personal details table.
type PersonalRow struct {
	FullName string `mapstructure:"Full Name"`
	Email    string `mapstructure:"Email"`
	Location string `mapstructure:"Location"`
	LinkedIn string `mapstructure:"LinkedIn URL"`
}

func (r PersonalRow) Fields() map[string]any {
	return map[string]any{
		"Full Name":    r.FullName,
		"Email":        r.Email,
		"Location":     r.Location,
		"LinkedIn URL": r.LinkedIn,
	}
}

// ExperienceRow mirrors a record of the work experience table.
type ExperienceRow struct {
	Company      string `mapstructure:"Company"`
	Title        string `mapstructure:"Title"`
	StartDate    string `mapstructure:"Start Date"`
	EndDate      string `mapstructure:"End Date"`
	Technologies string `mapstructure:"Technologies"`
}

func (r ExperienceRow) Fields() map[string]any {
	return map[string]any{
		"Company":      r.Company,
		"Title":        r.Title,
		"Start Date":   r.StartDate,
		"End Date":     r.EndDate,
		"Technologies": r.Technologies,
	}
}

// SalaryRow mirrors a record of the salary preferences table.
type SalaryRow struct {
	PreferredRate float64 `mapstructure:"Preferred Rate"`
	MinimumRate   float64 `mapstructure:"Minimum Rate"`
	Currency      string  `mapstructure:"Currency"`
	Availability  float64 `mapstructure:"Availability"`
}

func (r SalaryRow) Fields() map[string]any {
	return map[string]any{
		"Preferred Rate": r.PreferredRate,
		"Minimum Rate":   r.MinimumRate,
		"Currency":       r.Currency,
		"Availability":   r.Availability,
	}
}

// FromRows builds a document from child table rows. Only the first personal and
// salary rows are used; experience rows keep their order.
func FromRows(personal []PersonalRow, experience []ExperienceRow, salary []SalaryRow) *Document {
	var p PersonalRow
	if len(personal) > 0 {
		p = personal[0]
	}

	s := SalaryRow{Currency: DefaultCurrency}
	if len(salary) > 0 {
		s = salary[0]
		if s.Currency == "" {
			s.Currency = DefaultCurrency
		}
	}

	jobs := make([]Job, 0, len(experience))
	for _, row := range experience {
		jobs = append(jobs, Job{
			Company:      row.Company,
			Title:        row.Title,
			Start:        row.StartDate,
			End:          row.EndDate,
			Technologies: splitTechnologies(row.Technologies),
		})
	}

	return &Document{
		Personal: &Personal{
			Name:     p.FullName,
			Email:    p.Email,
			Location: p.Location,
			LinkedIn: p.LinkedIn,
		},
		Experience: jobs,
		Salary: &Salary{
			PreferredRate: s.PreferredRate,
			MinimumRate:   s.MinimumRate,
			Currency:      s.Currency,
			Availability:  s.Availability,
		},
	}
}

// Rows is the inverse of FromRows. Missing sections produce zero rows with the default currency.
func (d *Document) Rows() (PersonalRow, []ExperienceRow, SalaryRow) {
	var personal PersonalRow
	if d.Personal != nil {
		personal = PersonalRow{
			FullName: d.Personal.Name,
			Email:    d.Personal.Email,
			Location: d.Personal.Location,
			LinkedIn: d.Personal.LinkedIn,
		}
	}

	experience := make([]ExperienceRow, 0, len(d.Experience))
	for _, job := range d.Experience {
		experience = append(experience, ExperienceRow{
			Company:      job.Company,
			Title:        job.Title,
			StartDate:    job.Start,
			EndDate:      job.End,
			Technologies: strings.Join(job.Technologies, technologiesSeparator),
		})
	}

	salary := SalaryRow{Currency: DefaultCurrency}
	if d.Salary != nil {
		salary = SalaryRow{
			PreferredRate: d.Salary.PreferredRate,
			MinimumRate:   d.Salary.MinimumRate,
			Currency:      d.Salary.Currency,
			Availability:  d.Salary.Availability,
		}
		if salary.Currency == "" {
			salary.Currency = DefaultCurrency
		}
	}

	return personal, experience, salary
}

func splitTechnologies(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, technologiesSeparator)
}
