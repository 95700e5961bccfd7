package applicant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const DefaultCurrency = "USD"

// ErrIncomplete is returned by Validate when a required section or key is missing.
var ErrIncomplete = errors.New("applicant document is incomplete")

// Document is the canonical applicant profile merged from the child tables.
// Personal and Salary are nil and Experience is nil when the section is absent.
type Document struct {
	Personal   *Personal `json:"personal,omitempty"`
	Experience []Job     `json:"experience"`
	Salary     *Salary   `json:"salary,omitempty"`
}

type Personal struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`

	// missing lists required keys absent from a parsed document.
	missing []string
}

type Job struct {
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Technologies []string `json:"technologies"`
}

type Salary struct {
	PreferredRate float64 `json:"preferred_rate"`
	MinimumRate   float64 `json:"minimum_rate"`
	Currency      string  `json:"currency"`
	Availability  float64 `json:"availability"`
}

var requiredPersonalKeys = []string{"name", "email", "location"}

// UnmarshalJSON records which required personal keys were present.
func (p *Personal) UnmarshalJSON(data []byte) error {
	type plain Personal
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	*p = Personal(decoded)
	p.missing = nil
	for _, key := range requiredPersonalKeys {
		if _, ok := keys[key]; !ok {
			p.missing = append(p.missing, key)
		}
	}

	return nil
}

// UnmarshalJSON applies the default currency when the key is absent.
func (s *Salary) UnmarshalJSON(data []byte) error {
	type plain Salary
	decoded := plain{Currency: DefaultCurrency}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*s = Salary(decoded)
	return nil
}

// ParseDocument decodes a stored document. It does not validate it.
func ParseDocument(raw string) (*Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse applicant document: %w", err)
	}

	return &doc, nil
}

// JSON serializes the document the way it is stored in the applicants table.
func (d *Document) JSON() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal applicant document: %w", err)
	}

	return string(data), nil
}

// Validate checks that all three sections are present and that personal carries
// the name, email and location keys. Empty values are accepted.
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrIncomplete)
	}

	var missing []string
	if d.Personal == nil {
		missing = append(missing, "personal")
	}
	if d.Experience == nil {
		missing = append(missing, "experience")
	}
	if d.Salary == nil {
		missing = append(missing, "salary")
	}
	if d.Personal != nil {
		for _, key := range d.Personal.missing {
			missing = append(missing, "personal."+key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	return nil
}

func (d *Document) Valid() bool {
	return d.Validate() == nil
}
