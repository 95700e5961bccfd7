// Package airtabletest provides an in-memory record store for tests.
package airtabletest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/spigell/applicant-pipeline/internal/airtable"
)

var equalsFormula = regexp.MustCompile(`^\{(.+)\} = '((?:[^'\\]|\\.)*)'$`)

// Call records one operation made against the store.
type Call struct {
	Op      string
	Table   string
	ID      string
	Formula string
}

// Memory understands only the formulas produced by airtable.Equals.
type Memory struct {
	mu     sync.Mutex
	tables map[string][]airtable.Record
	nextID int

	Calls []Call
	// Err, when set, is returned by every operation on the named table.
	Err map[string]error
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]airtable.Record),
		Err:    make(map[string]error),
	}
}

// Seed appends a record with the given fields and returns its ID.
func (m *Memory) Seed(table string, fields map[string]any) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insert(table, fields).ID
}

// Records returns a copy of the table contents in insertion order.
func (m *Memory) Records(table string) []airtable.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]airtable.Record, len(m.tables[table]))
	copy(out, m.tables[table])
	return out
}

func (m *Memory) List(_ context.Context, table, formula string) ([]airtable.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Op: "list", Table: table, Formula: formula})
	if err := m.Err[table]; err != nil {
		return nil, err
	}

	match := func(airtable.Record) bool { return true }
	if strings.TrimSpace(formula) != "" {
		parts := equalsFormula.FindStringSubmatch(formula)
		if parts == nil {
			return nil, fmt.Errorf("unsupported formula %q", formula)
		}
		field := parts[1]
		value := strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(parts[2])
		match = func(r airtable.Record) bool {
			v, ok := r.Fields[field]
			return ok && fmt.Sprint(v) == value
		}
	}

	var out []airtable.Record
	for _, r := range m.tables[table] {
		if match(r) {
			out = append(out, clone(r))
		}
	}

	return out, nil
}

func (m *Memory) Create(_ context.Context, table string, fields map[string]any) (*airtable.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Err[table]; err != nil {
		return nil, err
	}

	r := m.insert(table, fields)
	m.Calls = append(m.Calls, Call{Op: "create", Table: table, ID: r.ID})

	out := clone(*r)
	return &out, nil
}

func (m *Memory) Update(_ context.Context, table, id string, fields map[string]any) (*airtable.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Op: "update", Table: table, ID: id})
	if err := m.Err[table]; err != nil {
		return nil, err
	}

	for i := range m.tables[table] {
		r := &m.tables[table][i]
		if r.ID != id {
			continue
		}
		for k, v := range fields {
			r.Fields[k] = v
		}
		out := clone(*r)
		return &out, nil
	}

	return nil, &airtable.APIError{StatusCode: 404, Type: "NOT_FOUND"}
}

func (m *Memory) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{Op: "delete", Table: table, ID: id})
	if err := m.Err[table]; err != nil {
		return err
	}

	records := m.tables[table]
	for i, r := range records {
		if r.ID == id {
			m.tables[table] = append(records[:i:i], records[i+1:]...)
			return nil
		}
	}

	return &airtable.APIError{StatusCode: 404, Type: "NOT_FOUND"}
}

// Count returns how many calls of op were made against table.
func (m *Memory) Count(op, table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Op == op && c.Table == table {
			n++
		}
	}
	return n
}

func (m *Memory) insert(table string, fields map[string]any) *airtable.Record {
	m.nextID++
	r := airtable.Record{ID: fmt.Sprintf("rec%04d", m.nextID), Fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		r.Fields[k] = v
	}

	m.tables[table] = append(m.tables[table], r)
	return &m.tables[table][len(m.tables[table])-1]
}

func clone(r airtable.Record) airtable.Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}
