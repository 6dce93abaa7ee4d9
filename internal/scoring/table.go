package scoring

import (
	"fmt"
)

// Row is one lake's set of factor measurements, raw or normalized depending
// on the owning table.
type Row struct {
	Lake   string             `json:"lake"`
	Values map[string]float64 `json:"values"`
}

// FactorTable holds raw measurements: one row per lake, one value per
// declared factor. Rows are complete by construction — Append rejects
// partial rows — and lake identity is unique.
type FactorTable struct {
	Factors []Factor
	Rows    []Row
}

// NewFactorTable declares the factor set for a run.
func NewFactorTable(factors []Factor) (*FactorTable, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("no factors declared")
	}
	seen := make(map[string]bool, len(factors))
	for _, f := range factors {
		if f.Name == "" {
			return nil, fmt.Errorf("empty factor name")
		}
		if !f.Direction.Valid() {
			return nil, fmt.Errorf("factor %q: unknown direction %q", f.Name, f.Direction)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate factor: %s", f.Name)
		}
		seen[f.Name] = true
	}
	return &FactorTable{Factors: append([]Factor(nil), factors...)}, nil
}

// Append admits one lake row. Every declared factor must be present;
// unknown extra keys are rejected so upstream schema drift surfaces early.
func (t *FactorTable) Append(lake string, values map[string]float64) error {
	if lake == "" {
		return fmt.Errorf("empty lake identity")
	}
	for _, r := range t.Rows {
		if r.Lake == lake {
			return fmt.Errorf("duplicate lake: %s", lake)
		}
	}
	row := Row{Lake: lake, Values: make(map[string]float64, len(t.Factors))}
	for _, f := range t.Factors {
		v, ok := values[f.Name]
		if !ok {
			return &IncompleteRowError{Lake: lake, Factor: f.Name}
		}
		row.Values[f.Name] = v
	}
	if len(values) > len(t.Factors) {
		for name := range values {
			if _, ok := row.Values[name]; !ok {
				return fmt.Errorf("lake %q: undeclared factor %q", lake, name)
			}
		}
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of lake rows.
func (t *FactorTable) Len() int { return len(t.Rows) }

// NormalizedTable has the same shape as FactorTable with every value
// rescaled to [0,1], direction-aware: 1 always means "contributes maximally
// to susceptibility".
type NormalizedTable struct {
	Factors []Factor
	Rows    []Row
}
