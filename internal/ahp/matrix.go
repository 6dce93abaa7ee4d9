package ahp

import (
	"fmt"
	"math"
)

const (
	// ScaleMin and ScaleMax bound the reciprocal Saaty judgment scale.
	ScaleMin = 1.0 / 9.0
	ScaleMax = 9.0

	// structTolerance bounds how far diagonal and reciprocal entries may
	// drift before the matrix is rejected as malformed.
	structTolerance = 1e-6
)

// MalformedMatrixError reports a structural violation in a pairwise
// comparison matrix. It is fatal: no weights are derived from a matrix that
// fails validation.
type MalformedMatrixError struct {
	Reason string
}

func (e *MalformedMatrixError) Error() string {
	return "malformed pairwise matrix: " + e.Reason
}

// PairwiseMatrix holds expert judgments of relative factor importance.
// Entry (i,j) answers "how much more does factor i contribute to
// susceptibility than factor j" on the [1/9, 9] scale. The diagonal is 1 and
// the lower triangle mirrors the upper as reciprocals.
type PairwiseMatrix struct {
	factors []string
	index   map[string]int
	entries [][]float64
	judged  [][]bool
}

// New creates an empty matrix for the given factor ordering. All entries
// start at 1; every off-diagonal pair must be judged via Set before the
// matrix validates.
func New(factors []string) (*PairwiseMatrix, error) {
	if len(factors) == 0 {
		return nil, &MalformedMatrixError{Reason: "no factors declared"}
	}
	index := make(map[string]int, len(factors))
	for i, f := range factors {
		if f == "" {
			return nil, &MalformedMatrixError{Reason: "empty factor name"}
		}
		if _, dup := index[f]; dup {
			return nil, &MalformedMatrixError{Reason: "duplicate factor: " + f}
		}
		index[f] = i
	}

	n := len(factors)
	entries := make([][]float64, n)
	judged := make([][]bool, n)
	for i := range entries {
		entries[i] = make([]float64, n)
		judged[i] = make([]bool, n)
		for j := range entries[i] {
			entries[i][j] = 1
		}
		judged[i][i] = true
	}

	return &PairwiseMatrix{
		factors: append([]string(nil), factors...),
		index:   index,
		entries: entries,
		judged:  judged,
	}, nil
}

// FromEntries builds a matrix from a fully populated square grid in factor
// order. The grid is validated structurally before use.
func FromEntries(factors []string, entries [][]float64) (*PairwiseMatrix, error) {
	m, err := New(factors)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(factors) {
		return nil, &MalformedMatrixError{
			Reason: fmt.Sprintf("expected %d rows, got %d", len(factors), len(entries)),
		}
	}
	for i, row := range entries {
		if len(row) != len(factors) {
			return nil, &MalformedMatrixError{
				Reason: fmt.Sprintf("row %d: expected %d entries, got %d", i, len(factors), len(row)),
			}
		}
		copy(m.entries[i], row)
		for j := range m.judged[i] {
			m.judged[i][j] = true
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Set records the judgment "a contributes v times as much as b" and mirrors
// the reciprocal automatically.
func (m *PairwiseMatrix) Set(a, b string, v float64) error {
	i, ok := m.index[a]
	if !ok {
		return &MalformedMatrixError{Reason: "unknown factor: " + a}
	}
	j, ok := m.index[b]
	if !ok {
		return &MalformedMatrixError{Reason: "unknown factor: " + b}
	}
	if i == j {
		if math.Abs(v-1) > structTolerance {
			return &MalformedMatrixError{Reason: "diagonal judgment must be 1: " + a}
		}
		return nil
	}
	if v < ScaleMin-structTolerance || v > ScaleMax+structTolerance {
		return &MalformedMatrixError{
			Reason: fmt.Sprintf("judgment %s/%s = %g outside [1/9, 9]", a, b, v),
		}
	}
	m.entries[i][j] = v
	m.entries[j][i] = 1 / v
	m.judged[i][j] = true
	m.judged[j][i] = true
	return nil
}

// Size returns the number of factors.
func (m *PairwiseMatrix) Size() int { return len(m.factors) }

// Factors returns the factor names in matrix order.
func (m *PairwiseMatrix) Factors() []string {
	return append([]string(nil), m.factors...)
}

// Entry returns the judgment at (i, j) in factor order.
func (m *PairwiseMatrix) Entry(i, j int) float64 { return m.entries[i][j] }

// Validate checks the structural invariants: every pair judged, diagonal 1,
// reciprocal symmetry, all entries on the scale.
func (m *PairwiseMatrix) Validate() error {
	n := len(m.factors)
	for i := 0; i < n; i++ {
		if math.Abs(m.entries[i][i]-1) > structTolerance {
			return &MalformedMatrixError{
				Reason: fmt.Sprintf("diagonal entry for %s is %g, want 1", m.factors[i], m.entries[i][i]),
			}
		}
		for j := 0; j < n; j++ {
			v := m.entries[i][j]
			if v <= 0 {
				return &MalformedMatrixError{
					Reason: fmt.Sprintf("non-positive judgment %s/%s = %g", m.factors[i], m.factors[j], v),
				}
			}
			if i == j {
				continue
			}
			if !m.judged[i][j] {
				return &MalformedMatrixError{
					Reason: fmt.Sprintf("missing judgment for %s/%s", m.factors[i], m.factors[j]),
				}
			}
			if v < ScaleMin-structTolerance || v > ScaleMax+structTolerance {
				return &MalformedMatrixError{
					Reason: fmt.Sprintf("judgment %s/%s = %g outside [1/9, 9]", m.factors[i], m.factors[j], v),
				}
			}
			if math.Abs(v*m.entries[j][i]-1) > structTolerance {
				return &MalformedMatrixError{
					Reason: fmt.Sprintf("reciprocal symmetry violated for %s/%s", m.factors[i], m.factors[j]),
				}
			}
		}
	}
	return nil
}
