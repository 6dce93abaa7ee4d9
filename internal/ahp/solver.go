package ahp

import (
	"math"
)

// DefaultCRThreshold is the conventional acceptance bound for the
// consistency ratio. At or above it the weights are flagged as unreliable
// but still returned — downstream stages may need them regardless.
const DefaultCRThreshold = 0.10

// saatyRandomIndex is the published average random consistency index,
// indexed by matrix size (Saaty 1980). Sizes 1 and 2 are always consistent.
var saatyRandomIndex = []float64{0, 0, 0, 0.58, 0.90, 1.12, 1.24, 1.32, 1.41, 1.45, 1.49}

// Weights is the derived priority vector together with its consistency
// diagnostics. Values sum to 1 and are all non-negative.
type Weights struct {
	Factors   []string           `json:"factors"`
	Values    map[string]float64 `json:"values"`
	LambdaMax float64            `json:"lambda_max"`
	CI        float64            `json:"ci"`
	CR        float64            `json:"cr"`

	// Inconsistent flags CR at or above the solver threshold. Advisory:
	// the run is not blocked, the operator is warned.
	Inconsistent bool `json:"inconsistent"`
}

// Vector returns the weights in factor order.
func (w *Weights) Vector() []float64 {
	out := make([]float64, len(w.Factors))
	for i, f := range w.Factors {
		out[i] = w.Values[f]
	}
	return out
}

// Solver derives priority weights from a pairwise comparison matrix using
// column normalization with row averaging, the standard approximation of
// the principal eigenvector.
type Solver struct {
	// RandomIndex is consulted by matrix size; sizes beyond the table reuse
	// the last entry. Held per-solver so the table stays explicit
	// configuration rather than ambient state.
	RandomIndex []float64
	CRThreshold float64
}

// NewSolver returns a Solver with Saaty's random-index table and the 0.10
// consistency threshold.
func NewSolver() *Solver {
	return &Solver{
		RandomIndex: saatyRandomIndex,
		CRThreshold: DefaultCRThreshold,
	}
}

// Solve validates the matrix and derives the weight vector and consistency
// ratio. Structural violations return a MalformedMatrixError; inconsistency
// never fails the call.
func (s *Solver) Solve(m *PairwiseMatrix) (*Weights, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	n := m.Size()
	factors := m.Factors()

	// Normalize each column to sum 1, then average across each row.
	colSums := make([]float64, n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			colSums[j] += m.Entry(i, j)
		}
	}
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			weights[i] += m.Entry(i, j) / colSums[j]
		}
		weights[i] /= float64(n)
	}

	// lambda_max estimated as the mean of (Aw)_i / w_i.
	var lambda float64
	for i := 0; i < n; i++ {
		var aw float64
		for j := 0; j < n; j++ {
			aw += m.Entry(i, j) * weights[j]
		}
		lambda += aw / weights[i]
	}
	lambda /= float64(n)

	// Round-off on a perfectly consistent matrix can leave lambda a hair
	// below n; clamp so CI and CR never go negative.
	ci := 0.0
	cr := 0.0
	if n > 2 {
		ci = math.Max(0, (lambda-float64(n))/float64(n-1))
		cr = ci / s.randomIndexFor(n)
	}

	values := make(map[string]float64, n)
	for i, f := range factors {
		values[f] = weights[i]
	}

	return &Weights{
		Factors:      factors,
		Values:       values,
		LambdaMax:    lambda,
		CI:           ci,
		CR:           cr,
		Inconsistent: cr >= s.CRThreshold,
	}, nil
}

func (s *Solver) randomIndexFor(n int) float64 {
	table := s.RandomIndex
	if len(table) == 0 {
		table = saatyRandomIndex
	}
	if n < len(table) {
		return table[n]
	}
	return table[len(table)-1]
}
