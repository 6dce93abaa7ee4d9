package scoring

import (
	"fmt"
	"strings"
)

// IncompleteRowError reports a lake row missing a declared factor value.
// Fatal: partial rows are never admitted to scoring.
type IncompleteRowError struct {
	Lake   string
	Factor string
}

func (e *IncompleteRowError) Error() string {
	return fmt.Sprintf("lake %q has no value for factor %q", e.Lake, e.Factor)
}

// FactorSetMismatchError reports disagreement between the weight vector's
// factor set and the table's. Fatal: scoring aborts.
type FactorSetMismatchError struct {
	MissingWeights []string // factors in the table with no weight
	ExtraWeights   []string // weighted factors absent from the table
}

func (e *FactorSetMismatchError) Error() string {
	var parts []string
	if len(e.MissingWeights) > 0 {
		parts = append(parts, "unweighted factors: "+strings.Join(e.MissingWeights, ", "))
	}
	if len(e.ExtraWeights) > 0 {
		parts = append(parts, "weights without factors: "+strings.Join(e.ExtraWeights, ", "))
	}
	return "factor set mismatch: " + strings.Join(parts, "; ")
}

// DegenerateColumnNotice flags a zero-variance factor column. Advisory: the
// column normalizes to the neutral 0.5 for every lake and the run proceeds.
type DegenerateColumnNotice struct {
	Factor string  `json:"factor"`
	Value  float64 `json:"value"` // the single raw value every lake shares
}

func (n DegenerateColumnNotice) String() string {
	return fmt.Sprintf("factor %q has zero variance (all lakes at %g); normalized to neutral 0.5", n.Factor, n.Value)
}
