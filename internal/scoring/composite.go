package scoring

import (
	"sort"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
)

// CompositeScore pairs a lake with its weighted susceptibility index.
type CompositeScore struct {
	Lake  string  `json:"lake"`
	Index float64 `json:"index"`
}

// CompositeScorer combines normalized factor values into one index per lake
// via the weighted linear combination index = Σ weight[f] * normalized[f].
// Deliberately linear: each factor's marginal contribution is readable
// directly as weight × normalized value.
type CompositeScorer struct{}

// Score requires an exact one-to-one correspondence between the weighted
// factor set and the table's; any disagreement is a FactorSetMismatchError.
// With weights summing to 1 and normalized inputs in [0,1], every index
// lies in [0,1].
func (CompositeScorer) Score(t *NormalizedTable, w *ahp.Weights) ([]CompositeScore, error) {
	if err := checkFactorSets(t.Factors, w); err != nil {
		return nil, err
	}

	out := make([]CompositeScore, len(t.Rows))
	for i, r := range t.Rows {
		var index float64
		for _, f := range t.Factors {
			index += w.Values[f.Name] * r.Values[f.Name]
		}
		out[i] = CompositeScore{Lake: r.Lake, Index: clamp01(index)}
	}
	return out, nil
}

func checkFactorSets(factors []Factor, w *ahp.Weights) error {
	var missing, extra []string
	for _, f := range factors {
		if _, ok := w.Values[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	declared := make(map[string]bool, len(factors))
	for _, f := range factors {
		declared[f.Name] = true
	}
	for name := range w.Values {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return &FactorSetMismatchError{MissingWeights: missing, ExtraWeights: extra}
	}
	return nil
}
