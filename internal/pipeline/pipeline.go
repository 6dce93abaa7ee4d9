// Package pipeline wires the susceptibility engine into one deterministic
// run: judgments → weights → normalized factors → composite index → natural
// breaks → ranked table. Each stage is a pure function of its inputs; the
// pipeline fails fast on the first structural error and never emits partial
// output.
package pipeline

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
	"github.com/malothro-m/koshi-glof-ahp/internal/jenks"
	"github.com/malothro-m/koshi-glof-ahp/internal/scoring"
)

// DefaultClassCount is the conventional four-class susceptibility scheme.
const DefaultClassCount = 4

// DefaultClassLabels name the ordered risk classes, lowest first.
var DefaultClassLabels = []string{"Low", "Medium", "High", "Very High"}

// Advisory codes. Advisories are surfaced alongside a completed run; they
// never fail it.
const (
	AdvisoryHighInconsistency = "high_inconsistency"
	AdvisoryDegenerateColumn  = "degenerate_column"
)

// Advisory is a non-fatal finding the operator should see.
type Advisory struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScoredLake is one row of the ranked output table. Rank 1 is the most
// susceptible lake.
type ScoredLake struct {
	Lake  string  `json:"lake"`
	Index float64 `json:"index"`
	Class string  `json:"class"`
	Rank  int     `json:"rank"`
}

// ClassBreak is one labelled interval of the index scale.
type ClassBreak struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Result is the complete output of one run: the ranked table, the class
// intervals, the weight/CR audit report, and any advisories.
type Result struct {
	Lakes      []ScoredLake `json:"lakes"`
	Breaks     []ClassBreak `json:"breaks"`
	Weights    *ahp.Weights `json:"weights"`
	Advisories []Advisory   `json:"advisories,omitempty"`
}

// Pipeline holds the engine configuration for repeated runs. Zero shared
// mutable state: identical inputs always produce identical output.
type Pipeline struct {
	solver     *ahp.Solver
	normalizer scoring.Normalizer
	scorer     scoring.CompositeScorer
	classes    int
	labels     []string
	logger     *slog.Logger
}

// New assembles a pipeline. Nil solver/normalizer/logger and a non-positive
// class count fall back to defaults.
func New(solver *ahp.Solver, normalizer scoring.Normalizer, classes int, labels []string, logger *slog.Logger) *Pipeline {
	if solver == nil {
		solver = ahp.NewSolver()
	}
	if normalizer == nil {
		normalizer = scoring.MinMaxNormalizer{}
	}
	if classes < 1 {
		classes = DefaultClassCount
	}
	if len(labels) == 0 {
		labels = DefaultClassLabels
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		solver:     solver,
		normalizer: normalizer,
		classes:    classes,
		labels:     labels,
		logger:     logger,
	}
}

// Run executes the full scoring sequence over one input snapshot.
func (p *Pipeline) Run(matrix *ahp.PairwiseMatrix, table *scoring.FactorTable) (*Result, error) {
	if table.Len() == 0 {
		return nil, fmt.Errorf("empty factor table: nothing to score")
	}

	weights, err := p.solver.Solve(matrix)
	if err != nil {
		return nil, err
	}
	var advisories []Advisory
	if weights.Inconsistent {
		advisories = append(advisories, Advisory{
			Code:    AdvisoryHighInconsistency,
			Message: fmt.Sprintf("consistency ratio %.4f at or above %.2f; weights flagged as unreliable", weights.CR, p.solver.CRThreshold),
		})
		p.logger.Warn("pairwise judgments inconsistent", "cr", weights.CR, "threshold", p.solver.CRThreshold)
	}

	normalized, notices, err := p.normalizer.Normalize(table)
	if err != nil {
		return nil, err
	}
	for _, n := range notices {
		advisories = append(advisories, Advisory{
			Code:    AdvisoryDegenerateColumn,
			Message: n.String(),
		})
		p.logger.Warn("degenerate factor column", "factor", n.Factor, "value", n.Value)
	}

	scores, err := p.scorer.Score(normalized, weights)
	if err != nil {
		return nil, err
	}

	indices := make([]float64, len(scores))
	for i, s := range scores {
		indices[i] = s.Index
	}
	classification, err := jenks.Classify(indices, p.classes)
	if err != nil {
		return nil, err
	}

	breaks := make([]ClassBreak, len(classification.Breaks))
	for i, b := range classification.Breaks {
		breaks[i] = ClassBreak{Label: p.labelFor(i), Lower: b.Lower, Upper: b.Upper}
	}

	lakes := make([]ScoredLake, len(scores))
	for i, s := range scores {
		lakes[i] = ScoredLake{
			Lake:  s.Lake,
			Index: s.Index,
			Class: breaks[classification.Classes[i]].Label,
		}
	}
	// Rank 1 = highest index; equal indices order by lake name so reruns are
	// reproducible.
	sort.Slice(lakes, func(i, j int) bool {
		if lakes[i].Index != lakes[j].Index {
			return lakes[i].Index > lakes[j].Index
		}
		return lakes[i].Lake < lakes[j].Lake
	})
	for i := range lakes {
		lakes[i].Rank = i + 1
	}

	p.logger.Info("scoring run complete",
		"lakes", len(lakes),
		"classes", len(breaks),
		"cr", weights.CR,
		"advisories", len(advisories),
	)

	return &Result{
		Lakes:      lakes,
		Breaks:     breaks,
		Weights:    weights,
		Advisories: advisories,
	}, nil
}

func (p *Pipeline) labelFor(i int) string {
	if i < len(p.labels) {
		return p.labels[i]
	}
	return fmt.Sprintf("Class %d", i+1)
}
