package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/malothro-m/koshi-glof-ahp/internal/ahp"
	"github.com/malothro-m/koshi-glof-ahp/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMatrix(t *testing.T) *ahp.PairwiseMatrix {
	t.Helper()
	m, err := ahp.New([]string{"lake_area", "area_growth", "glacier_distance"})
	if err != nil {
		t.Fatalf("ahp.New: %v", err)
	}
	for _, j := range []struct {
		a, b string
		v    float64
	}{
		{"lake_area", "area_growth", 2},
		{"lake_area", "glacier_distance", 4},
		{"area_growth", "glacier_distance", 2},
	} {
		if err := m.Set(j.a, j.b, j.v); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	return m
}

func testTable(t *testing.T) *scoring.FactorTable {
	t.Helper()
	table, err := scoring.NewFactorTable([]scoring.Factor{
		{Name: "lake_area", Direction: scoring.HigherIsWorse, Unit: "km^2"},
		{Name: "area_growth", Direction: scoring.HigherIsWorse, Unit: "%/yr"},
		{Name: "glacier_distance", Direction: scoring.LowerIsWorse, Unit: "m"},
	})
	if err != nil {
		t.Fatalf("NewFactorTable: %v", err)
	}
	rows := []struct {
		lake   string
		values map[string]float64
	}{
		{"imja", map[string]float64{"lake_area": 1.35, "area_growth": 4.2, "glacier_distance": 0}},
		{"tsho_rolpa", map[string]float64{"lake_area": 1.54, "area_growth": 3.1, "glacier_distance": 50}},
		{"lumding", map[string]float64{"lake_area": 0.87, "area_growth": 1.9, "glacier_distance": 210}},
		{"barun", map[string]float64{"lake_area": 0.52, "area_growth": 0.8, "glacier_distance": 900}},
		{"chamlang", map[string]float64{"lake_area": 0.31, "area_growth": 0.4, "glacier_distance": 1400}},
		{"hongu", map[string]float64{"lake_area": 0.09, "area_growth": 0.1, "glacier_distance": 3200}},
	}
	for _, r := range rows {
		if err := table.Append(r.lake, r.values); err != nil {
			t.Fatalf("Append(%s): %v", r.lake, err)
		}
	}
	return table
}

func TestRunRankedOutput(t *testing.T) {
	p := New(nil, nil, 3, []string{"Low", "Medium", "High"}, discardLogger())
	res, err := p.Run(testMatrix(t), testTable(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Lakes) != 6 {
		t.Fatalf("expected 6 scored lakes, got %d", len(res.Lakes))
	}
	for i, l := range res.Lakes {
		if l.Rank != i+1 {
			t.Errorf("rank %d at position %d", l.Rank, i)
		}
		if i > 0 && l.Index > res.Lakes[i-1].Index {
			t.Errorf("ranking not descending at position %d", i)
		}
		if l.Index < 0 || l.Index > 1 {
			t.Errorf("lake %s index %f outside [0,1]", l.Lake, l.Index)
		}
	}

	// imja is worst on every factor (largest, fastest growing, touching the
	// glacier) so it must rank first; hongu is best on every factor.
	if res.Lakes[0].Lake != "imja" {
		t.Errorf("expected imja at rank 1, got %s", res.Lakes[0].Lake)
	}
	if res.Lakes[5].Lake != "hongu" {
		t.Errorf("expected hongu at rank 6, got %s", res.Lakes[5].Lake)
	}
	if res.Lakes[0].Class != "High" {
		t.Errorf("top-ranked lake should carry the highest label, got %s", res.Lakes[0].Class)
	}
	if res.Lakes[5].Class != "Low" {
		t.Errorf("bottom-ranked lake should carry the lowest label, got %s", res.Lakes[5].Class)
	}

	if res.Weights == nil || math.Abs(res.Weights.CR) > 1e-9 {
		t.Error("consistent judgments should report CR 0")
	}
	if len(res.Advisories) != 0 {
		t.Errorf("unexpected advisories: %v", res.Advisories)
	}
}

func TestRunDeterministic(t *testing.T) {
	p := New(nil, nil, 4, nil, discardLogger())

	first, err := p.Run(testMatrix(t), testTable(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := p.Run(testMatrix(t), testTable(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(first.Lakes, second.Lakes) {
		t.Error("identical inputs produced different ranked output")
	}
	if !reflect.DeepEqual(first.Breaks, second.Breaks) {
		t.Error("identical inputs produced different class breaks")
	}
}

func TestRunSurfacesAdvisories(t *testing.T) {
	// Contradictory judgments (CR > 0.10) plus a zero-variance column:
	// both are advisory, the run still completes.
	m, err := ahp.New([]string{"lake_area", "area_growth", "glacier_distance"})
	if err != nil {
		t.Fatalf("ahp.New: %v", err)
	}
	_ = m.Set("lake_area", "area_growth", 3)
	_ = m.Set("area_growth", "glacier_distance", 3)
	_ = m.Set("lake_area", "glacier_distance", 1.0/3.0)

	table, err := scoring.NewFactorTable([]scoring.Factor{
		{Name: "lake_area", Direction: scoring.HigherIsWorse},
		{Name: "area_growth", Direction: scoring.HigherIsWorse},
		{Name: "glacier_distance", Direction: scoring.LowerIsWorse},
	})
	if err != nil {
		t.Fatalf("NewFactorTable: %v", err)
	}
	for lake, area := range map[string]float64{"a": 0.2, "b": 0.9, "c": 1.7} {
		if err := table.Append(lake, map[string]float64{
			"lake_area": area, "area_growth": 2.0, "glacier_distance": area * 100,
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := New(nil, nil, 2, nil, discardLogger()).Run(m, table)
	if err != nil {
		t.Fatalf("advisory conditions must not fail the run: %v", err)
	}

	codes := map[string]bool{}
	for _, a := range res.Advisories {
		codes[a.Code] = true
	}
	if !codes[AdvisoryHighInconsistency] {
		t.Error("expected high-inconsistency advisory")
	}
	if !codes[AdvisoryDegenerateColumn] {
		t.Error("expected degenerate-column advisory")
	}
}

func TestRunFailsFast(t *testing.T) {
	t.Run("malformed matrix", func(t *testing.T) {
		m, err := ahp.New([]string{"lake_area", "area_growth", "glacier_distance"})
		if err != nil {
			t.Fatalf("ahp.New: %v", err)
		}
		// only one of three pairs judged
		_ = m.Set("lake_area", "area_growth", 2)

		_, err = New(nil, nil, 4, nil, discardLogger()).Run(m, testTable(t))
		var malformed *ahp.MalformedMatrixError
		if !errors.As(err, &malformed) {
			t.Fatalf("expected MalformedMatrixError to propagate intact, got %v", err)
		}
	})

	t.Run("factor set mismatch", func(t *testing.T) {
		m := testMatrix(t)
		table, err := scoring.NewFactorTable([]scoring.Factor{
			{Name: "lake_area", Direction: scoring.HigherIsWorse},
			{Name: "dam_slope", Direction: scoring.HigherIsWorse},
			{Name: "glacier_distance", Direction: scoring.LowerIsWorse},
		})
		if err != nil {
			t.Fatalf("NewFactorTable: %v", err)
		}
		if err := table.Append("imja", map[string]float64{
			"lake_area": 1.3, "dam_slope": 22, "glacier_distance": 0,
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := table.Append("barun", map[string]float64{
			"lake_area": 0.4, "dam_slope": 11, "glacier_distance": 700,
		}); err != nil {
			t.Fatalf("Append: %v", err)
		}

		_, err = New(nil, nil, 4, nil, discardLogger()).Run(m, table)
		var mismatch *scoring.FactorSetMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected FactorSetMismatchError to propagate intact, got %v", err)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		table, err := scoring.NewFactorTable([]scoring.Factor{
			{Name: "lake_area", Direction: scoring.HigherIsWorse},
		})
		if err != nil {
			t.Fatalf("NewFactorTable: %v", err)
		}
		m, err := ahp.New([]string{"lake_area"})
		if err != nil {
			t.Fatalf("ahp.New: %v", err)
		}
		if _, err := New(nil, nil, 4, nil, discardLogger()).Run(m, table); err == nil {
			t.Error("expected error for empty table")
		}
	})
}

func TestRunClassCountReduction(t *testing.T) {
	// Two distinct index values cannot fill four classes; the run reduces
	// the effective class count instead of failing.
	m, err := ahp.New([]string{"lake_area"})
	if err != nil {
		t.Fatalf("ahp.New: %v", err)
	}
	table, err := scoring.NewFactorTable([]scoring.Factor{
		{Name: "lake_area", Direction: scoring.HigherIsWorse},
	})
	if err != nil {
		t.Fatalf("NewFactorTable: %v", err)
	}
	for lake, area := range map[string]float64{"a": 1, "b": 1, "c": 5, "d": 5} {
		if err := table.Append(lake, map[string]float64{"lake_area": area}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	res, err := New(nil, nil, 4, nil, discardLogger()).Run(m, table)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Breaks) != 2 {
		t.Errorf("expected 2 effective classes, got %d", len(res.Breaks))
	}
}
