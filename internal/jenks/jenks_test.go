package jenks

import (
	"math"
	"testing"
)

func TestClassifyThreeClusters(t *testing.T) {
	values := []float64{1, 2, 3, 10, 11, 12, 20, 21, 22}
	c, err := Classify(values, 3)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if len(c.Breaks) != 3 {
		t.Fatalf("expected 3 breaks, got %d", len(c.Breaks))
	}
	expected := []Break{
		{Lower: 1, Upper: 3},
		{Lower: 10, Upper: 12},
		{Lower: 20, Upper: 22},
	}
	for i, b := range c.Breaks {
		if b != expected[i] {
			t.Errorf("break %d = %+v, want %+v", i, b, expected[i])
		}
	}
	wantClasses := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	for i, cls := range c.Classes {
		if cls != wantClasses[i] {
			t.Errorf("value %f assigned class %d, want %d", values[i], cls, wantClasses[i])
		}
	}
	if c.GoodnessOfFit < 0.95 {
		t.Errorf("well-separated clusters should explain nearly all variance, GVF=%f", c.GoodnessOfFit)
	}
}

func TestClassifyUnsortedInputKeepsOrder(t *testing.T) {
	values := []float64{21, 2, 11, 1, 22, 12, 3, 20, 10}
	c, err := Classify(values, 3)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	wantClasses := []int{2, 0, 1, 0, 2, 1, 0, 2, 1}
	for i, cls := range c.Classes {
		if cls != wantClasses[i] {
			t.Errorf("value %f assigned class %d, want %d", values[i], cls, wantClasses[i])
		}
	}
}

func TestClassifyBreaksMonotonic(t *testing.T) {
	values := []float64{0.02, 0.05, 0.11, 0.13, 0.24, 0.37, 0.41, 0.48, 0.55, 0.63, 0.71, 0.86, 0.94}
	c, err := Classify(values, 4)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(c.Breaks) != 4 {
		t.Fatalf("expected 4 breaks, got %d", len(c.Breaks))
	}
	if c.Breaks[0].Lower != 0.02 {
		t.Errorf("lowest class must start at the minimum, got %f", c.Breaks[0].Lower)
	}
	if c.Breaks[3].Upper != 0.94 {
		t.Errorf("highest class must end at the maximum, got %f", c.Breaks[3].Upper)
	}
	for i := 1; i < len(c.Breaks); i++ {
		if c.Breaks[i].Lower <= c.Breaks[i-1].Upper {
			t.Errorf("breaks not strictly increasing: class %d upper %f, class %d lower %f",
				i-1, c.Breaks[i-1].Upper, i, c.Breaks[i].Lower)
		}
	}
	for i, cls := range c.Classes {
		b := c.Breaks[cls]
		if values[i] < b.Lower || values[i] > b.Upper {
			t.Errorf("value %f outside its class interval [%f, %f]", values[i], b.Lower, b.Upper)
		}
	}
}

func TestClassifyDuplicatesStayTogether(t *testing.T) {
	values := []float64{1, 1, 1, 1, 5, 5, 5, 9, 9}
	c, err := Classify(values, 3)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	seen := map[float64]int{}
	for i, v := range values {
		if cls, ok := seen[v]; ok && cls != c.Classes[i] {
			t.Errorf("equal values %f split across classes %d and %d", v, cls, c.Classes[i])
		}
		seen[v] = c.Classes[i]
	}
}

func TestClassifyFewerDistinctThanK(t *testing.T) {
	values := []float64{3, 3, 7, 7, 3}
	c, err := Classify(values, 4)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(c.Breaks) != 2 {
		t.Errorf("expected effective class count 2, got %d", len(c.Breaks))
	}
}

func TestClassifySingleValue(t *testing.T) {
	c, err := Classify([]float64{0.5}, 4)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(c.Breaks) != 1 {
		t.Fatalf("expected 1 break, got %d", len(c.Breaks))
	}
	if c.Breaks[0].Lower != 0.5 || c.Breaks[0].Upper != 0.5 {
		t.Errorf("break = %+v, want [0.5, 0.5]", c.Breaks[0])
	}
	if c.Classes[0] != 0 {
		t.Errorf("class = %d, want 0", c.Classes[0])
	}
}

func TestClassifyAllEqual(t *testing.T) {
	c, err := Classify([]float64{2, 2, 2, 2}, 3)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(c.Breaks) != 1 {
		t.Errorf("expected 1 effective class, got %d", len(c.Breaks))
	}
	if c.GoodnessOfFit != 1.0 {
		t.Errorf("zero-variance data should report GVF 1.0, got %f", c.GoodnessOfFit)
	}
}

func TestClassifyMinimizesVariance(t *testing.T) {
	// With k=2, splitting {1,2} | {8,9} gives SSW 1.0; any other boundary is
	// strictly worse.
	values := []float64{1, 2, 8, 9}
	c, err := Classify(values, 2)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if c.Breaks[0].Upper != 2 || c.Breaks[1].Lower != 8 {
		t.Errorf("expected split between 2 and 8, got %+v", c.Breaks)
	}
	// SSW = 0.5 + 0.5 = 1.0, SST = 2*(3.5^2) + 2*(3.5^2)... via GVF instead:
	sst := 0.0
	mean := 5.0
	for _, v := range values {
		sst += (v - mean) * (v - mean)
	}
	wantGVF := 1 - 1.0/sst
	if math.Abs(c.GoodnessOfFit-wantGVF) > 1e-9 {
		t.Errorf("GVF = %f, want %f", c.GoodnessOfFit, wantGVF)
	}
}

func TestClassifyRejectsBadInput(t *testing.T) {
	if _, err := Classify(nil, 4); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Classify([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for k < 1")
	}
}
