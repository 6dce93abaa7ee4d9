package scoring

// Normalizer rescales a raw factor table onto the common [0,1] scale.
// Implementations must not mutate the input table.
type Normalizer interface {
	Normalize(t *FactorTable) (*NormalizedTable, []DegenerateColumnNotice, error)
}

// MinMaxNormalizer is the default method: per-column min–max rescale with
// direction inversion for lower-is-worse factors. A zero-variance column
// maps every lake to the neutral 0.5 and is reported as a notice rather
// than failing the run.
type MinMaxNormalizer struct{}

func (MinMaxNormalizer) Normalize(t *FactorTable) (*NormalizedTable, []DegenerateColumnNotice, error) {
	out := &NormalizedTable{
		Factors: append([]Factor(nil), t.Factors...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = Row{Lake: r.Lake, Values: make(map[string]float64, len(t.Factors))}
	}

	if len(t.Rows) == 0 {
		return out, nil, nil
	}

	var notices []DegenerateColumnNotice
	for _, f := range t.Factors {
		min, max := columnRange(t.Rows, f.Name)

		if min == max {
			for i := range out.Rows {
				out.Rows[i].Values[f.Name] = 0.5
			}
			notices = append(notices, DegenerateColumnNotice{Factor: f.Name, Value: min})
			continue
		}

		span := max - min
		for i, r := range t.Rows {
			v := (r.Values[f.Name] - min) / span
			if f.Direction == LowerIsWorse {
				v = 1 - v
			}
			out.Rows[i].Values[f.Name] = clamp01(v)
		}
	}
	return out, notices, nil
}

func columnRange(rows []Row, factor string) (min, max float64) {
	min = rows[0].Values[factor]
	max = min
	for _, r := range rows[1:] {
		v := r.Values[factor]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
