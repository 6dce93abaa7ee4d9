// Package jenks implements Fisher–Jenks natural-breaks classification: the
// variance-minimizing partition of a one-dimensional value distribution into
// k ordered classes.
package jenks

import (
	"fmt"
	"math"
	"sort"
)

// Break is one ordered class interval on the index scale. The lowest class's
// Lower is the minimum observed value; the highest class's Upper is the
// maximum.
type Break struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Classification is the optimal partition for a value set.
type Classification struct {
	// Breaks in ascending order. len(Breaks) is the effective class count,
	// which may be below the requested k when the data has fewer distinct
	// values; the remaining classes are simply empty.
	Breaks []Break

	// Classes assigns each input value (original order) the index of its
	// break interval.
	Classes []int

	// GoodnessOfFit is 1 - SSW/SST, the fraction of total squared deviation
	// explained by the partition.
	GoodnessOfFit float64
}

// Classify partitions values into at most k classes minimizing the total
// within-class sum of squared deviations. Equal values always land in the
// same class; ties between equally optimal partitions resolve to the one
// found first over ascending boundary positions.
func Classify(values []float64, k int) (*Classification, error) {
	if k < 1 {
		return nil, fmt.Errorf("class count must be >= 1, got %d", k)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to classify")
	}

	// Collapse to distinct sorted values with multiplicities so duplicates
	// can never straddle a class boundary.
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var vals []float64
	var counts []float64
	for _, v := range sorted {
		if len(vals) > 0 && v == vals[len(vals)-1] {
			counts[len(counts)-1]++
			continue
		}
		vals = append(vals, v)
		counts = append(counts, 1)
	}

	d := len(vals)
	if k > d {
		k = d
	}

	// Prefix sums over the weighted distinct sequence give O(1) segment SSE.
	weight := make([]float64, d+1)
	sum := make([]float64, d+1)
	sumSq := make([]float64, d+1)
	for i, v := range vals {
		weight[i+1] = weight[i] + counts[i]
		sum[i+1] = sum[i] + v*counts[i]
		sumSq[i+1] = sumSq[i] + v*v*counts[i]
	}
	sse := func(i, j int) float64 { // segment [i, j] inclusive, 0-based
		w := weight[j+1] - weight[i]
		s := sum[j+1] - sum[i]
		return (sumSq[j+1] - sumSq[i]) - s*s/w
	}

	// cost[c][i]: minimal SSW placing the first i distinct values into c
	// classes. cut[c][i] records where the last class starts.
	const inf = math.MaxFloat64
	cost := make([][]float64, k+1)
	cut := make([][]int, k+1)
	for c := range cost {
		cost[c] = make([]float64, d+1)
		cut[c] = make([]int, d+1)
		for i := range cost[c] {
			cost[c][i] = inf
		}
	}
	cost[0][0] = 0
	for c := 1; c <= k; c++ {
		for i := c; i <= d; i++ {
			for j := c - 1; j < i; j++ {
				if cost[c-1][j] == inf {
					continue
				}
				candidate := cost[c-1][j] + sse(j, i-1)
				if candidate < cost[c][i] {
					cost[c][i] = candidate
					cut[c][i] = j
				}
			}
		}
	}

	// Walk the cuts back into ascending class intervals.
	starts := make([]int, k)
	end := d
	for c := k; c >= 1; c-- {
		starts[c-1] = cut[c][end]
		end = cut[c][end]
	}
	breaks := make([]Break, k)
	classOf := make([]int, d)
	for c := 0; c < k; c++ {
		hi := d - 1
		if c < k-1 {
			hi = starts[c+1] - 1
		}
		breaks[c] = Break{Lower: vals[starts[c]], Upper: vals[hi]}
		for i := starts[c]; i <= hi; i++ {
			classOf[i] = c
		}
	}

	classes := make([]int, len(values))
	for i, v := range values {
		classes[i] = classOf[sort.SearchFloat64s(vals, v)]
	}

	ssw := cost[k][d]
	sst := sse(0, d-1)
	gof := 1.0
	if sst > 0 {
		gof = 1 - ssw/sst
	}

	return &Classification{
		Breaks:        breaks,
		Classes:       classes,
		GoodnessOfFit: gof,
	}, nil
}
