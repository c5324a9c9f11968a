package analysis

import (
	"math"

	"labflow/domain/experiment"
)

// Strength buckets for correlation display
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
)

// Correlation is a pairwise Pearson correlation between two parameters.
// One entry is stored per unordered pair, keyed "A-B" in parameter order;
// lookups for a specific pair must check both key orders.
type Correlation struct {
	Param1   string  `json:"param1"`
	Param2   string  `json:"param2"`
	Value    float64 `json:"value"`
	Strength string  `json:"strength"`
}

// Key returns the map key for this pair
func (c *Correlation) Key() string {
	return c.Param1 + "-" + c.Param2
}

// ComputeCorrelations computes Pearson correlations for every unordered
// pair of parameters that both have statistics. Pairing is positional over
// each parameter's own filtered values, truncated to the shorter series
// (legacy semantics; see ClassifyStrength and PairedValues for the pieces
// a corrected caller would combine instead).
//
// Pairs with fewer than 2 overlapping points are omitted entirely so that
// "insufficient data" stays distinguishable from "no relationship".
func (e *Engine) ComputeCorrelations(params []experiment.Parameter, statistics map[string]*ParameterStatistics) map[string]*Correlation {
	result := make(map[string]*Correlation)

	for i := 0; i < len(params); i++ {
		for j := i + 1; j < len(params); j++ {
			s1 := statistics[params[i].Name]
			s2 := statistics[params[j].Name]
			if s1 == nil || s2 == nil {
				continue
			}

			n := len(s1.Values)
			if len(s2.Values) < n {
				n = len(s2.Values)
			}
			if n < 2 {
				continue
			}

			r := pearson(s1.Values[:n], s2.Values[:n], n, s1.Mean, s2.Mean, s1.StdDev, s2.StdDev)

			c := &Correlation{
				Param1:   params[i].Name,
				Param2:   params[j].Name,
				Value:    r,
				Strength: ClassifyStrength(r),
			}
			result[c.Key()] = c
		}
	}

	return result
}

// pearson computes r over the first n elements using each series' own
// precomputed mean and stdDev. A constant series (stdDev 0) reports zero.
func pearson(v1, v2 []float64, n int, mean1, mean2, sd1, sd2 float64) float64 {
	if sd1 == 0 || sd2 == 0 {
		return 0
	}
	sum := 0.0
	for k := 0; k < n; k++ {
		sum += (v1[k] - mean1) * (v2[k] - mean2)
	}
	return sum / (float64(n) * sd1 * sd2)
}

// ClassifyStrength buckets |r| for display
func ClassifyStrength(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs > 0.7:
		return StrengthStrong
	case abs > 0.4:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// PairedValues jointly filters two parameters' cells, keeping only rows
// where both parse numerically. This is the corrected pairing that avoids
// misaligning series with different missing-value patterns; the API keeps
// the legacy truncation above for parity with historical results.
func PairedValues(rows []experiment.DataRow, param1, param2 string) ([]float64, []float64) {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, row := range rows {
		x, okX := parseCell(row[param1])
		y, okY := parseCell(row[param2])
		if !okX || !okY {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}
