package analysis

import (
	"math"
	"strconv"

	"labflow/domain/experiment"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ParameterStatistics holds descriptive statistics for one parameter,
// computed over the filtered numeric values only. Entries are never
// zero-filled: a parameter with no numeric cells has no statistics at all.
type ParameterStatistics struct {
	N        int       `json:"n"`
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Range    float64   `json:"range"`
	Variance float64   `json:"variance"` // population variance (divide by n)
	StdDev   float64   `json:"std_dev"`
	CV       float64   `json:"cv_percent"` // stdDev as % of mean, 0 when mean is 0
	Trend    float64   `json:"trend"`      // OLS slope of values against row position
	Values   []float64 `json:"values"`
}

// TrendDirection labels a trend slope for display. The thresholds are fixed
// display cutoffs, not significance tests.
func TrendDirection(trend float64) string {
	switch {
	case trend > 0.1:
		return "increasing"
	case trend < -0.1:
		return "decreasing"
	default:
		return "stable"
	}
}

// Engine computes descriptive statistics and correlations for experiment
// data tables. All methods are pure: results are recomputed on demand and
// inputs are never mutated.
type Engine struct{}

// NewEngine creates a statistics engine
func NewEngine() *Engine {
	return &Engine{}
}

// ComputeStatistics computes per-parameter descriptive statistics over the
// given rows. Cells that do not parse as finite numbers are dropped before
// any statistic is computed; parameters with no numeric cells are absent
// from the result.
func (e *Engine) ComputeStatistics(params []experiment.Parameter, rows []experiment.DataRow) map[string]*ParameterStatistics {
	result := make(map[string]*ParameterStatistics, len(params))

	for _, p := range params {
		if p.Name == "" {
			continue
		}
		values := extractValues(rows, p.Name)
		if len(values) == 0 {
			continue
		}
		result[p.Name] = summarize(values)
	}

	return result
}

// summarize computes the full statistics block for a non-empty value series
func summarize(values []float64) *ParameterStatistics {
	n := len(values)

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	variance, _ := stats.PopulationVariance(values)
	stdDev := math.Sqrt(variance)

	cv := 0.0
	if mean != 0 {
		cv = stdDev / mean * 100
	}

	return &ParameterStatistics{
		N:        n,
		Mean:     mean,
		Median:   median,
		Min:      min,
		Max:      max,
		Range:    max - min,
		Variance: variance,
		StdDev:   stdDev,
		CV:       cv,
		Trend:    trendSlope(values),
		Values:   values,
	}
}

// trendSlope fits an ordinary least-squares line of values against their
// 0-based position and returns the slope. A series too short to have index
// variance has no trend.
func trendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, values, nil, false)
	return slope
}

// extractValues collects the parameter's cells across rows in row order,
// keeping only cells that parse as finite numbers
func extractValues(rows []experiment.DataRow, name string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		raw, ok := row[name]
		if !ok {
			continue
		}
		v, ok := parseCell(raw)
		if !ok {
			continue
		}
		values = append(values, v)
	}
	return values
}

// parseCell converts a raw cell to a finite float64. Cells arrive as JSON
// numbers or strings; anything else (nil, bools, non-numeric text) is
// excluded rather than treated as zero.
func parseCell(raw interface{}) (float64, bool) {
	var v float64
	switch cell := raw.(type) {
	case float64:
		v = cell
	case float32:
		v = float64(cell)
	case int:
		v = float64(cell)
	case int64:
		v = float64(cell)
	case string:
		parsed, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
