package montecarlo

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/llm-d/snc-bounds/internal/results"
)

// Report is the outcome of a Monte-Carlo study.
type Report struct {
	Table   *results.Table `json:"-"`
	Summary Summary        `json:"summary"`
}

// Summary aggregates the value columns of a study.
type Summary struct {
	Scenario     string                  `json:"scenario,omitempty"`
	Trials       int                     `json:"trials"`
	Columns      []results.ColumnSummary `json:"columns"`
	Improvements []Improvement           `json:"improvements,omitempty"`
}

// Improvement compares a heuristic's standard bound with its enhanced bound
// on the trials where both are feasible. Ratio is standard/enhanced, so a
// ratio above one means the enhanced bound is tighter.
type Improvement struct {
	Heuristic string `json:"heuristic"`
	// Compared counts trials with both bounds feasible.
	Compared int `json:"compared"`
	// MeanRatio and MedianRatio are zero when nothing was compared.
	MeanRatio   float64 `json:"meanRatio"`
	MedianRatio float64 `json:"medianRatio"`
	// ImprovedShare is the fraction of compared trials with ratio > 1.
	ImprovedShare float64 `json:"improvedShare"`
}

func (r *Runner) summarize(table *results.Table) Summary {
	s := Summary{
		Scenario: r.scenario.Name,
		Trials:   len(table.Rows),
		Columns:  table.Summarize(results.StandardAggregations),
	}
	for _, name := range table.ValueNames {
		if strings.HasSuffix(name, EnhancedSuffix) {
			continue
		}
		standard, _ := table.Column(name)
		enhanced, ok := table.Column(name + EnhancedSuffix)
		if !ok {
			continue
		}
		s.Improvements = append(s.Improvements, CompareBounds(name, standard, enhanced))
	}
	return s
}

// CompareBounds computes the improvement of enhanced over standard values
// paired by index.
func CompareBounds(heuristic string, standard, enhanced []float64) Improvement {
	ratios := make([]float64, 0, len(standard))
	improved := 0
	for i := range standard {
		if i >= len(enhanced) || !finitePositive(standard[i]) || !finitePositive(enhanced[i]) {
			continue
		}
		ratio := standard[i] / enhanced[i]
		ratios = append(ratios, ratio)
		if ratio > 1 {
			improved++
		}
	}

	imp := Improvement{Heuristic: heuristic, Compared: len(ratios)}
	if len(ratios) == 0 {
		return imp
	}
	sorted := results.Finite(ratios)
	imp.MeanRatio = stat.Mean(sorted, nil)
	imp.MedianRatio = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	imp.ImprovedShare = float64(improved) / float64(len(ratios))
	return imp
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
