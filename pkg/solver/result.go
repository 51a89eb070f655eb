package solver

import (
	"encoding/json"
	"math"
	"time"
)

// OptimizationResult records the outcome of one optimizer run. It is never
// mutated after Run returns.
type OptimizationResult struct {
	// Heuristic that produced the result.
	Heuristic Name `json:"heuristic"`
	// Bound is "standard" or "enhanced".
	Bound string `json:"bound"`
	// Params is the best parameter vector, nil if no point was feasible.
	Params []float64 `json:"params"`
	// Value is the bound at Params, +Inf if no point was feasible.
	Value float64 `json:"value"`
	// Feasible reports whether Value is finite.
	Feasible bool `json:"feasible"`
	// Evaluations counts calls to the bound function.
	Evaluations int `json:"evaluations"`
	// Infeasible counts evaluations mapped to +Inf.
	Infeasible int `json:"infeasible"`
	// Warnings holds diagnostics such as a grid minimizer on a range edge.
	Warnings []string `json:"warnings,omitempty"`
	// Duration is the wall time of the search.
	Duration time.Duration `json:"duration"`
}

// MarshalJSON renders a non-finite Value as null, which JSON cannot carry.
func (r OptimizationResult) MarshalJSON() ([]byte, error) {
	type plain OptimizationResult
	out := struct {
		plain
		Value    *float64 `json:"value"`
		Duration string   `json:"duration"`
	}{
		plain:    plain(r),
		Duration: r.Duration.String(),
	}
	if !math.IsInf(r.Value, 0) && !math.IsNaN(r.Value) {
		v := r.Value
		out.Value = &v
	}
	return json.Marshal(out)
}
