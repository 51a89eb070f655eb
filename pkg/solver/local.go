package solver

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// localEvaluations caps the evaluations of one local descent.
const localEvaluations = 2000

// localSearch runs a gonum local method from x0 over the filtered
// objective. Failures of the local method are not errors: the search falls
// back to the best point it has seen, or x0.
func localSearch(f *objective, x0 []float64, method optimize.Method) point {
	start := point{x: clone(x0), f: f.value(x0)}
	if math.IsInf(start.f, 1) || f.stopped() {
		return start
	}

	problem := optimize.Problem{
		Func: f.value,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f.value, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})
		},
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-10,
			Iterations: 50,
		},
		FuncEvaluations: localEvaluations,
	}

	result, err := optimize.Minimize(problem, start.x, settings, method)
	if err != nil {
		f.log.V(logTrace).Info("Local search stopped", "reason", err.Error())
	}
	if result == nil || !(result.F < start.f) || math.IsNaN(result.F) {
		return start
	}
	return point{x: clone(result.X), f: result.F}
}

// BFGS is a quasi-Newton local search from Start with central finite
// difference gradients of the filtered objective.
type BFGS struct {
	Start         []float64
	MaxIterations int
}

func (b BFGS) Name() Name { return NameBFGS }

func (b BFGS) Validate(numParams int) error {
	return checkLen("start point", len(b.Start), numParams)
}

func (b BFGS) search(f *objective) (point, error) {
	best := localSearch(f, b.Start, &optimize.BFGS{})
	// restart from the previous minimum while that still improves
	for i := 1; i < max(1, b.MaxIterations/500) && !f.stopped(); i++ {
		next := localSearch(f, best.x, &optimize.BFGS{})
		if !(next.f < best.f) {
			break
		}
		best = next
	}
	return best, nil
}
