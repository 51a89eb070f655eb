package solver

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// BasinHopping alternates a uniform random perturbation with a local
// Nelder-Mead descent and accepts the new local minimum with the Metropolis
// criterion at a fixed Temperature.
type BasinHopping struct {
	Start       []float64
	Iterations  int
	StepSize    float64
	Temperature float64
	Seed        uint64
}

func (b BasinHopping) Name() Name { return NameBasinHopping }

func (b BasinHopping) Validate(numParams int) error {
	if err := checkLen("start point", len(b.Start), numParams); err != nil {
		return err
	}
	if b.Iterations < 1 || !(b.StepSize > 0) || !(b.Temperature > 0) {
		return core.IllegalArgument("basin hopping needs iterations >= 1, stepSize > 0 and temperature > 0, got %d, %v, %v",
			b.Iterations, b.StepSize, b.Temperature)
	}
	return nil
}

func (b BasinHopping) search(f *objective) (point, error) {
	rng := newRand(b.Seed)
	step := distuv.Uniform{Min: -b.StepSize, Max: b.StepSize, Src: rng}

	cur := localSearch(f, b.Start, &optimize.NelderMead{})
	best := cur

	for i := 0; i < b.Iterations && !f.stopped(); i++ {
		trial := make([]float64, len(cur.x))
		for j := range trial {
			trial[j] = cur.x[j] + step.Rand()
		}
		next := localSearch(f, trial, &optimize.NelderMead{})

		if next.f < cur.f || (!math.IsInf(next.f, 1) && rng.Float64() < math.Exp(-(next.f-cur.f)/b.Temperature)) {
			cur = next
		}
		if cur.f < best.f {
			best = cur
			f.log.V(logDebug).Info("New basin", "iteration", i, "value", best.f)
		}
	}
	return best, nil
}
