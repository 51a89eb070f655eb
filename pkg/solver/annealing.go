package solver

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// defaultMaxResample bounds how often a neighbour is redrawn while
// searching for a feasible one.
const defaultMaxResample = 1000

// AnnealingParams is the cooling schedule of SimulatedAnnealing.
type AnnealingParams struct {
	// Temperature is the initial temperature.
	Temperature float64
	// Cooling multiplies the temperature after every batch of trials.
	Cooling float64
	// SearchRadius bounds the per-coordinate neighbour offset.
	SearchRadius float64
	// Repetitions is the number of trials per temperature level.
	Repetitions int
	// MaxLevels caps the number of temperature levels.
	MaxLevels int
	// MaxResample caps the redraws for a feasible neighbour.
	MaxResample int
}

// SimulatedAnnealing samples uniform neighbours within SearchRadius,
// accepts worsening moves with probability exp(-Δ/T), cools geometrically
// and stops at the first temperature level that brings no improvement.
type SimulatedAnnealing struct {
	Start  []float64
	Params AnnealingParams
	Seed   uint64
}

func (sa SimulatedAnnealing) Name() Name { return NameAnnealing }

func (sa SimulatedAnnealing) Validate(numParams int) error {
	if err := checkLen("start point", len(sa.Start), numParams); err != nil {
		return err
	}
	p := sa.Params
	if !(p.Temperature > 0) || !(p.Cooling > 0 && p.Cooling < 1) || !(p.SearchRadius > 0) || p.Repetitions < 1 {
		return core.IllegalArgument("annealing needs temperature > 0, cooling in (0, 1), searchRadius > 0 and repetitions >= 1, got %+v", p)
	}
	return nil
}

func (sa SimulatedAnnealing) search(f *objective) (point, error) {
	p := sa.Params
	maxLevels := p.MaxLevels
	if maxLevels <= 0 {
		maxLevels = math.MaxInt
	}
	maxResample := p.MaxResample
	if maxResample <= 0 {
		maxResample = defaultMaxResample
	}

	rng := newRand(sa.Seed)
	offset := distuv.Uniform{Min: -p.SearchRadius, Max: p.SearchRadius, Src: rng}

	cur := point{x: clone(sa.Start)}
	cur.f = f.value(cur.x)
	best := cur
	temperature := p.Temperature

	for level := 0; level < maxLevels && !f.stopped(); level++ {
		improved := false
		for rep := 0; rep < p.Repetitions; rep++ {
			cand, ok := feasibleNeighbour(f, cur.x, offset, maxResample)
			if !ok {
				f.log.V(logDebug).Info("No feasible neighbour found", "level", level, "attempts", maxResample)
				return best, nil
			}
			if delta := cand.f - cur.f; delta < 0 || rng.Float64() < math.Exp(-delta/temperature) {
				cur = cand
			}
			if cur.f < best.f {
				best = cur
				improved = true
			}
		}
		f.log.V(logDebug).Info("Annealing level done", "level", level, "temperature", temperature, "best", best.f)
		if !improved {
			break
		}
		temperature *= p.Cooling
	}
	return best, nil
}

// feasibleNeighbour redraws a neighbour of x until its value is finite.
func feasibleNeighbour(f *objective, x []float64, offset distuv.Uniform, attempts int) (point, bool) {
	for i := 0; i < attempts && !f.stopped(); i++ {
		cand := make([]float64, len(x))
		for j := range x {
			cand[j] = x[j] + offset.Rand()
		}
		if v := f.value(cand); !math.IsInf(v, 1) {
			return point{x: cand, f: v}, true
		}
	}
	return point{}, false
}
