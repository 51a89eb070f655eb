package solver

import (
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// minPopulation is the smallest population rand/1 mutation can draw from.
const minPopulation = 5

// DifferentialEvolution is the rand/1/bin scheme over a box. The population
// holds PopSize members per parameter. It stops once the standard deviation
// of the population values is within Tol times their mean magnitude, and
// optionally polishes the best member with a Nelder-Mead descent.
type DifferentialEvolution struct {
	Bounds        [][2]float64
	PopSize       int
	Mutation      float64
	Crossover     float64
	MaxIterations int
	Tol           float64
	Polish        bool
	Seed          uint64
}

func (de DifferentialEvolution) Name() Name { return NameDifferentialEvolution }

func (de DifferentialEvolution) Validate(numParams int) error {
	if err := checkRanges(de.Bounds, numParams); err != nil {
		return err
	}
	if de.PopSize < 1 || de.MaxIterations < 1 {
		return core.IllegalArgument("differential evolution needs popSize >= 1 and maxIterations >= 1, got %d and %d",
			de.PopSize, de.MaxIterations)
	}
	if !(de.Mutation > 0 && de.Mutation <= 2) || de.Crossover < 0 || de.Crossover > 1 {
		return core.IllegalArgument("mutation must lie in (0, 2] and crossover in [0, 1], got %v and %v",
			de.Mutation, de.Crossover)
	}
	return nil
}

func (de DifferentialEvolution) search(f *objective) (point, error) {
	rng := newRand(de.Seed)
	dim := len(de.Bounds)
	size := max(de.PopSize*dim, minPopulation)

	population := make([]point, size)
	for i := range population {
		x := uniformIn(rng, de.Bounds)
		population[i] = point{x: x, f: f.value(x)}
	}

	for gen := 0; gen < de.MaxIterations && !f.stopped(); gen++ {
		for i := range population {
			a, b, c := distinctThree(rng.IntN, size, i)
			forced := rng.IntN(dim)
			trial := clone(population[i].x)
			for j := range trial {
				if j == forced || rng.Float64() < de.Crossover {
					v := population[a].x[j] + de.Mutation*(population[b].x[j]-population[c].x[j])
					trial[j] = math.Min(math.Max(v, de.Bounds[j][0]), de.Bounds[j][1])
				}
			}
			if v := f.value(trial); v <= population[i].f {
				population[i] = point{x: trial, f: v}
			}
		}
		if converged(population, de.Tol) {
			f.log.V(logDebug).Info("Population converged", "generation", gen)
			break
		}
	}

	best := population[0]
	for _, p := range population[1:] {
		if p.f < best.f {
			best = p
		}
	}
	if de.Polish && !f.stopped() {
		if polished := localSearch(f, best.x, &optimize.NelderMead{}); polished.f < best.f {
			best = polished
		}
	}
	return best, nil
}

// distinctThree draws three indices below n that differ from each other
// and from exclude.
func distinctThree(intN func(int) int, n, exclude int) (int, int, int) {
	pick := func(taken ...int) int {
		for {
			k := intN(n)
			clash := false
			for _, t := range taken {
				if k == t {
					clash = true
					break
				}
			}
			if !clash {
				return k
			}
		}
	}
	a := pick(exclude)
	b := pick(exclude, a)
	c := pick(exclude, a, b)
	return a, b, c
}

func converged(population []point, tol float64) bool {
	values := make([]float64, len(population))
	for i, p := range population {
		if math.IsInf(p.f, 0) {
			return false
		}
		values[i] = p.f
	}
	return popStdDev(values) <= tol*math.Abs(stat.Mean(values, nil))
}
