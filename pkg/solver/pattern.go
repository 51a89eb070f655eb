package solver

import (
	"math"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// PatternSearch is the Hooke-Jeeves method: an exploratory move perturbs
// each coordinate by ±Delta, a pattern move extrapolates along the last
// successful direction, and Delta halves whenever no move improves. The
// search ends once Delta < DeltaMin.
type PatternSearch struct {
	Start         []float64
	Delta         float64
	DeltaMin      float64
	MaxIterations int
}

func (p PatternSearch) Name() Name { return NamePattern }

func (p PatternSearch) Validate(numParams int) error {
	if err := checkLen("start point", len(p.Start), numParams); err != nil {
		return err
	}
	if !(p.Delta > 0) || !(p.DeltaMin > 0) || p.DeltaMin > p.Delta {
		return core.IllegalArgument("pattern search needs 0 < deltaMin <= delta, got %v and %v", p.DeltaMin, p.Delta)
	}
	return nil
}

func (p PatternSearch) search(f *objective) (point, error) {
	maxIter := p.MaxIterations
	if maxIter <= 0 {
		maxIter = math.MaxInt
	}

	base := point{x: clone(p.Start)}
	base.f = f.value(base.x)
	delta := p.Delta

	for iter := 0; delta >= p.DeltaMin && iter < maxIter && !f.stopped(); iter++ {
		cand := explore(f, base, delta)
		if !(cand.f < base.f) {
			delta /= 2
			continue
		}
		// pattern moves while they keep improving
		for cand.f < base.f && iter < maxIter && !f.stopped() {
			next := make([]float64, len(cand.x))
			for i := range next {
				next[i] = 2*cand.x[i] - base.x[i]
			}
			base = cand
			cand = explore(f, point{x: next, f: f.value(next)}, delta)
			iter++
		}
		f.log.V(logDebug).Info("Pattern search step", "iteration", iter, "delta", delta, "value", base.f)
	}
	return base, nil
}

// explore tries ±delta on every coordinate in turn, keeping each improvement.
func explore(f *objective, from point, delta float64) point {
	cur := point{x: clone(from.x), f: from.f}
	for i := range cur.x {
		orig := cur.x[i]
		improved := false
		for _, step := range []float64{delta, -delta} {
			cur.x[i] = orig + step
			if v := f.value(cur.x); v < cur.f {
				cur.f = v
				improved = true
				break
			}
		}
		if !improved {
			cur.x[i] = orig
		}
	}
	return cur
}
