package solver

import (
	"math"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// maxGridPoints caps the size of a Cartesian grid.
const maxGridPoints = 50_000_000

// GridSearch evaluates every point of the Cartesian product of the ranges
// at step Delta.
type GridSearch struct {
	Bounds [][2]float64
	Delta  float64
}

func (g GridSearch) Name() Name { return NameGrid }

func (g GridSearch) Validate(numParams int) error {
	if err := checkRanges(g.Bounds, numParams); err != nil {
		return err
	}
	if !(g.Delta > 0) || math.IsInf(g.Delta, 1) {
		return core.IllegalArgument("grid step must be positive and finite, got %v", g.Delta)
	}
	total := 1.0
	for _, r := range g.Bounds {
		total *= float64(axisLen(r, g.Delta))
	}
	if total > maxGridPoints {
		return core.IllegalArgument("grid has %.0f points, at most %d allowed", total, maxGridPoints)
	}
	return nil
}

func axisLen(r [2]float64, delta float64) int {
	return int(math.Floor((r[1]-r[0])/delta+1e-9)) + 1
}

func axis(r [2]float64, delta float64) []float64 {
	out := make([]float64, axisLen(r, delta))
	for i := range out {
		out[i] = r[0] + float64(i)*delta
	}
	return out
}

func (g GridSearch) search(f *objective) (point, error) {
	axes := make([][]float64, len(g.Bounds))
	for i, r := range g.Bounds {
		axes[i] = axis(r, g.Delta)
	}

	idx := make([]int, len(axes))
	x := make([]float64, len(axes))
	best := point{f: math.Inf(1)}
	var bestIdx []int

	for {
		for i := range x {
			x[i] = axes[i][idx[i]]
		}
		if v := f.value(x); v < best.f {
			best = point{x: clone(x), f: v}
			bestIdx = append(bestIdx[:0], idx...)
		}
		if f.stopped() || !advance(idx, axes) {
			break
		}
	}

	if bestIdx == nil {
		return best, nil
	}
	for i, k := range bestIdx {
		if len(axes[i]) > 1 && (k == 0 || k == len(axes[i])-1) {
			f.warn("Grid minimizer lies on a range boundary, widen the range",
				"param", i, "value", axes[i][k])
		}
	}
	return best, nil
}

// advance moves idx to the next grid point, odometer style. It returns false
// after the last point.
func advance(idx []int, axes [][]float64) bool {
	for i := range idx {
		idx[i]++
		if idx[i] < len(axes[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}
