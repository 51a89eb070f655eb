package solver

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// NelderMeadParams holds the reflection, expansion, contraction and shrink
// coefficients.
type NelderMeadParams struct {
	Reflection  float64
	Expansion   float64
	Contraction float64
	Shrink      float64
}

// DefaultNelderMeadParams returns the standard coefficients (1, 2, 0.5, 0.5).
func DefaultNelderMeadParams() NelderMeadParams {
	return NelderMeadParams{Reflection: 1, Expansion: 2, Contraction: 0.5, Shrink: 0.5}
}

// NelderMead is the downhill simplex method. It stops once the population
// standard deviation of the vertex values falls below SDMin, or after
// MaxIterations. A zero Params uses DefaultNelderMeadParams.
type NelderMead struct {
	Simplex       [][]float64
	SDMin         float64
	Params        NelderMeadParams
	MaxIterations int
}

func (nm NelderMead) Name() Name { return NameNelderMead }

func (nm NelderMead) Validate(numParams int) error {
	if len(nm.Simplex) != numParams+1 {
		return core.IllegalArgument("simplex has %d vertices, want %d", len(nm.Simplex), numParams+1)
	}
	for i, v := range nm.Simplex {
		if len(v) != numParams {
			return core.IllegalArgument("simplex vertex %d has %d coordinates, want %d", i, len(v), numParams)
		}
	}
	if nm.SDMin < 0 {
		return core.IllegalArgument("sdMin must be non-negative, got %v", nm.SDMin)
	}
	return nil
}

// simplex is one generation of the search. It is sorted by value and never
// modified; every step builds a new one.
type simplex struct {
	vertices []point
}

func newSimplex(vertices []point) simplex {
	sorted := append([]point(nil), vertices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].f < sorted[j].f
	})
	return simplex{vertices: sorted}
}

func (s simplex) best() point  { return s.vertices[0] }
func (s simplex) worst() point { return s.vertices[len(s.vertices)-1] }

// spread is the population standard deviation of the vertex values, +Inf
// while any vertex is infeasible.
func (s simplex) spread() float64 {
	values := make([]float64, len(s.vertices))
	for i, v := range s.vertices {
		if math.IsInf(v.f, 0) {
			return math.Inf(1)
		}
		values[i] = v.f
	}
	return popStdDev(values)
}

// replaceWorst returns a new simplex with the worst vertex swapped for p.
func (s simplex) replaceWorst(p point) simplex {
	next := append([]point(nil), s.vertices[:len(s.vertices)-1]...)
	return newSimplex(append(next, p))
}

func (nm NelderMead) search(f *objective) (point, error) {
	params := nm.Params
	if params == (NelderMeadParams{}) {
		params = DefaultNelderMeadParams()
	}
	maxIter := nm.MaxIterations
	if maxIter <= 0 {
		maxIter = 1000
	}

	initial := make([]point, len(nm.Simplex))
	for i, v := range nm.Simplex {
		initial[i] = point{x: clone(v), f: f.value(v)}
	}
	s := newSimplex(initial)

	for iter := 0; iter < maxIter && !f.stopped(); iter++ {
		if s.spread() < nm.SDMin {
			f.log.V(logDebug).Info("Simplex converged", "iteration", iter, "value", s.best().f)
			break
		}
		s = nm.step(f, s, params)
	}
	return s.best(), nil
}

// step performs one reflect / expand / contract / shrink transition.
func (nm NelderMead) step(f *objective, s simplex, c NelderMeadParams) simplex {
	n := len(s.vertices) - 1
	dim := len(s.vertices[0].x)

	centroid := make([]float64, dim)
	for _, v := range s.vertices[:n] {
		floats.Add(centroid, v.x)
	}
	floats.Scale(1/float64(n), centroid)

	worst := s.worst()
	toWorst := floats.SubTo(make([]float64, dim), worst.x, centroid)

	// xr = c - α(w - c)
	reflected := floats.AddScaledTo(make([]float64, dim), centroid, -c.Reflection, toWorst)
	fr := f.value(reflected)

	switch {
	case fr < s.best().f:
		// xe = c + γ(xr - c)
		expanded := floats.AddScaledTo(make([]float64, dim), centroid, -c.Reflection*c.Expansion, toWorst)
		if fe := f.value(expanded); fe < fr {
			return s.replaceWorst(point{x: expanded, f: fe})
		}
		return s.replaceWorst(point{x: reflected, f: fr})
	case fr < s.vertices[n-1].f:
		return s.replaceWorst(point{x: reflected, f: fr})
	}

	// xc = c + β(w - c)
	contracted := floats.AddScaledTo(make([]float64, dim), centroid, c.Contraction, toWorst)
	if fc := f.value(contracted); fc < worst.f {
		return s.replaceWorst(point{x: contracted, f: fc})
	}

	// shrink every vertex towards the best one
	best := s.best()
	shrunk := make([]point, 0, len(s.vertices))
	shrunk = append(shrunk, best)
	for _, v := range s.vertices[1:] {
		diff := floats.SubTo(make([]float64, dim), v.x, best.x)
		x := floats.AddScaledTo(make([]float64, dim), best.x, c.Shrink, diff)
		shrunk = append(shrunk, point{x: x, f: f.value(x)})
	}
	return newSimplex(shrunk)
}

// popStdDev is the population standard deviation of x.
func popStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	_, variance := stat.MeanVariance(x, nil)
	n := float64(len(x))
	return math.Sqrt(variance * (n - 1) / n)
}
