package solver

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/llm-d/snc-bounds/pkg/core"
)

const (
	visitTailLimit      = 1e8
	visitMinBound       = 1e-10
	defaultRestartRatio = 2e-5
)

// DualAnnealing is generalized simulated annealing with a Tsallis visiting
// distribution, generalized Metropolis acceptance and an optional local
// Nelder-Mead descent whenever the best point improves.
type DualAnnealing struct {
	Bounds        [][2]float64
	MaxIterations int
	// InitialTemp is the starting temperature of the schedule
	// T(t) = T0 (2^(qv-1) - 1) / ((1+t)^(qv-1) - 1).
	InitialTemp float64
	// RestartRatio restarts from a random point once T < T0*RestartRatio.
	RestartRatio float64
	// Visit is the visiting parameter qv in (1, 3].
	Visit float64
	// Accept is the acceptance parameter qa, typically negative.
	Accept      float64
	LocalSearch bool
	Seed        uint64
}

func (da DualAnnealing) Name() Name { return NameDualAnnealing }

func (da DualAnnealing) Validate(numParams int) error {
	if err := checkRanges(da.Bounds, numParams); err != nil {
		return err
	}
	for i, r := range da.Bounds {
		if !(r[1] > r[0]) {
			return core.IllegalArgument("dual annealing needs non-empty ranges, bounds[%d]=%v", i, r)
		}
	}
	if da.MaxIterations < 1 || !(da.InitialTemp > 0) {
		return core.IllegalArgument("dual annealing needs maxIterations >= 1 and initial temperature > 0")
	}
	if !(da.Visit > 1 && da.Visit <= 3) || !(da.Accept < 1) {
		return core.IllegalArgument("dual annealing needs visit in (1, 3] and accept < 1, got %v and %v", da.Visit, da.Accept)
	}
	return nil
}

// visitor draws from the Tsallis visiting distribution.
type visitor struct {
	qv      float64
	factor4 float64
	factor6 float64
	normal  distuv.Normal
}

func newVisitor(qv float64, rng *rand.Rand) visitor {
	factor2 := math.Exp((4 - qv) * math.Log(qv-1))
	factor3 := math.Exp((2 - qv) * math.Ln2 / (qv - 1))
	factor5 := 1/(qv-1) - 0.5
	lgamma, _ := math.Lgamma(2 - factor5)
	return visitor{
		qv:      qv,
		factor4: math.Sqrt(math.Pi) * factor2 / (factor3 * (3 - qv)),
		factor6: math.Pi * (1 - factor5) / math.Sin(math.Pi*(1-factor5)) / math.Exp(lgamma),
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: rng},
	}
}

// step returns one visiting offset at the given temperature.
func (v visitor) step(temperature float64) float64 {
	factor1 := math.Exp(math.Log(temperature) / (v.qv - 1))
	x := v.normal.Rand() * math.Exp(-(v.qv-1)*math.Log(v.factor6/(v.factor4*factor1))/(3-v.qv))
	den := math.Exp((v.qv - 1) * math.Log(math.Abs(v.normal.Rand())) / (3 - v.qv))
	return x / den
}

func (da DualAnnealing) search(f *objective) (point, error) {
	rng := newRand(da.Seed)
	vis := newVisitor(da.Visit, rng)
	restartRatio := da.RestartRatio
	if restartRatio <= 0 {
		restartRatio = defaultRestartRatio
	}
	dim := len(da.Bounds)
	t1 := math.Expm1((da.Visit - 1) * math.Ln2)

	cur := da.feasibleStart(f, rng)
	best := cur

	for i := 0; i < da.MaxIterations && !f.stopped(); i++ {
		s := float64(i) + 2
		temperature := da.InitialTemp * t1 / math.Expm1((da.Visit-1)*math.Log(s))
		if temperature < da.InitialTemp*restartRatio {
			cur = da.feasibleStart(f, rng)
			f.log.V(logDebug).Info("Dual annealing restart", "iteration", i)
			continue
		}
		tempStep := temperature / float64(i+1)

		improved := false
		for j := 0; j < 2*dim && !f.stopped(); j++ {
			x := da.visit(rng, vis, cur.x, j, temperature)
			e := f.value(x)
			switch {
			case e < cur.f:
				cur = point{x: x, f: e}
				if e < best.f {
					best = cur
					improved = true
				}
			case !math.IsInf(e, 1):
				if rng.Float64() <= acceptance(da.Accept, e-cur.f, tempStep) {
					cur = point{x: x, f: e}
				}
			}
		}

		if improved && da.LocalSearch {
			if local := localSearch(f, best.x, &optimize.NelderMead{}); local.f < best.f {
				best = local
				cur = local
			}
		}
	}
	return best, nil
}

// acceptance is the generalized Metropolis probability for a worsening of
// delta at temperature step tempStep.
func acceptance(qa, delta, tempStep float64) float64 {
	pqv := 1 - (1-qa)*delta/tempStep
	if pqv <= 0 {
		return 0
	}
	return math.Exp(math.Log(pqv) / (1 - qa))
}

// visit moves every coordinate for j < dim, otherwise only coordinate
// j-dim, and wraps the result back into the box.
func (da DualAnnealing) visit(rng *rand.Rand, vis visitor, x []float64, j int, temperature float64) []float64 {
	dim := len(x)
	out := clone(x)
	move := func(k int) {
		step := vis.step(temperature)
		switch {
		case step > visitTailLimit:
			step = visitTailLimit * rng.Float64()
		case step < -visitTailLimit:
			step = -visitTailLimit * rng.Float64()
		case math.IsNaN(step):
			step = 0
		}
		lo, hi := da.Bounds[k][0], da.Bounds[k][1]
		width := hi - lo
		wrapped := math.Mod(math.Mod(out[k]+step-lo, width)+width, width) + lo
		if math.Abs(wrapped-lo) < visitMinBound {
			wrapped += visitMinBound
		}
		out[k] = wrapped
	}
	if j < dim {
		for k := range out {
			move(k)
		}
	} else {
		move(j - dim)
	}
	return out
}

// feasibleStart draws uniform points until one is feasible, giving up after
// defaultMaxResample attempts.
func (da DualAnnealing) feasibleStart(f *objective, rng *rand.Rand) point {
	var p point
	for i := 0; i < defaultMaxResample && !f.stopped(); i++ {
		x := uniformIn(rng, da.Bounds)
		p = point{x: x, f: f.value(x)}
		if !math.IsInf(p.f, 1) {
			return p
		}
	}
	return p
}
