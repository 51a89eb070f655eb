package solver

import (
	"math"
	"math/rand/v2"
	"strings"

	"k8s.io/utils/ptr"

	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
)

// Name identifies a heuristic.
type Name string

// enumeration of Name
const (
	NameGrid                  Name = config.HeuristicGrid
	NamePattern               Name = config.HeuristicPattern
	NameNelderMead            Name = config.HeuristicNelderMead
	NameAnnealing             Name = config.HeuristicAnnealing
	NameBasinHopping          Name = config.HeuristicBasinHopping
	NameDifferentialEvolution Name = config.HeuristicDifferentialEvolution
	NameDualAnnealing         Name = config.HeuristicDualAnnealing
	NameBFGS                  Name = config.HeuristicBFGS
)

// Names lists every heuristic NewHeuristic can build.
func Names() []Name {
	return []Name{
		NameGrid, NamePattern, NameNelderMead, NameAnnealing,
		NameBasinHopping, NameDifferentialEvolution, NameDualAnnealing, NameBFGS,
	}
}

// Heuristic is a minimization strategy over the feasibility-filtered
// objective. The set of heuristics is closed; build them directly or with
// NewHeuristic.
type Heuristic interface {
	// Name returns the heuristic's name.
	Name() Name
	// Validate checks the tuning against the parameter count before any
	// evaluation. Mismatches are core.ErrIllegalArgument.
	Validate(numParams int) error

	search(f *objective) (point, error)
}

// ParseName normalizes a heuristic name. Matching ignores case and treats
// '-' like '_'.
func ParseName(s string) (Name, error) {
	n := Name(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Names() {
		if n == known {
			return n, nil
		}
	}
	return "", core.IllegalArgument("unsupported heuristic %q", s)
}

// NewHeuristic is a factory that creates a Heuristic from its declarative
// spec. Zero-valued tuning fields inherit config.DefaultOptimizerSpec for
// numParams parameters.
func NewHeuristic(spec config.OptimizerSpec, numParams int) (Heuristic, error) {
	name, err := ParseName(spec.Heuristic)
	if err != nil {
		return nil, err
	}
	s := config.MergeOptimizerSpec(config.DefaultOptimizerSpec(string(name), numParams), spec)
	if err := s.Validate(); err != nil {
		return nil, core.IllegalArgument("%s: %v", name, err)
	}
	ranges, err := toRanges(s.Bounds)
	if err != nil {
		return nil, err
	}

	switch name {
	case NameGrid:
		return GridSearch{Bounds: ranges, Delta: s.Delta}, nil
	case NamePattern:
		return PatternSearch{Start: s.Start, Delta: s.Delta, DeltaMin: s.DeltaMin, MaxIterations: s.MaxIterations}, nil
	case NameNelderMead:
		simplex := s.Simplex
		if len(simplex) == 0 {
			simplex = InitialSimplex(s.Start, s.Delta)
		}
		return NelderMead{Simplex: simplex, SDMin: s.SDMin, MaxIterations: s.MaxIterations}, nil
	case NameAnnealing:
		return SimulatedAnnealing{
			Start: s.Start,
			Params: AnnealingParams{
				Temperature:  s.Temperature,
				Cooling:      s.Cooling,
				SearchRadius: s.SearchRadius,
				Repetitions:  s.Repetitions,
				MaxLevels:    s.MaxIterations,
			},
			Seed: s.Seed,
		}, nil
	case NameBasinHopping:
		return BasinHopping{
			Start:       s.Start,
			Iterations:  s.MaxIterations,
			StepSize:    s.StepSize,
			Temperature: s.Temperature,
			Seed:        s.Seed,
		}, nil
	case NameDifferentialEvolution:
		return DifferentialEvolution{
			Bounds:        ranges,
			PopSize:       s.PopSize,
			Mutation:      s.Mutation,
			Crossover:     s.Crossover,
			MaxIterations: s.MaxIterations,
			Tol:           s.Tol,
			Polish:        ptr.Deref(s.Polish, true),
			Seed:          s.Seed,
		}, nil
	case NameDualAnnealing:
		return DualAnnealing{
			Bounds:        ranges,
			MaxIterations: s.MaxIterations,
			InitialTemp:   s.Temperature,
			Visit:         s.Visit,
			Accept:        s.Accept,
			LocalSearch:   ptr.Deref(s.Polish, true),
			Seed:          s.Seed,
		}, nil
	case NameBFGS:
		return BFGS{Start: s.Start, MaxIterations: s.MaxIterations}, nil
	default:
		return nil, core.IllegalArgument("unsupported heuristic %q", spec.Heuristic)
	}
}

func toRanges(bounds [][]float64) ([][2]float64, error) {
	out := make([][2]float64, len(bounds))
	for i, b := range bounds {
		if len(b) != 2 {
			return nil, core.IllegalArgument("bounds[%d] must have two entries, got %d", i, len(b))
		}
		out[i] = [2]float64{b[0], b[1]}
	}
	return out, nil
}

// InitialSimplex returns start plus one vertex per coordinate offset by
// step along that axis.
func InitialSimplex(start []float64, step float64) [][]float64 {
	out := make([][]float64, 0, len(start)+1)
	out = append(out, clone(start))
	for i := range start {
		v := clone(start)
		v[i] += step
		out = append(out, v)
	}
	return out
}

func checkLen(what string, got, want int) error {
	if got != want {
		return core.IllegalArgument("%s has %d entries, want %d", what, got, want)
	}
	return nil
}

func checkRanges(ranges [][2]float64, numParams int) error {
	if err := checkLen("bounds", len(ranges), numParams); err != nil {
		return err
	}
	for i, r := range ranges {
		if math.IsNaN(r[0]) || math.IsNaN(r[1]) || math.IsInf(r[0], 0) || math.IsInf(r[1], 0) || r[0] > r[1] {
			return core.IllegalArgument("bounds[%d]=%v is not a finite [lo, hi] range", i, r)
		}
	}
	return nil
}

// newRand returns the run-local generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniformIn draws a point uniformly from ranges.
func uniformIn(rng *rand.Rand, ranges [][2]float64) []float64 {
	x := make([]float64, len(ranges))
	for i, r := range ranges {
		x[i] = r[0] + rng.Float64()*(r[1]-r[0])
	}
	return x
}
