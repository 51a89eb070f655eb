package config

// Heuristic names accepted by OptimizerSpec.Heuristic.
const (
	HeuristicGrid                  = "grid"
	HeuristicPattern               = "pattern"
	HeuristicNelderMead            = "nelder_mead"
	HeuristicAnnealing             = "annealing"
	HeuristicBasinHopping          = "basin_hopping"
	HeuristicDifferentialEvolution = "differential_evolution"
	HeuristicDualAnnealing         = "dual_annealing"
	HeuristicBFGS                  = "bfgs"
)

// Default search region. θ is the first parameter, Hölder exponents follow.
const (
	DefaultThetaStart    = 0.5
	DefaultExponentStart = 2.0
	DefaultThetaMin      = 0.01
	DefaultThetaMax      = 5.0
	DefaultExponentMin   = 1.01
	DefaultExponentMax   = 10.0
)

// DefaultOptimizerSpec returns the tuning used for the zero-valued fields of
// a heuristic's spec, sized for numParams parameters.
func DefaultOptimizerSpec(heuristic string, numParams int) OptimizerSpec {
	polish := true
	spec := OptimizerSpec{
		Heuristic:     heuristic,
		Bound:         BoundStandard,
		Bounds:        DefaultBounds(numParams),
		Start:         DefaultStart(numParams),
		DeltaMin:      1e-7,
		SDMin:         1e-9,
		Temperature:   1.0,
		Cooling:       0.95,
		SearchRadius:  0.1,
		Repetitions:   10,
		StepSize:      0.5,
		PopSize:       15,
		Mutation:      0.8,
		Crossover:     0.7,
		Tol:           0.01,
		Polish:        &polish,
		Visit:         2.62,
		Accept:        -5.0,
		MaxIterations: 1000,
	}

	switch heuristic {
	case HeuristicGrid:
		spec.Delta = 0.01
		if numParams > 1 {
			spec.Delta = 0.1
		}
	case HeuristicPattern, HeuristicNelderMead:
		spec.Delta = 0.1
	case HeuristicBasinHopping:
		spec.MaxIterations = 100
	case HeuristicAnnealing:
		spec.MaxIterations = 500
	case HeuristicDualAnnealing:
		spec.Temperature = 5230
	}
	return spec
}

// DefaultBounds returns the default [lo, hi] range per parameter.
func DefaultBounds(numParams int) [][]float64 {
	out := make([][]float64, numParams)
	for i := range out {
		if i == 0 {
			out[i] = []float64{DefaultThetaMin, DefaultThetaMax}
		} else {
			out[i] = []float64{DefaultExponentMin, DefaultExponentMax}
		}
	}
	return out
}

// DefaultStart returns the default initial point.
func DefaultStart(numParams int) []float64 {
	out := make([]float64, numParams)
	for i := range out {
		out[i] = DefaultExponentStart
	}
	if numParams > 0 {
		out[0] = DefaultThetaStart
	}
	return out
}

// MergeOptimizerSpec returns base with every non-zero field of override
// applied on top.
func MergeOptimizerSpec(base, override OptimizerSpec) OptimizerSpec {
	result := base

	if override.Heuristic != "" {
		result.Heuristic = override.Heuristic
	}
	if override.Bound != "" {
		result.Bound = override.Bound
	}
	if len(override.Bounds) > 0 {
		result.Bounds = override.Bounds
	}
	if len(override.Start) > 0 {
		result.Start = override.Start
	}
	if override.Delta != 0 {
		result.Delta = override.Delta
	}
	if override.DeltaMin != 0 {
		result.DeltaMin = override.DeltaMin
	}
	if len(override.Simplex) > 0 {
		result.Simplex = override.Simplex
	}
	if override.SDMin != 0 {
		result.SDMin = override.SDMin
	}
	if override.Temperature != 0 {
		result.Temperature = override.Temperature
	}
	if override.Cooling != 0 {
		result.Cooling = override.Cooling
	}
	if override.SearchRadius != 0 {
		result.SearchRadius = override.SearchRadius
	}
	if override.Repetitions != 0 {
		result.Repetitions = override.Repetitions
	}
	if override.StepSize != 0 {
		result.StepSize = override.StepSize
	}
	if override.PopSize != 0 {
		result.PopSize = override.PopSize
	}
	if override.Mutation != 0 {
		result.Mutation = override.Mutation
	}
	if override.Crossover != 0 {
		result.Crossover = override.Crossover
	}
	if override.Tol != 0 {
		result.Tol = override.Tol
	}
	if override.Polish != nil {
		result.Polish = override.Polish
	}
	if override.Visit != 0 {
		result.Visit = override.Visit
	}
	if override.Accept != 0 {
		result.Accept = override.Accept
	}
	if override.MaxIterations != 0 {
		result.MaxIterations = override.MaxIterations
	}
	if override.Seed != 0 {
		result.Seed = override.Seed
	}

	return result
}

// FitOptimizerSpec adapts the per-parameter fields of spec to numParams
// parameters. Leading entries are kept, missing ones come from the defaults
// and surplus ones are dropped. A simplex of the wrong shape is cleared so
// that it is rebuilt from the start point.
func FitOptimizerSpec(spec OptimizerSpec, numParams int) OptimizerSpec {
	out := spec
	if len(spec.Bounds) > 0 && len(spec.Bounds) != numParams {
		out.Bounds = DefaultBounds(numParams)
		copy(out.Bounds, spec.Bounds)
	}
	if len(spec.Start) > 0 && len(spec.Start) != numParams {
		out.Start = DefaultStart(numParams)
		copy(out.Start, spec.Start)
	}
	if len(spec.Simplex) > 0 && len(spec.Simplex) != numParams+1 {
		out.Simplex = nil
	}
	return out
}
