package config

// Topology names.
const (
	TopologySingleServer      = "single_server"
	TopologyFatCross          = "fat_cross"
	TopologyTandem            = "tandem"
	TopologyOverlappingTandem = "overlapping_tandem"
)

// Bound kinds.
const (
	BoundStandard = "standard"
	BoundEnhanced = "enhanced"
)

// ScenarioSpec describes one bound computation.
type ScenarioSpec struct {
	// Name identifies the scenario in logs and results.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Topology is one of single_server, fat_cross, tandem, overlapping_tandem.
	Topology string `yaml:"topology" json:"topology"`

	// Metric is one of backlog, backlog_prob, delay, delay_prob, output.
	Metric string `yaml:"metric" json:"metric"`

	// Value parameterizes the metric: a backlog or delay threshold for the
	// probability metrics, a violation probability for backlog and delay,
	// an interval length for output.
	Value float64 `yaml:"value" json:"value"`

	// Foi is the flow of interest.
	Foi CurveSpec `yaml:"foi" json:"foi"`

	// Cross holds the cross flows. Their placement depends on the topology.
	Cross []CurveSpec `yaml:"cross,omitempty" json:"cross,omitempty"`

	// Servers holds the servers in path order.
	Servers []CurveSpec `yaml:"servers" json:"servers"`

	// Optimizer selects and tunes the heuristic.
	Optimizer OptimizerSpec `yaml:"optimizer" json:"optimizer"`

	// MonteCarlo is only read by the montecarlo command.
	MonteCarlo *MonteCarloSpec `yaml:"montecarlo,omitempty" json:"montecarlo,omitempty"`
}

// CurveSpec describes one catalog curve.
type CurveSpec struct {
	// Kind is a catalog kind name or alias.
	Kind string `yaml:"kind" json:"kind"`

	// Params maps formula parameter names to values.
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`

	// Transition and Rates describe a markov_modulated arrival.
	Transition [][]float64 `yaml:"transition,omitempty" json:"transition,omitempty"`
	Rates      []float64   `yaml:"rates,omitempty" json:"rates,omitempty"`
}

// OptimizerSpec selects a heuristic and its tuning. Zero values inherit from
// DefaultOptimizerSpec.
type OptimizerSpec struct {
	// Heuristic is one of grid, pattern, nelder_mead, annealing,
	// basin_hopping, differential_evolution, dual_annealing, bfgs.
	Heuristic string `yaml:"heuristic" json:"heuristic"`

	// Bound is standard or enhanced.
	Bound string `yaml:"bound,omitempty" json:"bound,omitempty"`

	// Bounds holds one [lo, hi] range per parameter (grid, differential
	// evolution, dual annealing).
	Bounds [][]float64 `yaml:"bounds,omitempty" json:"bounds,omitempty"`

	// Start is the initial point (pattern, annealing, basin hopping, bfgs).
	Start []float64 `yaml:"start,omitempty" json:"start,omitempty"`

	// Delta is the grid step, or the initial pattern step.
	Delta float64 `yaml:"delta,omitempty" json:"delta,omitempty"`

	// DeltaMin stops pattern search once the step falls below it.
	DeltaMin float64 `yaml:"deltaMin,omitempty" json:"deltaMin,omitempty"`

	// Simplex is the initial Nelder-Mead simplex, n+1 points of n coordinates.
	Simplex [][]float64 `yaml:"simplex,omitempty" json:"simplex,omitempty"`

	// SDMin stops Nelder-Mead once the spread of simplex values falls below it.
	SDMin float64 `yaml:"sdMin,omitempty" json:"sdMin,omitempty"`

	// Simulated annealing schedule.
	Temperature  float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Cooling      float64 `yaml:"cooling,omitempty" json:"cooling,omitempty"`
	SearchRadius float64 `yaml:"searchRadius,omitempty" json:"searchRadius,omitempty"`
	Repetitions  int     `yaml:"repetitions,omitempty" json:"repetitions,omitempty"`

	// StepSize is the basin hopping perturbation.
	StepSize float64 `yaml:"stepSize,omitempty" json:"stepSize,omitempty"`

	// Differential evolution.
	PopSize   int     `yaml:"popSize,omitempty" json:"popSize,omitempty"`
	Mutation  float64 `yaml:"mutation,omitempty" json:"mutation,omitempty"`
	Crossover float64 `yaml:"crossover,omitempty" json:"crossover,omitempty"`
	Tol       float64 `yaml:"tol,omitempty" json:"tol,omitempty"`
	// Polish runs a local search from the best member. Use pointer to allow
	// omitting it and inheriting the default.
	Polish *bool `yaml:"polish,omitempty" json:"polish,omitempty"`

	// Dual annealing visiting and acceptance parameters.
	Visit  float64 `yaml:"visit,omitempty" json:"visit,omitempty"`
	Accept float64 `yaml:"accept,omitempty" json:"accept,omitempty"`

	// MaxIterations caps the iterations of the iterative heuristics.
	MaxIterations int `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`

	// Seed feeds the run-local random generator of the stochastic heuristics.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Range is a closed sampling interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// MonteCarloSpec describes a randomized comparison of heuristics and bounds.
type MonteCarloSpec struct {
	// Trials is the number of sampled parameter sets.
	Trials int `yaml:"trials" json:"trials"`

	// Seed is the base seed; trial i uses Seed+i.
	Seed uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Arrival is the kind used for the flow of interest and every cross flow.
	Arrival string `yaml:"arrival" json:"arrival"`

	// Params maps each arrival parameter name to its sampling range.
	Params map[string]Range `yaml:"params" json:"params"`

	// ServiceRate is the sampling range of every server's rate.
	ServiceRate Range `yaml:"serviceRate" json:"serviceRate"`

	// Heuristics lists the optimizers compared on every trial.
	Heuristics []OptimizerSpec `yaml:"heuristics" json:"heuristics"`

	// Enhanced also runs the enhanced bound when the topology defines one.
	Enhanced *bool `yaml:"enhanced,omitempty" json:"enhanced,omitempty"`
}
