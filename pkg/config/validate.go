package config

import (
	"errors"
	"fmt"
)

// Validate checks the scenario's structure. Curve parameters are checked
// when the curves are built.
func (s *ScenarioSpec) Validate() error {
	switch s.Topology {
	case TopologySingleServer, TopologyFatCross, TopologyTandem, TopologyOverlappingTandem:
	case "":
		return errors.New("topology is required")
	default:
		return fmt.Errorf("unknown topology %q", s.Topology)
	}
	if s.Metric == "" {
		return errors.New("metric is required")
	}
	if s.Foi.Kind == "" {
		return errors.New("foi.kind is required")
	}
	if len(s.Servers) == 0 {
		return errors.New("at least one server is required")
	}
	if err := s.Foi.Validate(); err != nil {
		return fmt.Errorf("foi: %w", err)
	}
	for i := range s.Cross {
		if err := s.Cross[i].Validate(); err != nil {
			return fmt.Errorf("cross[%d]: %w", i, err)
		}
	}
	for i := range s.Servers {
		if err := s.Servers[i].Validate(); err != nil {
			return fmt.Errorf("servers[%d]: %w", i, err)
		}
	}

	switch s.Topology {
	case TopologySingleServer:
		if len(s.Servers) != 1 || len(s.Cross) != 0 {
			return fmt.Errorf("single_server takes one server and no cross flows, got %d and %d",
				len(s.Servers), len(s.Cross))
		}
	case TopologyFatCross:
		if len(s.Servers) != 1 {
			return fmt.Errorf("fat_cross takes one server, got %d", len(s.Servers))
		}
	case TopologyTandem:
		if len(s.Cross) != len(s.Servers) {
			return fmt.Errorf("tandem takes one cross flow per server, got %d cross flows for %d servers",
				len(s.Cross), len(s.Servers))
		}
	case TopologyOverlappingTandem:
		if len(s.Servers) != 2 || len(s.Cross) != 2 {
			return fmt.Errorf("overlapping_tandem takes two servers and two cross flows, got %d and %d",
				len(s.Servers), len(s.Cross))
		}
	}

	if err := s.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	if s.MonteCarlo != nil {
		if err := s.MonteCarlo.Validate(); err != nil {
			return fmt.Errorf("montecarlo: %w", err)
		}
	}
	return nil
}

// Validate checks that a curve names a kind and carries consistent
// Markov-modulated fields.
func (c *CurveSpec) Validate() error {
	if c.Kind == "" {
		return errors.New("kind is required")
	}
	if len(c.Transition) > 0 && len(c.Rates) != len(c.Transition) {
		return fmt.Errorf("%s: %d rates for %d states", c.Kind, len(c.Rates), len(c.Transition))
	}
	return nil
}

// Validate checks for invalid tuning values.
func (o *OptimizerSpec) Validate() error {
	if o.Heuristic == "" {
		return errors.New("heuristic is required")
	}
	if o.Bound != "" && o.Bound != BoundStandard && o.Bound != BoundEnhanced {
		return fmt.Errorf("bound must be %q or %q, got %q", BoundStandard, BoundEnhanced, o.Bound)
	}
	for i, r := range o.Bounds {
		if len(r) != 2 {
			return fmt.Errorf("bounds[%d] must be a [lo, hi] pair, got %v", i, r)
		}
		if r[0] > r[1] {
			return fmt.Errorf("bounds[%d]: lo %v exceeds hi %v", i, r[0], r[1])
		}
	}
	if o.Delta < 0 || o.DeltaMin < 0 || o.SDMin < 0 {
		return fmt.Errorf("delta, deltaMin and sdMin must be >= 0, got %v, %v, %v", o.Delta, o.DeltaMin, o.SDMin)
	}
	if o.Cooling < 0 || o.Cooling >= 1 {
		return fmt.Errorf("cooling must lie in [0, 1), got %v", o.Cooling)
	}
	if o.Crossover < 0 || o.Crossover > 1 {
		return fmt.Errorf("crossover must lie in [0, 1], got %v", o.Crossover)
	}
	if o.Mutation < 0 || o.Mutation > 2 {
		return fmt.Errorf("mutation must lie in [0, 2], got %v", o.Mutation)
	}
	if o.Visit != 0 && (o.Visit <= 1 || o.Visit > 3) {
		return fmt.Errorf("visit must lie in (1, 3], got %v", o.Visit)
	}
	if o.Temperature < 0 || o.SearchRadius < 0 || o.StepSize < 0 || o.Tol < 0 {
		return errors.New("temperature, searchRadius, stepSize and tol must be >= 0")
	}
	if o.Repetitions < 0 || o.PopSize < 0 || o.MaxIterations < 0 {
		return errors.New("repetitions, popSize and maxIterations must be >= 0")
	}
	return nil
}

// Validate checks the Monte-Carlo sampling description.
func (m *MonteCarloSpec) Validate() error {
	if m.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", m.Trials)
	}
	if m.Arrival == "" {
		return errors.New("arrival is required")
	}
	for name, r := range m.Params {
		if r.Min > r.Max {
			return fmt.Errorf("params.%s: min %v exceeds max %v", name, r.Min, r.Max)
		}
	}
	if !(m.ServiceRate.Min > 0) || m.ServiceRate.Min > m.ServiceRate.Max {
		return fmt.Errorf("serviceRate must be a positive range, got [%v, %v]", m.ServiceRate.Min, m.ServiceRate.Max)
	}
	if len(m.Heuristics) == 0 {
		return errors.New("at least one heuristic is required")
	}
	for i := range m.Heuristics {
		if err := m.Heuristics[i].Validate(); err != nil {
			return fmt.Errorf("heuristics[%d]: %w", i, err)
		}
	}
	return nil
}
