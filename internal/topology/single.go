package topology

import (
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// SingleServer is one arrival served by one server.
type SingleServer struct {
	Arrival core.Curve
	Server  core.Curve
	Query
}

func (s *SingleServer) Name() string { return config.TopologySingleServer }

func (s *SingleServer) NumParams(b solver.BoundKind) (int, error) {
	if b == solver.EnhancedBound {
		return 0, noEnhanced(s.Name())
	}
	return 1, nil
}

func (s *SingleServer) Stable() bool {
	return fits(s.Server, s.Arrival)
}

// StandardBound evaluates the metric at θ = params[0].
func (s *SingleServer) StandardBound(params []float64) (float64, error) {
	if err := checkParams(params, 1); err != nil {
		return 0, err
	}
	return s.evaluate(s.Arrival, s.Server, params[0], core.Independent)
}
