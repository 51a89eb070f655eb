package topology

import (
	"fmt"

	"github.com/llm-d/snc-bounds/pkg/bounds"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// Setting is a solver.Setting that knows its parameter count and whether
// its load fits its capacity.
type Setting interface {
	solver.Setting
	// Name returns the topology name.
	Name() string
	// NumParams returns the parameter count of the bound, or an illegal
	// argument when the topology does not define it.
	NumParams(b solver.BoundKind) (int, error)
	// Stable reports whether every server's average load stays below its
	// rate. Curves without a known average rate are assumed to fit.
	Stable() bool
}

// Query is the metric a setting evaluates and the value it is
// parameterized by.
type Query struct {
	Metric bounds.Metric
	Value  float64
}

func (q Query) evaluate(arrival, server core.Curve, theta float64, dep core.Dependence) (float64, error) {
	return bounds.Evaluate(q.Metric, arrival, server, theta, q.Value, dep)
}

func checkParams(params []float64, want int) error {
	if len(params) != want {
		return core.IllegalArgument("expected %d parameters, got %d", want, len(params))
	}
	return nil
}

func noEnhanced(name string) error {
	return core.IllegalArgument("%s has no enhanced bound", name)
}

// averageRate returns the long-run rate of a cataloged arrival.
func averageRate(c core.Curve) (float64, bool) {
	if a, ok := c.(core.Arrival); ok {
		return a.AverageRate(), true
	}
	return 0, false
}

// serviceRate returns the guaranteed rate of a cataloged server.
func serviceRate(c core.Curve) (float64, bool) {
	if s, ok := c.(core.Service); ok {
		return s.Rate(), true
	}
	return 0, false
}

// fits reports whether the summed average rate of arrivals stays below the
// rate of server.
func fits(server core.Curve, arrivals ...core.Curve) bool {
	rate, ok := serviceRate(server)
	if !ok {
		return true
	}
	load := 0.0
	for _, a := range arrivals {
		r, ok := averageRate(a)
		if !ok {
			return true
		}
		load += r
	}
	return load < rate
}

// BuildCurve builds the catalog curve described by spec and checks that it
// plays the expected role.
func BuildCurve(spec config.CurveSpec, role core.Role) (core.Curve, error) {
	kind := core.ParseKind(spec.Kind)
	d, ok := core.Describe(kind)
	if !ok {
		return nil, core.IllegalArgument("unknown curve kind %q", spec.Kind)
	}
	if d.Role != role {
		return nil, core.IllegalArgument("%s is a %s curve, expected %s", kind, d.Role, role)
	}

	if kind == core.KindMarkovModulated {
		n := 1.0
		if v, ok := spec.Params["n"]; ok {
			n = v
		}
		if n < 1 || n != float64(int(n)) {
			return nil, core.OutOfBounds("flow count n must be a positive integer, got %v", n)
		}
		mm, err := core.NewMarkovModulated(spec.Transition, spec.Rates, int(n))
		if err != nil {
			return nil, err
		}
		return mm, nil
	}
	if len(spec.Transition) > 0 || len(spec.Rates) > 0 {
		return nil, core.IllegalArgument("%s takes no transition matrix or rates", kind)
	}
	return core.Build(kind, spec.Params)
}

func buildCurves(specs []config.CurveSpec, role core.Role, field string) ([]core.Curve, error) {
	out := make([]core.Curve, len(specs))
	for i, s := range specs {
		c, err := BuildCurve(s, role)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = c
	}
	return out, nil
}

// FromScenario builds the setting a validated scenario describes.
func FromScenario(spec *config.ScenarioSpec) (Setting, error) {
	metric, err := bounds.ParseMetric(spec.Metric)
	if err != nil {
		return nil, err
	}
	q := Query{Metric: metric, Value: spec.Value}

	foi, err := BuildCurve(spec.Foi, core.RoleArrival)
	if err != nil {
		return nil, fmt.Errorf("foi: %w", err)
	}
	cross, err := buildCurves(spec.Cross, core.RoleArrival, "cross")
	if err != nil {
		return nil, err
	}
	servers, err := buildCurves(spec.Servers, core.RoleService, "servers")
	if err != nil {
		return nil, err
	}
	return Assemble(spec.Topology, q, foi, cross, servers)
}

// Assemble wires already built curves into the named topology.
func Assemble(topology string, q Query, foi core.Curve, cross, servers []core.Curve) (Setting, error) {
	switch topology {
	case config.TopologySingleServer:
		if len(servers) != 1 || len(cross) != 0 {
			return nil, core.IllegalArgument("single_server takes one server and no cross flows")
		}
		return &SingleServer{Arrival: foi, Server: servers[0], Query: q}, nil
	case config.TopologyFatCross:
		if len(servers) != 1 {
			return nil, core.IllegalArgument("fat_cross takes one server, got %d", len(servers))
		}
		return &FatCross{Foi: foi, Cross: cross, Server: servers[0], Query: q}, nil
	case config.TopologyTandem:
		if len(servers) == 0 || len(cross) != len(servers) {
			return nil, core.IllegalArgument("tandem takes one cross flow per server, got %d for %d", len(cross), len(servers))
		}
		return &Tandem{Foi: foi, Cross: cross, Servers: servers, Query: q}, nil
	case config.TopologyOverlappingTandem:
		if len(servers) != 2 || len(cross) != 2 {
			return nil, core.IllegalArgument("overlapping_tandem takes two servers and two cross flows")
		}
		return &OverlappingTandem{
			Foi: foi, Cross1: cross[0], Cross2: cross[1],
			S1: servers[0], S2: servers[1], Query: q,
		}, nil
	default:
		return nil, core.IllegalArgument("unknown topology %q", topology)
	}
}
