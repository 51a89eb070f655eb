package topology

import (
	"github.com/llm-d/snc-bounds/pkg/algebra"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// FatCross is a flow of interest sharing one server with any number of
// cross flows, as at a leaf of a fat tree. The foi sees the service left
// over by the aggregate of the cross flows.
type FatCross struct {
	Foi    core.Curve
	Cross  []core.Curve
	Server core.Curve
	Query
}

func (f *FatCross) Name() string { return config.TopologyFatCross }

// NumParams is 1 for the standard bound and len(Cross) for the enhanced
// one, which needs at least two cross flows.
func (f *FatCross) NumParams(b solver.BoundKind) (int, error) {
	if b == solver.EnhancedBound {
		if len(f.Cross) < 2 {
			return 0, core.IllegalArgument("fat_cross enhanced bound needs two or more cross flows, got %d", len(f.Cross))
		}
		return len(f.Cross), nil
	}
	return 1, nil
}

func (f *FatCross) Stable() bool {
	return fits(f.Server, append([]core.Curve{f.Foi}, f.Cross...)...)
}

func (f *FatCross) residual(independent bool, ps []float64) (core.Curve, error) {
	if len(f.Cross) == 0 {
		return f.Server, nil
	}
	agg, err := algebra.AggregateList(f.Cross, independent, ps)
	if err != nil {
		return nil, err
	}
	return algebra.Leftover(f.Server, agg, core.Independent), nil
}

// StandardBound treats the cross flows as independent.
func (f *FatCross) StandardBound(params []float64) (float64, error) {
	if err := checkParams(params, 1); err != nil {
		return 0, err
	}
	service, err := f.residual(true, nil)
	if err != nil {
		return 0, err
	}
	return f.evaluate(f.Foi, service, params[0], core.Independent)
}

// EnhancedBound aggregates the cross flows as dependent with the Hölder
// exponents params[1:].
func (f *FatCross) EnhancedBound(params []float64) (float64, error) {
	n, err := f.NumParams(solver.EnhancedBound)
	if err != nil {
		return 0, err
	}
	if err := checkParams(params, n); err != nil {
		return 0, err
	}
	service, err := f.residual(false, params[1:])
	if err != nil {
		return 0, err
	}
	return f.evaluate(f.Foi, service, params[0], core.Independent)
}
