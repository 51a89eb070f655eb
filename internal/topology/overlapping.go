package topology

import (
	"github.com/llm-d/snc-bounds/pkg/algebra"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// OverlappingTandem is a two-hop path where Cross1 accompanies the foi over
// both servers and Cross2 joins at the second one.
//
// The standard bound is pay-multiplexing-only-once: Cross2 is removed at S2,
// the hops are convolved, and Cross1 is removed once from the result. The
// enhanced bound is separated flow analysis: Cross1 leaves S1 as the output
// of the service left over by the foi, so the second leftover depends on the
// first hop and on the foi. Both dependencies are bounded with Hölder
// exponents, giving the parameters [θ, p_convolve, p_foi].
type OverlappingTandem struct {
	Foi    core.Curve
	Cross1 core.Curve
	Cross2 core.Curve
	S1     core.Curve
	S2     core.Curve
	Query
}

func (o *OverlappingTandem) Name() string { return config.TopologyOverlappingTandem }

func (o *OverlappingTandem) NumParams(b solver.BoundKind) (int, error) {
	if b == solver.EnhancedBound {
		return 3, nil
	}
	return 1, nil
}

func (o *OverlappingTandem) Stable() bool {
	return fits(o.S1, o.Foi, o.Cross1) && fits(o.S2, o.Foi, o.Cross1, o.Cross2)
}

// StandardBound is the pay-multiplexing-only-once bound at θ = params[0].
func (o *OverlappingTandem) StandardBound(params []float64) (float64, error) {
	if err := checkParams(params, 1); err != nil {
		return 0, err
	}
	hop2 := algebra.Leftover(o.S2, o.Cross2, core.Independent)
	path := algebra.Convolve(o.S1, hop2, core.Independent)
	service := algebra.Leftover(path, o.Cross1, core.Independent)
	return o.evaluate(o.Foi, service, params[0], core.Independent)
}

// EnhancedBound is the separated-flow bound at params = [θ, p1, p2].
func (o *OverlappingTandem) EnhancedBound(params []float64) (float64, error) {
	if err := checkParams(params, 3); err != nil {
		return 0, err
	}
	cross1Out := algebra.Deconvolve(o.Cross1, algebra.Leftover(o.S1, o.Foi, core.Independent), core.Independent)
	hop1 := algebra.Leftover(o.S1, o.Cross1, core.Independent)
	hop2 := algebra.Leftover(o.S2, algebra.Aggregate(cross1Out, o.Cross2, core.Independent), core.Independent)
	service := algebra.Convolve(hop1, hop2, core.Holder(params[1]))
	return o.evaluate(o.Foi, service, params[0], core.Holder(params[2]))
}
