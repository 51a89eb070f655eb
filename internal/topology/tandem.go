package topology

import (
	"github.com/llm-d/snc-bounds/pkg/algebra"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// Tandem is a path of servers where hop i also serves cross flow i, which
// leaves the path after that hop. The end-to-end service is the convolution
// of the per-hop leftovers (separated flow analysis).
type Tandem struct {
	Foi     core.Curve
	Cross   []core.Curve
	Servers []core.Curve
	Query
}

func (t *Tandem) Name() string { return config.TopologyTandem }

func (t *Tandem) NumParams(b solver.BoundKind) (int, error) {
	if b == solver.EnhancedBound {
		return 0, noEnhanced(t.Name())
	}
	return 1, nil
}

func (t *Tandem) Stable() bool {
	for i, s := range t.Servers {
		if !fits(s, t.Foi, t.Cross[i]) {
			return false
		}
	}
	return true
}

// EndToEnd returns the convolved per-hop leftover service.
func (t *Tandem) EndToEnd() core.Curve {
	var service core.Curve = algebra.Leftover(t.Servers[0], t.Cross[0], core.Independent)
	for i := 1; i < len(t.Servers); i++ {
		hop := algebra.Leftover(t.Servers[i], t.Cross[i], core.Independent)
		service = algebra.Convolve(service, hop, core.Independent)
	}
	return service
}

func (t *Tandem) StandardBound(params []float64) (float64, error) {
	if err := checkParams(params, 1); err != nil {
		return 0, err
	}
	return t.evaluate(t.Foi, t.EndToEnd(), params[0], core.Independent)
}
