package algebra

import "github.com/llm-d/snc-bounds/pkg/core"

// Aggregation is the sum of several arrival curves.
type Aggregation struct {
	curves      []core.Curve
	independent bool
	ps          []float64
}

// Aggregate sums two arrival curves. In dependent mode the first curve sees
// pθ and the second qθ.
func Aggregate(first, second core.Curve, dep core.Dependence) *Aggregation {
	if dep.Independent {
		return &Aggregation{curves: []core.Curve{first, second}, independent: true}
	}
	return &Aggregation{curves: []core.Curve{first, second}, ps: []float64{dep.P}}
}

// AggregateList sums curves. In dependent mode ps holds one Hölder exponent
// per curve except the last; the last share is chosen so that the
// reciprocals of all shares sum to one.
func AggregateList(curves []core.Curve, independent bool, ps []float64) (*Aggregation, error) {
	if len(curves) == 0 {
		return nil, core.IllegalArgument("aggregation of an empty curve list")
	}
	if independent {
		return &Aggregation{curves: append([]core.Curve(nil), curves...), independent: true}, nil
	}
	if len(ps) != len(curves)-1 {
		return nil, core.IllegalArgument("dependent aggregation of %d curves needs %d exponents, got %d",
			len(curves), len(curves)-1, len(ps))
	}
	return &Aggregation{
		curves: append([]core.Curve(nil), curves...),
		ps:     append([]float64(nil), ps...),
	}, nil
}

// Len returns the number of summands.
func (a *Aggregation) Len() int {
	return len(a.curves)
}

func (a *Aggregation) shares() ([]float64, error) {
	out := make([]float64, len(a.curves))
	if a.independent {
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	last, err := core.LastShare(a.ps)
	if err != nil {
		return nil, err
	}
	copy(out, a.ps)
	out[len(out)-1] = last
	return out, nil
}

func (a *Aggregation) Sigma(theta float64) (float64, error) {
	if err := core.CheckTheta(theta); err != nil {
		return 0, err
	}
	shares, err := a.shares()
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for i, c := range a.curves {
		s, err := c.Sigma(shares[i] * theta)
		if err != nil {
			return 0, err
		}
		sum += s
	}
	return core.Finite("aggregate sigma", sum)
}

func (a *Aggregation) Rho(theta float64) (float64, error) {
	if err := core.CheckTheta(theta); err != nil {
		return 0, err
	}
	shares, err := a.shares()
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for i, c := range a.curves {
		r, err := c.Rho(shares[i] * theta)
		if err != nil {
			return 0, err
		}
		if r < 0 {
			return 0, core.OutOfBounds("aggregate: summand %d has negative rho=%v", i, r)
		}
		sum += r
	}
	return core.Finite("aggregate rho", sum)
}

// IsDiscrete reports whether every summand is discrete.
func (a *Aggregation) IsDiscrete() bool {
	for _, c := range a.curves {
		if !c.IsDiscrete() {
			return false
		}
	}
	return true
}
