package core

import (
	"fmt"
	"math"
)

// Dependence selects how θ is apportioned between two sub-curves. Independent
// curves both see θ; dependent curves see pθ and qθ with 1/p + 1/q = 1.
type Dependence struct {
	Independent bool
	P           float64
}

// Independent is the dependence mode for statistically independent curves.
var Independent = Dependence{Independent: true}

// Holder returns the dependent mode with Hölder exponent p.
func Holder(p float64) Dependence {
	return Dependence{P: p}
}

// Split returns the pair (p, q) to scale θ with. Dependent mode requires
// p in (1, +Inf); exponents are never clamped.
func (d Dependence) Split() (p, q float64, err error) {
	if d.Independent {
		return 1, 1, nil
	}
	q, err = LastShare([]float64{d.P})
	if err != nil {
		return 0, 0, err
	}
	return d.P, q, nil
}

func (d Dependence) String() string {
	if d.Independent {
		return "independent"
	}
	return fmt.Sprintf("holder(p=%g)", d.P)
}

// LastShare returns the exponent that completes ps to a generalized Hölder
// tuple, i.e. the value x with 1/x = 1 - Σ 1/p_i. Every p_i must lie in
// (1, +Inf) and the reciprocals must sum to less than one.
func LastShare(ps []float64) (float64, error) {
	sum := 0.0
	for i, p := range ps {
		if !(p > 1) || math.IsInf(p, 1) {
			return 0, OutOfBounds("hölder exponent p[%d]=%v must lie in (1, inf)", i, p)
		}
		sum += 1 / p
	}
	if sum >= 1 {
		return 0, OutOfBounds("reciprocal hölder exponents sum to %v, must be below 1", sum)
	}
	return 1 / (1 - sum), nil
}
