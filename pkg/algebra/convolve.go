package algebra

import (
	"math"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// equalRateTolerance is the relative distance below which two service rates
// take the equal-rate branch of Convolve.
const equalRateTolerance = 1e-9

// Convolution is the end-to-end service of two servers in tandem.
type Convolution struct {
	First  core.Curve
	Second core.Curve
	Dep    core.Dependence
}

// Convolve returns the service offered by first followed by second.
func Convolve(first, second core.Curve, dep core.Dependence) *Convolution {
	return &Convolution{First: first, Second: second, Dep: dep}
}

type convolutionTerms struct {
	sigma1, rho1, sigma2, rho2 float64
}

func (c *Convolution) terms(theta float64) (t convolutionTerms, err error) {
	if err = core.CheckTheta(theta); err != nil {
		return
	}
	p, q, err := c.Dep.Split()
	if err != nil {
		return
	}
	if t.rho1, err = c.First.Rho(p * theta); err != nil {
		return
	}
	if t.rho2, err = c.Second.Rho(q * theta); err != nil {
		return
	}
	if t.rho1 > 0 || t.rho2 > 0 {
		err = core.OutOfBounds("convolution needs service curves, got rho=%v and rho=%v", t.rho1, t.rho2)
		return
	}
	if t.sigma1, err = c.First.Sigma(p * theta); err != nil {
		return
	}
	t.sigma2, err = c.Second.Sigma(q * theta)
	return
}

func (c *Convolution) Sigma(theta float64) (float64, error) {
	t, err := c.terms(theta)
	if err != nil {
		return 0, err
	}
	if sameRate(t.rho1, t.rho2) {
		return core.Finite("convolution sigma", t.sigma1+t.sigma2)
	}
	correction := -math.Log(-math.Expm1(-theta*math.Abs(t.rho1-t.rho2))) / theta
	return core.Finite("convolution sigma", t.sigma1+t.sigma2+correction)
}

// Rho is the slower of the two service rates. Equal rates pay an extra 1/θ
// in place of the diverging tail-sum correction.
func (c *Convolution) Rho(theta float64) (float64, error) {
	t, err := c.terms(theta)
	if err != nil {
		return 0, err
	}
	if sameRate(t.rho1, t.rho2) {
		return t.rho1 + 1/theta, nil
	}
	return math.Max(t.rho1, t.rho2), nil
}

func (c *Convolution) IsDiscrete() bool {
	return c.First.IsDiscrete() && c.Second.IsDiscrete()
}

func sameRate(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= equalRateTolerance*math.Max(math.Abs(a), math.Abs(b))
}
