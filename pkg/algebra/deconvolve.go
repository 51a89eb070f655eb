package algebra

import (
	"math"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// Deconvolution is the output arrival curve of a flow after a server.
type Deconvolution struct {
	Arrival core.Curve
	Server  core.Curve
	Dep     core.Dependence
}

// Deconvolve returns the output of arrival after crossing server.
func Deconvolve(arrival, server core.Curve, dep core.Dependence) *Deconvolution {
	return &Deconvolution{Arrival: arrival, Server: server, Dep: dep}
}

// rates evaluates both rate terms and checks the drift condition.
func (d *Deconvolution) rates(theta float64) (p, q, arrRho, serRho float64, err error) {
	if err = core.CheckTheta(theta); err != nil {
		return
	}
	if p, q, err = d.Dep.Split(); err != nil {
		return
	}
	if arrRho, err = d.Arrival.Rho(p * theta); err != nil {
		return
	}
	if serRho, err = d.Server.Rho(q * theta); err != nil {
		return
	}
	err = CheckDrift(arrRho, serRho)
	return
}

// Sigma adds both bursts and the geometric tail-sum correction
// -ln(1 - e^{θ(ρa+ρs)})/θ.
func (d *Deconvolution) Sigma(theta float64) (float64, error) {
	p, q, arrRho, serRho, err := d.rates(theta)
	if err != nil {
		return 0, err
	}
	arrSigma, err := d.Arrival.Sigma(p * theta)
	if err != nil {
		return 0, err
	}
	serSigma, err := d.Server.Sigma(q * theta)
	if err != nil {
		return 0, err
	}
	correction := -math.Log(-math.Expm1(theta*(arrRho+serRho))) / theta
	return core.Finite("deconvolution sigma", arrSigma+serSigma+correction)
}

// Rho is the arrival's rate term at pθ.
func (d *Deconvolution) Rho(theta float64) (float64, error) {
	_, _, arrRho, _, err := d.rates(theta)
	if err != nil {
		return 0, err
	}
	return arrRho, nil
}

func (d *Deconvolution) IsDiscrete() bool {
	return d.Arrival.IsDiscrete()
}

// CheckDrift reports whether an arrival rate term and a service rate term
// satisfy the sign conventions and the negative drift condition
// arrRho < -serRho.
func CheckDrift(arrRho, serRho float64) error {
	if arrRho < 0 {
		return core.OutOfBounds("arrival rho=%v must be non-negative", arrRho)
	}
	if serRho > 0 {
		return core.OutOfBounds("service rho=%v must be non-positive", serRho)
	}
	if arrRho >= -serRho {
		return core.OutOfBounds("unstable: arrival rho=%v is not below service rate %v", arrRho, -serRho)
	}
	return nil
}
