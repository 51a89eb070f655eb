package algebra

import "github.com/llm-d/snc-bounds/pkg/core"

// Residual is the service left for a flow of interest once cross traffic is
// served under arbitrary scheduling.
type Residual struct {
	Server core.Curve
	Cross  core.Curve
	Dep    core.Dependence
}

// Leftover returns the residual service of server after cross.
func Leftover(server, cross core.Curve, dep core.Dependence) *Residual {
	return &Residual{Server: server, Cross: cross, Dep: dep}
}

func (r *Residual) Sigma(theta float64) (float64, error) {
	if err := core.CheckTheta(theta); err != nil {
		return 0, err
	}
	p, q, err := r.Dep.Split()
	if err != nil {
		return 0, err
	}
	serSigma, err := r.Server.Sigma(q * theta)
	if err != nil {
		return 0, err
	}
	crossSigma, err := r.Cross.Sigma(p * theta)
	if err != nil {
		return 0, err
	}
	return core.Finite("leftover sigma", serSigma+crossSigma)
}

func (r *Residual) Rho(theta float64) (float64, error) {
	if err := core.CheckTheta(theta); err != nil {
		return 0, err
	}
	p, q, err := r.Dep.Split()
	if err != nil {
		return 0, err
	}
	crossRho, err := r.Cross.Rho(p * theta)
	if err != nil {
		return 0, err
	}
	if crossRho < 0 {
		return 0, core.OutOfBounds("leftover: cross arrival rho=%v must be non-negative", crossRho)
	}
	serRho, err := r.Server.Rho(q * theta)
	if err != nil {
		return 0, err
	}
	if serRho > 0 {
		return 0, core.OutOfBounds("leftover: service rho=%v must be non-positive", serRho)
	}
	return core.Finite("leftover rho", serRho+crossRho)
}

func (r *Residual) IsDiscrete() bool {
	return r.Server.IsDiscrete() && r.Cross.IsDiscrete()
}
