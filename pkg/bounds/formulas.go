package bounds

import (
	"math"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/llm-d/snc-bounds/pkg/core"
)

var diagnostics atomic.Pointer[logr.Logger]

// SetLogger installs the logger used for formula diagnostics. The default
// discards everything.
func SetLogger(l logr.Logger) {
	diagnostics.Store(&l)
}

func logger() logr.Logger {
	if l := diagnostics.Load(); l != nil {
		return *l
	}
	return logr.Discard()
}

// terms holds the quantities shared by every formula at one evaluation
// point: s = arrival.σ(pθ) + server.σ(qθ), ρa = arrival.ρ(pθ) and
// ρs = server.ρ(qθ).
type terms struct {
	theta    float64
	sigma    float64
	rhoArr   float64
	rhoSer   float64
	discrete bool
}

func (t terms) rhoDiff() float64 {
	return t.rhoArr + t.rhoSer
}

// tail is 1 - e^{θτ(ρa+ρs)}, positive under the stability condition.
func (t terms) tail(tau float64) float64 {
	return -math.Expm1(t.theta * tau * t.rhoDiff())
}

// StabilityCheck fails with core.ErrParameterOutOfBounds unless
// 0 <= arrival.ρ(pθ) < -server.ρ(qθ).
func StabilityCheck(arrival, server core.Curve, theta float64, dep core.Dependence) error {
	_, err := rates(arrival, server, theta, dep)
	return err
}

func rates(arrival, server core.Curve, theta float64, dep core.Dependence) (terms, error) {
	if err := core.CheckTheta(theta); err != nil {
		return terms{}, err
	}
	p, q, err := dep.Split()
	if err != nil {
		return terms{}, err
	}
	rhoArr, err := arrival.Rho(p * theta)
	if err != nil {
		return terms{}, err
	}
	rhoSer, err := server.Rho(q * theta)
	if err != nil {
		return terms{}, err
	}
	if rhoArr < 0 {
		return terms{}, core.OutOfBounds("arrival rho=%v must be non-negative", rhoArr)
	}
	if rhoSer > 0 {
		return terms{}, core.OutOfBounds("service rho=%v must be non-positive", rhoSer)
	}
	if rhoArr >= -rhoSer {
		return terms{}, core.OutOfBounds("unstable at theta=%v: arrival rho=%v, service rate=%v", theta, rhoArr, -rhoSer)
	}
	return terms{theta: theta, rhoArr: rhoArr, rhoSer: rhoSer, discrete: arrival.IsDiscrete()}, nil
}

func prepare(arrival, server core.Curve, theta float64, dep core.Dependence) (terms, error) {
	t, err := rates(arrival, server, theta, dep)
	if err != nil {
		return t, err
	}
	p, q, _ := dep.Split()
	arrSigma, err := arrival.Sigma(p * theta)
	if err != nil {
		return t, err
	}
	serSigma, err := server.Sigma(q * theta)
	if err != nil {
		return t, err
	}
	t.sigma = arrSigma + serSigma
	return t, nil
}

// tightest evaluates a continuous-time formula at the analytic step
// τ = ln(ρa/-ρs)/(θ(ρa+ρs)) and at τ = 1 and returns the smaller value.
func (t terms) tightest(metric Metric, f func(tau float64) (float64, error)) (float64, error) {
	atOne, err := f(1)
	if err != nil {
		return 0, err
	}
	tauOpt := math.Log(t.rhoArr/-t.rhoSer) / (t.theta * t.rhoDiff())
	if !(tauOpt > 0) || math.IsInf(tauOpt, 1) {
		return atOne, nil
	}
	atOpt, err := f(tauOpt)
	if err != nil {
		return atOne, nil
	}
	if atOpt > atOne {
		logger().Info("analytic discretization step is looser than tau=1",
			"warning", "tau-fallback",
			"metric", metric,
			"theta", t.theta,
			"tauOpt", tauOpt,
			"atTauOpt", atOpt,
			"atTauOne", atOne)
		return atOne, nil
	}
	return atOpt, nil
}

func checkProbability(prob float64) error {
	if !(prob > 0 && prob < 1) {
		return core.OutOfBounds("probability must lie in (0, 1), got %v", prob)
	}
	return nil
}

// BacklogProb bounds P(backlog > backlog).
func BacklogProb(arrival, server core.Curve, theta, backlog float64, dep core.Dependence) (float64, error) {
	t, err := prepare(arrival, server, theta, dep)
	if err != nil {
		return 0, err
	}
	if t.discrete {
		return core.Finite("backlog_prob", math.Exp(theta*(t.sigma-backlog))/t.tail(1))
	}
	return t.tightest(MetricBacklogProb, func(tau float64) (float64, error) {
		return core.Finite("backlog_prob", math.Exp(theta*(t.sigma+t.rhoArr*tau-backlog))/t.tail(tau))
	})
}

// Backlog bounds the backlog exceeded with probability at most prob.
func Backlog(arrival, server core.Curve, theta, prob float64, dep core.Dependence) (float64, error) {
	if err := checkProbability(prob); err != nil {
		return 0, err
	}
	t, err := prepare(arrival, server, theta, dep)
	if err != nil {
		return 0, err
	}
	if t.discrete {
		return core.Finite("backlog", t.sigma-math.Log(prob*t.tail(1))/theta)
	}
	return t.tightest(MetricBacklog, func(tau float64) (float64, error) {
		return core.Finite("backlog", t.sigma+t.rhoArr*tau-math.Log(prob*t.tail(tau))/theta)
	})
}

// DelayProb bounds P(delay > delay).
func DelayProb(arrival, server core.Curve, theta, delay float64, dep core.Dependence) (float64, error) {
	if delay < 0 {
		return 0, core.OutOfBounds("delay must be non-negative, got %v", delay)
	}
	t, err := prepare(arrival, server, theta, dep)
	if err != nil {
		return 0, err
	}
	if t.discrete {
		return core.Finite("delay_prob", math.Exp(theta*(t.sigma+t.rhoSer*delay))/t.tail(1))
	}
	return t.tightest(MetricDelayProb, func(tau float64) (float64, error) {
		return core.Finite("delay_prob", math.Exp(theta*(t.sigma+t.rhoArr*tau+t.rhoSer*delay))/t.tail(tau))
	})
}

// Delay bounds the delay exceeded with probability at most prob.
func Delay(arrival, server core.Curve, theta, prob float64, dep core.Dependence) (float64, error) {
	if err := checkProbability(prob); err != nil {
		return 0, err
	}
	t, err := prepare(arrival, server, theta, dep)
	if err != nil {
		return 0, err
	}
	if t.discrete {
		return core.Finite("delay", (math.Log(prob*t.tail(1))/theta-t.sigma)/t.rhoSer)
	}
	return t.tightest(MetricDelay, func(tau float64) (float64, error) {
		return core.Finite("delay", (math.Log(prob*t.tail(tau))/theta-t.sigma-t.rhoArr*tau)/t.rhoSer)
	})
}

// Output bounds the MGF of the departures over an interval of length delta.
func Output(arrival, server core.Curve, theta, delta float64, dep core.Dependence) (float64, error) {
	if delta < 0 {
		return 0, core.OutOfBounds("interval length must be non-negative, got %v", delta)
	}
	t, err := prepare(arrival, server, theta, dep)
	if err != nil {
		return 0, err
	}
	if t.discrete {
		return core.Finite("output", math.Exp(theta*(t.rhoArr*delta+t.sigma))/t.tail(1))
	}
	return t.tightest(MetricOutput, func(tau float64) (float64, error) {
		return core.Finite("output", math.Exp(theta*(t.rhoArr*(delta+tau)+t.sigma))/t.tail(tau))
	})
}
