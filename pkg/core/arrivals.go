package core

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// DM1 is a discrete-time arrival with i.i.d. exponentially distributed
// increments of rate Lambda, aggregated over N flows.
type DM1 struct {
	Lambda float64
	N      int
}

// NewDM1 returns a DM1 arrival.
func NewDM1(lambda float64, n int) DM1 {
	return DM1{Lambda: lambda, N: n}
}

// Validate checks the formula parameters.
func (a DM1) Validate() error {
	if !(a.Lambda > 0) {
		return OutOfBounds("dm1: lamb must be positive, got %v", a.Lambda)
	}
	return checkFlows(a.N)
}

func (a DM1) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

func (a DM1) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	if theta >= a.Lambda {
		return 0, OutOfBounds("dm1: theta=%v must be below lamb=%v", theta, a.Lambda)
	}
	return Finite("dm1 rho", float64(a.N)/theta*math.Log(a.Lambda/(a.Lambda-theta)))
}

func (a DM1) IsDiscrete() bool     { return true }
func (a DM1) Kind() Kind           { return KindDM1 }
func (a DM1) Params() []float64    { return []float64{a.Lambda, float64(a.N)} }
func (a DM1) AverageRate() float64 { return float64(a.N) / a.Lambda }

// DPoisson is a discrete-time arrival with Poisson distributed increments of
// mean Lambda per slot, aggregated over N flows.
type DPoisson struct {
	Lambda float64
	N      int
}

// NewDPoisson returns a DPoisson arrival.
func NewDPoisson(lambda float64, n int) DPoisson {
	return DPoisson{Lambda: lambda, N: n}
}

// Validate checks the formula parameters.
func (a DPoisson) Validate() error {
	if !(a.Lambda > 0) {
		return OutOfBounds("dpoisson: lamb must be positive, got %v", a.Lambda)
	}
	return checkFlows(a.N)
}

func (a DPoisson) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

func (a DPoisson) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return Finite("dpoisson rho", float64(a.N)*a.Lambda*math.Expm1(theta)/theta)
}

func (a DPoisson) IsDiscrete() bool     { return true }
func (a DPoisson) Kind() Kind           { return KindDPoisson }
func (a DPoisson) Params() []float64    { return []float64{a.Lambda, float64(a.N)} }
func (a DPoisson) AverageRate() float64 { return float64(a.N) * a.Lambda }

// MMOOFluid is a continuous-time Markov-modulated on-off fluid source. It
// leaves the on state with rate Mu, leaves the off state with rate Lambda and
// emits at Peak while on.
type MMOOFluid struct {
	Mu     float64
	Lambda float64
	Peak   float64
	N      int
}

// NewMMOOFluid returns an MMOOFluid arrival.
func NewMMOOFluid(mu, lambda, peak float64, n int) MMOOFluid {
	return MMOOFluid{Mu: mu, Lambda: lambda, Peak: peak, N: n}
}

// Validate checks the formula parameters.
func (a MMOOFluid) Validate() error {
	if !(a.Mu > 0) || !(a.Lambda > 0) || !(a.Peak > 0) {
		return OutOfBounds("mmoo_fluid: mu, lamb and peak must be positive, got %v, %v, %v",
			a.Mu, a.Lambda, a.Peak)
	}
	return checkFlows(a.N)
}

func (a MMOOFluid) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

func (a MMOOFluid) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	pt := a.Peak * theta
	b := pt - a.Mu - a.Lambda
	root := math.Sqrt(b*b + 4*a.Lambda*pt)
	return Finite("mmoo_fluid rho", float64(a.N)/(2*theta)*(b+root))
}

func (a MMOOFluid) IsDiscrete() bool  { return false }
func (a MMOOFluid) Kind() Kind        { return KindMMOOFluid }
func (a MMOOFluid) Params() []float64 { return []float64{a.Mu, a.Lambda, a.Peak, float64(a.N)} }

func (a MMOOFluid) AverageRate() float64 {
	return float64(a.N) * a.Peak * a.Lambda / (a.Lambda + a.Mu)
}

// DMMOO is a discrete-time on-off source. Each slot it stays on with
// probability StayOn, stays off with probability StayOff and emits Peak per
// slot while on.
type DMMOO struct {
	StayOn  float64
	StayOff float64
	Peak    float64
	N       int
}

// NewDMMOO returns a DMMOO arrival.
func NewDMMOO(stayOn, stayOff, peak float64, n int) DMMOO {
	return DMMOO{StayOn: stayOn, StayOff: stayOff, Peak: peak, N: n}
}

// Validate checks the formula parameters.
func (a DMMOO) Validate() error {
	if a.StayOn < 0 || a.StayOn > 1 || a.StayOff < 0 || a.StayOff > 1 {
		return OutOfBounds("dmmoo: stay probabilities must lie in [0, 1], got on=%v off=%v",
			a.StayOn, a.StayOff)
	}
	if a.StayOn+a.StayOff >= 2 {
		return OutOfBounds("dmmoo: chain is reducible with stay_on=stay_off=1")
	}
	if !(a.Peak > 0) {
		return OutOfBounds("dmmoo: peak must be positive, got %v", a.Peak)
	}
	return checkFlows(a.N)
}

func (a DMMOO) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

// Rho uses the closed-form largest eigenvalue of the 2x2 tilted transition
// matrix [[off, 1-off], [1-on, on]]·diag(1, e^{θ·peak}).
func (a DMMOO) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	e := math.Exp(theta * a.Peak)
	trace := a.StayOff + a.StayOn*e
	det := (a.StayOff + a.StayOn - 1) * e
	largest := (trace + math.Sqrt(trace*trace-4*det)) / 2
	return Finite("dmmoo rho", float64(a.N)/theta*math.Log(largest))
}

func (a DMMOO) IsDiscrete() bool  { return true }
func (a DMMOO) Kind() Kind        { return KindDMMOO }
func (a DMMOO) Params() []float64 { return []float64{a.StayOn, a.StayOff, a.Peak, float64(a.N)} }

func (a DMMOO) AverageRate() float64 {
	leaveOff, leaveOn := 1-a.StayOff, 1-a.StayOn
	return float64(a.N) * a.Peak * leaveOff / (leaveOff + leaveOn)
}

// MarkovModulated is a discrete-time source whose per-slot increment is
// Rates[i] while a finite Markov chain is in state i. The rate term is the
// logarithm of the spectral radius of the tilted transition matrix.
type MarkovModulated struct {
	transition *mat.Dense
	rates      []float64
	n          int
}

// NewMarkovModulated validates and returns a Markov-modulated arrival.
// transition must be a row-stochastic square matrix with one rate per row.
func NewMarkovModulated(transition [][]float64, rates []float64, n int) (*MarkovModulated, error) {
	k := len(transition)
	if k == 0 || len(rates) != k {
		return nil, IllegalArgument("markov_modulated: need a non-empty square transition matrix and one rate per state, got %d rows and %d rates",
			k, len(rates))
	}
	m := mat.NewDense(k, k, nil)
	for i, row := range transition {
		if len(row) != k {
			return nil, IllegalArgument("markov_modulated: row %d has %d entries, want %d", i, len(row), k)
		}
		sum := 0.0
		for j, p := range row {
			if p < 0 || p > 1 {
				return nil, OutOfBounds("markov_modulated: transition[%d][%d]=%v is not a probability", i, j, p)
			}
			m.Set(i, j, p)
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			return nil, OutOfBounds("markov_modulated: row %d sums to %v, want 1", i, sum)
		}
	}
	for i, r := range rates {
		if r < 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			return nil, OutOfBounds("markov_modulated: rate[%d]=%v must be finite and non-negative", i, r)
		}
	}
	if err := checkFlows(n); err != nil {
		return nil, err
	}
	return &MarkovModulated{transition: m, rates: append([]float64(nil), rates...), n: n}, nil
}

func (a *MarkovModulated) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

func (a *MarkovModulated) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	k := len(a.rates)
	tilted := mat.NewDense(k, k, nil)
	for j, r := range a.rates {
		w, err := Finite("markov_modulated tilt", math.Exp(theta*r))
		if err != nil {
			return 0, err
		}
		for i := 0; i < k; i++ {
			tilted.Set(i, j, a.transition.At(i, j)*w)
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(tilted, mat.EigenNone); !ok {
		return 0, ErrNumericOverflow
	}
	radius := 0.0
	for _, v := range eig.Values(nil) {
		radius = math.Max(radius, cmplx.Abs(v))
	}
	return Finite("markov_modulated rho", float64(a.n)/theta*math.Log(radius))
}

func (a *MarkovModulated) IsDiscrete() bool  { return true }
func (a *MarkovModulated) Kind() Kind        { return KindMarkovModulated }
func (a *MarkovModulated) Params() []float64 { return []float64{float64(a.n)} }

// States returns the number of states of the modulating chain.
func (a *MarkovModulated) States() int { return len(a.rates) }

// AverageRate weighs the per-state rates by the stationary distribution of
// the chain, found by power iteration on the lazy chain (P+I)/2.
func (a *MarkovModulated) AverageRate() float64 {
	k := len(a.rates)
	lazy := mat.NewDense(k, k, nil)
	lazy.Add(a.transition, eye(k))
	lazy.Scale(0.5, lazy)

	pi := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		pi.SetVec(i, 1/float64(k))
	}
	next := mat.NewVecDense(k, nil)
	for iter := 0; iter < 100000; iter++ {
		next.MulVec(lazy.T(), pi)
		diff := 0.0
		for i := 0; i < k; i++ {
			diff = math.Max(diff, math.Abs(next.AtVec(i)-pi.AtVec(i)))
		}
		pi, next = next, pi
		if diff < 1e-14 {
			break
		}
	}

	mean := 0.0
	for i, r := range a.rates {
		mean += pi.AtVec(i) * r
	}
	return float64(a.n) * mean
}

func eye(k int) *mat.Dense {
	m := mat.NewDense(k, k, nil)
	for i := 0; i < k; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// TokenBucket is a deterministic (sigma, rho) regulated arrival aggregated
// over N flows.
type TokenBucket struct {
	Burst float64
	Rate  float64
	N     int
}

// NewTokenBucket returns a TokenBucket arrival.
func NewTokenBucket(sigma, rho float64, n int) TokenBucket {
	return TokenBucket{Burst: sigma, Rate: rho, N: n}
}

// Validate checks the formula parameters.
func (a TokenBucket) Validate() error {
	if a.Burst < 0 || a.Rate < 0 {
		return OutOfBounds("token_bucket: sigma and rho must be non-negative, got %v, %v", a.Burst, a.Rate)
	}
	return checkFlows(a.N)
}

func (a TokenBucket) Sigma(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return float64(a.N) * a.Burst, nil
}

func (a TokenBucket) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return float64(a.N) * a.Rate, nil
}

func (a TokenBucket) IsDiscrete() bool     { return true }
func (a TokenBucket) Kind() Kind           { return KindTokenBucket }
func (a TokenBucket) Params() []float64    { return []float64{a.Burst, a.Rate, float64(a.N)} }
func (a TokenBucket) AverageRate() float64 { return float64(a.N) * a.Rate }

func checkFlows(n int) error {
	if n < 1 {
		return OutOfBounds("flow count n must be at least 1, got %d", n)
	}
	return nil
}
