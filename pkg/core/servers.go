package core

// ConstantRate is a work-conserving server with a fixed service rate.
type ConstantRate struct {
	ServiceRate float64
}

// NewConstantRate returns a ConstantRate server.
func NewConstantRate(rate float64) ConstantRate {
	return ConstantRate{ServiceRate: rate}
}

// Validate checks the formula parameters.
func (s ConstantRate) Validate() error {
	if !(s.ServiceRate > 0) {
		return OutOfBounds("constant_rate: rate must be positive, got %v", s.ServiceRate)
	}
	return nil
}

func (s ConstantRate) Sigma(theta float64) (float64, error) {
	return 0, CheckTheta(theta)
}

func (s ConstantRate) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return -s.ServiceRate, nil
}

func (s ConstantRate) IsDiscrete() bool  { return true }
func (s ConstantRate) Kind() Kind        { return KindConstantRate }
func (s ConstantRate) Params() []float64 { return []float64{s.ServiceRate} }
func (s ConstantRate) Rate() float64     { return s.ServiceRate }

// RateLatency serves at ServiceRate after an initial Latency.
type RateLatency struct {
	ServiceRate float64
	Latency     float64
}

// NewRateLatency returns a RateLatency server.
func NewRateLatency(rate, latency float64) RateLatency {
	return RateLatency{ServiceRate: rate, Latency: latency}
}

// Validate checks the formula parameters.
func (s RateLatency) Validate() error {
	if !(s.ServiceRate > 0) {
		return OutOfBounds("rate_latency: rate must be positive, got %v", s.ServiceRate)
	}
	if s.Latency < 0 {
		return OutOfBounds("rate_latency: latency must be non-negative, got %v", s.Latency)
	}
	return nil
}

func (s RateLatency) Sigma(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return s.ServiceRate * s.Latency, nil
}

func (s RateLatency) Rho(theta float64) (float64, error) {
	if err := CheckTheta(theta); err != nil {
		return 0, err
	}
	return -s.ServiceRate, nil
}

func (s RateLatency) IsDiscrete() bool  { return true }
func (s RateLatency) Kind() Kind        { return KindRateLatency }
func (s RateLatency) Params() []float64 { return []float64{s.ServiceRate, s.Latency} }
func (s RateLatency) Rate() float64     { return s.ServiceRate }
