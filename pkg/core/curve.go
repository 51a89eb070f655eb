package core

// Curve is an MGF envelope of a traffic or service process.
type Curve interface {
	// Sigma returns the burst term at θ.
	Sigma(theta float64) (float64, error)
	// Rho returns the rate term at θ. Arrivals are non-negative, services
	// non-positive.
	Rho(theta float64) (float64, error)
	// IsDiscrete reports whether the process lives in discrete time.
	IsDiscrete() bool
}

// Role distinguishes arrival curves from service curves.
type Role string

const (
	// RoleArrival marks traffic envelopes (rho >= 0).
	RoleArrival Role = "arrival"
	// RoleService marks service envelopes (rho <= 0).
	RoleService Role = "service"
)

// Cataloged is implemented by every concrete curve in the catalog. Composite
// curves built by the algebra do not implement it.
type Cataloged interface {
	Curve
	Kind() Kind
	// Params returns the formula parameters in Descriptor.Params order.
	Params() []float64
}

// Arrival is a cataloged arrival process with a known long-run mean rate.
type Arrival interface {
	Cataloged
	AverageRate() float64
}

// Service is a cataloged server with a guaranteed long-run rate.
type Service interface {
	Cataloged
	Rate() float64
}
