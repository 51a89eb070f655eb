package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrParameterOutOfBounds reports θ, a Hölder exponent or a probability
	// outside its domain, or a violated sign/stability condition.
	ErrParameterOutOfBounds = errors.New("parameter out of bounds")
	// ErrIllegalArgument reports a structural mismatch such as a wrong
	// parameter vector length or an unsupported curve kind.
	ErrIllegalArgument = errors.New("illegal argument")
	// ErrNumericOverflow reports a NaN or infinite intermediate or result.
	ErrNumericOverflow = errors.New("numeric overflow")
	// ErrNoFeasiblePoint is reported when a search never evaluated a
	// feasible point.
	ErrNoFeasiblePoint = errors.New("no feasible point found")
)

// OutOfBounds wraps ErrParameterOutOfBounds with a formatted detail.
func OutOfBounds(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParameterOutOfBounds, fmt.Sprintf(format, args...))
}

// IllegalArgument wraps ErrIllegalArgument with a formatted detail.
func IllegalArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalArgument, fmt.Sprintf(format, args...))
}

// Finite returns v unchanged, or an ErrNumericOverflow naming the quantity
// when v is NaN or infinite.
func Finite(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v, fmt.Errorf("%w: %s evaluated to %v", ErrNumericOverflow, name, v)
	}
	return v, nil
}

// CheckTheta rejects θ <= 0 and non-finite θ.
func CheckTheta(theta float64) error {
	if !(theta > 0) || math.IsInf(theta, 1) {
		return OutOfBounds("theta must be positive and finite, got %v", theta)
	}
	return nil
}

// IsInfeasible reports whether err is a recoverable domain violation, i.e.
// out-of-bounds or numeric overflow.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrParameterOutOfBounds) || errors.Is(err, ErrNumericOverflow)
}

// Outcome is the result of evaluating a bound at one point: either a finite
// value or the reason the point lies outside the feasible region.
type Outcome struct {
	value  float64
	reason error
}

// Feasible wraps a finite bound value.
func Feasible(v float64) Outcome {
	return Outcome{value: v}
}

// Infeasible wraps the reason a point was rejected.
func Infeasible(reason error) Outcome {
	return Outcome{value: math.Inf(1), reason: reason}
}

// IsFeasible reports whether the outcome carries a value.
func (o Outcome) IsFeasible() bool {
	return o.reason == nil
}

// Value returns the bound value, +Inf for infeasible outcomes.
func (o Outcome) Value() float64 {
	return o.value
}

// Reason returns why the outcome is infeasible, nil otherwise.
func (o Outcome) Reason() error {
	return o.reason
}

// Classify turns the (value, error) pair of a bound evaluation into an
// Outcome. Out-of-bounds and overflow errors, as well as non-finite values,
// become Infeasible. Any other error is returned unchanged: illegal arguments
// are programming errors and must reach the caller.
func Classify(v float64, err error) (Outcome, error) {
	if err != nil {
		if IsInfeasible(err) {
			return Infeasible(err), nil
		}
		return Outcome{}, err
	}
	if _, ferr := Finite("bound", v); ferr != nil {
		return Infeasible(ferr), nil
	}
	return Feasible(v), nil
}
