package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-logr/logr"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// point is an evaluated parameter vector.
type point struct {
	x []float64
	f float64
}

func (p point) feasible() bool {
	return p.x != nil && !math.IsInf(p.f, 1)
}

// objective is the feasibility-filtered bound used by one run. It is
// acquired when the run starts and released on every exit path.
type objective struct {
	ctx       context.Context
	bound     func([]float64) (float64, error)
	numParams int
	policy    FloatPolicy
	name      Name
	observer  Observer
	log       logr.Logger

	evaluations int
	infeasible  int
	fatal       error
	best        point
	warnings    []string
	released    bool
}

// value evaluates the bound at x. Infeasible points map to +Inf. A fatal
// error (illegal argument, propagated overflow, cancellation) is recorded
// once, and every later evaluation returns +Inf without calling the bound.
func (f *objective) value(x []float64) float64 {
	if f.fatal != nil || f.released {
		return math.Inf(1)
	}
	if err := f.ctx.Err(); err != nil {
		f.fatal = err
		return math.Inf(1)
	}
	if len(x) != f.numParams {
		f.fatal = core.IllegalArgument("parameter vector has %d entries, want %d", len(x), f.numParams)
		return math.Inf(1)
	}

	f.evaluations++
	v, err := f.bound(x)
	outcome, err := core.Classify(v, err)
	if err != nil {
		f.fatal = fmt.Errorf("evaluating %v: %w", x, err)
		return math.Inf(1)
	}
	if !outcome.IsFeasible() {
		if f.policy == PropagateOverflow && errors.Is(outcome.Reason(), core.ErrNumericOverflow) {
			f.fatal = fmt.Errorf("evaluating %v: %w", x, outcome.Reason())
			return math.Inf(1)
		}
		f.infeasible++
		f.observer.ObserveEvaluation(f.name, false)
		f.log.V(logTrace).Info("Infeasible point", "params", x, "reason", outcome.Reason().Error())
		return math.Inf(1)
	}

	f.observer.ObserveEvaluation(f.name, true)
	if f.best.x == nil || outcome.Value() < f.best.f {
		f.best = point{x: clone(x), f: outcome.Value()}
	}
	return outcome.Value()
}

// stopped reports whether the search should end early.
func (f *objective) stopped() bool {
	return f.fatal != nil
}

// warn records a diagnostic in the result and logs it.
func (f *objective) warn(msg string, keysAndValues ...any) {
	f.warnings = append(f.warnings, formatWarning(msg, keysAndValues...))
	f.log.Info(msg, append([]any{"warning", true}, keysAndValues...)...)
}

func formatWarning(msg string, keysAndValues ...any) string {
	out := msg
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out += fmt.Sprintf(" %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	return out
}

func (f *objective) release() {
	f.released = true
}

func clone(x []float64) []float64 {
	return append([]float64(nil), x...)
}
