package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-logr/logr"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// Optimizer minimizes one bound function of a Setting. It borrows the
// Setting and never mutates it.
type Optimizer struct {
	setting   Setting
	numParams int
	bound     BoundKind
	policy    FloatPolicy
	observer  Observer
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithBound selects the standard or the enhanced bound.
func WithBound(b BoundKind) Option {
	return func(o *Optimizer) {
		o.bound = b
	}
}

// WithFloatPolicy sets how numeric overflow is treated.
func WithFloatPolicy(p FloatPolicy) Option {
	return func(o *Optimizer) {
		o.policy = p
	}
}

// WithObserver installs an evaluation and run observer.
func WithObserver(obs Observer) Option {
	return func(o *Optimizer) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// NewOptimizer returns an Optimizer over numParams parameters. Requesting
// the enhanced bound of a Setting that does not define one is an illegal
// argument.
func NewOptimizer(setting Setting, numParams int, opts ...Option) (*Optimizer, error) {
	o := &Optimizer{
		setting:   setting,
		numParams: numParams,
		observer:  noopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}

	if setting == nil {
		return nil, core.IllegalArgument("nil setting")
	}
	if numParams < 1 {
		return nil, core.IllegalArgument("at least one parameter (theta) is required, got %d", numParams)
	}
	if o.bound == EnhancedBound {
		if _, ok := setting.(EnhancedSetting); !ok {
			return nil, core.IllegalArgument("setting %T has no enhanced bound", setting)
		}
	}
	return o, nil
}

// NumParams returns the length of the parameter vector.
func (o *Optimizer) NumParams() int {
	return o.numParams
}

func (o *Optimizer) boundFunc() func([]float64) (float64, error) {
	if o.bound == EnhancedBound {
		return o.setting.(EnhancedSetting).EnhancedBound
	}
	return o.setting.StandardBound
}

// EvalExcept evaluates the bound at params through the feasibility filter:
// out-of-bounds gives +Inf, and so does overflow unless the optimizer
// propagates it. Illegal arguments are returned.
func (o *Optimizer) EvalExcept(params []float64) (float64, error) {
	if len(params) != o.numParams {
		return 0, core.IllegalArgument("parameter vector has %d entries, want %d", len(params), o.numParams)
	}
	outcome, err := core.Classify(o.boundFunc()(params))
	if err != nil {
		return 0, err
	}
	if o.policy == PropagateOverflow && errors.Is(outcome.Reason(), core.ErrNumericOverflow) {
		return math.Inf(1), outcome.Reason()
	}
	return outcome.Value(), nil
}

// acquire opens the per-run objective scope.
func (o *Optimizer) acquire(ctx context.Context, name Name, log logr.Logger) *objective {
	return &objective{
		ctx:       ctx,
		bound:     o.boundFunc(),
		numParams: o.numParams,
		policy:    o.policy,
		name:      name,
		observer:  o.observer,
		log:       log,
		best:      point{f: math.Inf(1)},
	}
}

// Run validates h against the parameter count, searches, and returns the
// best point found. Infeasible points never surface as errors; an illegal
// argument, a propagated overflow or a cancelled context does.
func (o *Optimizer) Run(ctx context.Context, h Heuristic) (*OptimizationResult, error) {
	if h == nil {
		return nil, core.IllegalArgument("nil heuristic")
	}
	if err := h.Validate(o.numParams); err != nil {
		return nil, err
	}

	log := logr.FromContextOrDiscard(ctx).WithValues("heuristic", h.Name(), "bound", o.bound.String())
	f := o.acquire(ctx, h.Name(), log)
	defer f.release()

	start := time.Now()
	log.V(logDebug).Info("Starting search", "numParams", o.numParams)
	found, err := h.search(f)
	elapsed := time.Since(start)
	if err == nil {
		err = f.fatal
	}
	if err != nil {
		log.Error(err, "Search aborted", "evaluations", f.evaluations)
		return nil, err
	}

	if !found.feasible() || (f.best.feasible() && f.best.f < found.f) {
		found = f.best
	}

	result := &OptimizationResult{
		Heuristic:   h.Name(),
		Bound:       o.bound.String(),
		Value:       math.Inf(1),
		Evaluations: f.evaluations,
		Infeasible:  f.infeasible,
		Duration:    elapsed,
	}
	if found.feasible() {
		result.Params = clone(found.x)
		result.Value = found.f
		result.Feasible = true
	} else {
		f.warn(core.ErrNoFeasiblePoint.Error(), "evaluations", f.evaluations)
	}
	result.Warnings = f.warnings

	o.observer.ObserveRun(h.Name(), elapsed, result.Value)
	log.V(logDebug).Info("Search finished",
		"value", result.Value,
		"params", result.Params,
		"evaluations", result.Evaluations,
		"infeasible", result.Infeasible,
		"duration", elapsed)
	return result, nil
}
