package montecarlo

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/utils/ptr"

	internalconfig "github.com/llm-d/snc-bounds/internal/config"
	"github.com/llm-d/snc-bounds/internal/logging"
	"github.com/llm-d/snc-bounds/internal/results"
	"github.com/llm-d/snc-bounds/internal/topology"
	"github.com/llm-d/snc-bounds/pkg/bounds"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

// maxRedraws bounds how often an unstable draw is repeated within a trial.
const maxRedraws = 1000

// RateColumn is the parameter column holding the sampled service rate.
const RateColumn = "rate"

// EnhancedSuffix marks the value column of an enhanced-bound run.
const EnhancedSuffix = "_enhanced"

// DrawObserver is notified of every parameter draw.
type DrawObserver interface {
	ObserveDraw(stable bool)
}

// Runner executes the Monte-Carlo study of one scenario.
type Runner struct {
	scenario   *config.ScenarioSpec
	mc         *config.MonteCarloSpec
	query      topology.Query
	kind       core.Kind
	paramNames []string
	heuristics []column
	enhanced   bool
	workers    int
	observer   solver.Observer
	draws      DrawObserver
}

// column is one heuristic run per trial.
type column struct {
	name  string
	spec  config.OptimizerSpec
	bound solver.BoundKind
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the trials evaluated in parallel.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithObserver forwards optimizer evaluations and runs to obs.
func WithObserver(obs solver.Observer) Option {
	return func(r *Runner) {
		r.observer = obs
	}
}

// WithDrawObserver reports every parameter draw to obs.
func WithDrawObserver(obs DrawObserver) Option {
	return func(r *Runner) {
		r.draws = obs
	}
}

// NewRunner checks that scenario carries a usable Monte-Carlo section and
// prepares the heuristic columns.
func NewRunner(scenario *config.ScenarioSpec, opts ...Option) (*Runner, error) {
	if scenario == nil || scenario.MonteCarlo == nil {
		return nil, core.IllegalArgument("scenario has no montecarlo section")
	}
	mc := scenario.MonteCarlo
	if err := mc.Validate(); err != nil {
		return nil, core.IllegalArgument("montecarlo: %v", err)
	}

	metric, err := bounds.ParseMetric(scenario.Metric)
	if err != nil {
		return nil, err
	}
	kind := core.ParseKind(mc.Arrival)
	d, ok := core.Describe(kind)
	if !ok || d.Role != core.RoleArrival || kind == core.KindMarkovModulated {
		return nil, core.IllegalArgument("montecarlo arrival %q must be a parametric arrival kind", mc.Arrival)
	}
	for _, name := range d.Params {
		if _, ok := mc.Params[name]; !ok && name != "n" {
			return nil, core.IllegalArgument("montecarlo: no range for %s parameter %q", kind, name)
		}
	}
	for name := range mc.Params {
		if !contains(d.Params, name) {
			return nil, core.IllegalArgument("montecarlo: %s has no parameter %q", kind, name)
		}
	}

	r := &Runner{
		scenario:   scenario,
		mc:         mc,
		query:      topology.Query{Metric: metric, Value: scenario.Value},
		kind:       kind,
		paramNames: append(append([]string(nil), d.Params...), RateColumn),
		enhanced:   ptr.Deref(mc.Enhanced, true),
		workers:    1,
	}
	for _, opt := range opts {
		opt(r)
	}

	probe, err := r.assemble(r.midpoint())
	if err != nil {
		return nil, err
	}
	_, enhancedErr := probe.NumParams(solver.EnhancedBound)

	used := make(map[string]bool)
	for _, h := range internalconfig.MonteCarloHeuristics(scenario) {
		name, err := solver.ParseName(h.Heuristic)
		if err != nil {
			return nil, err
		}
		label := string(name)
		for i := 2; used[label]; i++ {
			label = fmt.Sprintf("%s_%d", name, i)
		}
		used[label] = true

		r.heuristics = append(r.heuristics, column{name: label, spec: h, bound: solver.StandardBound})
		if r.enhanced && enhancedErr == nil {
			r.heuristics = append(r.heuristics, column{name: label + EnhancedSuffix, spec: h, bound: solver.EnhancedBound})
		}
	}
	return r, nil
}

// Columns returns the value column names in row order.
func (r *Runner) Columns() []string {
	out := make([]string, len(r.heuristics))
	for i, h := range r.heuristics {
		out[i] = h.name
	}
	return out
}

// ParamNames returns the parameter column names in row order.
func (r *Runner) ParamNames() []string {
	return append([]string(nil), r.paramNames...)
}

// midpoint returns the centre of every sampling range.
func (r *Runner) midpoint() []float64 {
	out := make([]float64, len(r.paramNames))
	for i, name := range r.paramNames[:len(r.paramNames)-1] {
		out[i] = r.sampleRange(name).mid()
		if name == "n" {
			out[i] = math.Max(1, math.Round(out[i]))
		}
	}
	out[len(out)-1] = (r.mc.ServiceRate.Min + r.mc.ServiceRate.Max) / 2
	return out
}

type span struct{ min, max float64 }

func (s span) mid() float64 { return (s.min + s.max) / 2 }

func (r *Runner) sampleRange(name string) span {
	if rg, ok := r.mc.Params[name]; ok {
		return span{rg.Min, rg.Max}
	}
	return span{1, 1}
}

// assemble builds the trial's network from a parameter vector in
// ParamNames order.
func (r *Runner) assemble(draw []float64) (topology.Setting, error) {
	params := make(map[string]float64, len(draw)-1)
	for i, name := range r.paramNames[:len(r.paramNames)-1] {
		params[name] = draw[i]
	}
	rate := draw[len(draw)-1]

	newArrival := func() (core.Curve, error) {
		return core.Build(r.kind, params)
	}
	foi, err := newArrival()
	if err != nil {
		return nil, err
	}
	cross := make([]core.Curve, len(r.scenario.Cross))
	for i := range cross {
		if cross[i], err = newArrival(); err != nil {
			return nil, err
		}
	}
	servers := make([]core.Curve, len(r.scenario.Servers))
	for i := range servers {
		servers[i] = core.NewConstantRate(rate)
	}
	return topology.Assemble(r.scenario.Topology, r.query, foi, cross, servers)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// draw samples parameters until the network is stable or ctx is done.
func (r *Runner) draw(ctx context.Context, rng *rand.Rand) ([]float64, topology.Setting, error) {
	dists := make([]distuv.Uniform, len(r.paramNames))
	for i, name := range r.paramNames[:len(r.paramNames)-1] {
		s := r.sampleRange(name)
		dists[i] = distuv.Uniform{Min: s.min, Max: s.max, Src: rng}
	}
	dists[len(dists)-1] = distuv.Uniform{Min: r.mc.ServiceRate.Min, Max: r.mc.ServiceRate.Max, Src: rng}

	for attempt := 0; attempt < maxRedraws; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		x := make([]float64, len(dists))
		for i := range dists {
			x[i] = sample(dists[i])
			if r.paramNames[i] == "n" {
				x[i] = math.Max(1, math.Round(x[i]))
			}
		}
		setting, err := r.assemble(x)
		if err != nil {
			return nil, nil, err
		}
		stable := setting.Stable()
		if r.draws != nil {
			r.draws.ObserveDraw(stable)
		}
		if stable {
			return x, setting, nil
		}
	}
	return nil, nil, core.OutOfBounds("no stable parameter draw in %d attempts", maxRedraws)
}

// sample draws from d, or returns its bound for a degenerate range.
func sample(d distuv.Uniform) float64 {
	if d.Min == d.Max {
		return d.Min
	}
	return d.Rand()
}

// trial runs every heuristic column on one draw.
func (r *Runner) trial(ctx context.Context, i int) (results.Row, error) {
	if err := ctx.Err(); err != nil {
		return results.Row{}, err
	}
	seed := r.mc.Seed + uint64(i)
	x, setting, err := r.draw(ctx, newRand(seed))
	if err != nil {
		return results.Row{}, fmt.Errorf("trial %d: %w", i, err)
	}

	row := results.Row{
		RunID:  uuid.NewString(),
		Trial:  i,
		Params: x,
		Values: make([]float64, len(r.heuristics)),
	}
	for k, col := range r.heuristics {
		res, err := r.run(ctx, setting, col, seed)
		if err != nil {
			return results.Row{}, fmt.Errorf("trial %d, %s: %w", i, col.name, err)
		}
		row.Values[k] = res.Value
	}
	return row, nil
}

func (r *Runner) run(ctx context.Context, setting topology.Setting, col column, seed uint64) (*solver.OptimizationResult, error) {
	n, err := setting.NumParams(col.bound)
	if err != nil {
		return nil, err
	}
	spec := config.FitOptimizerSpec(col.spec, n)
	if spec.Seed == 0 {
		spec.Seed = seed
	}
	h, err := solver.NewHeuristic(spec, n)
	if err != nil {
		return nil, err
	}
	opts := []solver.Option{solver.WithBound(col.bound)}
	if r.observer != nil {
		opts = append(opts, solver.WithObserver(r.observer))
	}
	opt, err := solver.NewOptimizer(setting, n, opts...)
	if err != nil {
		return nil, err
	}
	return opt.Run(ctx, h)
}

// Run evaluates every trial and returns the rows ordered by trial together
// with their summary.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("scenario", r.scenario.Name)
	log.Info("Starting Monte-Carlo study",
		"trials", r.mc.Trials,
		"workers", r.workers,
		"columns", r.Columns())
	start := time.Now()

	rows := make([]results.Row, r.mc.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < r.mc.Trials && gctx.Err() == nil; i++ {
		g.Go(func() error {
			row, err := r.trial(gctx, i)
			if err != nil {
				return err
			}
			rows[i] = row
			log.V(logging.DEBUG).Info("Trial done", "trial", i, "values", row.Values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := results.NewTable(r.paramNames, r.Columns())
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}
	table.SortByTrial()

	report := &Report{
		Table:   table,
		Summary: r.summarize(table),
	}
	log.Info("Monte-Carlo study finished", "duration", time.Since(start))
	return report, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
