package cli

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	internalconfig "github.com/llm-d/snc-bounds/internal/config"
	"github.com/llm-d/snc-bounds/internal/topology"
	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/solver"
)

type boundOptions struct {
	scenario          string
	bound             string
	heuristic         string
	propagateOverflow bool
}

// BoundReport is the document printed by the bound command.
type BoundReport struct {
	Scenario string                     `json:"scenario"`
	Topology string                     `json:"topology"`
	Metric   string                     `json:"metric"`
	Value    float64                    `json:"value"`
	Result   *solver.OptimizationResult `json:"result"`
}

func newBoundCommand(a *app) *cobra.Command {
	opts := &boundOptions{}
	cmd := &cobra.Command{
		Use:   "bound",
		Short: "Optimize the bound of one scenario",
		Example: `  snc-bounds bound --scenario fat-cross.yaml
  snc-bounds bound --scenario fat-cross.yaml --bound enhanced --heuristic nelder_mead`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMetrics(cmd.Context(), func(ctx context.Context) error {
				report, err := a.runBound(ctx, opts)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(report)
				if err != nil {
					return fmt.Errorf("rendering result: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "scenario file")
	cmd.Flags().StringVar(&opts.bound, "bound", "", "override optimizer.bound: standard or enhanced")
	cmd.Flags().StringVar(&opts.heuristic, "heuristic", "", "override optimizer.heuristic")
	cmd.Flags().BoolVar(&opts.propagateOverflow, "propagate-overflow", false, "abort on numeric overflow instead of treating it as infeasible")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func (a *app) runBound(ctx context.Context, opts *boundOptions) (*BoundReport, error) {
	spec, err := internalconfig.LoadScenario(opts.scenario)
	if err != nil {
		return nil, err
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("scenario", spec.Name)

	optimizer := spec.Optimizer
	if opts.bound != "" {
		optimizer.Bound = opts.bound
	}
	if opts.heuristic != "" {
		optimizer.Heuristic = opts.heuristic
	}

	setting, err := topology.FromScenario(spec)
	if err != nil {
		return nil, err
	}
	kind, err := solver.ParseBoundKind(optimizer.Bound)
	if err != nil {
		return nil, err
	}
	n, err := setting.NumParams(kind)
	if err != nil {
		return nil, err
	}
	h, err := solver.NewHeuristic(config.FitOptimizerSpec(optimizer, n), n)
	if err != nil {
		return nil, err
	}

	solverOpts := []solver.Option{
		solver.WithBound(kind),
		solver.WithObserver(a.recorder),
	}
	if opts.propagateOverflow {
		solverOpts = append(solverOpts, solver.WithFloatPolicy(solver.PropagateOverflow))
	}
	o, err := solver.NewOptimizer(setting, n, solverOpts...)
	if err != nil {
		return nil, err
	}

	log.Info("Optimizing bound",
		"topology", setting.Name(),
		"bound", kind.String(),
		"heuristic", h.Name(),
		"params", n)
	res, err := o.Run(logr.NewContext(ctx, log), h)
	if err != nil {
		return nil, err
	}
	log.Info("Bound optimized", "value", res.Value, "params", res.Params, "feasible", res.Feasible)

	return &BoundReport{
		Scenario: spec.Name,
		Topology: setting.Name(),
		Metric:   spec.Metric,
		Value:    spec.Value,
		Result:   res,
	}, nil
}
