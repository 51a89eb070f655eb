package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	internalconfig "github.com/llm-d/snc-bounds/internal/config"
	"github.com/llm-d/snc-bounds/internal/montecarlo"
)

type monteCarloOptions struct {
	scenario string
	summary  string
}

func newMonteCarloCommand(a *app) *cobra.Command {
	opts := &monteCarloOptions{}
	defaults := internalconfig.DefaultRuntimeConfig()
	cmd := &cobra.Command{
		Use:     "montecarlo",
		Aliases: []string{"mc"},
		Short:   "Compare heuristics and bounds over randomly drawn networks",
		Example: `  snc-bounds montecarlo --scenario mc.yaml --out results.csv --workers 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMetrics(cmd.Context(), func(ctx context.Context) error {
				report, err := a.runMonteCarlo(ctx, opts)
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(report)
				if err != nil {
					return fmt.Errorf("rendering summary: %w", err)
				}
				if opts.summary != "" {
					return os.WriteFile(opts.summary, out, 0o644)
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&opts.scenario, "scenario", "", "scenario file with a montecarlo section")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "write the YAML summary to this file instead of stdout")
	cmd.Flags().String(internalconfig.KeyOutput, defaults.Output, "CSV file receiving one row per trial")
	cmd.Flags().Int(internalconfig.KeyWorkers, defaults.Workers, "trials evaluated in parallel")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

func (a *app) runMonteCarlo(ctx context.Context, opts *monteCarloOptions) (report *montecarlo.Report, err error) {
	spec, err := internalconfig.LoadScenario(opts.scenario)
	if err != nil {
		return nil, err
	}
	runner, err := montecarlo.NewRunner(spec,
		montecarlo.WithWorkers(a.cfg.Workers),
		montecarlo.WithObserver(a.recorder),
		montecarlo.WithDrawObserver(a.recorder))
	if err != nil {
		return nil, err
	}

	report, err = runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(a.cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing results file: %w", cerr)
		}
	}()
	if err := report.Table.WriteCSV(f); err != nil {
		return nil, fmt.Errorf("writing results: %w", err)
	}

	logr.FromContextOrDiscard(ctx).Info("Results written",
		"path", a.cfg.Output,
		"rows", len(report.Table.Rows))
	return report, nil
}
