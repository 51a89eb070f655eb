package cli

import (
	"context"
	"errors"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	internalconfig "github.com/llm-d/snc-bounds/internal/config"
	"github.com/llm-d/snc-bounds/internal/logging"
	"github.com/llm-d/snc-bounds/internal/metrics"
	"github.com/llm-d/snc-bounds/pkg/bounds"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	configFile string
	viper      *viper.Viper
	cfg        internalconfig.RuntimeConfig
	recorder   *metrics.Recorder
}

// NewRootCommand returns the snc-bounds command tree.
func NewRootCommand() *cobra.Command {
	a := &app{
		viper:    internalconfig.NewViper(),
		recorder: metrics.NewRecorder(),
	}

	root := &cobra.Command{
		Use:   "snc-bounds",
		Short: "Stochastic network calculus performance bounds",
		Long: `snc-bounds computes MGF-based stochastic network calculus bounds
(backlog, delay, output) for single servers and small networks, and searches
the free parameters of a bound with a choice of heuristics.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	defaults := internalconfig.DefaultRuntimeConfig()
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "runtime config file (yaml, json or toml)")
	flags.String(internalconfig.KeyLogLevel, defaults.LogLevel, "log level: info, debug or trace")
	flags.String(internalconfig.KeyLogFormat, defaults.LogFormat, "log format: json, console or pretty")
	flags.String(internalconfig.KeyMetricsAddr, defaults.MetricsAddr, "serve Prometheus metrics on this address, e.g. :9090")
	flags.String(internalconfig.KeyMetricsFile, defaults.MetricsFile, "write a text dump of the metrics to this file on exit")

	root.AddCommand(
		newBoundCommand(a),
		newMonteCarloCommand(a),
		newCatalogCommand(),
	)
	return root
}

// setup resolves the runtime configuration and installs the logger for the
// command about to run.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := internalconfig.LoadRuntimeConfig(a.viper, cmd.Flags(), a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logging.SetLogger(log)
	bounds.SetLogger(log.WithName("bounds"))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logr.NewContext(ctx, log.WithName(cmd.Name())))

	log.V(logging.DEBUG).Info("Runtime configuration loaded",
		"logLevel", cfg.LogLevel,
		"logFormat", cfg.LogFormat,
		"workers", cfg.Workers,
		"metricsAddr", cfg.MetricsAddr,
		"metricsFile", cfg.MetricsFile,
		"goMaxProcs", runtime.GOMAXPROCS(0))
	return nil
}

// withMetrics runs fn while the metrics endpoint is served, then dumps the
// registry to the metrics file. Both are skipped when not configured.
func (a *app) withMetrics(ctx context.Context, fn func(context.Context) error) (err error) {
	log := logr.FromContextOrDiscard(ctx)

	if a.cfg.MetricsAddr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- a.recorder.Serve(serveCtx, a.cfg.MetricsAddr)
		}()
		defer func() {
			cancel()
			if serr := <-done; serr != nil {
				log.Error(serr, "Metrics server stopped with an error")
			}
		}()
	}

	if a.cfg.MetricsFile != "" {
		defer func() {
			if werr := a.recorder.WriteTextFile(a.cfg.MetricsFile); werr != nil {
				err = errors.Join(err, werr)
				return
			}
			log.V(logging.DEBUG).Info("Metrics written", "path", a.cfg.MetricsFile)
		}()
	}

	return fn(ctx)
}
