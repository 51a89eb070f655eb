/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes optimizer and Monte-Carlo activity as Prometheus
// metrics.
package metrics

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/llm-d/snc-bounds/pkg/solver"
)

const namespace = "snc"

// Label values of the outcome label.
const (
	OutcomeFeasible   = "feasible"
	OutcomeInfeasible = "infeasible"
)

// Recorder owns a registry and implements solver.Observer. It is safe for
// concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	evaluations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	bestBound   *prometheus.GaugeVec
	trials      *prometheus.CounterVec
}

// NewRecorder returns a Recorder registered on a fresh registry together
// with the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objective_evaluations_total",
			Help:      "Bound evaluations by heuristic and outcome.",
		}, []string{"heuristic", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_runs_total",
			Help:      "Completed optimizer runs by heuristic and outcome.",
		}, []string{"heuristic", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimizer_run_duration_seconds",
			Help:      "Wall time of optimizer runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"heuristic"}),
		bestBound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_last_bound",
			Help:      "Bound value of the last feasible run per heuristic.",
		}, []string{"heuristic"}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "montecarlo_draws_total",
			Help:      "Monte-Carlo parameter draws by outcome (accepted or unstable).",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		r.evaluations,
		r.runs,
		r.runDuration,
		r.bestBound,
		r.trials,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry backing the Recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveEvaluation counts one bound evaluation.
func (r *Recorder) ObserveEvaluation(heuristic solver.Name, feasible bool) {
	r.evaluations.WithLabelValues(string(heuristic), outcome(feasible)).Inc()
}

// ObserveRun records a finished run. Infeasible runs leave the bound gauge
// untouched.
func (r *Recorder) ObserveRun(heuristic solver.Name, elapsed time.Duration, value float64) {
	feasible := !math.IsInf(value, 0) && !math.IsNaN(value)
	r.runs.WithLabelValues(string(heuristic), outcome(feasible)).Inc()
	r.runDuration.WithLabelValues(string(heuristic)).Observe(elapsed.Seconds())
	if feasible {
		r.bestBound.WithLabelValues(string(heuristic)).Set(value)
	}
}

// ObserveDraw counts one Monte-Carlo parameter draw. Draws violating the
// stability condition are counted as unstable.
func (r *Recorder) ObserveDraw(stable bool) {
	label := "accepted"
	if !stable {
		label = "unstable"
	}
	r.trials.WithLabelValues(label).Inc()
}

func outcome(feasible bool) string {
	if feasible {
		return OutcomeFeasible
	}
	return OutcomeInfeasible
}
