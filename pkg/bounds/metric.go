package bounds

import (
	"strings"

	"github.com/llm-d/snc-bounds/pkg/core"
)

// Metric selects the performance question a bound answers.
type Metric string

const (
	// MetricBacklog bounds the backlog exceeded with a given probability.
	MetricBacklog Metric = "backlog"
	// MetricBacklogProb bounds the probability of exceeding a backlog.
	MetricBacklogProb Metric = "backlog_prob"
	// MetricDelay bounds the delay exceeded with a given probability.
	MetricDelay Metric = "delay"
	// MetricDelayProb bounds the probability of exceeding a delay.
	MetricDelayProb Metric = "delay_prob"
	// MetricOutput bounds the MGF of the departures in an interval.
	MetricOutput Metric = "output"
)

// Metrics lists every supported metric.
func Metrics() []Metric {
	return []Metric{MetricBacklog, MetricBacklogProb, MetricDelay, MetricDelayProb, MetricOutput}
}

// ParseMetric parses a metric name, ignoring case and '-' versus '_'.
func ParseMetric(name string) (Metric, error) {
	normalized := Metric(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, m := range Metrics() {
		if m == normalized {
			return m, nil
		}
	}
	return "", core.IllegalArgument("unknown metric %q", name)
}

// IsProbability reports whether the metric's result is a probability.
func (m Metric) IsProbability() bool {
	return m == MetricBacklogProb || m == MetricDelayProb
}

// Evaluate dispatches to the formula for m. value is the backlog, delay,
// violation probability or interval length the metric is parameterized by.
func Evaluate(m Metric, arrival, server core.Curve, theta, value float64, dep core.Dependence) (float64, error) {
	switch m {
	case MetricBacklog:
		return Backlog(arrival, server, theta, value, dep)
	case MetricBacklogProb:
		return BacklogProb(arrival, server, theta, value, dep)
	case MetricDelay:
		return Delay(arrival, server, theta, value, dep)
	case MetricDelayProb:
		return DelayProb(arrival, server, theta, value, dep)
	case MetricOutput:
		return Output(arrival, server, theta, value, dep)
	default:
		return 0, core.IllegalArgument("unknown metric %q", m)
	}
}
