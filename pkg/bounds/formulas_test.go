package bounds

import (
	"math"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/snc-bounds/pkg/core"
)

func TestBacklogProbRegression(t *testing.T) {
	got, err := BacklogProb(core.NewDM1(1.2, 1), core.NewConstantRate(2.0), 1.0, 3.0, core.Independent)
	require.NoError(t, err)
	assert.InDelta(t, 0.2648413131, got, 1e-9)
}

func TestDiscreteFormulas(t *testing.T) {
	arr := core.NewDM1(1.2, 1)
	ser := core.NewConstantRate(2.0)
	theta := 0.8
	rhoA := math.Log(1.2/0.4) / theta
	rhoS := -2.0
	tail := 1 - math.Exp(theta*(rhoA+rhoS))

	tests := []struct {
		name   string
		metric Metric
		value  float64
		want   float64
	}{
		{
			name:   "backlog probability",
			metric: MetricBacklogProb,
			value:  4,
			want:   math.Exp(-theta*4) / tail,
		},
		{
			name:   "backlog",
			metric: MetricBacklog,
			value:  1e-3,
			want:   -math.Log(1e-3*tail) / theta,
		},
		{
			name:   "delay probability",
			metric: MetricDelayProb,
			value:  2,
			want:   math.Exp(theta*rhoS*2) / tail,
		},
		{
			name:   "delay",
			metric: MetricDelay,
			value:  1e-3,
			want:   (math.Log(1e-3*tail) / theta) / rhoS,
		},
		{
			name:   "output",
			metric: MetricOutput,
			value:  3,
			want:   math.Exp(theta*rhoA*3) / tail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.metric, arr, ser, theta, tt.value, core.Independent)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9*math.Max(1, math.Abs(tt.want)))
		})
	}
}

func TestBacklogAndBacklogProbAreInverse(t *testing.T) {
	arr := core.NewDPoisson(0.8, 1)
	ser := core.NewRateLatency(1.5, 0.5)
	theta := 0.6

	b, err := Backlog(arr, ser, theta, 1e-4, core.Independent)
	require.NoError(t, err)
	p, err := BacklogProb(arr, ser, theta, b, core.Independent)
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, p, 1e-12)

	d, err := Delay(arr, ser, theta, 1e-4, core.Independent)
	require.NoError(t, err)
	p, err = DelayProb(arr, ser, theta, d, core.Independent)
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, p, 1e-12)
}

func TestDelayProbNonIncreasingInDelay(t *testing.T) {
	arr := core.NewDM1(1.2, 1)
	ser := core.NewConstantRate(3.0)
	for _, theta := range []float64{0.2, 0.5, 0.9, 1.1} {
		prev := math.Inf(1)
		for delay := 0.0; delay <= 10; delay += 0.5 {
			got, err := DelayProb(arr, ser, theta, delay, core.Independent)
			require.NoError(t, err)
			assert.LessOrEqual(t, got, prev, "theta=%v delay=%v", theta, delay)
			prev = got
		}
	}
}

func TestStabilityCheck(t *testing.T) {
	tests := []struct {
		name    string
		arrival core.Curve
		server  core.Curve
		theta   float64
		dep     core.Dependence
		wantErr bool
	}{
		{name: "stable", arrival: core.NewDM1(1.2, 1), server: core.NewConstantRate(2), theta: 1},
		{name: "unstable at large theta", arrival: core.NewDM1(1.2, 1), server: core.NewConstantRate(2), theta: 1.15, wantErr: true},
		{name: "rates equal", arrival: core.NewTokenBucket(1, 2, 1), server: core.NewConstantRate(2), theta: 1, wantErr: true},
		{name: "zero theta", arrival: core.NewDM1(1.2, 1), server: core.NewConstantRate(2), theta: 0, wantErr: true},
		{name: "hölder split too aggressive", arrival: core.NewDM1(1.2, 1), server: core.NewConstantRate(2), theta: 0.5, dep: core.Holder(3), wantErr: true},
		{name: "hölder split feasible", arrival: core.NewDM1(1.2, 1), server: core.NewConstantRate(2), theta: 0.3, dep: core.Holder(1.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep := tt.dep
			if dep == (core.Dependence{}) {
				dep = core.Independent
			}
			err := StabilityCheck(tt.arrival, tt.server, tt.theta, dep)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrParameterOutOfBounds)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArgumentDomains(t *testing.T) {
	arr := core.NewDM1(1.2, 1)
	ser := core.NewConstantRate(2)

	for _, prob := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := Backlog(arr, ser, 0.5, prob, core.Independent)
		assert.ErrorIs(t, err, core.ErrParameterOutOfBounds, "prob=%v", prob)
		_, err = Delay(arr, ser, 0.5, prob, core.Independent)
		assert.ErrorIs(t, err, core.ErrParameterOutOfBounds, "prob=%v", prob)
	}

	_, err := DelayProb(arr, ser, 0.5, -1, core.Independent)
	assert.ErrorIs(t, err, core.ErrParameterOutOfBounds)
	_, err = Output(arr, ser, 0.5, -1, core.Independent)
	assert.ErrorIs(t, err, core.ErrParameterOutOfBounds)
}

func TestOverflowIsReported(t *testing.T) {
	// huge burst makes exp overflow
	arr := core.NewTokenBucket(1e6, 0.1, 1)
	_, err := BacklogProb(arr, core.NewConstantRate(1), 1, 0, core.Independent)
	assert.ErrorIs(t, err, core.ErrNumericOverflow)
}

func TestContinuousKeepsTighterStep(t *testing.T) {
	arr := core.NewMMOOFluid(0.5, 0.5, 1, 1)
	ser := core.NewConstantRate(1)
	theta := 1.0
	rhoA, err := arr.Rho(theta)
	require.NoError(t, err)
	r := rhoA - 1

	atOne := math.Exp(theta*(rhoA-5)) / (1 - math.Exp(theta*r))
	got, err := BacklogProb(arr, ser, theta, 5, core.Independent)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, atOne*(1+1e-12))

	tauOpt := math.Log(rhoA/1) / (theta * r)
	atOpt := math.Exp(theta*(rhoA*tauOpt-5)) / (1 - math.Exp(theta*tauOpt*r))
	assert.InDelta(t, math.Min(atOne, atOpt), got, 1e-12)
}

func TestTightestStep(t *testing.T) {
	var lines []string
	SetLogger(funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{}))
	defer SetLogger(logr.Discard())

	// tauOpt = ln(0.5/1)/(1*(0.5-1)) = 2 ln 2
	tm := terms{theta: 1, rhoArr: 0.5, rhoSer: -1}
	tauOpt := 2 * math.Ln2

	tests := []struct {
		name      string
		f         func(tau float64) (float64, error)
		want      float64
		wantLines int
	}{
		{
			name:      "Test case 1: analytic step tighter",
			f:         func(tau float64) (float64, error) { return 1 / tau, nil },
			want:      1 / tauOpt,
			wantLines: 0,
		},
		{
			name:      "Test case 2: analytic step looser falls back to tau=1",
			f:         func(tau float64) (float64, error) { return tau, nil },
			want:      1,
			wantLines: 1,
		},
		{
			name: "Test case 3: analytic step infeasible",
			f: func(tau float64) (float64, error) {
				if tau != 1 {
					return 0, core.OutOfBounds("tau=%v", tau)
				}
				return 3, nil
			},
			want:      3,
			wantLines: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines = nil
			got, err := tm.tightest(MetricBacklogProb, tt.f)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			require.Len(t, lines, tt.wantLines)
			for _, l := range lines {
				assert.True(t, strings.Contains(l, "tau-fallback"), l)
			}
		})
	}
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("Delay-Prob")
	require.NoError(t, err)
	assert.Equal(t, MetricDelayProb, m)
	assert.True(t, m.IsProbability())

	_, err = ParseMetric("jitter")
	assert.ErrorIs(t, err, core.ErrIllegalArgument)

	_, err = Evaluate(Metric("jitter"), core.NewDM1(1, 1), core.NewConstantRate(2), 0.5, 1, core.Independent)
	assert.ErrorIs(t, err, core.ErrIllegalArgument)
}
