package solver

import (
	"sync"
	"time"

	"github.com/llm-d/snc-bounds/pkg/bounds"
	"github.com/llm-d/snc-bounds/pkg/core"
)

// backlogSetting is a single DM1 flow on a constant-rate server asking for
// P(backlog > Backlog). It becomes infeasible once θ reaches the DM1 rate.
type backlogSetting struct {
	arrival core.Curve
	server  core.Curve
	backlog float64
}

func newBacklogSetting() backlogSetting {
	return backlogSetting{
		arrival: core.NewDM1(1.2, 1),
		server:  core.NewConstantRate(2.0),
		backlog: 3.0,
	}
}

func (s backlogSetting) StandardBound(params []float64) (float64, error) {
	return bounds.BacklogProb(s.arrival, s.server, params[0], s.backlog, core.Independent)
}

func (s backlogSetting) EnhancedBound(params []float64) (float64, error) {
	return bounds.BacklogProb(s.arrival, s.server, params[0], s.backlog, core.Holder(params[1]))
}

// settingFunc adapts a plain function to Setting.
type settingFunc func(params []float64) (float64, error)

func (f settingFunc) StandardBound(params []float64) (float64, error) {
	return f(params)
}

type countingObserver struct {
	mu         sync.Mutex
	feasible   int
	infeasible int
	runs       int
	lastValue  float64
}

func (c *countingObserver) ObserveEvaluation(_ Name, feasible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if feasible {
		c.feasible++
	} else {
		c.infeasible++
	}
}

func (c *countingObserver) ObserveRun(_ Name, _ time.Duration, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs++
	c.lastValue = value
}
