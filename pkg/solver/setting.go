package solver

import (
	"time"

	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
)

// Setting is a fixed topology plus a performance question, exposed as a
// scalar bound over a parameter vector. params[0] is always θ.
type Setting interface {
	StandardBound(params []float64) (float64, error)
}

// EnhancedSetting additionally exposes a multi-parameter bound whose extra
// parameters are Hölder exponents.
type EnhancedSetting interface {
	Setting
	EnhancedBound(params []float64) (float64, error)
}

// BoundKind selects which bound function of a Setting is minimized.
type BoundKind int

// enumeration of BoundKind
const (
	StandardBound BoundKind = iota
	EnhancedBound
)

func (b BoundKind) String() string {
	switch b {
	case StandardBound:
		return config.BoundStandard
	case EnhancedBound:
		return config.BoundEnhanced
	default:
		return "unknown"
	}
}

// ParseBoundKind parses "standard" or "enhanced". The empty string is
// standard.
func ParseBoundKind(s string) (BoundKind, error) {
	switch s {
	case "", config.BoundStandard:
		return StandardBound, nil
	case config.BoundEnhanced:
		return EnhancedBound, nil
	default:
		return StandardBound, core.IllegalArgument("unknown bound kind %q", s)
	}
}

// FloatPolicy decides how numeric overflow is treated during one run.
type FloatPolicy int

// enumeration of FloatPolicy
const (
	// OverflowAsInfinity maps overflow to +Inf like any infeasible point.
	OverflowAsInfinity FloatPolicy = iota
	// PropagateOverflow aborts the run with the overflow error.
	PropagateOverflow
)

// Observer receives per-evaluation and per-run notifications. Implementations
// must be safe for concurrent use when runs execute in parallel.
type Observer interface {
	ObserveEvaluation(heuristic Name, feasible bool)
	ObserveRun(heuristic Name, elapsed time.Duration, value float64)
}

type noopObserver struct{}

func (noopObserver) ObserveEvaluation(Name, bool) {}

func (noopObserver) ObserveRun(Name, time.Duration, float64) {}
