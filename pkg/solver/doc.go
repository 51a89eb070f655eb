// Package solver finds the dual parameters that give the tightest bound.
//
// A Setting exposes a bound as a scalar function of a parameter vector whose
// first entry is θ and whose remaining entries are Hölder exponents. Most of
// the parameter space is infeasible: the algebra and bound formulas reject
// such points with core.ErrParameterOutOfBounds. The Optimizer wraps every
// evaluation in a feasibility filter that maps these rejections to +Inf, so
// generic minimizers can search the implicitly constrained space.
//
// Key Components:
//
//   - Optimizer: validates the request, owns the per-run float policy and
//     observer, and runs one Heuristic
//   - Heuristic: GridSearch, PatternSearch, NelderMead, SimulatedAnnealing,
//     BasinHopping, DifferentialEvolution, DualAnnealing, BFGS
//   - NewHeuristic: builds a Heuristic from a config.OptimizerSpec
//
// Example usage:
//
//	opt, err := solver.NewOptimizer(setting, 1)
//	if err != nil {
//	    return err
//	}
//	result, err := opt.Run(ctx, solver.GridSearch{
//	    Bounds: [][2]float64{{0.01, 1.19}},
//	    Delta:  0.01,
//	})
//	if err != nil {
//	    // only illegal arguments reach the caller
//	    return err
//	}
//	log.Info("bound", "theta", result.Params[0], "value", result.Value)
//
// Evaluations within one run are sequential and deterministic for a fixed
// seed. Independent runs share no state and may run concurrently.
package solver
