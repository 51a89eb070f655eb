// Package core provides the MGF curve model shared by the algebra, the bound
// formulas and the optimizer.
//
// A Curve abstracts a stochastic traffic or service process to two functions
// of the dual parameter θ > 0:
//
//   - Sigma: the accumulated burst term
//   - Rho: the asymptotic rate term (>= 0 for arrivals, <= 0 for services)
//
// plus a discreteness flag selecting the tail-sum form used by the bound
// formulas.
//
// The package also carries the curve catalog, the error taxonomy and the
// Hölder split used for dependent flows:
//
//   - Arrivals: DM1, DPoisson, MMOOFluid, DMMOO, MarkovModulated, TokenBucket
//   - Services: ConstantRate, RateLatency
//   - Kind and Descriptor: the tagged catalog used for parsing and reporting
//   - Dependence: independent or Hölder-dependent composition
//   - Outcome: Feasible(value) or Infeasible(reason)
//
// Example usage:
//
//	arr := core.NewDM1(1.2, 1)
//	ser := core.NewConstantRate(2.0)
//
//	rho, err := arr.Rho(1.0)
//	if err != nil {
//	    // θ outside the curve's domain
//	}
//
//	// Build a curve from its catalog name and named parameters
//	c, err := core.Build(core.ParseKind("exponential"), map[string]float64{"lamb": 1.2, "n": 1})
//
// Curves are immutable values; composite curves in the algebra package hold
// their inputs by reference and never copy or mutate them.
package core
