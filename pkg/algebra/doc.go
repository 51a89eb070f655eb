// Package algebra builds composite MGF curves from existing ones.
//
// The operators mirror the min-plus network calculus operators on the
// (sigma, rho) representation:
//
//   - Deconvolve: the arrival curve of a flow after it crossed a server
//   - Convolve: two servers in tandem
//   - Leftover: the residual service after cross traffic is removed
//   - Aggregate / AggregateList: the sum of arrival curves
//
// Every operator takes a core.Dependence. Independent inputs all see θ,
// dependent inputs see Hölder-scaled values pθ and qθ. Composite curves are
// themselves core.Curve values, so compositions nest to arbitrary depth.
// Operators validate the sign and drift conditions at evaluation time and
// report violations as core.ErrParameterOutOfBounds.
package algebra
