// Package bounds turns an end-to-end (arrival, leftover service) pair and a
// dual parameter θ into a probabilistic performance bound.
//
// Every formula first runs the stability check and then applies the exact
// geometric tail sum for discrete-time arrivals, or the discretized form with
// step τ for continuous-time arrivals. For continuous arrivals both the
// analytic τ and τ = 1 are evaluated and the tighter value is returned.
package bounds
