// Package config defines the declarative scenario model shared by the
// command line, the Monte-Carlo driver and the solver's heuristic factory.
//
// A ScenarioSpec names a topology, the curves placed on it, the performance
// question (metric and value) and the optimizer used to tighten the bound:
//
//	name: fat-cross-example
//	topology: fat_cross
//	metric: delay_prob
//	value: 4
//	foi:
//	  kind: dm1
//	  params: {lamb: 1.2}
//	cross:
//	  - kind: dm1
//	    params: {lamb: 2.0}
//	servers:
//	  - kind: constant_rate
//	    params: {rate: 3.0}
//	optimizer:
//	  heuristic: grid
//	  bound: standard
//	  bounds: [[0.01, 1.19]]
//	  delta: 0.01
//
// All types carry yaml and json tags so they can be read from scenario files
// and rendered back in results.
package config
