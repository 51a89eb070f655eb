// Package montecarlo compares heuristics and bound kinds over randomly drawn
// network parameters.
//
// Every trial draws its parameters from its own generator seeded with
// seed+trial, so a trial's row does not depend on the worker that ran it or
// on the number of workers.
package montecarlo
