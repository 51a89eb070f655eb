// Package topology assembles network scenarios into solver settings.
//
// Each assembly reduces its network to a single (arrival, service) pair with
// the composition algebra and evaluates one bound metric on it. params[0] is
// always θ; enhanced bounds append Hölder exponents.
//
//	single_server       arrival -> server
//	fat_cross           foi and cross flows share one server
//	tandem              foi crosses every server, one cross flow per hop
//	overlapping_tandem  cross1 shares both hops with foi, cross2 only the second
package topology
