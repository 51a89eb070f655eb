package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind names a curve variant in the catalog.
type Kind string

const (
	// KindDM1 is a discrete-time process with exponentially distributed increments.
	KindDM1 Kind = "dm1"
	// KindDPoisson is a discrete-time process with Poisson distributed increments.
	KindDPoisson Kind = "dpoisson"
	// KindMMOOFluid is a continuous-time Markov-modulated on-off fluid source.
	KindMMOOFluid Kind = "mmoo_fluid"
	// KindDMMOO is a discrete-time Markov-modulated on-off source.
	KindDMMOO Kind = "dmmoo"
	// KindMarkovModulated is a discrete-time source modulated by an arbitrary
	// finite Markov chain.
	KindMarkovModulated Kind = "markov_modulated"
	// KindTokenBucket is a leaky-bucket regulated (deterministic) arrival.
	KindTokenBucket Kind = "token_bucket"
	// KindConstantRate is a work-conserving server with a fixed rate.
	KindConstantRate Kind = "constant_rate"
	// KindRateLatency is a constant-rate server with an initial latency.
	KindRateLatency Kind = "rate_latency"
	// KindUnknown is returned when a name matches no catalog entry.
	KindUnknown Kind = "unknown"
)

// Descriptor describes a catalog entry for parsing and reporting.
type Descriptor struct {
	Kind Kind `json:"kind"`
	Role Role `json:"role"`
	// Params are the formula parameter names in constructor order.
	Params []string `json:"params"`
	// Aliases are alternative names accepted by ParseKind.
	Aliases     []string `json:"aliases,omitempty"`
	Discrete    bool     `json:"discrete"`
	Description string   `json:"description"`
}

var catalog = map[Kind]Descriptor{
	KindDM1: {
		Kind: KindDM1, Role: RoleArrival, Params: []string{"lamb", "n"},
		Aliases: []string{"exponential", "exp", "m1"}, Discrete: true,
		Description: "exponentially distributed increments with rate lamb, n flows",
	},
	KindDPoisson: {
		Kind: KindDPoisson, Role: RoleArrival, Params: []string{"lamb", "n"},
		Aliases: []string{"poisson"}, Discrete: true,
		Description: "Poisson distributed increments with mean lamb, n flows",
	},
	KindMMOOFluid: {
		Kind: KindMMOOFluid, Role: RoleArrival, Params: []string{"mu", "lamb", "peak", "n"},
		Aliases:     []string{"mmoo"},
		Description: "on-off fluid source, on->off rate mu, off->on rate lamb, peak rate while on",
	},
	KindDMMOO: {
		Kind: KindDMMOO, Role: RoleArrival, Params: []string{"stay_on", "stay_off", "peak", "n"},
		Aliases: []string{"discrete_mmoo"}, Discrete: true,
		Description: "discrete on-off source with per-slot stay probabilities",
	},
	KindMarkovModulated: {
		Kind: KindMarkovModulated, Role: RoleArrival, Params: []string{"n"},
		Aliases: []string{"mmp", "markov"}, Discrete: true,
		Description: "arbitrary Markov chain with a constant rate per state (transition and rates given separately)",
	},
	KindTokenBucket: {
		Kind: KindTokenBucket, Role: RoleArrival, Params: []string{"sigma", "rho", "n"},
		Aliases: []string{"leaky_bucket", "regulated"}, Discrete: true,
		Description: "deterministic (sigma, rho) regulated arrivals",
	},
	KindConstantRate: {
		Kind: KindConstantRate, Role: RoleService, Params: []string{"rate"},
		Aliases: []string{"crs", "constant"}, Discrete: true,
		Description: "work-conserving server with a fixed rate",
	},
	KindRateLatency: {
		Kind: KindRateLatency, Role: RoleService, Params: []string{"rate", "latency"},
		Aliases: []string{"rl"}, Discrete: true,
		Description: "constant-rate server after an initial latency",
	},
}

// Catalog returns all descriptors sorted by role then kind.
func Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(catalog))
	for _, d := range catalog {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Describe returns the descriptor of k.
func Describe(k Kind) (Descriptor, bool) {
	d, ok := catalog[k]
	return d, ok
}

// ParseKind matches a name against the catalog kinds and their aliases.
// Matching ignores case and treats '-' and ' ' like '_'. Returns KindUnknown
// if nothing matches.
func ParseKind(name string) Kind {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	if normalized == "" {
		return KindUnknown
	}
	if _, ok := catalog[Kind(normalized)]; ok {
		return Kind(normalized)
	}
	return matchAlias(normalized)
}

// matchAlias checks a normalized name against every descriptor's aliases.
func matchAlias(name string) Kind {
	for kind, d := range catalog {
		for _, alias := range d.Aliases {
			if name == alias {
				return kind
			}
		}
	}
	return KindUnknown
}

// Build constructs a catalog curve from named parameters. Missing parameters
// and unknown kinds are illegal arguments; invalid values are out of bounds.
// KindMarkovModulated needs a transition matrix and is built with
// NewMarkovModulated instead.
func Build(kind Kind, params map[string]float64) (Cataloged, error) {
	d, ok := catalog[kind]
	if !ok {
		return nil, IllegalArgument("unknown curve kind %q", kind)
	}
	if kind == KindMarkovModulated {
		return nil, IllegalArgument("%s requires a transition matrix", kind)
	}
	values := make([]float64, len(d.Params))
	for i, name := range d.Params {
		v, ok := params[name]
		if !ok {
			if name != "n" {
				return nil, IllegalArgument("%s: missing parameter %q", kind, name)
			}
			v = 1
		}
		values[i] = v
	}
	for name := range params {
		if !contains(d.Params, name) {
			return nil, IllegalArgument("%s: unexpected parameter %q", kind, name)
		}
	}
	return build(kind, values)
}

func build(kind Kind, v []float64) (Cataloged, error) {
	switch kind {
	case KindDM1:
		n, err := flowCount(v[1])
		if err != nil {
			return nil, err
		}
		return validated(NewDM1(v[0], n))
	case KindDPoisson:
		n, err := flowCount(v[1])
		if err != nil {
			return nil, err
		}
		return validated(NewDPoisson(v[0], n))
	case KindMMOOFluid:
		n, err := flowCount(v[3])
		if err != nil {
			return nil, err
		}
		return validated(NewMMOOFluid(v[0], v[1], v[2], n))
	case KindDMMOO:
		n, err := flowCount(v[3])
		if err != nil {
			return nil, err
		}
		return validated(NewDMMOO(v[0], v[1], v[2], n))
	case KindTokenBucket:
		n, err := flowCount(v[2])
		if err != nil {
			return nil, err
		}
		return validated(NewTokenBucket(v[0], v[1], n))
	case KindConstantRate:
		return validated(NewConstantRate(v[0]))
	case KindRateLatency:
		return validated(NewRateLatency(v[0], v[1]))
	default:
		return nil, fmt.Errorf("%w: no constructor for kind %q", ErrIllegalArgument, kind)
	}
}

func flowCount(v float64) (int, error) {
	if v < 1 || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, OutOfBounds("flow count n must be a positive integer, got %v", v)
	}
	return int(v), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func validated(c Cataloged) (Cataloged, error) {
	if v, ok := c.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return c, nil
}
