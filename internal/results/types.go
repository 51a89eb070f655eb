/*
Copyright 2025 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package results holds tabular Monte-Carlo results, their CSV rendering
// and column aggregations.
package results

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregationType defines supported aggregation functions.
type AggregationType string

const (
	// Basic aggregations
	AggSum   AggregationType = "sum"
	AggAvg   AggregationType = "avg"
	AggMax   AggregationType = "max"
	AggMin   AggregationType = "min"
	AggCount AggregationType = "count"

	// Percentile aggregations
	AggP50 AggregationType = "p50"
	AggP90 AggregationType = "p90"
	AggP95 AggregationType = "p95"
	AggP99 AggregationType = "p99"
)

// StandardAggregations are the aggregations reported in summaries.
var StandardAggregations = []AggregationType{
	AggCount,
	AggAvg,
	AggMin,
	AggP50,
	AggP95,
	AggMax,
}

var quantiles = map[AggregationType]float64{
	AggP50: 0.5,
	AggP90: 0.9,
	AggP95: 0.95,
	AggP99: 0.99,
}

// ParseAggregation validates an aggregation name.
func ParseAggregation(s string) (AggregationType, error) {
	switch a := AggregationType(s); a {
	case AggSum, AggAvg, AggMax, AggMin, AggCount, AggP50, AggP90, AggP95, AggP99:
		return a, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q", s)
	}
}

// Finite returns the finite entries of values, sorted ascending.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Aggregate applies agg to the finite entries of values. Infinite entries
// stand for infeasible bounds and are skipped. Aggregating no finite entry
// is an error except for count.
func Aggregate(values []float64, agg AggregationType) (float64, error) {
	finite := Finite(values)
	if agg == AggCount {
		return float64(len(finite)), nil
	}
	if len(finite) == 0 {
		return 0, fmt.Errorf("%s of no finite values", agg)
	}

	switch agg {
	case AggSum:
		return floats.Sum(finite), nil
	case AggAvg:
		return stat.Mean(finite, nil), nil
	case AggMin:
		return finite[0], nil
	case AggMax:
		return finite[len(finite)-1], nil
	}
	if p, ok := quantiles[agg]; ok {
		return stat.Quantile(p, stat.Empirical, finite, nil), nil
	}
	return 0, fmt.Errorf("unknown aggregation %q", agg)
}
