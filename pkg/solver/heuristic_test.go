package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{in: "grid", want: NameGrid},
		{in: "Nelder-Mead", want: NameNelderMead},
		{in: " differential_evolution ", want: NameDifferentialEvolution},
		{in: "DUAL-ANNEALING", want: NameDualAnnealing},
		{in: "gradient", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseName(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, core.ErrIllegalArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHeuristicDefaults(t *testing.T) {
	for _, numParams := range []int{1, 2} {
		for _, name := range Names() {
			t.Run(string(name), func(t *testing.T) {
				h, err := NewHeuristic(config.OptimizerSpec{Heuristic: string(name)}, numParams)
				require.NoError(t, err)
				assert.Equal(t, name, h.Name())
				assert.NoError(t, h.Validate(numParams))
			})
		}
	}
}

func TestNewHeuristicOverrides(t *testing.T) {
	h, err := NewHeuristic(config.OptimizerSpec{
		Heuristic: "nelder_mead",
		Start:     []float64{0.3},
		Delta:     0.2,
	}, 1)
	require.NoError(t, err)
	nm, ok := h.(NelderMead)
	require.True(t, ok)
	assert.Equal(t, [][]float64{{0.3}, {0.5}}, nm.Simplex)

	h, err = NewHeuristic(config.OptimizerSpec{
		Heuristic: "grid",
		Bounds:    [][]float64{{0.1, 1}},
		Delta:     0.05,
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, GridSearch{Bounds: [][2]float64{{0.1, 1}}, Delta: 0.05}, h)
}

func TestNewHeuristicErrors(t *testing.T) {
	tests := []struct {
		name string
		spec config.OptimizerSpec
	}{
		{name: "unknown heuristic", spec: config.OptimizerSpec{Heuristic: "tabu"}},
		{name: "cooling out of range", spec: config.OptimizerSpec{Heuristic: "annealing", Cooling: 1.5}},
		{name: "malformed bounds", spec: config.OptimizerSpec{Heuristic: "grid", Bounds: [][]float64{{0.1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeuristic(tt.spec, 1)
			assert.True(t, errors.Is(err, core.ErrIllegalArgument), "got %v", err)
		})
	}
}

func TestInitialSimplex(t *testing.T) {
	start := []float64{0.5, 2}
	got := InitialSimplex(start, 0.1)
	assert.Equal(t, [][]float64{{0.5, 2}, {0.6, 2}, {0.5, 2.1}}, got)

	got[0][0] = 9
	assert.Equal(t, 0.5, start[0])
}

func TestSimplexOrdering(t *testing.T) {
	s := newSimplex([]point{
		{x: []float64{1}, f: 3},
		{x: []float64{2}, f: 1},
		{x: []float64{3}, f: math.Inf(1)},
	})
	assert.Equal(t, 1.0, s.best().f)
	assert.True(t, math.IsInf(s.worst().f, 1))
	assert.True(t, math.IsInf(s.spread(), 1))

	next := s.replaceWorst(point{x: []float64{4}, f: 0})
	assert.Equal(t, 0.0, next.best().f)
	assert.Equal(t, 3.0, next.worst().f)
	assert.True(t, math.IsInf(s.worst().f, 1), "replaceWorst must not touch the receiver")
	assert.InDelta(t, math.Sqrt(14.0/9), next.spread(), 1e-12)
}

func TestPopStdDev(t *testing.T) {
	assert.InDelta(t, 1.0, popStdDev([]float64{1, 3}), 1e-12)
	assert.InDelta(t, 2.0, popStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.Equal(t, 0.0, popStdDev([]float64{5}))
}

func TestAcceptance(t *testing.T) {
	assert.Equal(t, 0.0, acceptance(-5, 10, 0.1))
	p := acceptance(-5, 0.01, 1)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestDistinctThree(t *testing.T) {
	rng := newRand(1)
	for i := 0; i < 100; i++ {
		a, b, c := distinctThree(rng.IntN, 5, 2)
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, a, c)
		assert.NotEqual(t, b, c)
		assert.NotContains(t, []int{a, b, c}, 2)
	}
}

func TestGridAxis(t *testing.T) {
	assert.Equal(t, 119, axisLen([2]float64{0.01, 1.19}, 0.01))
	assert.Equal(t, 1, axisLen([2]float64{0.5, 0.5}, 0.1))

	idx := []int{0, 0}
	axes := [][]float64{{1, 2}, {1, 2, 3}}
	steps := 1
	for advance(idx, axes) {
		steps++
	}
	assert.Equal(t, 6, steps)
}
