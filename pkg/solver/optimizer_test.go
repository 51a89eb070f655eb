package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/llm-d/snc-bounds/pkg/config"
	"github.com/llm-d/snc-bounds/pkg/core"
)

var _ = Describe("Optimizer", func() {
	var (
		ctx     context.Context
		setting backlogSetting
	)

	BeforeEach(func() {
		ctx = context.Background()
		setting = newBacklogSetting()
	})

	Context("when constructed", func() {
		It("should reject a nil setting", func() {
			_, err := NewOptimizer(nil, 1)
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})

		It("should reject an empty parameter vector", func() {
			_, err := NewOptimizer(setting, 0)
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})

		It("should reject the enhanced bound of a setting without one", func() {
			plain := settingFunc(func([]float64) (float64, error) { return 1, nil })
			_, err := NewOptimizer(plain, 2, WithBound(EnhancedBound))
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})

		It("should accept the enhanced bound of an enhanced setting", func() {
			o, err := NewOptimizer(setting, 2, WithBound(EnhancedBound))
			Expect(err).NotTo(HaveOccurred())
			Expect(o.NumParams()).To(Equal(2))
		})
	})

	Context("EvalExcept", func() {
		var o *Optimizer

		BeforeEach(func() {
			var err error
			o, err = NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the bound at a feasible point", func() {
			v, err := o.EvalExcept([]float64{1.0})
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", 0.2648413131, 1e-9))
		})

		It("should map out-of-bounds points to +Inf", func() {
			v, err := o.EvalExcept([]float64{1.3})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(v, 1)).To(BeTrue())
		})

		It("should reject a parameter vector of the wrong length", func() {
			_, err := o.EvalExcept([]float64{0.5, 2})
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})

		It("should surface illegal arguments raised by the bound", func() {
			broken := settingFunc(func([]float64) (float64, error) {
				return 0, core.IllegalArgument("unsupported arrival kind")
			})
			b, err := NewOptimizer(broken, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = b.EvalExcept([]float64{0.5})
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})
	})

	Context("running a grid search", func() {
		It("should find the minimum over theta", func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.01, 1.19}}, Delta: 0.01})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Feasible).To(BeTrue())
			Expect(res.Value).To(BeNumerically("<=", 0.2648))
			Expect(res.Value).To(BeNumerically(">=", 0.19))
			Expect(res.Value).To(BeNumerically("<=", 0.2))
			Expect(res.Params).To(HaveLen(1))
			Expect(res.Params[0]).To(BeNumerically(">", 0.85))
			Expect(res.Params[0]).To(BeNumerically("<", 0.97))
			Expect(res.Evaluations).To(Equal(119))
			Expect(res.Warnings).To(BeEmpty())
			Expect(res.Heuristic).To(Equal(NameGrid))
			Expect(res.Bound).To(Equal(config.BoundStandard))
		})

		It("should warn when the minimizer lies on a range boundary", func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.1, 0.5}}, Delta: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Params[0]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(res.Warnings).To(ContainElement(ContainSubstring("range boundary")))
		})

		It("should report an infeasible result when no point is feasible", func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{1.3, 2.0}}, Delta: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Feasible).To(BeFalse())
			Expect(math.IsInf(res.Value, 1)).To(BeTrue())
			Expect(res.Params).To(BeNil())
			Expect(res.Infeasible).To(Equal(res.Evaluations))
			Expect(res.Warnings).To(ContainElement(ContainSubstring(core.ErrNoFeasiblePoint.Error())))
		})
	})

	Context("with every heuristic", func() {
		var startValue, gridValue float64

		BeforeEach(func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())
			startValue, err = o.EvalExcept([]float64{0.5})
			Expect(err).NotTo(HaveOccurred())
			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.01, 1.19}}, Delta: 0.01})
			Expect(err).NotTo(HaveOccurred())
			gridValue = res.Value
		})

		DescribeTable("should never end worse than its start",
			func(h Heuristic) {
				o, err := NewOptimizer(setting, 1)
				Expect(err).NotTo(HaveOccurred())

				res, err := o.Run(ctx, h)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Feasible).To(BeTrue())
				Expect(res.Value).To(BeNumerically("<=", startValue))
				Expect(res.Evaluations).To(BeNumerically(">", 0))
			},
			Entry("pattern search", PatternSearch{Start: []float64{0.5}, Delta: 0.1, DeltaMin: 1e-7}),
			Entry("nelder-mead", NelderMead{Simplex: [][]float64{{0.5}, {0.6}}, SDMin: 1e-9}),
			Entry("simulated annealing", SimulatedAnnealing{
				Start:  []float64{0.5},
				Params: AnnealingParams{Temperature: 1, Cooling: 0.95, SearchRadius: 0.1, Repetitions: 10},
				Seed:   7,
			}),
			Entry("basin hopping", BasinHopping{Start: []float64{0.5}, Iterations: 20, StepSize: 0.2, Temperature: 1, Seed: 7}),
			Entry("bfgs", BFGS{Start: []float64{0.5}, MaxIterations: 1000}),
		)

		DescribeTable("should reach the grid minimum",
			func(h Heuristic) {
				o, err := NewOptimizer(setting, 1)
				Expect(err).NotTo(HaveOccurred())

				res, err := o.Run(ctx, h)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Feasible).To(BeTrue())
				Expect(res.Value).To(BeNumerically("<=", gridValue+1e-3))
				Expect(res.Params[0]).To(BeNumerically(">", 0.8))
				Expect(res.Params[0]).To(BeNumerically("<", 1.0))
			},
			Entry("pattern search", PatternSearch{Start: []float64{0.5}, Delta: 0.1, DeltaMin: 1e-7}),
			Entry("nelder-mead", NelderMead{Simplex: [][]float64{{0.5}, {0.6}}, SDMin: 1e-9}),
			Entry("basin hopping", BasinHopping{Start: []float64{0.5}, Iterations: 20, StepSize: 0.2, Temperature: 1, Seed: 7}),
			Entry("differential evolution", DifferentialEvolution{
				Bounds: [][2]float64{{0.01, 1.19}}, PopSize: 15, Mutation: 0.8, Crossover: 0.7,
				MaxIterations: 200, Tol: 0.01, Polish: true, Seed: 3,
			}),
			Entry("dual annealing", DualAnnealing{
				Bounds: [][2]float64{{0.01, 1.19}}, MaxIterations: 200, InitialTemp: 5230,
				Visit: 2.62, Accept: -5, LocalSearch: true, Seed: 3,
			}),
		)
	})

	Context("with seeded heuristics", func() {
		DescribeTable("should be deterministic per seed",
			func(h Heuristic) {
				o, err := NewOptimizer(setting, 1)
				Expect(err).NotTo(HaveOccurred())

				first, err := o.Run(ctx, h)
				Expect(err).NotTo(HaveOccurred())
				second, err := o.Run(ctx, h)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.Params).To(Equal(first.Params))
				Expect(second.Value).To(Equal(first.Value))
				Expect(second.Evaluations).To(Equal(first.Evaluations))
			},
			Entry("simulated annealing", SimulatedAnnealing{
				Start:  []float64{0.5},
				Params: AnnealingParams{Temperature: 1, Cooling: 0.9, SearchRadius: 0.1, Repetitions: 5},
				Seed:   11,
			}),
			Entry("differential evolution", DifferentialEvolution{
				Bounds: [][2]float64{{0.01, 1.19}}, PopSize: 5, Mutation: 0.8, Crossover: 0.7,
				MaxIterations: 50, Tol: 0.01, Seed: 11,
			}),
			Entry("dual annealing", DualAnnealing{
				Bounds: [][2]float64{{0.01, 1.19}}, MaxIterations: 50, InitialTemp: 5230,
				Visit: 2.62, Accept: -5, Seed: 11,
			}),
		)
	})

	Context("when the tuning does not fit the setting", func() {
		DescribeTable("should fail before any evaluation",
			func(h Heuristic) {
				calls := 0
				counting := settingFunc(func([]float64) (float64, error) {
					calls++
					return 1, nil
				})
				o, err := NewOptimizer(counting, 1)
				Expect(err).NotTo(HaveOccurred())

				_, err = o.Run(ctx, h)
				Expect(err).To(MatchError(core.ErrIllegalArgument))
				Expect(calls).To(BeZero())
			},
			Entry("grid with two ranges", GridSearch{Bounds: [][2]float64{{0.1, 1}, {1, 2}}, Delta: 0.1}),
			Entry("grid with a zero step", GridSearch{Bounds: [][2]float64{{0.1, 1}}, Delta: 0}),
			Entry("pattern with a long start", PatternSearch{Start: []float64{0.5, 2}, Delta: 0.1, DeltaMin: 0.01}),
			Entry("nelder-mead with a short simplex", NelderMead{Simplex: [][]float64{{0.5}}}),
			Entry("annealing with cooling 1", SimulatedAnnealing{
				Start:  []float64{0.5},
				Params: AnnealingParams{Temperature: 1, Cooling: 1, SearchRadius: 0.1, Repetitions: 1},
			}),
			Entry("basin hopping with no iterations", BasinHopping{Start: []float64{0.5}, StepSize: 0.1, Temperature: 1}),
			Entry("bfgs with a long start", BFGS{Start: []float64{0.5, 2}}),
			Entry("dual annealing with an empty range", DualAnnealing{
				Bounds: [][2]float64{{0.5, 0.5}}, MaxIterations: 1, InitialTemp: 1, Visit: 2.62, Accept: -5,
			}),
		)

		It("should reject a nil heuristic", func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = o.Run(ctx, nil)
			Expect(err).To(MatchError(core.ErrIllegalArgument))
		})
	})

	Context("with a float policy", func() {
		var overflowing settingFunc

		BeforeEach(func() {
			overflowing = func(params []float64) (float64, error) {
				if params[0] > 0.5 {
					return 0, fmt.Errorf("sigma: %w", core.ErrNumericOverflow)
				}
				return 1 - params[0], nil
			}
		})

		It("should treat overflow as infeasible by default", func() {
			o, err := NewOptimizer(overflowing, 1)
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.1, 1}}, Delta: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Params[0]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(res.Infeasible).To(Equal(5))
		})

		It("should abort on overflow when propagating", func() {
			o, err := NewOptimizer(overflowing, 1, WithFloatPolicy(PropagateOverflow))
			Expect(err).NotTo(HaveOccurred())

			_, err = o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.1, 1}}, Delta: 0.1})
			Expect(err).To(MatchError(core.ErrNumericOverflow))
		})

		It("should report overflow from EvalExcept only when propagating", func() {
			lenient, err := NewOptimizer(overflowing, 1)
			Expect(err).NotTo(HaveOccurred())
			v, err := lenient.EvalExcept([]float64{0.8})
			Expect(err).NotTo(HaveOccurred())
			Expect(math.IsInf(v, 1)).To(BeTrue())

			strict, err := NewOptimizer(overflowing, 1, WithFloatPolicy(PropagateOverflow))
			Expect(err).NotTo(HaveOccurred())
			_, err = strict.EvalExcept([]float64{0.8})
			Expect(err).To(MatchError(core.ErrNumericOverflow))

			v, err = strict.EvalExcept([]float64{0.2})
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeNumerically("~", 0.8, 1e-12))
		})
	})

	Context("with the enhanced bound", func() {
		It("should optimize theta and the exponent together", func() {
			o, err := NewOptimizer(setting, 2, WithBound(EnhancedBound))
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.05, 1.15}, {1.1, 4}}, Delta: 0.05})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Feasible).To(BeTrue())
			Expect(res.Bound).To(Equal(config.BoundEnhanced))
			Expect(res.Params).To(HaveLen(2))
			Expect(res.Infeasible).To(BeNumerically(">", 0))
		})
	})

	Context("with an observer", func() {
		It("should see every evaluation and the run", func() {
			obs := &countingObserver{}
			o, err := NewOptimizer(setting, 1, WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())

			res, err := o.Run(ctx, GridSearch{Bounds: [][2]float64{{0.6, 1.5}}, Delta: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(obs.feasible + obs.infeasible).To(Equal(res.Evaluations))
			Expect(obs.infeasible).To(Equal(res.Infeasible))
			Expect(obs.runs).To(Equal(1))
			Expect(obs.lastValue).To(Equal(res.Value))
		})
	})

	Context("with a cancelled context", func() {
		It("should return the context error", func() {
			o, err := NewOptimizer(setting, 1)
			Expect(err).NotTo(HaveOccurred())

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err = o.Run(cancelled, PatternSearch{Start: []float64{0.5}, Delta: 0.1, DeltaMin: 1e-3})
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("when the result is rendered as JSON", func() {
		It("should encode an infinite value as null", func() {
			data, err := json.Marshal(OptimizationResult{Heuristic: NameGrid, Value: math.Inf(1)})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"value":null`))
		})
	})
})
