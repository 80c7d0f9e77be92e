package trajectory_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

type oscillator struct{}

func (oscillator) StateDim() int { return 2 }
func (oscillator) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

// blowUp has solution 1/(1-t) and cannot be continued past t=1.
type blowUp struct{}

func (blowUp) StateDim() int { return 1 }
func (blowUp) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

var _ = Describe("Grid", func() {
	DescribeTable("sample count is ceil(horizon/dt)",
		func(horizon, dt float64, want int) {
			n, err := trajectory.GridLen(horizon, dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(want))
		},
		Entry("canonical run", 30.0, 0.01, 3000),
		Entry("exact multiple with float noise", 1.1, 0.1, 11),
		Entry("partial final interval", 0.25, 0.1, 3),
		Entry("horizon shorter than dt", 0.005, 0.01, 1),
		Entry("unit step", 5.0, 1.0, 5),
	)

	DescribeTable("rejects non-positive horizon and step",
		func(horizon, dt float64) {
			_, err := trajectory.GridLen(horizon, dt)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("T=0", 0.0, 0.01),
		Entry("T=-1", -1.0, 0.01),
		Entry("dt=0", 30.0, 0.0),
		Entry("dt=-0.5", 30.0, -0.5),
		Entry("T=NaN", math.NaN(), 0.01),
		Entry("dt=+Inf", 30.0, math.Inf(1)),
	)

	It("spaces times by exactly i*dt and stays below the horizon", func() {
		times, err := trajectory.Grid(0.7, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(HaveLen(7))
		for i, tm := range times {
			Expect(tm).To(Equal(float64(i) * 0.1))
			Expect(tm).To(BeNumerically("<", 0.7))
		}
	})
})

var _ = Describe("Sample", func() {
	var (
		ctx    context.Context
		lorenz *physics.Lorenz
		cfg    trajectory.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		lorenz, err = physics.NewLorenz(physics.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		cfg = trajectory.DefaultConfig()
	})

	Context("with the default Lorenz run", func() {
		var tr *trajectory.Trajectory

		BeforeEach(func() {
			var err error
			tr, err = trajectory.Sample(ctx, lorenz, integrators.NewRK45(), dynamo.State{10, 10, 10}, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns exactly 3000 samples for T=30, dt=0.01", func() {
			Expect(tr.Len()).To(Equal(3000))
			Expect(tr.Times).To(HaveLen(3000))
		})

		It("starts at the initial state and keeps time strictly increasing", func() {
			Expect(tr.Initial()).To(Equal(dynamo.State{10, 10, 10}))
			for i := 1; i < len(tr.Times); i++ {
				Expect(tr.Times[i]).To(BeNumerically(">", tr.Times[i-1]))
				Expect(tr.Times[i] - tr.Times[i-1]).To(BeNumerically("~", 0.01, 1e-9))
			}
		})

		It("stays on the bounded attractor", func() {
			for _, s := range tr.States {
				Expect(s.IsValid()).To(BeTrue())
				for _, v := range s {
					Expect(math.Abs(v)).To(BeNumerically("<", 60))
				}
			}
		})

		It("is deterministic", func() {
			again, err := trajectory.Sample(ctx, lorenz, integrators.NewRK45(), dynamo.State{10, 10, 10}, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.States).To(Equal(tr.States))
		})

		It("diverges from a neighbour 1e-5 away", func() {
			other, err := trajectory.Sample(ctx, lorenz, integrators.NewRK45(), dynamo.State{10, 10, 10 + 1e-5}, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(tr.States[0].Distance(other.States[0])).To(BeNumerically("~", 1e-5, 1e-12))

			late := 0.0
			for i := 2 * tr.Len() / 3; i < tr.Len(); i++ {
				late = math.Max(late, tr.States[i].Distance(other.States[i]))
			}
			Expect(late).To(BeNumerically(">", 1.0), "separation should grow by at least five orders of magnitude")
		})
	})

	It("reports dense output that matches the exact solution", func() {
		cfg.Horizon = 10
		tr, err := trajectory.Sample(ctx, oscillator{}, integrators.NewRK45(), dynamo.State{1, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(1000))
		for i, s := range tr.States {
			Expect(s[0]).To(BeNumerically("~", math.Cos(tr.Times[i]), 1e-5))
			Expect(s[1]).To(BeNumerically("~", -math.Sin(tr.Times[i]), 1e-5))
		}
	})

	It("agrees with a fixed-step RK4 run over a short horizon", func() {
		cfg.Horizon = 1
		adaptive, err := trajectory.Sample(ctx, lorenz, integrators.NewRK45(), lorenz.DefaultState(), cfg)
		Expect(err).NotTo(HaveOccurred())
		fixed, err := trajectory.Sample(ctx, lorenz, integrators.NewRK4(), lorenz.DefaultState(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(fixed.Len()).To(Equal(adaptive.Len()))
		Expect(adaptive.Final().Distance(fixed.Final())).To(BeNumerically("<", 1e-3))
	})

	DescribeTable("rejects invalid input with ErrInvalidParameter",
		func(mutate func(*trajectory.Config), x0 dynamo.State) {
			mutate(&cfg)
			tr, err := trajectory.Sample(ctx, lorenz, integrators.NewRK45(), x0, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(tr).To(BeNil())
		},
		Entry("T=0", func(c *trajectory.Config) { c.Horizon = 0 }, dynamo.State{10, 10, 10}),
		Entry("T=-1", func(c *trajectory.Config) { c.Horizon = -1 }, dynamo.State{10, 10, 10}),
		Entry("dt=0", func(c *trajectory.Config) { c.Dt = 0 }, dynamo.State{10, 10, 10}),
		Entry("dt=-0.5", func(c *trajectory.Config) { c.Dt = -0.5 }, dynamo.State{10, 10, 10}),
		Entry("zero tolerance", func(c *trajectory.Config) { c.Tolerance.Rel = 0 }, dynamo.State{10, 10, 10}),
		Entry("wrong dimension", func(c *trajectory.Config) {}, dynamo.State{10, 10}),
		Entry("NaN state", func(c *trajectory.Config) {}, dynamo.State{10, math.NaN(), 10}),
	)

	It("propagates solver failure without partial output", func() {
		cfg.Horizon = 2
		tr, err := trajectory.Sample(ctx, blowUp{}, integrators.NewRK45(), dynamo.State{1}, cfg)
		Expect(err).To(MatchError(dynamo.ErrIntegration))
		Expect(tr).To(BeNil())

		var ierr *dynamo.IntegrationError
		Expect(err).To(BeAssignableToTypeOf(ierr))
		Expect(err.(*dynamo.IntegrationError).Time).To(BeNumerically("~", 1.0, 1e-3))
	})

	DescribeTable("fails when the pole sits on the last grid time",
		func(horizon, dt float64) {
			cfg.Horizon = horizon
			cfg.Dt = dt
			tr, err := trajectory.Sample(ctx, blowUp{}, integrators.NewRK45(), dynamo.State{1}, cfg)
			Expect(err).To(MatchError(dynamo.ErrIntegration))
			Expect(tr).To(BeNil())
		},
		Entry("T=1.05 dt=0.05", 1.05, 0.05),
		Entry("T=1.05 dt=0.1", 1.05, 0.1),
	)

	It("reports divergence on the fixed-step path", func() {
		cfg.Horizon = 2
		cfg.Dt = 0.25
		tr, err := trajectory.Sample(ctx, blowUp{}, integrators.NewEuler(), dynamo.State{1e200}, cfg)
		Expect(err).To(MatchError(dynamo.ErrDiverged))
		Expect(tr).To(BeNil())
	})

	It("enforces the step budget", func() {
		cfg.MaxSteps = 10
		_, err := trajectory.Sample(ctx, lorenz, integrators.NewRK45(), lorenz.DefaultState(), cfg)
		Expect(err).To(MatchError(dynamo.ErrStepLimit))
	})

	It("rejects an oversized fixed-step grid before sampling", func() {
		cfg.Horizon = 1e6
		cfg.Dt = 1e-3
		cfg.MaxSteps = 1000
		tr, err := trajectory.Sample(ctx, lorenz, integrators.NewRK4(), lorenz.DefaultState(), cfg)
		Expect(err).To(MatchError(dynamo.ErrStepLimit))
		Expect(tr).To(BeNil())

		var ierr *dynamo.IntegrationError
		Expect(err).To(BeAssignableToTypeOf(ierr))
		Expect(err.(*dynamo.IntegrationError).Step).To(Equal(0))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := trajectory.Sample(cancelled, lorenz, integrators.NewRK45(), lorenz.DefaultState(), cfg)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Trajectory lookup", func() {
	var tr *trajectory.Trajectory

	BeforeEach(func() {
		var err error
		tr, err = trajectory.Sample(context.Background(), oscillator{}, integrators.NewRK4(), dynamo.State{1, 0},
			trajectory.Config{Horizon: 1, Dt: 0.1, Tolerance: dynamo.DefaultTolerance(), MaxSteps: 100})
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(10))
	})

	It("clamps progress to the first and last samples", func() {
		Expect(tr.Index(-0.5)).To(Equal(0))
		Expect(tr.Index(0)).To(Equal(0))
		Expect(tr.Index(1)).To(Equal(9))
		Expect(tr.Index(3)).To(Equal(9))
		Expect(tr.Index(math.NaN())).To(Equal(0))
	})

	It("returns the sample at or before the requested time", func() {
		Expect(tr.Index(0.55)).To(Equal(5))
		Expect(tr.At(0.55)).To(Equal(tr.States[5]))
		Expect(tr.Head(0.55)).To(HaveLen(6))
		Expect(tr.Head(1)).To(HaveLen(10))
	})

	It("extracts single coordinates", func() {
		xs := tr.Component(0)
		Expect(xs).To(HaveLen(10))
		Expect(xs[0]).To(Equal(1.0))
	})
})
