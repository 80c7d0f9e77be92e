package metrics

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Metric accumulates a scalar over the samples of a trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every stored run.
func Defaults(p physics.Params) []Metric {
	return []Metric{
		NewStability(60),
		NewTrapRadius(p),
		NewWingSwitches(),
	}
}

// Evaluate resets each metric, feeds it every sample of tr and collects
// the values by name.
func Evaluate(tr *trajectory.Trajectory, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i, x := range tr.States {
		for _, m := range ms {
			m.Observe(x, tr.Times[i])
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Stability is the fraction of samples with every component inside
// ±threshold.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// TrapRadius is the largest distance from (0, 0, σ+ρ). Every Lorenz
// trajectory eventually enters a ball around that point, so a bounded
// value is the expected outcome.
type TrapRadius struct {
	centre float64
	max    float64
}

func NewTrapRadius(p physics.Params) *TrapRadius {
	return &TrapRadius{centre: p.Sigma + p.Rho}
}

func (r *TrapRadius) Name() string { return "trap_radius" }

func (r *TrapRadius) Observe(x dynamo.State, t float64) {
	if len(x) < 3 {
		return
	}
	dz := x[2] - r.centre
	r.max = math.Max(r.max, math.Sqrt(x[0]*x[0]+x[1]*x[1]+dz*dz))
}

func (r *TrapRadius) Value() float64 { return r.max }
func (r *TrapRadius) Reset()         { r.max = 0 }

// WingSwitches counts sign changes of x, i.e. jumps between the two lobes
// of the attractor.
type WingSwitches struct {
	last     float64
	switches int
}

func NewWingSwitches() *WingSwitches { return &WingSwitches{} }

func (w *WingSwitches) Name() string { return "wing_switches" }

func (w *WingSwitches) Observe(x dynamo.State, t float64) {
	if len(x) == 0 || x[0] == 0 {
		return
	}
	if w.last != 0 && (x[0] > 0) != (w.last > 0) {
		w.switches++
	}
	w.last = x[0]
}

func (w *WingSwitches) Value() float64 { return float64(w.switches) }
func (w *WingSwitches) Reset()         { w.last, w.switches = 0, 0 }
