package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

func traj(states ...dynamo.State) *trajectory.Trajectory {
	tr := &trajectory.Trajectory{Dt: 1, Horizon: float64(len(states))}
	for i, s := range states {
		tr.Times = append(tr.Times, float64(i))
		tr.States = append(tr.States, s)
	}
	return tr
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	if s.Value() != 1 {
		t.Errorf("empty stability = %v", s.Value())
	}
	s.Observe(dynamo.State{1, 2, 3}, 0)
	s.Observe(dynamo.State{1, -20, 3}, 1)
	if s.Value() != 0.5 {
		t.Errorf("stability = %v", s.Value())
	}
	s.Reset()
	if s.Value() != 1 {
		t.Error("reset did not clear")
	}
}

func TestTrapRadius(t *testing.T) {
	r := NewTrapRadius(physics.DefaultParams())
	r.Observe(dynamo.State{0, 0, 38}, 0)
	if r.Value() != 0 {
		t.Errorf("centre radius = %v", r.Value())
	}
	r.Observe(dynamo.State{3, 4, 38}, 1)
	if math.Abs(r.Value()-5) > 1e-12 {
		t.Errorf("radius = %v", r.Value())
	}
}

func TestWingSwitches(t *testing.T) {
	w := NewWingSwitches()
	for _, x := range []float64{1, 2, 0, -1, -3, 4, 5, -1} {
		w.Observe(dynamo.State{x, 0, 0}, 0)
	}
	if w.Value() != 3 {
		t.Errorf("switches = %v", w.Value())
	}
}

func TestEvaluate(t *testing.T) {
	tr := traj(dynamo.State{1, 0, 38}, dynamo.State{-1, 0, 38}, dynamo.State{100, 0, 38})
	got := Evaluate(tr, Defaults(physics.DefaultParams())...)
	if got["wing_switches"] != 2 {
		t.Errorf("wing_switches = %v", got["wing_switches"])
	}
	if math.Abs(got["stability"]-2.0/3.0) > 1e-12 {
		t.Errorf("stability = %v", got["stability"])
	}
	if got["trap_radius"] != 100 {
		t.Errorf("trap_radius = %v", got["trap_radius"])
	}

	// evaluation starts from a clean slate every time
	again := Evaluate(tr, Defaults(physics.DefaultParams())...)
	if again["wing_switches"] != 2 {
		t.Errorf("second evaluation = %v", again["wing_switches"])
	}
}
