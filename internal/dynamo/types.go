package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Distance is the Euclidean distance between two states of equal length.
func (s State) Distance(other State) float64 {
	sum := 0.0
	for i := range s {
		if i >= len(other) {
			break
		}
		d := s[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// System is an ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Tolerance bounds the local error accepted by an adaptive step:
// |err_i| <= Abs + Rel*max(|x_i|, |x_i'|) in the RMS sense.
type Tolerance struct {
	Rel     float64
	Abs     float64
	MinStep float64
}

func DefaultTolerance() Tolerance {
	return Tolerance{Rel: 1e-6, Abs: 1e-9, MinStep: 1e-12}
}

// Validate reports ErrInvalidParameter for non-positive or non-finite bounds.
func (tol Tolerance) Validate() error {
	for name, v := range map[string]float64{"rel": tol.Rel, "abs": tol.Abs, "min step": tol.MinStep} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return InvalidParameter("tolerance %s must be positive and finite, got %g", name, v)
		}
	}
	return nil
}

// AdaptiveIntegrator advances by one accepted step. It may shrink dt until
// the step meets tol and returns the step actually taken plus a suggestion
// for the next one.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (next State, taken, suggested float64, err error)
}

type Configurable interface {
	GetParams() map[string]float64
}
