package trajectory

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// Trajectory is the solution of one initial value problem sampled at
// Times[i] = i*Dt. States are owned by the caller once returned.
type Trajectory struct {
	Times   []float64
	States  []dynamo.State
	Dt      float64
	Horizon float64
}

func (tr *Trajectory) Len() int { return len(tr.States) }

func (tr *Trajectory) Initial() dynamo.State { return tr.States[0] }

func (tr *Trajectory) Final() dynamo.State { return tr.States[len(tr.States)-1] }

// Component returns coordinate i of every sample.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Index returns the last sample at or before progress*Horizon. progress is
// clamped to [0, 1].
func (tr *Trajectory) Index(progress float64) int {
	if len(tr.States) == 0 || math.IsNaN(progress) || progress <= 0 {
		return 0
	}
	if progress >= 1 {
		return len(tr.States) - 1
	}
	idx := int(math.Floor(progress * tr.Horizon / tr.Dt))
	if idx >= len(tr.States) {
		idx = len(tr.States) - 1
	}
	return idx
}

// At returns the state at or before fraction progress of the horizon. It
// drives the marker that follows a curve while it is being drawn.
func (tr *Trajectory) At(progress float64) dynamo.State {
	return tr.States[tr.Index(progress)]
}

// Head returns the samples drawn by the time progress of the horizon has
// elapsed. The slice aliases the trajectory.
func (tr *Trajectory) Head(progress float64) []dynamo.State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[:tr.Index(progress)+1]
}
