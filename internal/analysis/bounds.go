package analysis

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Extent is the range of one coordinate.
type Extent struct {
	Min, Max float64
}

// AbsMax is the largest magnitude reached.
func (e Extent) AbsMax() float64 { return math.Max(math.Abs(e.Min), math.Abs(e.Max)) }

// Bounds returns the extent of every coordinate over the trajectory.
func Bounds(tr *trajectory.Trajectory) []Extent {
	if tr.Len() == 0 {
		return nil
	}
	ext := make([]Extent, len(tr.States[0]))
	for i := range ext {
		ext[i] = Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	}
	for _, s := range tr.States {
		for i, v := range s {
			ext[i].Min = math.Min(ext[i].Min, v)
			ext[i].Max = math.Max(ext[i].Max, v)
		}
	}
	return ext
}

// BatchBounds merges Bounds over several trajectories.
func BatchBounds(trajs []*trajectory.Trajectory) []Extent {
	var all []Extent
	for _, tr := range trajs {
		b := Bounds(tr)
		if all == nil {
			all = b
			continue
		}
		for i := range all {
			if i < len(b) {
				all[i].Min = math.Min(all[i].Min, b[i].Min)
				all[i].Max = math.Max(all[i].Max, b[i].Max)
			}
		}
	}
	return all
}
