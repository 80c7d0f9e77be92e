package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Separation returns the Euclidean distance between same-time samples of a
// and b.
func Separation(a, b *trajectory.Trajectory) ([]float64, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("trajectories have %d and %d samples", a.Len(), b.Len())
	}
	sep := make([]float64, a.Len())
	for i := range sep {
		sep[i] = a.States[i].Distance(b.States[i])
	}
	return sep, nil
}

// Divergence summarises how far two members drift apart.
type Divergence struct {
	Initial float64
	Final   float64
	Max     float64
	// Orders is log10(Max/Initial).
	Orders float64
}

func Diverge(a, b *trajectory.Trajectory) (Divergence, error) {
	sep, err := Separation(a, b)
	if err != nil {
		return Divergence{}, err
	}
	d := Divergence{Initial: sep[0], Final: sep[len(sep)-1]}
	for _, s := range sep {
		d.Max = math.Max(d.Max, s)
	}
	if d.Initial > 0 {
		d.Orders = math.Log10(d.Max / d.Initial)
	}
	return d, nil
}

// SeparationRate fits ln(sep) against time by least squares over the
// samples before sep first reaches saturation. The slope estimates the
// largest Lyapunov exponent.
func SeparationRate(sep []float64, dt, saturation float64) float64 {
	var n, sx, sy, sxx, sxy float64
	for i, s := range sep {
		if s >= saturation {
			break
		}
		if s <= 0 {
			continue
		}
		x := float64(i) * dt
		y := math.Log(s)
		n++
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if n < 2 || den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
