// Package scene is the boundary between trajectory generation and whatever
// renders it. A [Driver] receives coloured curves and owns everything about
// how they are shown.
package scene

import (
	"context"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Curve is a trajectory with its display colour.
type Curve struct {
	Trajectory *trajectory.Trajectory
	Color      colorful.Color
}

// Driver renders or animates a set of curves. Implementations must not
// modify the trajectories.
type Driver interface {
	Play(ctx context.Context, curves []Curve) error
}

var (
	BlueE = colorful.Color{R: 0x1C / 255.0, G: 0x75 / 255.0, B: 0x8A / 255.0}
	BlueA = colorful.Color{R: 0xC7 / 255.0, G: 0xE9 / 255.0, B: 0xF1 / 255.0}
)

// Gradient returns n colours interpolated linearly in RGB from `from` to
// `to`, both ends included.
func Gradient(from, to colorful.Color, n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []colorful.Color{from}
	}
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = from.BlendRgb(to, float64(i)/float64(n-1)).Clamped()
	}
	return out
}

// DefaultGradient is the dark-to-light blue ramp used for a batch.
func DefaultGradient(n int) []colorful.Color {
	return Gradient(BlueE, BlueA, n)
}

// ParseGradient builds a gradient from two hex colours.
func ParseGradient(fromHex, toHex string, n int) ([]colorful.Color, error) {
	from, err := colorful.Hex(fromHex)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", fromHex, err)
	}
	to, err := colorful.Hex(toHex)
	if err != nil {
		return nil, fmt.Errorf("color %q: %w", toHex, err)
	}
	return Gradient(from, to, n), nil
}

// Paint pairs trajectories with colours, in order.
func Paint(trajs []*trajectory.Trajectory, colors []colorful.Color) ([]Curve, error) {
	if len(colors) < len(trajs) {
		return nil, fmt.Errorf("%d colours for %d trajectories", len(colors), len(trajs))
	}
	curves := make([]Curve, len(trajs))
	for i, tr := range trajs {
		curves[i] = Curve{Trajectory: tr, Color: colors[i]}
	}
	return curves, nil
}
