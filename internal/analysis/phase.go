package analysis

import (
	"strings"

	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Point2 is a point in a 2D projection of phase space.
type Point2 struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point2
}

// PhasePortrait projects a trajectory onto two of its coordinates.
func PhasePortrait(tr *trajectory.Trajectory, xIdx, yIdx int) *PhasePortrait2D {
	if tr.Len() == 0 || xIdx >= len(tr.States[0]) || yIdx >= len(tr.States[0]) || xIdx < 0 || yIdx < 0 {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point2, 0, tr.Len()),
	}
	for _, s := range tr.States {
		portrait.Points = append(portrait.Points, Point2{X: s[xIdx], Y: s[yIdx]})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection records (recordX, recordY) wherever coordinate crossIdx
// crosses threshold upwards, linearly interpolated between samples.
func PoincareSection(tr *trajectory.Trajectory, crossIdx int, threshold float64, recordX, recordY int) *PhasePortrait2D {
	if tr.Len() == 0 {
		return nil
	}
	dim := len(tr.States[0])
	if crossIdx < 0 || recordX < 0 || recordY < 0 || crossIdx >= dim || recordX >= dim || recordY >= dim {
		return nil
	}

	section := &PhasePortrait2D{XIndex: recordX, YIndex: recordY}
	for i := 1; i < tr.Len(); i++ {
		prev, curr := tr.States[i-1], tr.States[i]
		if prev[crossIdx] < threshold && curr[crossIdx] >= threshold {
			frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
			section.Points = append(section.Points, Point2{
				X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
				Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
			})
		}
	}
	return section
}

// LocalMaxima returns the strict interior maxima of series in order.
func LocalMaxima(series []float64) []float64 {
	var peaks []float64
	for i := 1; i+1 < len(series); i++ {
		if series[i] > series[i-1] && series[i] >= series[i+1] {
			peaks = append(peaks, series[i])
		}
	}
	return peaks
}

// LorenzMap pairs successive maxima of z (z_n, z_{n+1}), the return map
// Lorenz used to show the attractor is not periodic.
func LorenzMap(tr *trajectory.Trajectory) []Point2 {
	peaks := LocalMaxima(tr.Component(2))
	if len(peaks) < 2 {
		return nil
	}
	pts := make([]Point2, len(peaks)-1)
	for i := range pts {
		pts[i] = Point2{X: peaks[i], Y: peaks[i+1]}
	}
	return pts
}
