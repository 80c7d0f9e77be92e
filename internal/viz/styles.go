package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	AxisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Variable colours of the equation banner.
var varStyles = map[rune]lipgloss.Style{
	'x': lipgloss.NewStyle().Foreground(lipgloss.Color("#FC6255")),
	'y': lipgloss.NewStyle().Foreground(lipgloss.Color("#83C167")),
	'z': lipgloss.NewStyle().Foreground(lipgloss.Color("#58C4DD")),
}

var lorenzEquations = []string{
	"dx/dt = σ(y - x)",
	"dy/dt = x(ρ - z) - y",
	"dz/dt = xy - βz",
}

// Equations renders the Lorenz system with x, y and z coloured.
func Equations() string {
	lines := make([]string, len(lorenzEquations))
	for i, eq := range lorenzEquations {
		var b strings.Builder
		for _, r := range eq {
			if st, ok := varStyles[r]; ok {
				b.WriteString(st.Render(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// CurveStyle is the foreground style for a curve colour.
func CurveStyle(c colorful.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// ProgressBar renders a fixed-width bar for a fraction in [0, 1].
func ProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = max(0, min(1, frac))
	filled := int(frac * float64(width))
	return StatusRunning.Render(strings.Repeat("█", filled)) +
		Subtle.Render(strings.Repeat("░", width-filled))
}
