package viz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/scene"
)

const (
	DefaultPhi          = 43 * math.Pi / 180
	DefaultTheta        = 76 * math.Pi / 180
	DefaultRotationRate = 0.3
	DefaultFPS          = 30

	axisPen = 0
)

// ErrNoCurves is returned when Play is handed an empty batch.
var ErrNoCurves = errors.New("viz: no curves to play")

// Player animates a batch in the terminal. Every curve is revealed linearly
// over RunTime while the camera turns slowly about the z axis.
type Player struct {
	FPS           int
	RunTime       time.Duration
	Hold          time.Duration
	RotationRate  float64
	Phi, Theta    float64
	Width, Height int
	Axes          Axes

	// Output and Input override the terminal. When Output is set the
	// alternate screen is not used.
	Output io.Writer
	Input  io.Reader
	Logger *slog.Logger
}

func NewPlayer() *Player {
	return &Player{
		FPS:          DefaultFPS,
		RunTime:      30 * time.Second,
		Hold:         time.Second,
		RotationRate: DefaultRotationRate,
		Phi:          DefaultPhi,
		Theta:        DefaultTheta,
		Width:        100,
		Height:       32,
		Axes:         LorenzAxes(),
	}
}

// Play runs the animation until it finishes, the user quits, or ctx ends.
func (p *Player) Play(ctx context.Context, curves []scene.Curve) error {
	if len(curves) == 0 {
		return ErrNoCurves
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	m := newPlayerModel(p, curves)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	} else {
		opts = append(opts, tea.WithAltScreen())
	}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}

	log.Debug("playing", "curves", len(curves), "run_time", p.RunTime, "fps", p.FPS)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viz: %w", err)
	}
	if fm, ok := final.(*playerModel); ok && fm.quitting {
		log.Info("playback stopped", "progress", fmt.Sprintf("%.0f%%", fm.progress()*100))
	}
	return nil
}

type tickMsg time.Time

type playerModel struct {
	curves   []scene.Curve
	cam      *Camera
	axes     Axes
	grid     *Wireframe
	palette  []lipgloss.Style
	frame    time.Duration
	runTime  time.Duration
	hold     time.Duration
	rotation float64
	elapsed  time.Duration
	paused   bool
	quitting bool
	done     bool
	width    int
	height   int
	logSep   []float64
}

func newPlayerModel(p *Player, curves []scene.Curve) *playerModel {
	fps := p.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	axes := p.Axes
	if axes == (Axes{}) {
		axes = LorenzAxes()
	}
	m := &playerModel{
		curves:   curves,
		cam:      NewCamera(p.Phi, p.Theta),
		axes:     axes,
		grid:     AxesWireframe(axes, 10, axisPen),
		frame:    time.Second / time.Duration(fps),
		runTime:  p.RunTime,
		hold:     p.Hold,
		rotation: p.RotationRate,
		width:    max(p.Width, 20),
		height:   max(p.Height, 8),
	}
	m.palette = append(m.palette, AxisStyle)
	for _, c := range curves {
		m.palette = append(m.palette, CurveStyle(c.Color))
	}
	if len(curves) > 1 {
		sep, err := analysis.Separation(curves[0].Trajectory, curves[len(curves)-1].Trajectory)
		if err == nil {
			m.logSep = make([]float64, len(sep))
			for i, d := range sep {
				m.logSep[i] = math.Log10(math.Max(d, 1e-12))
			}
		}
	}
	return m
}

func (m *playerModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *playerModel) Init() tea.Cmd { return m.tick() }

func (m *playerModel) progress() float64 {
	if m.runTime <= 0 {
		return 1
	}
	return math.Min(1, float64(m.elapsed)/float64(m.runTime))
}

func (m *playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.paused {
			return m, m.tick()
		}
		m.elapsed += m.frame
		m.cam.Rotate(m.rotation * m.frame.Seconds())
		if m.elapsed >= m.runTime+m.hold {
			m.done = true
			return m, tea.Quit
		}
		return m, m.tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ", "space":
			m.paused = !m.paused
		case "r":
			m.elapsed = 0
		case "left":
			m.cam.Rotate(-0.1)
		case "right":
			m.cam.Rotate(0.1)
		case "up":
			m.cam.Tilt(-0.1)
		case "down":
			m.cam.Tilt(0.1)
		case "+", "=":
			m.cam.ZoomIn()
		case "-":
			m.cam.ZoomOut()
		}
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-4, 20)
		m.height = max(msg.Height-14, 8)
	}
	return m, nil
}

func (m *playerModel) draw() *Canvas {
	c := NewCanvas(m.width, m.height)
	Render3D(c, m.grid, m.cam)
	pw, ph := c.PixelWidth(), c.PixelHeight()
	progress := m.progress()
	for i, curve := range m.curves {
		pen := i + 1
		head := curve.Trajectory.Head(progress)
		px, py := 0, 0
		prevOK := false
		for _, s := range head {
			x, y, _, ok := m.cam.Project(m.axes.C2P(s[0], s[1], s[2]), pw, ph)
			switch {
			case ok && prevOK:
				c.DrawLine(px, py, x, y, pen)
			case ok:
				c.Set(x, y, pen)
			}
			px, py, prevOK = x, y, ok
		}
		s := curve.Trajectory.At(progress)
		if x, y, _, ok := m.cam.Project(m.axes.C2P(s[0], s[1], s[2]), pw, ph); ok {
			c.Dot(x-1, y-1, pen)
		}
	}
	return c
}

func (m *playerModel) View() string {
	if m.quitting || m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(Title.Render("LORENZ ATTRACTOR") + "\n")
	b.WriteString(Equations() + "\n\n")
	b.WriteString(m.draw().Render(m.palette))

	progress := m.progress()
	horizon := 0.0
	if tr := m.curves[0].Trajectory; tr != nil {
		horizon = tr.Horizon
	}
	status := StatusRunning.Render("▶ playing")
	if m.paused {
		status = StatusPaused.Render("❚❚ paused")
	}
	fmt.Fprintf(&b, "%s  %s %s  %s %s  %s\n",
		status,
		MetricLabel.Render("t"), MetricValue.Render(fmt.Sprintf("%6.2f", progress*horizon)),
		MetricLabel.Render("curves"), MetricValue.Render(fmt.Sprint(len(m.curves))),
		ProgressBar(progress, 30))

	if len(m.logSep) > 1 {
		n := m.curves[0].Trajectory.Index(progress) + 1
		if n > 1 {
			graph := asciigraph.Plot(m.logSep[:n],
				asciigraph.Height(4),
				asciigraph.Width(min(m.width, 60)),
				asciigraph.Caption("log10 separation first/last"))
			b.WriteString(Panel.Render(graph) + "\n")
		}
	}
	b.WriteString(KeyHint.Render("space pause · r restart · ←/→ rotate · ↑/↓ tilt · +/- zoom · q quit"))
	return b.String()
}
