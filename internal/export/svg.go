package export

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/viz"
)

const (
	background = "#0a0a0a"
	axisColor  = "#888888"
)

// CurvesToSVG renders curves through a camera as coloured polylines over
// the axes. Points behind the camera break the line.
func CurvesToSVG(curves []scene.Curve, cam *viz.Camera, axes viz.Axes, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	grid := viz.AxesWireframe(axes, 10, 0)
	fmt.Fprintf(&sb, `<g stroke="%s" stroke-width="1">`+"\n", axisColor)
	for _, e := range grid.Edges {
		x1, y1, _, ok1 := cam.Project(e.Start, width, height)
		x2, y2, _, ok2 := cam.Project(e.End, width, height)
		if ok1 || ok2 {
			fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x1, y1, x2, y2)
		}
	}
	sb.WriteString("</g>\n")

	for _, c := range curves {
		if c.Trajectory == nil {
			continue
		}
		var path strings.Builder
		pen := false
		for _, s := range c.Trajectory.States {
			x, y, _, ok := cam.Project(axes.C2P(s[0], s[1], s[2]), width, height)
			if !ok {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			fmt.Fprintf(&path, "%s%d,%d ", cmd, x, y)
			pen = true
		}
		if path.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>`+"\n",
			c.Color.Hex(), strings.TrimSpace(path.String()))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// ProjectionToSVG plots components i and j of every curve on a flat plane,
// e.g. (0, 2) for the x-z butterfly.
func ProjectionToSVG(curves []scene.Curve, i, j, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range curves {
		if c.Trajectory == nil {
			continue
		}
		for _, s := range c.Trajectory.States {
			minX, maxX = math.Min(minX, s[i]), math.Max(maxX, s[i])
			minY, maxY = math.Min(minY, s[j]), math.Max(maxY, s[j])
		}
	}
	if math.IsInf(minX, 1) {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, c := range curves {
		if c.Trajectory == nil || c.Trajectory.Len() < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, c.Color.Hex())
		for k, s := range c.Trajectory.States {
			x := (s[i] - minX) / rangeX * float64(width)
			y := float64(height) - (s[j]-minY)/rangeY*float64(height)
			if k == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// SVGDriver is a scene driver that draws the finished batch as one SVG
// still instead of animating it.
type SVGDriver struct {
	W             io.Writer
	Camera        *viz.Camera
	Axes          viz.Axes
	Width, Height int
}

func NewSVGDriver(w io.Writer) *SVGDriver {
	return &SVGDriver{
		W:      w,
		Camera: viz.NewCamera(viz.DefaultPhi, viz.DefaultTheta),
		Axes:   viz.LorenzAxes(),
		Width:  800,
		Height: 600,
	}
}

func (d *SVGDriver) Play(ctx context.Context, curves []scene.Curve) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(curves) == 0 {
		return viz.ErrNoCurves
	}
	// Darkest curves last so the base trajectory stays on top.
	ordered := append([]scene.Curve(nil), curves...)
	sort.SliceStable(ordered, func(a, b int) bool {
		la, _, _ := ordered[a].Color.Lab()
		lb, _, _ := ordered[b].Color.Lab()
		return la > lb
	})
	_, err := io.WriteString(d.W, CurvesToSVG(ordered, d.Camera, d.Axes, d.Width, d.Height))
	return err
}
