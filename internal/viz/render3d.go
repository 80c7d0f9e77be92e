package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

// Vec3 methods.
func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Camera looks at the origin from spherical angles: Phi is measured from
// the +z axis, Theta is the azimuth from +x. Phi=0 looks straight down.
type Camera struct {
	Phi, Theta float64
	Distance   float64
	Zoom       float64
}

func NewCamera(phi, theta float64) *Camera {
	return &Camera{Phi: phi, Theta: theta, Distance: 6, Zoom: 1.0}
}

func (c *Camera) Rotate(dTheta float64) { c.Theta += dTheta }
func (c *Camera) Tilt(dPhi float64) {
	c.Phi = math.Max(0, math.Min(math.Pi, c.Phi+dPhi))
}
func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// basis returns the screen-right, screen-up and toward-viewer unit vectors.
func (c *Camera) basis() (right, up, out Vec3) {
	sp, cp := math.Sincos(c.Phi)
	st, ct := math.Sincos(c.Theta)
	right = Vec3{-st, ct, 0}
	up = Vec3{-cp * ct, -cp * st, sp}
	out = Vec3{sp * ct, sp * st, cp}
	return
}

// View maps a world point into camera space: X right, Y up, Z toward the
// viewer.
func (c *Camera) View(p Vec3) Vec3 {
	r, u, o := c.basis()
	return Vec3{p.Dot(r), p.Dot(u), p.Dot(o)}
}

// Project converts world coordinates to screen coordinates on an sw x sh
// surface. Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	v := c.View(p).Scale(c.Zoom)
	if v.Z >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - v.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(math.Round(v.X*scale*pScale)) + sw/2
	sy := int(math.Round(-v.Y*scale*pScale)) + sh/2
	return sx, sy, v.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Axes maps data coordinates into world space. Ranges share one scale so
// the attractor keeps its proportions; the box is centred on the origin.
type Axes struct {
	X, Y, Z [2]float64
}

// LorenzAxes frames the attractor: x, y in [-50, 50], z in [0, 50].
func LorenzAxes() Axes {
	return Axes{X: [2]float64{-50, 50}, Y: [2]float64{-50, 50}, Z: [2]float64{0, 50}}
}

func (a Axes) unit() float64 {
	span := math.Max(a.X[1]-a.X[0], math.Max(a.Y[1]-a.Y[0], a.Z[1]-a.Z[0]))
	if span <= 0 {
		return 1
	}
	return 2 / span
}

// C2P converts data coordinates to a world point.
func (a Axes) C2P(x, y, z float64) Vec3 {
	u := a.unit()
	return Vec3{
		(x - (a.X[0]+a.X[1])/2) * u,
		(y - (a.Y[0]+a.Y[1])/2) * u,
		(z - (a.Z[0]+a.Z[1])/2) * u,
	}
}

type Edge struct {
	Start, End Vec3
	Pen        int
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                  { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3, pen int) { w.Edges = append(w.Edges, Edge{s, e, pen}) }
func (w *Wireframe) AddPoint(p Vec3, pen int)   { w.Edges = append(w.Edges, Edge{p, p, pen}) }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	pen            int
}

// Render3D draws the wireframe to the canvas back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.PixelWidth(), c.PixelHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Pen})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1, e.pen)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2, e.pen)
		}
	}
}

// AxesWireframe draws the three axis lines through the data origin with a
// tick every `tick` data units.
func AxesWireframe(a Axes, tick float64, pen int) *Wireframe {
	w := NewWireframe()
	w.AddEdge(a.C2P(a.X[0], 0, 0), a.C2P(a.X[1], 0, 0), pen)
	w.AddEdge(a.C2P(0, a.Y[0], 0), a.C2P(0, a.Y[1], 0), pen)
	w.AddEdge(a.C2P(0, 0, a.Z[0]), a.C2P(0, 0, a.Z[1]), pen)
	if tick <= 0 {
		return w
	}
	half := tick / 10
	for v := math.Ceil(a.X[0]/tick) * tick; v <= a.X[1]; v += tick {
		w.AddEdge(a.C2P(v, -half, 0), a.C2P(v, half, 0), pen)
	}
	for v := math.Ceil(a.Y[0]/tick) * tick; v <= a.Y[1]; v += tick {
		w.AddEdge(a.C2P(-half, v, 0), a.C2P(half, v, 0), pen)
	}
	for v := math.Ceil(a.Z[0]/tick) * tick; v <= a.Z[1]; v += tick {
		w.AddEdge(a.C2P(-half, 0, v), a.C2P(half, 0, v), pen)
	}
	return w
}
