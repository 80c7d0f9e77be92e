package trajectory

import (
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// snapTolerance absorbs floating noise in horizon/dt, e.g. 1.1/0.1 = 11.000000000000002.
const snapTolerance = 1e-9

// GridLen returns the number of samples in [0, horizon) at spacing dt.
func GridLen(horizon, dt float64) (int, error) {
	if math.IsNaN(horizon) || math.IsInf(horizon, 0) || horizon <= 0 {
		return 0, dynamo.InvalidParameter("horizon must be positive and finite, got %g", horizon)
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return 0, dynamo.InvalidParameter("dt must be positive and finite, got %g", dt)
	}

	q := horizon / dt
	if r := math.Round(q); math.Abs(q-r) <= snapTolerance*math.Max(1, r) {
		q = r
	}
	if q > math.MaxInt32 {
		return 0, dynamo.InvalidParameter("horizon/dt = %g samples is too large", q)
	}
	n := int(math.Ceil(q))
	if n < 1 {
		n = 1
	}
	return n, nil
}

// Grid returns the sample times i*dt for i in [0, GridLen).
func Grid(horizon, dt float64) ([]float64, error) {
	n, err := GridLen(horizon, dt)
	if err != nil {
		return nil, err
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times, nil
}

// hermite evaluates the cubic Hermite interpolant through (t0, x0, f0) and
// (t1, x1, f1) at tq.
func hermite(t0 float64, x0, f0 dynamo.State, t1 float64, x1, f1 dynamo.State, tq float64) dynamo.State {
	h := t1 - t0
	s := (tq - t0) / h
	s2, s3 := s*s, s*s*s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	out := make(dynamo.State, len(x0))
	for i := range x0 {
		out[i] = h00*x0[i] + h10*h*f0[i] + h01*x1[i] + h11*h*f1[i]
	}
	return out
}
