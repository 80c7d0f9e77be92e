package analysis

import (
	"context"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// BifurcationPoint represents the distinct z maxima found for one ρ.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationDiagram sweeps ρ over [rhoMin, rhoMax] in steps values,
// discards the first transient time units of each run and records the
// distinct local maxima of z. A handful of values means a periodic orbit,
// a cloud means chaos, none means the run settled on a fixed point.
func BifurcationDiagram(
	ctx context.Context,
	base physics.Params,
	newIntegrator func() dynamo.Integrator,
	x0 dynamo.State,
	rhoMin, rhoMax float64,
	steps int,
	cfg trajectory.Config,
	transient float64,
) ([]BifurcationPoint, error) {
	if steps < 2 {
		steps = 2 // Prevent division by zero
	}
	if transient < 0 || transient >= cfg.Horizon {
		return nil, dynamo.InvalidParameter("transient %g must lie in [0, horizon=%g)", transient, cfg.Horizon)
	}
	rhoStep := (rhoMax - rhoMin) / float64(steps-1)
	skip := int(transient / cfg.Dt)

	results := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		p := base
		p.Rho = rhoMin + float64(i)*rhoStep

		dyn, err := physics.NewLorenz(p)
		if err != nil {
			return nil, err
		}
		tr, err := trajectory.Sample(ctx, dyn, newIntegrator(), x0, cfg)
		if err != nil {
			return nil, err
		}

		z := tr.Component(2)
		if skip < len(z) {
			z = z[skip:]
		}

		// Quantize to find distinct values
		seen := make(map[int64]bool)
		values := make([]float64, 0)
		for _, v := range LocalMaxima(z) {
			key := int64(math.Round(v * 100))
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		results = append(results, BifurcationPoint{Param: p.Rho, Values: values})
	}
	return results, nil
}
