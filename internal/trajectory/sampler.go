package trajectory

import (
	"context"
	"log/slog"
	"math"

	"github.com/san-kum/lorenzsim/internal/dynamo"
)

// snapSlack is the relative gap to the last grid time treated as rounding.
// Anything wider must be covered by a real solver step.
const snapSlack = 4 * 0x1p-52

type Config struct {
	Horizon   float64
	Dt        float64
	Tolerance dynamo.Tolerance
	MaxSteps  int
	Logger    *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Horizon:   30.0,
		Dt:        0.01,
		Tolerance: dynamo.DefaultTolerance(),
		MaxSteps:  1_000_000,
	}
}

func (c Config) validate() error {
	if _, err := GridLen(c.Horizon, c.Dt); err != nil {
		return err
	}
	if err := c.Tolerance.Validate(); err != nil {
		return err
	}
	if c.MaxSteps <= 0 {
		return dynamo.InvalidParameter("max steps must be positive, got %d", c.MaxSteps)
	}
	return nil
}

// Sample integrates dyn from x0 and returns the solution on the grid
// [0, cfg.Horizon) with spacing cfg.Dt. On failure no samples are returned.
func Sample(ctx context.Context, dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, cfg Config) (*Trajectory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(x0) != dyn.StateDim() {
		return nil, dynamo.InvalidParameter("initial state has %d components, system expects %d", len(x0), dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, dynamo.InvalidParameter("initial state %v is not finite", x0)
	}

	n, err := GridLen(cfg.Horizon, cfg.Dt)
	if err != nil {
		return nil, err
	}
	adaptive, isAdaptive := integ.(dynamo.AdaptiveIntegrator)
	if !isAdaptive && n-1 > cfg.MaxSteps {
		// One step per sample: the budget is known before any allocation.
		return nil, &dynamo.IntegrationError{Step: 0, Time: 0, State: x0.Clone(), Wrapped: dynamo.ErrStepLimit}
	}

	times, err := Grid(cfg.Horizon, cfg.Dt)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	tr := &Trajectory{
		Times:   times,
		States:  make([]dynamo.State, len(times)),
		Dt:      cfg.Dt,
		Horizon: cfg.Horizon,
	}
	tr.States[0] = x0.Clone()

	var steps int
	if isAdaptive {
		steps, err = sampleAdaptive(ctx, dyn, adaptive, tr, cfg)
	} else {
		steps, err = sampleFixed(ctx, dyn, integ, tr, cfg)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("trajectory sampled",
		slog.Int("samples", len(tr.States)),
		slog.Int("steps", steps),
		slog.Float64("horizon", cfg.Horizon),
	)
	return tr, nil
}

func sampleFixed(ctx context.Context, dyn dynamo.System, integ dynamo.Integrator, tr *Trajectory, cfg Config) (int, error) {
	x := tr.States[0]
	for i := 1; i < len(tr.States); i++ {
		select {
		case <-ctx.Done():
			return i - 1, ctx.Err()
		default:
		}
		if i > cfg.MaxSteps {
			return i - 1, &dynamo.IntegrationError{Step: i - 1, Time: tr.Times[i-1], State: x, Wrapped: dynamo.ErrStepLimit}
		}

		next := integ.Step(dyn, x, tr.Times[i-1], cfg.Dt)
		if !next.IsValid() {
			return i - 1, &dynamo.IntegrationError{Step: i - 1, Time: tr.Times[i-1], State: x, Wrapped: dynamo.ErrDiverged}
		}
		tr.States[i] = next
		x = next
	}
	return len(tr.States) - 1, nil
}

// sampleAdaptive lets the solver pick its own steps up to the last grid
// time and fills the grid by dense output between accepted steps.
func sampleAdaptive(ctx context.Context, dyn dynamo.System, integ dynamo.AdaptiveIntegrator, tr *Trajectory, cfg Config) (int, error) {
	n := len(tr.Times)
	if n == 1 {
		return 0, nil
	}
	tEnd := tr.Times[n-1]

	t := 0.0
	x := tr.States[0]
	fx := dyn.Derive(x, t)
	h := cfg.Dt
	next := 1
	steps := 0

	for next < n {
		select {
		case <-ctx.Done():
			return steps, ctx.Err()
		default:
		}
		if steps >= cfg.MaxSteps {
			return steps, &dynamo.IntegrationError{Step: steps, Time: t, State: x, Wrapped: dynamo.ErrStepLimit}
		}

		remaining := tEnd - t
		if remaining <= snapSlack*math.Max(1, math.Abs(tEnd)) {
			// Rounding left the last sample a few ulps ahead of t.
			for ; next < n; next++ {
				tr.States[next] = x.Clone()
			}
			break
		}
		// Stretch a step that would leave a sliver shorter than MinStep.
		capped := h >= remaining || remaining-h < cfg.Tolerance.MinStep
		if capped {
			h = remaining
		}

		xNew, taken, suggested, err := integ.StepAdaptive(dyn, x, t, h, cfg.Tolerance)
		if err != nil {
			return steps, &dynamo.IntegrationError{Step: steps, Time: t, State: x, Wrapped: err}
		}
		if !xNew.IsValid() {
			return steps, &dynamo.IntegrationError{Step: steps, Time: t, State: x, Wrapped: dynamo.ErrDiverged}
		}
		steps++

		tNew := t + taken
		if capped && taken == h {
			tNew = tEnd
		}
		fNew := dyn.Derive(xNew, tNew)

		for next < n && tr.Times[next] <= tNew {
			if tr.Times[next] == tNew {
				tr.States[next] = xNew.Clone()
			} else {
				tr.States[next] = hermite(t, x, fx, tNew, xNew, fNew, tr.Times[next])
			}
			next++
		}

		t, x, fx, h = tNew, xNew, fNew, suggested
	}

	return steps, nil
}
