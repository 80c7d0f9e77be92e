package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/ensemble"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// Experiment turns a Config into a batch of Lorenz trajectories.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *slog.Logger
}

func New(cfg *config.Config, registry *Registry, log *slog.Logger) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

// Result is a finished batch plus what produced it.
type Result struct {
	System  *physics.Lorenz
	Batch   *ensemble.Batch
	Elapsed time.Duration
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	dyn, err := physics.NewLorenz(e.cfg.Params)
	if err != nil {
		return nil, err
	}

	newIntegrator, err := e.registry.IntegratorFactory(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	policy, err := ensemble.ParsePolicy(e.cfg.Policy)
	if err != nil {
		return nil, err
	}

	initial, err := ensemble.Perturb(e.cfg.GetInitState(), e.cfg.Axis, e.cfg.Epsilon, e.cfg.Count)
	if err != nil {
		return nil, err
	}

	trajCfg := trajectory.DefaultConfig()
	trajCfg.Horizon = e.cfg.Horizon
	trajCfg.Dt = e.cfg.Dt
	trajCfg.Tolerance = e.cfg.GetTolerance()
	trajCfg.Logger = e.log

	e.log.Info("generating batch",
		slog.Int("count", e.cfg.Count),
		slog.Float64("epsilon", e.cfg.Epsilon),
		slog.Float64("horizon", e.cfg.Horizon),
		slog.String("integrator", e.cfg.Integrator),
	)

	start := time.Now()
	batch, err := ensemble.Generate(ctx, dyn, newIntegrator, initial, trajCfg, ensemble.Options{
		Workers: e.cfg.Workers,
		Policy:  policy,
		Logger:  e.log,
	})
	if err != nil {
		return nil, fmt.Errorf("generate batch: %w", err)
	}
	if len(batch.Trajectories()) == 0 {
		return nil, fmt.Errorf("%w: every member of the batch failed", dynamo.ErrIntegration)
	}

	return &Result{System: dyn, Batch: batch, Elapsed: time.Since(start)}, nil
}
