package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/experiment"
	"github.com/san-kum/lorenzsim/internal/logging"
	"github.com/san-kum/lorenzsim/internal/metrics"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/storage"
	"github.com/san-kum/lorenzsim/internal/trajectory"
	"github.com/san-kum/lorenzsim/internal/viz"
)

var (
	horizon    float64
	dt         float64
	epsilon    float64
	sigma      float64
	rho        float64
	beta       float64
	runTime    float64
	count      int
	axis       int
	workers    int
	fps        int
	integrator string
	policy     string
	base       []float64
	live       bool
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
)

func addBatchFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&horizon, "horizon", def.Horizon, "time span T of every trajectory")
	f.Float64Var(&dt, "dt", def.Dt, "sampling interval")
	f.IntVar(&count, "count", def.Count, "number of trajectories")
	f.Float64Var(&epsilon, "epsilon", def.Epsilon, "offset between neighbouring initial states")
	f.IntVar(&axis, "axis", def.Axis, "state index the offset is applied to")
	f.Float64SliceVar(&base, "base", def.Base, "base initial state x,y,z")
	f.Float64Var(&sigma, "sigma", def.Params.Sigma, "sigma")
	f.Float64Var(&rho, "rho", def.Params.Rho, "rho")
	f.Float64Var(&beta, "beta", def.Params.Beta, "beta")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator (euler|rk4|rk45)")
	f.StringVar(&policy, "policy", def.Policy, "failure policy (abort|skip)")
	f.IntVar(&workers, "workers", def.Workers, "parallel trajectories (0 = all cores)")
	f.Float64Var(&runTime, "run-time", 0, "animation length in seconds (0 = one second per time unit)")
	f.IntVar(&fps, "fps", def.Scene.FPS, "frame rate")
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("count") {
		cfg.Count = count
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if flags.Changed("axis") {
		cfg.Axis = axis
	}
	if flags.Changed("base") {
		cfg.Base = append([]float64(nil), base...)
	}
	if flags.Changed("sigma") {
		cfg.Params.Sigma = sigma
	}
	if flags.Changed("rho") {
		cfg.Params.Rho = rho
	}
	if flags.Changed("beta") {
		cfg.Params.Beta = beta
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("run-time") {
		cfg.Scene.RunTime = runTime
	}
	if flags.Changed("fps") {
		cfg.Scene.FPS = fps
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func computeBatch(cmd *cobra.Command) (*config.Config, *experiment.Result, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	res, err := experiment.New(cfg, nil, logging.New("experiment")).Run(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return cfg, res, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, res, err := computeBatch(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(runMetadata(cfg, res), res.Batch)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logging.New("storage").Info("run stored", "run_id", runID, "dir", dataDir)

	printSummary(cmd.OutOrStdout(), runID, cfg, res)

	if live {
		return play(cmd.Context(), cfg, res.Batch.Trajectories())
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, res, err := computeBatch(cmd)
	if err != nil {
		return err
	}
	return play(cmd.Context(), cfg, res.Batch.Trajectories())
}

func runMetadata(cfg *config.Config, res *experiment.Result) storage.RunMetadata {
	meta := storage.RunMetadata{
		System:     "lorenz",
		Params:     res.System.GetParams(),
		Base:       cfg.Base,
		Axis:       cfg.Axis,
		Epsilon:    cfg.Epsilon,
		Horizon:    cfg.Horizon,
		Dt:         cfg.Dt,
		Integrator: cfg.Integrator,
		Tolerance:  storage.Tolerance{Rel: cfg.Tolerance.Rel, Abs: cfg.Tolerance.Abs},
		Policy:     cfg.Policy,
		ColorFrom:  cfg.Scene.ColorFrom,
		ColorTo:    cfg.Scene.ColorTo,
		Metrics:    map[string]float64{"elapsed_ms": float64(res.Elapsed.Milliseconds())},
	}
	trajs := res.Batch.Trajectories()
	if len(trajs) > 0 {
		for name, v := range metrics.Evaluate(trajs[0], metrics.Defaults(res.System.Params())...) {
			meta.Metrics[name] = v
		}
	}
	if len(trajs) > 1 {
		if d, err := analysis.Diverge(trajs[0], trajs[len(trajs)-1]); err == nil {
			meta.Metrics["max_separation"] = d.Max
			meta.Metrics["divergence_orders"] = d.Orders
		}
	}
	return meta
}

func printSummary(w io.Writer, runID string, cfg *config.Config, res *experiment.Result) {
	trajs := res.Batch.Trajectories()
	fmt.Fprintln(w, headerStyle.Render("lorenz batch"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render("run id"), runID)
	fmt.Fprintf(tw, "%s\t%d of %d\n", labelStyle.Render("trajectories"), len(trajs), cfg.Count)
	if len(trajs) > 0 {
		fmt.Fprintf(tw, "%s\t%d\n", labelStyle.Render("samples"), trajs[0].Len())
	}
	fmt.Fprintf(tw, "%s\t%s\n", labelStyle.Render("integrator"), cfg.Integrator)
	fmt.Fprintf(tw, "%s\t%v\n", labelStyle.Render("elapsed"), res.Elapsed.Round(time.Microsecond))
	tw.Flush()

	for _, i := range res.Batch.FailedIndices() {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("member %d failed: %v", i, res.Batch.Failures[i])))
	}
	if len(trajs) > 1 {
		if d, err := analysis.Diverge(trajs[0], trajs[len(trajs)-1]); err == nil {
			fmt.Fprintf(w, "separation first/last: %.3g -> %.3g (max %.3g, %.1f orders)\n",
				d.Initial, d.Final, d.Max, d.Orders)
		}
	}
}

// paint colours trajectories with the configured gradient.
func paint(from, to string, trajs []*trajectory.Trajectory) ([]scene.Curve, error) {
	colors, err := scene.ParseGradient(from, to, len(trajs))
	if err != nil {
		return nil, err
	}
	return scene.Paint(trajs, colors)
}

func play(ctx context.Context, cfg *config.Config, trajs []*trajectory.Trajectory) error {
	curves, err := paint(cfg.Scene.ColorFrom, cfg.Scene.ColorTo, trajs)
	if err != nil {
		return err
	}
	p := viz.NewPlayer()
	p.FPS = cfg.Scene.FPS
	p.RunTime = time.Duration(cfg.RunTime() * float64(time.Second))
	p.RotationRate = cfg.Scene.RotationRate
	p.Phi = cfg.Scene.Phi * math.Pi / 180
	p.Theta = cfg.Scene.Theta * math.Pi / 180
	p.Logger = logging.New("viz")

	var driver scene.Driver = p
	return driver.Play(ctx, curves)
}
