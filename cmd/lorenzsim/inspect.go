package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/analysis"
	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/experiment"
	"github.com/san-kum/lorenzsim/internal/integrators"
	"github.com/san-kum/lorenzsim/internal/logging"
	"github.com/san-kum/lorenzsim/internal/physics"
	"github.com/san-kum/lorenzsim/internal/storage"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

var (
	component    int
	xAxis, yAxis int
	lorenzMap    bool
	poincare     string
	rhoMin       float64
	rhoMax       float64
	rhoSteps     int
	transient    float64
	sweepHorizon float64
)

var axisNames = []string{"x", "y", "z"}

// loadRun reads the run named by args, or the latest run.
func loadRun(args []string) (*storage.RunMetadata, []*trajectory.Trajectory, error) {
	st := storage.New(dataDir)
	runID := ""
	if len(args) > 0 {
		runID = args[0]
	} else {
		latest, err := st.Latest()
		if err != nil {
			return nil, nil, err
		}
		runID = latest.ID
	}
	meta, trajs, err := st.LoadBatch(runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if len(trajs) == 0 {
		return nil, nil, fmt.Errorf("run %s has no stored trajectories", runID)
	}
	return meta, trajs, nil
}

func paramsOf(meta *storage.RunMetadata) physics.Params {
	p := physics.DefaultParams()
	if v, ok := meta.Params["sigma"]; ok {
		p.Sigma = v
	}
	if v, ok := meta.Params["rho"]; ok {
		p.Rho = v
	}
	if v, ok := meta.Params["beta"]; ok {
		p.Beta = v
	}
	return p
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tRHO\tCOUNT\tHORIZON\tINTEGRATOR\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\t%g\t%s\t%d\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Params["rho"],
			r.Count, r.Horizon, r.Integrator, len(r.Failures))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trajs, err := loadRun(args)
	if err != nil {
		return err
	}
	if component < 0 || component > 2 {
		return fmt.Errorf("component must be 0, 1 or 2, got %d", component)
	}
	out := cmd.OutOrStdout()

	series := make([][]float64, len(trajs))
	for i, tr := range trajs {
		series[i] = tr.Component(component)
	}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s(t), %d trajectories, run %s", axisNames[component], len(trajs), meta.ID)))
	fmt.Fprintln(out, graph)

	if len(trajs) > 1 {
		sep, err := analysis.Separation(trajs[0], trajs[len(trajs)-1])
		if err != nil {
			return err
		}
		logSep := make([]float64, len(sep))
		for i, s := range sep {
			logSep[i] = math.Log10(math.Max(s, 1e-12))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(logSep,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("log10 separation first/last")))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trajs, err := loadRun(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", headerStyle.Render("analysis of "+meta.ID))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if len(trajs) > 1 {
		first, last := trajs[0], trajs[len(trajs)-1]
		d, err := analysis.Diverge(first, last)
		if err != nil {
			return err
		}
		sep, _ := analysis.Separation(first, last)
		fmt.Fprintf(w, "initial separation\t%.3g\n", d.Initial)
		fmt.Fprintf(w, "final separation\t%.3g\n", d.Final)
		fmt.Fprintf(w, "growth\t%.1f orders of magnitude\n", d.Orders)
		fmt.Fprintf(w, "separation rate\t%.3f /time\n", analysis.SeparationRate(sep, meta.Dt, 1))
	}

	sys, err := physics.NewLorenz(paramsOf(meta))
	if err != nil {
		return err
	}
	lambda := analysis.LyapunovExponent(sys, integrators.NewRK4(), trajs[0].Initial(), meta.Dt, meta.Horizon, 1e-8)
	fmt.Fprintf(w, "lyapunov estimate\t%.3f\n", lambda)

	for i, e := range analysis.BatchBounds(trajs) {
		fmt.Fprintf(w, "%s range\t[%.2f, %.2f]\n", axisNames[i], e.Min, e.Max)
	}
	fmt.Fprintf(w, "dominant frequency x\t%.4f\n", analysis.DominantFrequency(trajs[0].Component(0), meta.Dt))
	if err := w.Flush(); err != nil {
		return err
	}

	spectrum := analysis.PowerSpectrum(trajs[0].Component(0))
	if len(spectrum) > 1 {
		plotData := spectrum[1:]
		if len(plotData) > 200 {
			plotData = plotData[:200]
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(plotData,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum of x")))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, trajs, err := loadRun(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if lorenzMap {
		pts := analysis.LorenzMap(trajs[0])
		if len(pts) == 0 {
			return fmt.Errorf("no z maxima in the base trajectory")
		}
		portrait := &analysis.PhasePortrait2D{XIndex: 2, YIndex: 2, Points: pts}
		fmt.Fprintln(out, "lorenz map: z_max(n) vs z_max(n+1)")
		fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait, 60, 25))
		return nil
	}

	if poincare != "" {
		axis, value, err := parsePoincare(poincare)
		if err != nil {
			return err
		}
		rx, ry := (axis+1)%3, (axis+2)%3
		section := analysis.PoincareSection(trajs[0], axis, value, rx, ry)
		if section == nil || len(section.Points) == 0 {
			return fmt.Errorf("base trajectory never crosses %s=%g upwards", axisNames[axis], value)
		}
		fmt.Fprintf(out, "poincare section %s=%g: %s vs %s, %d crossings\n",
			axisNames[axis], value, axisNames[ry], axisNames[rx], len(section.Points))
		fmt.Fprint(out, analysis.PhasePortraitToASCII(section, 60, 25))
		return nil
	}

	portrait := analysis.PhasePortrait(trajs[0], xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("axes %d,%d out of range", xAxis, yAxis)
	}
	fmt.Fprintf(out, "phase portrait: %s vs %s\n", axisNames[yAxis], axisNames[xAxis])
	fmt.Fprint(out, analysis.PhasePortraitToASCII(portrait, 60, 25))
	return nil
}

// parsePoincare reads a section plane such as "z=27".
func parsePoincare(s string) (int, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || len(name) != 1 {
		return 0, 0, fmt.Errorf("poincare section must look like z=27, got %q", s)
	}
	axis := strings.IndexByte("xyz", name[0])
	if axis < 0 {
		return 0, 0, fmt.Errorf("poincare axis must be one of x, y, z, got %q", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, 0, fmt.Errorf("poincare value must be a finite number, got %q", raw)
	}
	return axis, value, nil
}

func bifurcate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	newIntegrator, err := experiment.NewRegistry().IntegratorFactory(cfg.Integrator)
	if err != nil {
		return err
	}

	trajCfg := trajectory.DefaultConfig()
	trajCfg.Horizon = sweepHorizon
	trajCfg.Dt = cfg.Dt
	trajCfg.Tolerance = cfg.GetTolerance()
	trajCfg.Logger = logging.New("bifurcation")

	points, err := analysis.BifurcationDiagram(cmd.Context(), cfg.Params, newIntegrator,
		dynamo.State(cfg.Base), rhoMin, rhoMax, rhoSteps, trajCfg, transient)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RHO\tMAXIMA\tMIN Z\tMAX Z")
	for _, p := range points {
		if len(p.Values) == 0 {
			fmt.Fprintf(w, "%.3f\t0\t-\t-\n", p.Param)
			continue
		}
		lo, hi := p.Values[0], p.Values[0]
		for _, v := range p.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		fmt.Fprintf(w, "%.3f\t%d\t%.2f\t%.2f\n", p.Param, len(p.Values), lo, hi)
	}
	return w.Flush()
}
