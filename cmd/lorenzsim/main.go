package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/logging"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	logFormat   string
	profileMode string

	stopProfile interface{ Stop() }
)

func init() {
	// Finalizers run even when RunE fails, so a profile is always flushed.
	cobra.OnFinalize(stopProfiling)
}

func stopProfiling() {
	if stopProfile != nil {
		stopProfile.Stop()
		stopProfile = nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stopProfiling()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "lorenzsim",
		Short:             "lorenz attractor trajectory lab",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".lorenzsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text|json)")
	pf.StringVar(&profileMode, "profile", "", "write a cpu or mem profile into the data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "compute a batch, store it and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	addBatchFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "play the batch once it is stored")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "compute a batch and play it in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addBatchFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one coordinate of every trajectory and the separation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", 0, "state index to plot (0=x, 1=y, 2=z)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "separation growth, lyapunov estimate, bounds and spectrum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of the base trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for y-axis")
	phaseCmd.Flags().BoolVar(&lorenzMap, "lorenz-map", false, "plot successive z maxima instead")
	phaseCmd.Flags().StringVar(&poincare, "poincare", "", "plot the upward section through a plane, e.g. z=27")

	bifurcateCmd := &cobra.Command{
		Use:   "bifurcate",
		Short: "sweep rho and report the z maxima of each run",
		Args:  cobra.NoArgs,
		RunE:  bifurcate,
	}
	bifurcateCmd.Flags().Float64Var(&rhoMin, "rho-min", 20, "first rho")
	bifurcateCmd.Flags().Float64Var(&rhoMax, "rho-max", 30, "last rho")
	bifurcateCmd.Flags().IntVar(&rhoSteps, "steps", 11, "number of rho values")
	bifurcateCmd.Flags().Float64Var(&transient, "transient", 10, "time discarded before collecting maxima")
	bifurcateCmd.Flags().Float64Var(&sweepHorizon, "horizon", 40, "horizon of each run")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default <data>/<run_id>/batch.svg, - for stdout)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "", "flat projection instead of the 3D view, e.g. xz")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "image height")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOutput, "output", "o", "-", "output file (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(out, "  %-11s rho=%-6g count=%-3d epsilon=%-6g horizon=%g\n",
					name, p.Params.Rho, p.Count, p.Epsilon, p.Horizon)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, bifurcateCmd, exportSVGCmd, exportJSONCmd, presetsCmd)
	return rootCmd
}

func setup(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	switch logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (text|json)", logFormat)
	}
	logging.Init(level, logFormat, cmd.ErrOrStderr())

	switch profileMode {
	case "":
	case "cpu":
		stopProfile = profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook, profile.Quiet)
	case "mem":
		stopProfile = profile.Start(profile.MemProfile, profile.ProfilePath(dataDir), profile.NoShutdownHook, profile.Quiet)
	default:
		return fmt.Errorf("unknown profile mode %q (cpu|mem)", profileMode)
	}
	return nil
}
