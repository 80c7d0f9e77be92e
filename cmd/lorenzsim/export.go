package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/lorenzsim/internal/config"
	"github.com/san-kum/lorenzsim/internal/export"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/storage"
	"github.com/san-kum/lorenzsim/internal/trajectory"
	"github.com/san-kum/lorenzsim/internal/viz"
)

var (
	svgOutput  string
	jsonOutput string
	plane      string
	width      int
	height     int
)

// storedCurves colours a stored run the way it was coloured when computed.
func storedCurves(meta *storage.RunMetadata, trajs []*trajectory.Trajectory) ([]scene.Curve, error) {
	from, to := meta.ColorFrom, meta.ColorTo
	if from == "" || to == "" {
		from, to = config.DefaultColorFrom, config.DefaultColorTo
	}
	return paint(from, to, trajs)
}

func parsePlane(s string) (int, int, error) {
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("plane must name two axes, e.g. xz, got %q", s)
	}
	i := strings.IndexByte("xyz", s[0])
	j := strings.IndexByte("xyz", s[1])
	if i < 0 || j < 0 || i == j {
		return 0, 0, fmt.Errorf("plane must name two different axes of x, y, z, got %q", s)
	}
	return i, j, nil
}

// openOutput returns stdout for "-" and a created file otherwise.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, trajs, err := loadRun(args)
	if err != nil {
		return err
	}
	curves, err := storedCurves(meta, trajs)
	if err != nil {
		return err
	}

	path := svgOutput
	if path == "" {
		path = filepath.Join(dataDir, meta.ID, "batch.svg")
	}
	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}

	if plane != "" {
		i, j, err := parsePlane(plane)
		if err != nil {
			closeFn()
			return err
		}
		_, err = io.WriteString(w, export.ProjectionToSVG(curves, i, j, width, height))
		if err != nil {
			closeFn()
			return err
		}
	} else {
		d := export.NewSVGDriver(w)
		d.Width, d.Height = width, height
		d.Camera = viz.NewCamera(viz.DefaultPhi, viz.DefaultTheta)
		if err := d.Play(cmd.Context(), curves); err != nil {
			closeFn()
			return err
		}
	}
	if err := closeFn(); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "svg written to %s\n", path)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, trajs, err := loadRun(args)
	if err != nil {
		return err
	}
	curves, err := storedCurves(meta, trajs)
	if err != nil {
		return err
	}
	doc := export.NewDocument(meta.System, meta.Params, meta.Integrator, curves)

	if jsonOutput == "-" {
		return export.WriteJSON(cmd.OutOrStdout(), doc)
	}
	if err := export.ExportJSON(jsonOutput, doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", jsonOutput)
	return nil
}
