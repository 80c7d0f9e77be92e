package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/lorenzsim/internal/export"
	"github.com/san-kum/lorenzsim/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunStoresBatch(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "run", "--data", dir, "--horizon", "2", "--count", "3", "--log-level", "warn")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "3 of 3") {
		t.Errorf("summary missing member count:\n%s", out)
	}

	runs, err := storage.New(dir).List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, err = %v", runs, err)
	}
	meta := runs[0]
	if meta.Count != 3 || meta.Horizon != 2 || meta.Params["rho"] != 28 || meta.Metrics["stability"] != 1 {
		t.Errorf("metadata = %+v", meta)
	}
	if _, err := os.Stat(filepath.Join(dir, meta.ID, "trajectory_02.csv")); err != nil {
		t.Error(err)
	}

	out, err = execute(t, "list", "--data", dir)
	if err != nil || !strings.Contains(out, meta.ID) {
		t.Errorf("list: %v\n%s", err, out)
	}

	out, err = execute(t, "export-json", "--data", dir, meta.ID)
	if err != nil {
		t.Fatalf("export-json: %v", err)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Curves) != 3 || doc.Steps != 200 {
		t.Errorf("doc has %d curves, %d steps", len(doc.Curves), doc.Steps)
	}

	svgPath := filepath.Join(dir, "out.svg")
	if _, err := execute(t, "export-svg", "--data", dir, "-o", svgPath); err != nil {
		t.Fatalf("export-svg: %v", err)
	}
	data, err := os.ReadFile(svgPath)
	if err != nil || strings.Count(string(data), "<path") != 3 {
		t.Errorf("svg: %v", err)
	}

	for _, args := range [][]string{
		{"plot", "--data", dir},
		{"analyze", "--data", dir},
		{"phase", "--data", dir},
	} {
		if out, err := execute(t, args...); err != nil || out == "" {
			t.Errorf("%v: err=%v", args, err)
		}
	}
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	dir := t.TempDir()
	cases := [][]string{
		{"run", "--data", dir, "--horizon", "0"},
		{"run", "--data", dir, "--dt", "-0.5"},
		{"run", "--data", dir, "--integrator", "leapfrog"},
		{"run", "--data", dir, "--preset", "nope"},
		{"run", "--data", dir, "--log-level", "loud"},
		{"run", "--data", dir, "--profile", "gpu"},
	}
	for _, args := range cases {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestResolveConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("count: 5\nepsilon: 0.001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	liveCmd, _, err := newRootCmd().Find([]string{"live"})
	if err != nil {
		t.Fatal(err)
	}
	if err := liveCmd.ParseFlags([]string{"--preset", "periodic", "--config", path, "--epsilon", "0.5"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(liveCmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Params.Rho != 99.96 {
		t.Errorf("preset not applied: rho=%g", cfg.Params.Rho)
	}
	if cfg.Count != 5 {
		t.Errorf("config file not applied: count=%d", cfg.Count)
	}
	if cfg.Epsilon != 0.5 {
		t.Errorf("flag not applied: epsilon=%g", cfg.Epsilon)
	}
}

func TestParsePlane(t *testing.T) {
	i, j, err := parsePlane("xz")
	if err != nil || i != 0 || j != 2 {
		t.Errorf("xz = %d,%d,%v", i, j, err)
	}
	for _, bad := range []string{"", "x", "xx", "xw", "xyz"} {
		if _, _, err := parsePlane(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"butterfly", "periodic", "fixedpoint"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing preset %s", name)
		}
	}
}

func TestPhasePoincare(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "run", "--data", dir, "--horizon", "10", "--count", "1", "--log-level", "warn"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := execute(t, "phase", "--data", dir, "--poincare", "z=27")
	if err != nil {
		t.Fatalf("phase --poincare: %v", err)
	}
	if !strings.Contains(out, "poincare section z=27") {
		t.Errorf("missing section header:\n%s", out)
	}

	if _, err := execute(t, "phase", "--data", dir, "--poincare", "z=1000"); err == nil {
		t.Error("expected error for a plane the trajectory never crosses")
	}
	if _, err := execute(t, "phase", "--data", dir, "--poincare", "w=1"); err == nil {
		t.Error("expected error for an unknown axis")
	}
}

func TestParsePoincare(t *testing.T) {
	axis, value, err := parsePoincare("z=27")
	if err != nil || axis != 2 || value != 27 {
		t.Errorf("z=27 = %d,%g,%v", axis, value, err)
	}
	axis, value, err = parsePoincare("x=-1.5")
	if err != nil || axis != 0 || value != -1.5 {
		t.Errorf("x=-1.5 = %d,%g,%v", axis, value, err)
	}
	for _, bad := range []string{"", "z", "z=", "xy=1", "q=1", "z=abc", "z=NaN", "z=Inf"} {
		if _, _, err := parsePoincare(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestProfileStoppedWhenCommandFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "run", "--data", dir, "--profile", "cpu", "--horizon", "0", "--log-level", "warn"); err == nil {
		t.Fatal("expected error for a zero horizon")
	}
	if stopProfile != nil {
		t.Error("profile still running after a failed command")
	}
	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("profile not flushed: %v", err)
	}

	// A second profiled command must be able to start.
	if _, err := execute(t, "presets", "--data", dir, "--profile", "cpu"); err != nil {
		t.Errorf("second profiled command: %v", err)
	}
}
