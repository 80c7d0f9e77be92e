package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Params != physics.DefaultParams() {
		t.Errorf("expected default params, got %+v", cfg.Params)
	}
	if cfg.Dt != 0.01 || cfg.Horizon != 30 {
		t.Errorf("expected dt=0.01 horizon=30, got dt=%g horizon=%g", cfg.Dt, cfg.Horizon)
	}
	if cfg.Count != 10 || cfg.Epsilon != 1e-5 || cfg.Axis != 2 {
		t.Errorf("unexpected batch defaults: count=%d eps=%g axis=%d", cfg.Count, cfg.Epsilon, cfg.Axis)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.RunTime() != cfg.Horizon {
		t.Errorf("expected run time to follow horizon, got %g", cfg.RunTime())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "params:\n  sigma: 10\n  rho: 99.96\n  beta: 2.6666666666666665\ncount: 4\nscene:\n  fps: 12\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := DefaultConfig()
	want.Params.Rho = 99.96
	want.Count = 4
	want.Scene.FPS = 12
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("loaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("wide")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short base", func(c *Config) { c.Base = []float64{1, 2} }},
		{"zero count", func(c *Config) { c.Count = 0 }},
		{"bad axis", func(c *Config) { c.Axis = 3 }},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.5 }},
		{"zero fps", func(c *Config) { c.Scene.FPS = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("periodic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Params.Rho != 99.96 {
		t.Errorf("expected rho 99.96, got %f", cfg.Params.Rho)
	}
	if DefaultConfig().Params.Rho != 28 {
		t.Error("preset leaked into defaults")
	}
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresetsSorted(t *testing.T) {
	want := []string{"butterfly", "fixedpoint", "long", "periodic", "wide"}
	if diff := cmp.Diff(want, ListPresets()); diff != "" {
		t.Errorf("preset names mismatch (-want +got):\n%s", diff)
	}
}

func TestGetInitStateIsCopy(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.GetInitState()
	s[0] = 42
	if cfg.Base[0] != 10 {
		t.Error("GetInitState aliases the config")
	}
}

func TestLoadOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("count: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOver(path, GetPreset("periodic"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := GetPreset("periodic")
	want.Count = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
