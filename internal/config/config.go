package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/physics"
)

const (
	DefaultDt         = 0.01
	DefaultHorizon    = 30.0
	DefaultEpsilon    = 1e-5
	DefaultCount      = 10
	DefaultAxis       = 2
	DefaultIntegrator = "rk45"
	DefaultRelTol     = 1e-6
	DefaultAbsTol     = 1e-9
	DefaultFPS        = 30
	DefaultRotation   = 0.3
	DefaultPhi        = 43.0
	DefaultTheta      = 76.0
	DefaultColorFrom  = "#1C758A"
	DefaultColorTo    = "#C7E9F1"
)

type Config struct {
	Params     physics.Params  `yaml:"params"`
	Base       []float64       `yaml:"base"`
	Axis       int             `yaml:"axis"`
	Epsilon    float64         `yaml:"epsilon"`
	Count      int             `yaml:"count"`
	Horizon    float64         `yaml:"horizon"`
	Dt         float64         `yaml:"dt"`
	Integrator string          `yaml:"integrator"`
	Tolerance  ToleranceConfig `yaml:"tolerance"`
	Workers    int             `yaml:"workers"`
	Policy     string          `yaml:"policy"`
	Scene      SceneConfig     `yaml:"scene"`
}

type ToleranceConfig struct {
	Rel float64 `yaml:"rel"`
	Abs float64 `yaml:"abs"`
}

type SceneConfig struct {
	FPS          int     `yaml:"fps"`
	RunTime      float64 `yaml:"run_time"`
	RotationRate float64 `yaml:"rotation_rate"`
	Phi          float64 `yaml:"phi"`
	Theta        float64 `yaml:"theta"`
	ColorFrom    string  `yaml:"color_from"`
	ColorTo      string  `yaml:"color_to"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:     physics.DefaultParams(),
		Base:       []float64{10, 10, 10},
		Axis:       DefaultAxis,
		Epsilon:    DefaultEpsilon,
		Count:      DefaultCount,
		Horizon:    DefaultHorizon,
		Dt:         DefaultDt,
		Integrator: DefaultIntegrator,
		Tolerance:  ToleranceConfig{Rel: DefaultRelTol, Abs: DefaultAbsTol},
		Policy:     "abort",
		Scene: SceneConfig{
			FPS:          DefaultFPS,
			RotationRate: DefaultRotation,
			Phi:          DefaultPhi,
			Theta:        DefaultTheta,
			ColorFrom:    DefaultColorFrom,
			ColorTo:      DefaultColorTo,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver overlays the file at path onto base, so a config file can refine
// a preset. base is modified and returned.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the trajectory kernel does not check itself.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if len(c.Base) != 3 {
		return dynamo.InvalidParameter("base state needs 3 components, got %d", len(c.Base))
	}
	if c.Count < 1 {
		return dynamo.InvalidParameter("count must be at least 1, got %d", c.Count)
	}
	if c.Axis < 0 || c.Axis > 2 {
		return dynamo.InvalidParameter("axis must be 0, 1 or 2, got %d", c.Axis)
	}
	if math.IsNaN(c.Epsilon) || math.IsInf(c.Epsilon, 0) {
		return dynamo.InvalidParameter("epsilon must be finite, got %g", c.Epsilon)
	}
	if c.Horizon <= 0 {
		return dynamo.InvalidParameter("horizon must be positive, got %g", c.Horizon)
	}
	if c.Dt <= 0 {
		return dynamo.InvalidParameter("dt must be positive, got %g", c.Dt)
	}
	if c.Scene.FPS <= 0 {
		return dynamo.InvalidParameter("scene fps must be positive, got %d", c.Scene.FPS)
	}
	return nil
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.State(c.Base).Clone()
}

func (c *Config) GetTolerance() dynamo.Tolerance {
	tol := dynamo.DefaultTolerance()
	tol.Rel = c.Tolerance.Rel
	tol.Abs = c.Tolerance.Abs
	return tol
}

// RunTime is the animation length; zero means one second per time unit.
func (c *Config) RunTime() float64 {
	if c.Scene.RunTime > 0 {
		return c.Scene.RunTime
	}
	return c.Horizon
}
