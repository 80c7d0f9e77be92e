package config

import (
	"sort"

	"github.com/san-kum/lorenzsim/internal/physics"
)

// Presets are partial overrides applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"butterfly": func(c *Config) {},
	"wide": func(c *Config) {
		c.Epsilon = 1e-2
		c.Count = 16
	},
	"periodic": func(c *Config) {
		c.Params = physics.Params{Sigma: 10, Rho: 99.96, Beta: 8.0 / 3.0}
		c.Horizon = 20
		c.Base = []float64{0, 1, 50}
	},
	"fixedpoint": func(c *Config) {
		c.Params = physics.Params{Sigma: 10, Rho: 14, Beta: 8.0 / 3.0}
		c.Horizon = 20
		c.Epsilon = 1.0
		c.Count = 6
	},
	"long": func(c *Config) {
		c.Horizon = 100
		c.Count = 4
	},
}

func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
