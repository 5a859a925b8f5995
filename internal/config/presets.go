package config

import "sort"

// Presets capture the tuned variants of the drive curve, delay shaping and
// placement that the piece went through.
var Presets = map[string]func() *Config{
	"classic": DefaultConfig,
	"parabolic": func() *Config {
		c := DefaultConfig()
		c.Curve = CurveConfig{Shape: "parabolic"}
		c.Scheduler = SchedulerConfig{MinDelayMs: 10, MaxDelayMs: 1000, DelaySharpness: 4}
		c.Rods.LengthBias = 2
		return c
	},
	"steep": func() *Config {
		c := DefaultConfig()
		c.Scheduler = SchedulerConfig{MinDelayMs: 10, MaxDelayMs: 1000, DelaySharpness: 100}
		return c
	},
	"gentle": func() *Config {
		c := DefaultConfig()
		c.TotalDurationSeconds = 120
		c.Curve.Power = 4
		c.Scheduler.DelaySharpness = 4
		c.Rods.LengthBias = 2
		return c
	},
	"legacy": func() *Config {
		c := DefaultConfig()
		c.Rods.Placement = "legacy"
		c.Rods.LengthBias = 2
		c.Scheduler.MinDelayMs = 20
		return c
	},
	"decoupled": func() *Config {
		c := DefaultConfig()
		c.AlternateDirection = false
		c.Policy = "decoupled"
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
