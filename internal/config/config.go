package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
	"github.com/san-kum/rodsphere/internal/signal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTotalDuration  = 60.0
	DefaultCurvePower     = 20.0
	DefaultMinDelayMs     = 40.0
	DefaultMaxDelayMs     = 1000.0
	DefaultDelaySharpness = 10.0
	DefaultOrbitSpeed     = 0.25
	DefaultOrbitK         = 3.0
	DefaultCameraRadius   = 5.0
	DefaultRodBase        = 1.0
	DefaultRodMax         = 4.0
	DefaultRodBias        = 3.0
	DefaultJitterMin      = 0.9
	DefaultJitterMax      = 1.1
	DefaultFrameRate      = 60
)

// ErrInvalidConfig wraps every configuration violation.
var ErrInvalidConfig = errors.New("rodsphere: invalid configuration")

type Config struct {
	TotalDurationSeconds float64         `yaml:"total_duration_seconds"`
	Curve                CurveConfig     `yaml:"curve"`
	AlternateDirection   bool            `yaml:"alternate_direction"`
	Policy               string          `yaml:"policy"`
	Scheduler            SchedulerConfig `yaml:"scheduler"`
	Orbit                OrbitConfig     `yaml:"orbit"`
	Rods                 RodConfig       `yaml:"rods"`
	Seed                 int64           `yaml:"seed"`
	FrameRate            int             `yaml:"frame_rate"`
}

type CurveConfig struct {
	Shape string  `yaml:"shape"`
	Power float64 `yaml:"power"`
}

type SchedulerConfig struct {
	MinDelayMs     float64 `yaml:"min_delay_ms"`
	MaxDelayMs     float64 `yaml:"max_delay_ms"`
	DelaySharpness float64 `yaml:"delay_sharpness"`
}

type OrbitConfig struct {
	BaseSpeed        float64 `yaml:"base_speed"`
	SpeedMultiplierK float64 `yaml:"speed_multiplier_k"`
	Radius           float64 `yaml:"radius"`
}

type RodConfig struct {
	BaseLength  float64    `yaml:"base_length"`
	MaxLength   float64    `yaml:"max_length"`
	LengthBias  float64    `yaml:"length_bias"`
	JitterRange [2]float64 `yaml:"jitter_range,flow"`
	Placement   string     `yaml:"placement"`
}

func DefaultConfig() *Config {
	return &Config{
		TotalDurationSeconds: DefaultTotalDuration,
		Curve:                CurveConfig{Shape: signal.ShapePeakedSine, Power: DefaultCurvePower},
		AlternateDirection:   true,
		Policy:               population.PolicyCoupled.String(),
		Scheduler: SchedulerConfig{
			MinDelayMs:     DefaultMinDelayMs,
			MaxDelayMs:     DefaultMaxDelayMs,
			DelaySharpness: DefaultDelaySharpness,
		},
		Orbit: OrbitConfig{
			BaseSpeed:        DefaultOrbitSpeed,
			SpeedMultiplierK: DefaultOrbitK,
			Radius:           DefaultCameraRadius,
		},
		Rods: RodConfig{
			BaseLength:  DefaultRodBase,
			MaxLength:   DefaultRodMax,
			LengthBias:  DefaultRodBias,
			JitterRange: [2]float64{DefaultJitterMin, DefaultJitterMax},
			Placement:   placer.ModeUniform.String(),
		},
		FrameRate: DefaultFrameRate,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes the file on top of a copy of base, so keys missing from
// the file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate reports every violation, each wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if !(c.TotalDurationSeconds > 0) {
		bad("total_duration_seconds must be positive, got %v", c.TotalDurationSeconds)
	}
	if _, err := signal.ParseCurve(c.Curve.Shape, c.Curve.Power); err != nil {
		bad("curve: %v", err)
	}
	if _, err := population.ParsePolicy(c.Policy); err != nil {
		bad("%v", err)
	}
	if c.Scheduler.MinDelayMs < 0 {
		bad("min_delay_ms must not be negative, got %v", c.Scheduler.MinDelayMs)
	}
	if c.Scheduler.MinDelayMs > c.Scheduler.MaxDelayMs {
		bad("min_delay_ms (%v) exceeds max_delay_ms (%v)", c.Scheduler.MinDelayMs, c.Scheduler.MaxDelayMs)
	}
	if !(c.Scheduler.DelaySharpness > 0) {
		bad("delay_sharpness must be positive, got %v", c.Scheduler.DelaySharpness)
	}
	if c.Orbit.BaseSpeed < 0 || c.Orbit.SpeedMultiplierK < 0 {
		bad("orbit speeds must not be negative")
	}
	if !(c.Orbit.Radius > 0) {
		bad("orbit radius must be positive, got %v", c.Orbit.Radius)
	}
	if c.Rods.BaseLength < 0 || c.Rods.MaxLength < 0 {
		bad("rod lengths must not be negative (base %v, max %v)", c.Rods.BaseLength, c.Rods.MaxLength)
	}
	if c.Rods.BaseLength > c.Rods.MaxLength {
		bad("rod base_length (%v) exceeds max_length (%v)", c.Rods.BaseLength, c.Rods.MaxLength)
	}
	if c.Rods.LengthBias < 1 {
		bad("rod length_bias must be >= 1, got %v", c.Rods.LengthBias)
	}
	if lo, hi := c.Rods.JitterRange[0], c.Rods.JitterRange[1]; !(lo > 0) || lo > hi {
		bad("jitter_range must satisfy 0 < min <= max, got [%v, %v]", lo, hi)
	}
	if _, err := placer.ParseMode(c.Rods.Placement); err != nil {
		bad("%v", err)
	}
	if c.FrameRate <= 0 {
		bad("frame_rate must be positive, got %d", c.FrameRate)
	}

	return errors.Join(errs...)
}

// Period returns the cycle length.
func (c *Config) Period() time.Duration {
	return time.Duration(c.TotalDurationSeconds * float64(time.Second))
}

func (c *Config) DelayCurve() population.DelayCurve {
	return population.DelayCurve{
		Min:       msToDuration(c.Scheduler.MinDelayMs),
		Max:       msToDuration(c.Scheduler.MaxDelayMs),
		Sharpness: c.Scheduler.DelaySharpness,
	}
}

func (c *Config) OrbitConfig() orbit.Config {
	return orbit.Config{
		BaseSpeed: c.Orbit.BaseSpeed,
		K:         c.Orbit.SpeedMultiplierK,
		Radius:    c.Orbit.Radius,
	}
}

func (c *Config) PlacerConfig() (placer.Config, error) {
	mode, err := placer.ParseMode(c.Rods.Placement)
	if err != nil {
		return placer.Config{}, err
	}
	return placer.Config{
		Mode:       mode,
		BaseLength: c.Rods.BaseLength,
		MaxLength:  c.Rods.MaxLength,
		LengthBias: c.Rods.LengthBias,
		JitterMin:  c.Rods.JitterRange[0],
		JitterMax:  c.Rods.JitterRange[1],
	}, nil
}

// FrameInterval is the display refresh period.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
