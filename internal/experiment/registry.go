package experiment

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
	"github.com/san-kum/rodsphere/internal/signal"
)

// ErrUnknown is returned for placement, policy and parameter names the
// registry does not know.
var ErrUnknown = errors.New("experiment: unknown name")

// ParamSetter writes one tunable value into a configuration.
type ParamSetter func(cfg *config.Config, v float64)

type Registry struct {
	curves     map[string]func(power float64) (signal.Curve, error)
	placements map[string]placer.Mode
	policies   map[string]population.Policy
	params     map[string]ParamSetter
}

func NewRegistry() *Registry {
	r := &Registry{
		curves:     make(map[string]func(float64) (signal.Curve, error)),
		placements: make(map[string]placer.Mode),
		policies:   make(map[string]population.Policy),
		params:     make(map[string]ParamSetter),
	}

	r.curves[signal.ShapePeakedSine] = func(p float64) (signal.Curve, error) {
		return signal.ParseCurve(signal.ShapePeakedSine, p)
	}
	r.curves[signal.ShapeParabolic] = func(p float64) (signal.Curve, error) {
		return signal.ParseCurve(signal.ShapeParabolic, p)
	}

	r.placements[placer.ModeUniform.String()] = placer.ModeUniform
	r.placements[placer.ModeLegacy.String()] = placer.ModeLegacy

	r.policies[population.PolicyCoupled.String()] = population.PolicyCoupled
	r.policies[population.PolicyDecoupled.String()] = population.PolicyDecoupled

	r.params["duration"] = func(c *config.Config, v float64) { c.TotalDurationSeconds = v }
	r.params["power"] = func(c *config.Config, v float64) { c.Curve.Power = v }
	r.params["min_delay_ms"] = func(c *config.Config, v float64) { c.Scheduler.MinDelayMs = v }
	r.params["max_delay_ms"] = func(c *config.Config, v float64) { c.Scheduler.MaxDelayMs = v }
	r.params["sharpness"] = func(c *config.Config, v float64) { c.Scheduler.DelaySharpness = v }
	r.params["length_bias"] = func(c *config.Config, v float64) { c.Rods.LengthBias = v }
	r.params["max_length"] = func(c *config.Config, v float64) { c.Rods.MaxLength = v }
	r.params["orbit_speed"] = func(c *config.Config, v float64) { c.Orbit.BaseSpeed = v }
	r.params["orbit_k"] = func(c *config.Config, v float64) { c.Orbit.SpeedMultiplierK = v }

	return r
}

func (r *Registry) GetCurve(name string, power float64) (signal.Curve, error) {
	fn, ok := r.curves[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", signal.ErrUnknownCurve, name)
	}
	return fn(power)
}

func (r *Registry) GetPlacement(name string) (placer.Mode, error) {
	m, ok := r.placements[name]
	if !ok {
		return 0, fmt.Errorf("%w: placement %s", ErrUnknown, name)
	}
	return m, nil
}

func (r *Registry) GetPolicy(name string) (population.Policy, error) {
	p, ok := r.policies[name]
	if !ok {
		return 0, fmt.Errorf("%w: policy %s", ErrUnknown, name)
	}
	return p, nil
}

// SetParam applies a named tunable. Callers validate the result.
func (r *Registry) SetParam(cfg *config.Config, name string, v float64) error {
	fn, ok := r.params[name]
	if !ok {
		return fmt.Errorf("%w: parameter %s", ErrUnknown, name)
	}
	fn(cfg, v)
	return nil
}

func (r *Registry) ListCurves() []string     { return sortedKeys(r.curves) }
func (r *Registry) ListPlacements() []string { return sortedKeys(r.placements) }
func (r *Registry) ListPolicies() []string   { return sortedKeys(r.policies) }
func (r *Registry) ListParams() []string     { return sortedKeys(r.params) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
