// Package orbit advances a camera around the origin at a speed modulated by
// the drive intensity.
//
// The angle is integrated from per-frame delta time rather than derived from
// absolute time, so a change in speed never makes the camera jump.
package orbit

import (
	"math"
	"time"

	"github.com/san-kum/rodsphere/internal/geom"
	"github.com/san-kum/rodsphere/internal/signal"
)

type Config struct {
	BaseSpeed float64 // rad/s at zero intensity
	K         float64 // speed multiplier gain: base*(1+K*intensity)
	Radius    float64
}

func DefaultConfig() Config {
	return Config{BaseSpeed: 0.25, K: 3, Radius: 5}
}

// Pose is a camera position looking at Target.
type Pose struct {
	Position geom.Vec3 `json:"position"`
	Target   geom.Vec3 `json:"target"`
}

type Controller struct {
	cfg   Config
	angle float64
}

func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// AngularVelocity returns the orbit speed in rad/s at the given intensity.
func (c *Controller) AngularVelocity(intensity float64) float64 {
	return c.cfg.BaseSpeed * (1 + c.cfg.K*signal.Clamp01(intensity))
}

// Advance integrates the angle over dt. Negative dt is ignored.
func (c *Controller) Advance(dt time.Duration, intensity float64) {
	if dt <= 0 {
		return
	}
	c.angle += c.AngularVelocity(intensity) * dt.Seconds()
}

func (c *Controller) Angle() float64 { return c.angle }

// SetAngle restores a previously saved angle.
func (c *Controller) SetAngle(a float64) { c.angle = a }

func (c *Controller) Pose() Pose {
	s, co := math.Sincos(c.angle)
	return Pose{
		Position: geom.Vec3{X: c.cfg.Radius * s, Y: 0, Z: c.cfg.Radius * co},
		Target:   geom.Zero,
	}
}
