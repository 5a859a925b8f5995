// Package placer samples rod placements on the surface of a unit sphere.
package placer

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/rodsphere/internal/geom"
)

// Mode selects how the polar angle is drawn.
type Mode int

const (
	// ModeUniform draws theta = acos(2u-1): uniform over the sphere's area.
	ModeUniform Mode = iota
	// ModeLegacy draws theta ~ Uniform(0, pi), which over-samples the poles.
	ModeLegacy
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	default:
		return "uniform"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return ModeUniform, nil
	case "legacy":
		return ModeLegacy, nil
	}
	return ModeUniform, fmt.Errorf("placer: unknown placement mode %q", s)
}

// Rod is one placed element. Rods are never mutated after creation.
type Rod struct {
	ID          uint64    `json:"id"`
	Position    geom.Vec3 `json:"position"`
	Orientation geom.Quat `json:"orientation"`
	Length      float64   `json:"length"`
}

// Axis is the rod's principal (local Y) axis in world space.
func (r Rod) Axis() geom.Vec3 { return r.Orientation.Rotate(geom.UnitY) }

// Endpoints returns both ends of the rod, centred on its position.
func (r Rod) Endpoints() (geom.Vec3, geom.Vec3) {
	half := r.Axis().Scale(r.Length / 2)
	return r.Position.Sub(half), r.Position.Add(half)
}

type Config struct {
	Mode       Mode
	BaseLength float64
	MaxLength  float64
	LengthBias float64
	JitterMin  float64
	JitterMax  float64
}

func DefaultConfig() Config {
	return Config{
		Mode:       ModeUniform,
		BaseLength: 1,
		MaxLength:  4,
		LengthBias: 3,
		JitterMin:  0.9,
		JitterMax:  1.1,
	}
}

// Placer draws rods from a shared random source.
type Placer struct {
	cfg    Config
	rng    *rand.Rand
	nextID uint64
}

func New(cfg Config, rng *rand.Rand) *Placer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Placer{cfg: cfg, rng: rng}
}

func (p *Placer) Config() Config { return p.cfg }

// Place samples one rod: position on the jittered shell, tangent-aligned
// orientation with a random twist about the radial axis, and a length
// biased towards BaseLength.
func (p *Placer) Place() Rod {
	phi := p.rng.Float64() * 2 * math.Pi
	theta := p.polar()
	r := p.cfg.JitterMin + p.rng.Float64()*(p.cfg.JitterMax-p.cfg.JitterMin)
	pos := geom.Spherical(r, theta, phi)

	orient := Orientation(pos, p.rng.Float64()*2*math.Pi)

	p.nextID++
	return Rod{
		ID:          p.nextID,
		Position:    pos,
		Orientation: orient,
		Length:      p.length(),
	}
}

func (p *Placer) polar() float64 {
	u := p.rng.Float64()
	if p.cfg.Mode == ModeLegacy {
		return u * math.Pi
	}
	return math.Acos(2*u - 1)
}

func (p *Placer) length() float64 {
	bias := p.cfg.LengthBias
	if bias < 1 {
		bias = 1
	}
	return p.cfg.BaseLength + math.Pow(p.rng.Float64(), bias)*(p.cfg.MaxLength-p.cfg.BaseLength)
}

// Orientation aligns local Y with the tangent radial x up, where up is world
// Y unless the radial direction is within the 0.99 threshold of it, then
// twists by angle about the radial axis.
func Orientation(pos geom.Vec3, twist float64) geom.Quat {
	radial := pos.Normalize()
	up := geom.UnitY
	if math.Abs(radial.Y) >= 0.99 {
		up = geom.UnitZ
	}
	tangent := radial.Cross(up).Normalize()
	return geom.FromUnitVectors(geom.UnitY, tangent).RotateOnWorldAxis(radial, twist)
}
