package signal

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownCurve = errors.New("signal: unknown curve shape")

// Curve maps phase in [0,1] to an intensity in [0,1].
type Curve interface {
	Intensity(phase float64) float64
	Name() string
}

// PeakedSine is sin(pi*phase)^Power: zero at both ends, one sharp peak at 0.5.
type PeakedSine struct {
	Power float64
}

func NewPeakedSine(power float64) PeakedSine { return PeakedSine{Power: power} }

func (c PeakedSine) Intensity(phase float64) float64 {
	phase = Clamp01(phase)
	if phase == 0 || phase == 1 {
		return 0
	}
	s := math.Sin(math.Pi * phase)
	if s < 0 {
		s = 0
	}
	return Clamp01(math.Pow(s, c.Power))
}

func (c PeakedSine) Name() string { return ShapePeakedSine }

// Parabolic is -4*phase^2 + 4*phase on the wrapped phase.
type Parabolic struct{}

func (Parabolic) Intensity(phase float64) float64 {
	if phase != 1 {
		phase = wrap(phase)
	}
	return Clamp01(-4*phase*phase + 4*phase)
}

func (Parabolic) Name() string { return ShapeParabolic }

const (
	ShapePeakedSine = "peaked-sine"
	ShapeParabolic  = "parabolic"
)

// ParseCurve builds a curve from its configured name. Power only applies to
// the peaked sine and must be at least 1.
func ParseCurve(shape string, power float64) (Curve, error) {
	switch strings.ToLower(strings.TrimSpace(shape)) {
	case ShapePeakedSine, "sine", "peaked_sine":
		if power < 1 || math.IsNaN(power) || math.IsInf(power, 0) {
			return nil, fmt.Errorf("signal: peaked-sine power must be >= 1, got %v", power)
		}
		return NewPeakedSine(power), nil
	case ShapeParabolic:
		return Parabolic{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCurve, shape)
	}
}

// Samples evaluates the curve at n evenly spaced phases covering [0,1]
// inclusive, as a display surface needs once per resize.
func Samples(c Curve, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = c.Intensity(0)
		return out
	}
	for i := range out {
		out[i] = c.Intensity(float64(i) / float64(n-1))
	}
	return out
}

// Clamp01 recovers from floating drift outside [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func wrap(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	return x
}
