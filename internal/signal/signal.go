package signal

import (
	"fmt"
	"math"
	"time"
)

// Sample is the drive state at one instant.
type Sample struct {
	Phase     float64
	Intensity float64
	Reverse   bool
	Cycle     int64
}

// Cursor is the sweep position on the sparkline: the phase, mirrored while
// the cycle runs in reverse.
func (s Sample) Cursor() float64 {
	if s.Reverse {
		return 1 - s.Phase
	}
	return s.Phase
}

// Signal turns elapsed time into drive samples.
type Signal struct {
	curve     Curve
	period    time.Duration
	alternate bool
}

func New(curve Curve, period time.Duration, alternate bool) (*Signal, error) {
	if curve == nil {
		return nil, fmt.Errorf("signal: nil curve")
	}
	if period <= 0 {
		return nil, fmt.Errorf("signal: period must be positive, got %v", period)
	}
	return &Signal{curve: curve, period: period, alternate: alternate}, nil
}

func (s *Signal) Curve() Curve          { return s.curve }
func (s *Signal) Period() time.Duration { return s.period }
func (s *Signal) Alternates() bool      { return s.alternate }

// At samples the signal. Negative elapsed time is treated as zero.
func (s *Signal) At(elapsed time.Duration) Sample {
	if elapsed < 0 {
		elapsed = 0
	}
	cycle := int64(elapsed / s.period)
	phase := float64(elapsed%s.period) / float64(s.period)
	phase = math.Min(math.Max(phase, 0), math.Nextafter(1, 0))

	return Sample{
		Phase:     phase,
		Intensity: Clamp01(s.curve.Intensity(phase)),
		Reverse:   s.alternate && cycle%2 != 0,
		Cycle:     cycle,
	}
}
