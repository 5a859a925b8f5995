package population

import (
	"math"
	"time"

	"github.com/san-kum/rodsphere/internal/signal"
)

// DelayCurve maps intensity to the wait before the next tick.
type DelayCurve struct {
	Min       time.Duration
	Max       time.Duration
	Sharpness float64
}

// Delay returns Min at intensity 1 and Max at intensity 0 exactly.
func (d DelayCurve) Delay(intensity float64) time.Duration {
	factor := math.Pow(1-signal.Clamp01(intensity), d.Sharpness)
	return d.Min + time.Duration(float64(d.Max-d.Min)*factor)
}
