package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/rodsphere/internal/engine"
)

// DefaultRate is the resampling rate in Hz used for population traces.
const DefaultRate = 10.0

var ErrTooShort = errors.New("analysis: trace too short")

// Resample turns a tick trace into the population held at each instant
// k/rate for k in [0, duration*rate).
func Resample(ticks []engine.TickRecord, duration time.Duration, rate float64) []float64 {
	if rate <= 0 || duration <= 0 {
		return nil
	}
	n := int(duration.Seconds() * rate)
	out := make([]float64, n)

	pop, j := 0, 0
	for k := range out {
		at := time.Duration(float64(k) / rate * float64(time.Second))
		for j < len(ticks) && ticks[j].At <= at {
			pop = ticks[j].Population
			j++
		}
		out[k] = float64(pop)
	}
	return out
}

// Spectrum returns bin frequencies in Hz and magnitudes for the positive half
// of the spectrum. The mean is removed and a Hann window applied first.
func Spectrum(samples []float64, rate float64) ([]float64, []float64) {
	n := len(samples)
	if n < 2 {
		return nil, nil
	}

	x := make([]float64, n)
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)
	for i, v := range samples {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	half := n / 2
	freqs := make([]float64, half)
	mags := make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) * rate / float64(n)
		mags[i] = cmplx.Abs(spec[i])
	}
	return freqs, mags
}

// DominantPeriod finds the strongest non-DC bin. It needs at least four
// samples and a non-constant trace.
func DominantPeriod(samples []float64, rate float64) (time.Duration, error) {
	if len(samples) < 4 || rate <= 0 {
		return 0, ErrTooShort
	}
	freqs, mags := Spectrum(samples, rate)

	best, bestMag := -1, 0.0
	for i := 1; i < len(mags); i++ {
		if mags[i] > bestMag {
			best, bestMag = i, mags[i]
		}
	}
	if best < 0 || bestMag < 1e-9 {
		return 0, ErrTooShort
	}
	return time.Duration(float64(time.Second) / freqs[best]), nil
}

// Smooth is a trailing moving average, used for chart overlays.
func Smooth(samples []float64, width int) []float64 {
	if width <= 1 {
		return append([]float64(nil), samples...)
	}
	out := make([]float64, len(samples))
	sum := 0.0
	for i, v := range samples {
		sum += v
		if i >= width {
			sum -= samples[i-width]
		}
		out[i] = sum / math.Min(float64(i+1), float64(width))
	}
	return out
}
