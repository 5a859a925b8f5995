package viz

import (
	"math"

	"github.com/san-kum/rodsphere/internal/signal"
)

const (
	// SparklineMargin is the inset in pixels on every side of the curve.
	SparklineMargin = 10
	sparklineWidth  = 0.5
	sparklineAspect = 0.3
)

type Point struct{ X, Y float64 }

// Sparkline is the drive curve laid out in screen space (y grows downward).
// The polyline is sampled once per layout, not per frame.
type Sparkline struct {
	curve  signal.Curve
	margin float64
	w, h   float64
	points []Point
}

func NewSparkline(curve signal.Curve, margin float64) *Sparkline {
	return &Sparkline{curve: curve, margin: margin}
}

// Fit sizes the sparkline for a view: width is half the smaller view
// dimension and height is 0.3 of the width.
func (s *Sparkline) Fit(viewW, viewH float64) {
	w := sparklineWidth * math.Min(viewW, viewH)
	s.Layout(w, w*sparklineAspect)
}

// Layout sets explicit dimensions and resamples the curve at one point per
// unit of inner width.
func (s *Sparkline) Layout(w, h float64) {
	s.w, s.h = w, h
	inner := w - 2*s.margin
	if inner <= 0 || h-2*s.margin <= 0 {
		s.points = s.points[:0]
		return
	}
	n := int(inner) + 1
	vals := signal.Samples(s.curve, n)
	s.points = make([]Point, n)
	for i, v := range vals {
		s.points[i] = Point{
			X: s.margin + float64(i),
			Y: s.h - s.margin - v*(s.h-2*s.margin),
		}
	}
}

func (s *Sparkline) Size() (float64, float64) { return s.w, s.h }
func (s *Sparkline) Points() []Point          { return s.points }

// CursorX maps a cursor position in [0,1] to the x coordinate of the
// vertical marker.
func (s *Sparkline) CursorX(cursor float64) float64 {
	return signal.Clamp01(cursor)*(s.w-2*s.margin) + s.margin
}

// LineWidth is the stroke width for a view of the given size.
func LineWidth(viewW, viewH float64) float64 {
	return math.Ceil(math.Sqrt(math.Min(viewW, viewH))/1000) * 3
}

// Draw plots the curve and a full-height cursor line on the canvas, with the
// sparkline laid out in canvas sub-pixels.
func (s *Sparkline) Draw(c *Canvas, cursor float64) {
	for i := 1; i < len(s.points); i++ {
		a, b := s.points[i-1], s.points[i]
		c.DrawLine(int(a.X), int(math.Round(a.Y)), int(b.X), int(math.Round(b.Y)))
	}
	if len(s.points) == 0 {
		return
	}
	x := int(math.Round(s.CursorX(cursor)))
	for y := 0; y < int(s.h); y += 2 {
		c.Set(x, y)
	}
}
