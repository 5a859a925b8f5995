// Package metrics accumulates summary statistics from scheduler decisions.
package metrics

import (
	"github.com/san-kum/rodsphere/internal/population"
)

// Metric observes decisions and reduces them to a single value.
type Metric interface {
	population.Observer
	Name() string
	Value() float64
	Reset()
}

type Count struct {
	name   string
	action population.Action
	n      int
}

func NewAdds() *Count    { return &Count{name: "adds", action: population.ActionAdd} }
func NewRemoves() *Count { return &Count{name: "removes", action: population.ActionRemove} }
func NewHolds() *Count   { return &Count{name: "holds", action: population.ActionHold} }

func (c *Count) Name() string { return c.name }

func (c *Count) OnDecision(d population.Decision) {
	if d.Action == c.action {
		c.n++
	}
}

func (c *Count) Value() float64 { return float64(c.n) }
func (c *Count) Reset()         { c.n = 0 }

type Ticks struct{ n int }

func NewTicks() *Ticks                            { return &Ticks{} }
func (t *Ticks) Name() string                     { return "ticks" }
func (t *Ticks) OnDecision(d population.Decision) { t.n++ }
func (t *Ticks) Value() float64                   { return float64(t.n) }
func (t *Ticks) Reset()                           { t.n = 0 }

type PeakPopulation struct{ peak int }

func NewPeakPopulation() *PeakPopulation { return &PeakPopulation{} }

func (p *PeakPopulation) Name() string { return "peak_population" }

func (p *PeakPopulation) OnDecision(d population.Decision) {
	if d.Size > p.peak {
		p.peak = d.Size
	}
}

func (p *PeakPopulation) Value() float64 { return float64(p.peak) }
func (p *PeakPopulation) Reset()         { p.peak = 0 }

// MeanDelay averages the scheduled inter-tick delay in milliseconds. Holds
// are excluded.
type MeanDelay struct {
	total   float64
	samples int
}

func NewMeanDelay() *MeanDelay { return &MeanDelay{} }

func (m *MeanDelay) Name() string { return "mean_delay_ms" }

func (m *MeanDelay) OnDecision(d population.Decision) {
	if d.Action == population.ActionHold {
		return
	}
	m.total += float64(d.Delay.Microseconds()) / 1000
	m.samples++
}

func (m *MeanDelay) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanDelay) Reset() {
	m.total = 0
	m.samples = 0
}

// Standard returns the metrics every run records.
func Standard() []Metric {
	return []Metric{
		NewTicks(),
		NewAdds(),
		NewRemoves(),
		NewHolds(),
		NewPeakPopulation(),
		NewMeanDelay(),
	}
}

func Snapshot(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
