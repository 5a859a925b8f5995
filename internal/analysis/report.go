package analysis

import (
	"sort"
	"time"

	"github.com/san-kum/rodsphere/internal/engine"
)

type DelayStats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
}

// Delays summarises scheduled delays, ignoring holds.
func Delays(ticks []engine.TickRecord) DelayStats {
	ds := make([]time.Duration, 0, len(ticks))
	for _, t := range ticks {
		if t.Action == "hold" {
			continue
		}
		ds = append(ds, t.Delay)
	}
	if len(ds) == 0 {
		return DelayStats{}
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })

	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return DelayStats{
		Count: len(ds),
		Min:   ds[0],
		Max:   ds[len(ds)-1],
		Mean:  total / time.Duration(len(ds)),
		P50:   percentile(ds, 0.50),
		P95:   percentile(ds, 0.95),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

type Report struct {
	Duration       time.Duration
	Ticks          int
	Adds           int
	Removes        int
	PeakPopulation int
	PeakAt         time.Duration
	FinalPop       int
	Delays         DelayStats
	DominantPeriod time.Duration
	Population     []float64
	Rate           float64
}

// Analyze builds a report for one run. A trace too short for spectral
// analysis leaves DominantPeriod zero.
func Analyze(ticks []engine.TickRecord, duration time.Duration, rate float64) Report {
	rep := Report{
		Duration: duration,
		Ticks:    len(ticks),
		Delays:   Delays(ticks),
		Rate:     rate,
	}
	for _, t := range ticks {
		switch t.Action {
		case "add":
			rep.Adds++
		case "remove":
			rep.Removes++
		}
		if t.Population > rep.PeakPopulation {
			rep.PeakPopulation, rep.PeakAt = t.Population, t.At
		}
	}
	if n := len(ticks); n > 0 {
		rep.FinalPop = ticks[n-1].Population
	}

	rep.Population = Resample(ticks, duration, rate)
	if p, err := DominantPeriod(rep.Population, rate); err == nil {
		rep.DominantPeriod = p
	}
	return rep
}
