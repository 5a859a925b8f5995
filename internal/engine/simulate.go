package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
)

// TickRecord is one scheduler decision in a simulated trace.
type TickRecord struct {
	At         time.Duration `json:"at"`
	Action     string        `json:"action"`
	RodID      uint64        `json:"rod_id,omitempty"`
	Population int           `json:"population"`
	Delay      time.Duration `json:"delay"`
	Phase      float64       `json:"phase"`
	Intensity  float64       `json:"intensity"`
	Reverse    bool          `json:"reverse"`
	Cycle      int64         `json:"cycle"`
}

type FrameRecord struct {
	At         time.Duration `json:"at"`
	Intensity  float64       `json:"intensity"`
	Population int           `json:"population"`
	Angle      float64       `json:"angle"`
}

type Result struct {
	Seed      int64              `json:"seed"`
	Duration  time.Duration      `json:"duration"`
	Ticks     []TickRecord       `json:"ticks"`
	Frames    []FrameRecord      `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
	FinalRods []placer.Rod       `json:"final_rods"`
	Pose      orbit.Pose         `json:"pose"`
	Angle     float64            `json:"angle"`
}

// FinalPopulation is the rod count when the run ended.
func (r *Result) FinalPopulation() int { return len(r.FinalRods) }

func record(at time.Duration, d population.Decision) TickRecord {
	return TickRecord{
		At:         at,
		Action:     d.Action.String(),
		RodID:      d.Rod.ID,
		Population: d.Size,
		Delay:      d.Delay,
		Phase:      d.Sample.Phase,
		Intensity:  d.Sample.Intensity,
		Reverse:    d.Sample.Reverse,
		Cycle:      d.Sample.Cycle,
	}
}

// Simulate runs a virtual engine for duration, interleaving ticks and frames
// in time order on the fake clock. Ticks win ties. A non-positive fps
// records no frames but still advances the orbit at each tick.
func (e *Engine) Simulate(ctx context.Context, duration time.Duration, fps int) (*Result, error) {
	if e.fake == nil {
		return nil, ErrNotVirtual
	}
	if e.stopped() {
		return nil, ErrStopped
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer e.running.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{Seed: e.seed, Duration: duration}
	if fps > 0 {
		res.Frames = make([]FrameRecord, 0, int(duration.Seconds()*float64(fps))+1)
	}

	var now, nextTick time.Duration
	frame := 0
	nextFrame := func() time.Duration {
		if fps <= 0 {
			return duration
		}
		return time.Duration(frame) * time.Second / time.Duration(fps)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tickDue := nextTick < duration
		frameDue := nextFrame() < duration
		if !tickDue && !frameDue {
			break
		}

		at := nextTick
		isTick := tickDue
		if frameDue && (!tickDue || nextFrame() < nextTick) {
			at, isTick = nextFrame(), false
		}

		if at > now {
			e.fake.Advance(at - now)
			now = at
		}

		if isTick {
			d := e.tickLocked()
			res.Ticks = append(res.Ticks, record(at, d))
			nextTick = at + tickInterval(d.Delay)
			if fps <= 0 {
				e.orbit.Advance(e.clock.Delta(), d.Sample.Intensity)
			}
			continue
		}

		f := e.frameLocked()
		res.Frames = append(res.Frames, FrameRecord{
			At:         at,
			Intensity:  f.Sample.Intensity,
			Population: f.Population,
			Angle:      f.Angle,
		})
		frame++
	}

	res.Metrics = metricsWithFinal(e)
	res.FinalRods = e.sched.Collection().Snapshot()
	res.Pose = e.orbit.Pose()
	res.Angle = e.orbit.Angle()

	e.logger.Info("simulation finished",
		slog.Duration("duration", duration),
		slog.Int("ticks", len(res.Ticks)),
		slog.Int("frames", len(res.Frames)),
		slog.Int("population", len(res.FinalRods)),
	)
	return res, nil
}

func metricsWithFinal(e *Engine) map[string]float64 {
	m := make(map[string]float64, len(e.metrics)+1)
	for _, mt := range e.metrics {
		m[mt.Name()] = mt.Value()
	}
	m["final_population"] = float64(e.sched.Collection().Len())
	return m
}
