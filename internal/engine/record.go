package engine

import (
	"context"
	"time"

	"github.com/san-kum/rodsphere/internal/clock"
	"github.com/san-kum/rodsphere/internal/population"
)

// recorder timestamps decisions with the engine clock. It runs under the
// engine lock.
type recorder struct {
	clock *clock.Clock
	ticks []TickRecord
}

func (r *recorder) OnDecision(d population.Decision) {
	r.ticks = append(r.ticks, record(r.clock.Elapsed(), d))
}

// Record drives Run on the engine's own clock for duration, sampling a frame
// fps times per second, and returns the trace in the same shape as Simulate.
// The engine is stopped when Record returns.
func (e *Engine) Record(ctx context.Context, duration time.Duration, fps int) (*Result, error) {
	rec := &recorder{clock: e.clock}
	e.AddObserver(rec)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src := e.clock.Source()
	end := src.NewTimer(duration)
	defer end.Stop()

	var frameC <-chan time.Time
	var frames []FrameRecord
	if fps > 0 {
		tk := src.NewTicker(time.Second / time.Duration(fps))
		defer tk.Stop()
		frameC = tk.Chan()
	}

	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()

	done := false
loop:
	for {
		select {
		case <-ctx.Done():
			<-errc
			return nil, ctx.Err()
		case err := <-errc:
			if err != nil {
				return nil, err
			}
			done = true
			break loop
		case <-end.Chan():
			break loop
		case <-frameC:
			f := e.Frame()
			frames = append(frames, FrameRecord{
				At:         f.Elapsed,
				Intensity:  f.Sample.Intensity,
				Population: f.Population,
				Angle:      f.Angle,
			})
		}
	}

	e.Stop()
	if !done {
		if err := <-errc; err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return &Result{
		Seed:      e.seed,
		Duration:  duration,
		Ticks:     rec.ticks,
		Frames:    frames,
		Metrics:   metricsWithFinal(e),
		FinalRods: e.sched.Collection().Snapshot(),
		Pose:      e.orbit.Pose(),
		Angle:     e.orbit.Angle(),
	}, nil
}
