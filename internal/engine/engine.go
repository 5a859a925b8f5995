// Package engine runs the rod population against the drive signal.
//
// One Engine owns the clock, the signal, the scheduler and the camera orbit.
// Every mutation happens under a single mutex, so the tick chain and frame
// consumers observe a consistent collection. Exactly one tick timer is
// pending at any moment while Run is active.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/san-kum/rodsphere/internal/clock"
	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/metrics"
	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
	"github.com/san-kum/rodsphere/internal/signal"
)

var (
	ErrStopped    = errors.New("engine: stopped")
	ErrRunning    = errors.New("engine: already running")
	ErrNotVirtual = errors.New("engine: simulate requires a virtual engine")
)

// MinTickInterval bounds how fast the tick chain may re-arm when the
// configured minimum delay is zero.
const MinTickInterval = time.Millisecond

// Epoch is the fixed start instant of virtual engines.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type Option func(*options)

type options struct {
	clock     clockwork.Clock
	rng       *rand.Rand
	logger    *slog.Logger
	observers []population.Observer
}

// WithClock sets the time source. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

// WithRand overrides the seeded random source.
func WithRand(r *rand.Rand) Option { return func(o *options) { o.rng = r } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithObserver registers an observer before the first tick.
func WithObserver(obs population.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Frame is everything a renderer needs for one display refresh.
type Frame struct {
	Sample     signal.Sample
	Pose       orbit.Pose
	Angle      float64
	Rods       []placer.Rod
	Population int
	Elapsed    time.Duration
	NextDelay  time.Duration
	Shrinking  bool
	Paused     bool
}

type Engine struct {
	mu sync.Mutex

	cfg     *config.Config
	seed    int64
	clock   *clock.Clock
	fake    clockwork.FakeClock
	signal  *signal.Signal
	sched   *population.Scheduler
	orbit   *orbit.Controller
	metrics []metrics.Metric
	last    population.Decision
	logger  *slog.Logger

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

// New validates cfg and assembles an engine. A zero seed draws one from the
// wall clock; Seed reports the value actually used.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	curve, err := signal.ParseCurve(cfg.Curve.Shape, cfg.Curve.Power)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	sig, err := signal.New(curve, cfg.Period(), cfg.AlternateDirection)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	policy, err := population.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	pcfg, err := cfg.PlacerConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := o.rng
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	e := &Engine{
		cfg:     cfg.Clone(),
		seed:    seed,
		clock:   clock.New(o.clock),
		signal:  sig,
		orbit:   orbit.New(cfg.OrbitConfig()),
		metrics: metrics.Standard(),
		logger:  o.logger,
		stop:    make(chan struct{}),
	}
	if fc, ok := o.clock.(clockwork.FakeClock); ok {
		e.fake = fc
	}

	e.sched = population.NewScheduler(
		population.NewCollection(),
		placer.New(pcfg, rng),
		rng,
		cfg.DelayCurve(),
		policy,
	)
	for _, m := range e.metrics {
		e.sched.AddObserver(m)
	}
	for _, obs := range o.observers {
		e.sched.AddObserver(obs)
	}

	return e, nil
}

// NewVirtual builds an engine on a fake clock starting at Epoch, for
// deterministic headless runs with Simulate.
func NewVirtual(cfg *config.Config, opts ...Option) (*Engine, error) {
	opts = append([]Option{WithClock(clockwork.NewFakeClockAt(Epoch))}, opts...)
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if e.fake == nil {
		return nil, ErrNotVirtual
	}
	return e, nil
}

func (e *Engine) Config() *config.Config { return e.cfg.Clone() }
func (e *Engine) Seed() int64            { return e.seed }
func (e *Engine) Signal() *signal.Signal { return e.signal }
func (e *Engine) Clock() *clock.Clock    { return e.clock }

// AddObserver registers an observer. Observers run synchronously under the
// engine lock and must not call back into the engine.
func (e *Engine) AddObserver(o population.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.AddObserver(o)
}

func (e *Engine) Population() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Collection().Len()
}

func (e *Engine) Rods() []placer.Rod {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Collection().Snapshot()
}

// Last returns the most recent decision.
func (e *Engine) Last() population.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

func (e *Engine) Metrics() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return metrics.Snapshot(e.metrics)
}

// Tick performs one scheduler decision at the current elapsed time. While
// paused it records a hold instead of changing the population.
func (e *Engine) Tick() population.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

func (e *Engine) tickLocked() population.Decision {
	sample := e.signal.At(e.clock.Elapsed())

	var d population.Decision
	if e.clock.Paused() {
		d = e.sched.Hold(sample)
	} else {
		d = e.sched.Tick(sample)
	}
	e.last = d

	e.logger.Debug("tick",
		slog.String("action", d.Action.String()),
		slog.Int("population", d.Size),
		slog.Duration("delay", d.Delay),
		slog.Float64("intensity", sample.Intensity),
		slog.Int64("cycle", sample.Cycle),
	)
	return d
}

// Frame samples the signal once and advances the camera orbit by the clock
// delta using that same sample.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked()
}

func (e *Engine) frameLocked() Frame {
	elapsed := e.clock.Elapsed()
	sample := e.signal.At(elapsed)
	e.orbit.Advance(e.clock.Delta(), sample.Intensity)

	coll := e.sched.Collection()
	return Frame{
		Sample:     sample,
		Pose:       e.orbit.Pose(),
		Angle:      e.orbit.Angle(),
		Rods:       coll.Snapshot(),
		Population: coll.Len(),
		Elapsed:    elapsed,
		NextDelay:  e.last.Delay,
		Shrinking:  e.sched.Policy().Shrinking(sample),
		Paused:     e.clock.Paused(),
	}
}

// Run fires the first tick immediately, then re-arms one timer per tick with
// the delay that tick returned. It returns nil after Stop and ctx.Err() on
// cancellation; the pending timer is stopped either way.
func (e *Engine) Run(ctx context.Context) error {
	if e.stopped() {
		return ErrStopped
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	e.logger.Info("engine started",
		slog.Int64("seed", e.seed),
		slog.Duration("period", e.signal.Period()),
		slog.String("curve", e.signal.Curve().Name()),
		slog.String("policy", e.sched.Policy().String()),
	)

	src := e.clock.Source()
	d := e.Tick()
	timer := src.NewTimer(tickInterval(d.Delay))
	defer func() { timer.Stop() }()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine cancelled", slog.Any("err", ctx.Err()))
			return ctx.Err()
		case <-e.stop:
			e.logger.Info("engine stopped", slog.Int("population", e.Population()))
			return nil
		case <-timer.Chan():
			d = e.Tick()
			timer = src.NewTimer(tickInterval(d.Delay))
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

func (e *Engine) stopped() bool {
	select {
	case <-e.stop:
		return true
	default:
		return false
	}
}

// Pause freezes elapsed time. Ticks that fall due while paused are holds.
func (e *Engine) Pause() {
	e.clock.Pause()
	e.logger.Debug("engine paused")
}

func (e *Engine) Resume() {
	e.clock.Resume()
	e.logger.Debug("engine resumed")
}

// TogglePause flips the pause state and reports the new state.
func (e *Engine) TogglePause() bool {
	if e.clock.Paused() {
		e.Resume()
		return false
	}
	e.Pause()
	return true
}

func (e *Engine) Paused() bool { return e.clock.Paused() }

func tickInterval(d time.Duration) time.Duration {
	if d < MinTickInterval {
		return MinTickInterval
	}
	return d
}
