package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
)

// Experiment is one reproducible headless run of a configuration.
type Experiment struct {
	cfg      *config.Config
	duration time.Duration
	fps      int
	logger   *slog.Logger
}

func New(cfg *config.Config, duration time.Duration, fps int) *Experiment {
	return &Experiment{
		cfg:      cfg.Clone(),
		duration: duration,
		fps:      fps,
		logger:   slog.New(slog.DiscardHandler),
	}
}

func (e *Experiment) WithLogger(l *slog.Logger) *Experiment {
	e.logger = l
	return e
}

func (e *Experiment) Config() *config.Config  { return e.cfg.Clone() }
func (e *Experiment) Duration() time.Duration { return e.duration }
func (e *Experiment) FrameRate() int          { return e.fps }

func (e *Experiment) Run(ctx context.Context, opts ...engine.Option) (*engine.Result, error) {
	if e.duration <= 0 {
		return nil, fmt.Errorf("%w: run duration must be positive, got %v", config.ErrInvalidConfig, e.duration)
	}
	opts = append([]engine.Option{engine.WithLogger(e.logger)}, opts...)
	eng, err := engine.NewVirtual(e.cfg, opts...)
	if err != nil {
		return nil, err
	}
	return eng.Simulate(ctx, e.duration, e.fps)
}

// Ensemble runs the same configuration under consecutive seeds in parallel.
type Ensemble struct {
	base      *Experiment
	numRuns   int
	seedStart int64
}

func NewEnsemble(base *Experiment, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: base, numRuns: numRuns, seedStart: seedStart}
}

func (en *Ensemble) Run(ctx context.Context) ([]*engine.Result, error) {
	results := make([]*engine.Result, en.numRuns)
	errs := make([]error, en.numRuns)

	seeds := ensembleSeeds(en.seedStart, en.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < en.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := en.base.Config()
			cfg.Seed = seeds[idx]
			exp := New(cfg, en.base.duration, en.base.fps)
			results[idx], errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// ensembleSeeds counts up from start, skipping 0 since a zero seed is drawn
// from the wall clock.
func ensembleSeeds(start int64, n int) []int64 {
	seeds := make([]int64, 0, n)
	for s := start; len(seeds) < n; s++ {
		if s == 0 {
			continue
		}
		seeds = append(seeds, s)
	}
	return seeds
}
