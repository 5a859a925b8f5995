package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no valid parameter combination")

// Objective scores a finished run; lower is better.
type Objective func(res *engine.Result) float64

// MetricDistance scores a run by how far a named metric lands from target.
func MetricDistance(metric string, target float64) Objective {
	return func(res *engine.Result) float64 {
		return math.Abs(res.Metrics[metric] - target)
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Best is the winning point of a search.
type Best struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
	Skipped   int
}

// Search runs every combination of the grid on top of base and returns the
// lowest-scoring one. Combinations that fail validation are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	duration time.Duration,
	registry *experiment.Registry,
	objective Objective,
) (*Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := &Best{Score: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		cfg := base.Clone()
		for name, v := range params {
			if err := registry.SetParam(cfg, name, v); err != nil {
				return err
			}
		}
		if cfg.Validate() != nil {
			best.Skipped++
			return nil
		}

		result, err := experiment.New(cfg, duration, 0).Run(ctx)
		if err != nil {
			return err
		}
		best.Evaluated++

		if val := objective(result); val < best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(params))
			for k, v := range params {
				best.Params[k] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if best.Params == nil {
		return nil, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return evaluate(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate); err != nil {
			return err
		}
	}
	return nil
}
