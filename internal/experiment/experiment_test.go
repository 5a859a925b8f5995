package experiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/placer"
	"github.com/san-kum/rodsphere/internal/population"
	"github.com/san-kum/rodsphere/internal/signal"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, []string{"parabolic", "peaked-sine"}, r.ListCurves())
	assert.Equal(t, []string{"legacy", "uniform"}, r.ListPlacements())
	assert.Equal(t, []string{"coupled", "decoupled"}, r.ListPolicies())

	c, err := r.GetCurve("peaked-sine", 20)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Intensity(0.5), 1e-12)

	_, err = r.GetCurve("square", 1)
	assert.ErrorIs(t, err, signal.ErrUnknownCurve)

	m, err := r.GetPlacement("legacy")
	require.NoError(t, err)
	assert.Equal(t, placer.ModeLegacy, m)

	p, err := r.GetPolicy("decoupled")
	require.NoError(t, err)
	assert.Equal(t, population.PolicyDecoupled, p)

	_, err = r.GetPolicy("nope")
	assert.ErrorIs(t, err, ErrUnknown)
	_, err = r.GetPlacement("spiral")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRegistry_SetParam(t *testing.T) {
	r := NewRegistry()
	cfg := config.DefaultConfig()

	require.NoError(t, r.SetParam(cfg, "power", 8))
	require.NoError(t, r.SetParam(cfg, "duration", 30))
	assert.Equal(t, 8.0, cfg.Curve.Power)
	assert.Equal(t, 30.0, cfg.TotalDurationSeconds)

	assert.ErrorIs(t, r.SetParam(cfg, "gravity", 9.81), ErrUnknown)
	assert.Contains(t, r.ListParams(), "sharpness")
}

func TestExperimentRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Seed = 11
	res, err := New(cfg, 30*time.Second, 5).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(11), res.Seed)
	assert.Len(t, res.Frames, 150)
	assert.NotEmpty(t, res.Ticks)

	_, err = New(cfg, 0, 5).Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestEnsemble(t *testing.T) {
	cfg := config.DefaultConfig()
	base := New(cfg, 20*time.Second, 0)

	results, err := NewEnsemble(base, 4, 100).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, int64(100+i), r.Seed)
	}
	assert.NotEqual(t, results[0].FinalRods, results[1].FinalRods)
}

func TestEnsemble_SkipsZeroSeed(t *testing.T) {
	assert.Equal(t, []int64{-2, -1, 1, 2}, ensembleSeeds(-2, 4))
	assert.Equal(t, []int64{5, 6}, ensembleSeeds(5, 2))

	base := New(config.DefaultConfig(), 2*time.Second, 0)
	results, err := NewEnsemble(base, 3, -1).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int64{-1, 1, 2}, []int64{results[0].Seed, results[1].Seed, results[2].Seed})
}
