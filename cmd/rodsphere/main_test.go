package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rodsphere/internal/config"
)

func parsed(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addConfigFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestBuildConfig_Defaults(t *testing.T) {
	cfg, err := buildConfig(parsed(t))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestBuildConfig_Precedence(t *testing.T) {
	path := writeConfig(t, "seed: 3\nscheduler:\n  min_delay_ms: 80\n")

	cfg, err := buildConfig(parsed(t, "--preset", "decoupled", "--config", path, "--seed", "9"))
	require.NoError(t, err)
	assert.Equal(t, "decoupled", cfg.Policy, "preset survives a file that does not mention it")
	assert.False(t, cfg.AlternateDirection)
	assert.Equal(t, 80.0, cfg.Scheduler.MinDelayMs, "file overrides preset")
	assert.Equal(t, int64(9), cfg.Seed, "flag overrides file")
}

func TestBuildConfig_UnsetFlagsKeepFileValues(t *testing.T) {
	path := writeConfig(t, "frame_rate: 24\ncurve:\n  shape: parabolic\n")

	cfg, err := buildConfig(parsed(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.FrameRate)
	assert.Equal(t, "parabolic", cfg.Curve.Shape)
}

func TestBuildConfig_Errors(t *testing.T) {
	_, err := buildConfig(parsed(t, "--preset", "nope"))
	assert.ErrorContains(t, err, "unknown preset")

	_, err = buildConfig(parsed(t, "--period", "-1"))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = buildConfig(parsed(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorContains(t, err, "failed to load config")
}

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("sharpness=2:20:3")
	require.NoError(t, err)
	assert.Equal(t, "sharpness", name)
	assert.Equal(t, []float64{2, 11, 20}, values)

	for _, bad := range []string{"sharpness", "sharpness=1:2", "p=a:2:3", "p=1:b:3", "p=1:2:0"} {
		_, _, err := parseGrid(bad)
		assert.Error(t, err, bad)
	}
}
