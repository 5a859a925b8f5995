package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rodsphere/internal/analysis"
	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/experiment"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted sequence of headless runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Config is decoded on top of the preset, so
// only the overridden keys need to appear.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Config    yaml.Node          `yaml:"config"`
	Params    map[string]float64 `yaml:"params"`
	Duration  float64            `yaml:"duration"`
	FrameRate int                `yaml:"frame_rate"`
	Seed      int64              `yaml:"seed"`
	SaveAs    string             `yaml:"save_as"`
}

// StepResult pairs a finished run with the configuration that produced it.
type StepResult struct {
	Name   string
	Config *config.Config
	FPS    int
	Result *engine.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Resolve builds and validates the configuration of one step.
func (st *ScenarioStep) Resolve(registry *experiment.Registry) (*config.Config, error) {
	name := st.Preset
	if name == "" {
		name = "classic"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: preset %s", experiment.ErrUnknown, name)
	}
	if !st.Config.IsZero() {
		if err := st.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config overrides: %w", err)
		}
	}
	for k, v := range st.Params {
		if err := registry.SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	if st.Seed != 0 {
		cfg.Seed = st.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order. A step without a duration runs
// for two cycles. Results of completed steps are returned with any error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		cfg, err := step.Resolve(registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		dur := time.Duration(step.Duration * float64(time.Second))
		if dur <= 0 {
			dur = 2 * cfg.Period()
		}
		fps := step.FrameRate
		if fps <= 0 {
			fps = 10
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("%s-step%d", nonEmpty(step.Preset, "classic"), i+1)
		}
		logger.Info("running step", slog.Int("step", i+1), slog.Int("of", len(scenario.Steps)), slog.String("name", name))

		res, err := experiment.New(cfg, dur, fps).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, FPS: fps, Result: res})
	}

	return results, nil
}

// ParameterSweep runs a preset across a range of one parameter's values
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  time.Duration
	Seed      int64
}

// SweepResult holds the summary of one sweep point
type SweepResult struct {
	ParamValue     float64
	PeakPopulation int
	FinalPop       int
	MeanDelay      time.Duration
	DominantPeriod time.Duration
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	base := config.GetPreset(nonEmpty(sweep.Preset, "classic"))
	if base == nil {
		return nil, fmt.Errorf("%w: preset %s", experiment.ErrUnknown, sweep.Preset)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		cfg.Seed = sweep.Seed
		if err := registry.SetParam(cfg, sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		dur := sweep.Duration
		if dur <= 0 {
			dur = 2 * cfg.Period()
		}
		res, err := experiment.New(cfg, dur, 0).Run(ctx)
		if err != nil {
			return nil, err
		}

		rep := analysis.Analyze(res.Ticks, dur, analysis.DefaultRate)
		results = append(results, SweepResult{
			ParamValue:     paramVal,
			PeakPopulation: rep.PeakPopulation,
			FinalPop:       rep.FinalPop,
			MeanDelay:      rep.Delays.Mean,
			DominantPeriod: rep.DominantPeriod,
		})
	}

	return results, nil
}

// MonteCarloConfig repeats one preset over many seeds
type MonteCarloConfig struct {
	Preset    string
	NumTrials int
	Duration  time.Duration
	Seed      int64
}

// MonteCarloStats summarises peak population across trials
type MonteCarloStats struct {
	Trials  int
	MeanPk  float64
	StdPk   float64
	MinPk   int
	MaxPk   int
	MeanEnd float64
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig) (*MonteCarloStats, error) {
	if mc.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least 1 trial")
	}
	cfg := config.GetPreset(nonEmpty(mc.Preset, "classic"))
	if cfg == nil {
		return nil, fmt.Errorf("%w: preset %s", experiment.ErrUnknown, mc.Preset)
	}
	dur := mc.Duration
	if dur <= 0 {
		dur = cfg.Period()
	}
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results, err := experiment.NewEnsemble(experiment.New(cfg, dur, 0), mc.NumTrials, seed).Run(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MonteCarloStats{Trials: len(results), MinPk: math.MaxInt}
	var sum, sumSq, end float64
	for _, r := range results {
		pk := int(r.Metrics["peak_population"])
		sum += float64(pk)
		sumSq += float64(pk * pk)
		end += float64(r.FinalPopulation())
		stats.MinPk = min(stats.MinPk, pk)
		stats.MaxPk = max(stats.MaxPk, pk)
	}
	n := float64(len(results))
	stats.MeanPk = sum / n
	stats.StdPk = math.Sqrt(math.Max(sumSq/n-stats.MeanPk*stats.MeanPk, 0))
	stats.MeanEnd = end / n
	return stats, nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
