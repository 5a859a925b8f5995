package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	ossignal "os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rodsphere/internal/analysis"
	"github.com/san-kum/rodsphere/internal/automation"
	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/experiment"
	"github.com/san-kum/rodsphere/internal/export"
	"github.com/san-kum/rodsphere/internal/gui"
	"github.com/san-kum/rodsphere/internal/optim"
	"github.com/san-kum/rodsphere/internal/signal"
	"github.com/san-kum/rodsphere/internal/storage"
	"github.com/san-kum/rodsphere/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logger   = slog.New(slog.DiscardHandler)

	// Configuration layering: preset < config file < flags
	preset     string
	configFile string
	seed       int64
	frameRate  int
	period     float64
	curveShape string
	curvePower float64
	policyName string
	placement  string

	// run
	runTime  float64
	realtime bool
	runName  string

	// presentation
	theme      string
	withAudio  bool
	fullscreen bool

	// export-svg
	svgOut    string
	svgWidth  int
	svgHeight int
	svgStyle  string

	// plot
	smoothWidth int

	// sweep / montecarlo
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	trials     int

	// tune
	gridSpecs  []string
	tuneMetric string
	tuneTarget float64

	force bool
)

// main registers every command, runs the live terminal view when no
// subcommand is given, and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:               "rodsphere",
		Short:             "generative rod sphere driven by a cyclic intensity signal",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		RunE:              runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".rodsphere", "data directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	addConfigFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "terminal view with braille render and sparkline",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().StringVar(&theme, "theme", viz.ThemeMono.Name, "color theme ("+strings.Join(viz.ThemeNames(), "|")+")")
	}

	pickCmd := &cobra.Command{
		Use:   "pick",
		Short: "choose a preset from a menu, then watch it live",
		RunE:  runPick,
	}
	pickCmd.Flags().StringVar(&theme, "theme", viz.ThemeMono.Name, "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "window view with 3-D rods",
		RunE:  runGUI,
	}
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "play the intensity pad and decision clicks")
	guiCmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "start fullscreen")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "headless run, saved to the data directory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&runTime, "time", 0, "duration in seconds (0 = two cycles)")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "run against the wall clock instead of virtual time")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population and intensity of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&smoothWidth, "smooth", 1, "moving average width over the population trace")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "delay statistics and population spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the tick trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final rods of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")
	exportSVGCmd.Flags().StringVar(&svgStyle, "style", "scene", "scene|braille|trace")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run every step of a scenario and save each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "sharpness", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 2, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of points")
	sweepCmd.Flags().Float64Var(&runTime, "time", 0, "duration per point in seconds (0 = two cycles)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a preset over many seeds",
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of seeds")
	monteCarloCmd.Flags().Float64Var(&runTime, "time", 0, "duration per trial in seconds (0 = one cycle)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search parameters so a metric lands near a target",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&gridSpecs, "grid", []string{"sharpness=2:20:5"}, "param=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "peak_population", "metric to aim at")
	tuneCmd.Flags().Float64Var(&tuneTarget, "target", 300, "target metric value")
	tuneCmd.Flags().Float64Var(&runTime, "time", 0, "duration per point in seconds (0 = one cycle)")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "plot the drive curve and the delay curve",
		Args:  cobra.NoArgs,
		RunE:  plotCurve,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  configInit,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(liveCmd, pickCmd, guiCmd, runCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, scenarioCmd, sweepCmd, monteCarloCmd,
		tuneCmd, curveCmd, presetsCmd, configCmd)

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// addConfigFlags registers the flags buildConfig layers over the preset and
// config file.
func addConfigFlags(c *cobra.Command) {
	pf := c.PersistentFlags()
	reg := experiment.NewRegistry()
	pf.StringVar(&preset, "preset", "", "start from a preset configuration")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 draws one from the clock)")
	pf.IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")
	pf.Float64Var(&period, "period", config.DefaultTotalDuration, "cycle length in seconds")
	pf.StringVar(&curveShape, "curve", signal.ShapePeakedSine, "drive curve ("+strings.Join(reg.ListCurves(), "|")+")")
	pf.Float64Var(&curvePower, "power", config.DefaultCurvePower, "peaked-sine exponent")
	pf.StringVar(&policyName, "policy", "coupled", "shrink policy ("+strings.Join(reg.ListPolicies(), "|")+")")
	pf.StringVar(&placement, "placement", "uniform", "rod placement ("+strings.Join(reg.ListPlacements(), "|")+")")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// buildConfig layers the preset, the config file and any explicitly set
// flags, then validates the result.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if flags.Changed("period") {
		cfg.TotalDurationSeconds = period
	}
	if flags.Changed("curve") {
		cfg.Curve.Shape = curveShape
	}
	if flags.Changed("power") {
		cfg.Curve.Power = curvePower
	}
	if flags.Changed("policy") {
		cfg.Policy = policyName
	}
	if flags.Changed("placement") {
		cfg.Rods.Placement = placement
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runDuration(cfg *config.Config, cycles float64) time.Duration {
	if runTime > 0 {
		return time.Duration(runTime * float64(time.Second))
	}
	return time.Duration(cycles * float64(cfg.Period()))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	// stderr belongs to the terminal UI, so the engine stays silent.
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(cmd.Context(), eng, "rodsphere", cfg.FrameRate, theme)
}

func runPick(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	launch := func(name string) (*engine.Engine, error) {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
		cfg.Seed = base.Seed
		return engine.New(cfg)
	}
	return viz.RunPicker(cmd.Context(), config.ListPresets(), launch, base.FrameRate, theme)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	return gui.Run(cmd.Context(), eng, gui.Options{
		Title:      "rodsphere",
		FPS:        cfg.FrameRate,
		Audio:      withAudio,
		Fullscreen: fullscreen,
		Logger:     logger,
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	dur := runDuration(cfg, 2)
	fps := cfg.FrameRate
	name := runName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = "run"
	}

	mode := "virtual"
	if realtime {
		mode = "realtime"
	}
	fmt.Printf("running %s for %v (%s)...\n", name, dur, mode)
	start := time.Now()

	var res *engine.Result
	if realtime {
		eng, err := engine.New(cfg, engine.WithLogger(logger))
		if err != nil {
			return err
		}
		res, err = eng.Record(cmd.Context(), dur, fps)
		if err != nil {
			return err
		}
	} else {
		res, err = experiment.New(cfg, dur, fps).WithLogger(logger).Run(cmd.Context())
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, fps, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("seed: %d\n", res.Seed)
	fmt.Printf("ticks: %d  frames: %d\n", len(res.Ticks), len(res.Frames))
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.3f\n", k, m[k])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Printf("no runs found in %s\n", st.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tSEED\tTICKS\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Length(),
			run.Seed,
			run.Ticks,
			run.FinalPopulation,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("duration: %v\n", meta.Length())
	fmt.Printf("ticks: %d\n\n", len(ticks))

	pop := analysis.Resample(ticks, meta.Length(), analysis.DefaultRate)
	if smoothWidth > 1 {
		pop = analysis.Smooth(pop, smoothWidth)
	}
	fmt.Println(asciigraph.Plot(pop,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("population"),
	))
	fmt.Println()

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	intensity := make([]float64, 0, max(len(frames), len(ticks)))
	if len(frames) > 0 {
		for _, f := range frames {
			intensity = append(intensity, f.Intensity)
		}
	} else {
		for _, t := range ticks {
			intensity = append(intensity, t.Intensity)
		}
	}
	fmt.Println(asciigraph.Plot(intensity,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("intensity"),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data")
	}

	rep := analysis.Analyze(ticks, meta.Length(), analysis.DefaultRate)

	fmt.Printf("analysis: %s\n\n", meta.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ticks\t%d\n", rep.Ticks)
	fmt.Fprintf(w, "adds\t%d\n", rep.Adds)
	fmt.Fprintf(w, "removes\t%d\n", rep.Removes)
	fmt.Fprintf(w, "peak population\t%d at %v\n", rep.PeakPopulation, rep.PeakAt)
	fmt.Fprintf(w, "final population\t%d\n", rep.FinalPop)
	fmt.Fprintf(w, "delay min/p50/p95/max\t%v / %v / %v / %v\n", rep.Delays.Min, rep.Delays.P50, rep.Delays.P95, rep.Delays.Max)
	fmt.Fprintf(w, "delay mean\t%v\n", rep.Delays.Mean)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	freqs, power := analysis.Spectrum(rep.Population, rep.Rate)
	if len(power) < 3 {
		fmt.Println("trace too short for a spectrum")
		return nil
	}
	// Low frequencies carry the cycle; skip DC.
	upper := max(len(power)/4, 3)
	fmt.Println(asciigraph.Plot(power[1:upper],
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("population power spectrum (0..%.2f hz)", freqs[upper-1])),
	))
	fmt.Println()

	if rep.DominantPeriod > 0 {
		fmt.Printf("dominant period: %v (%.4f hz)\n", rep.DominantPeriod, 1/rep.DominantPeriod.Seconds())
	} else {
		fmt.Println("dominant period: n/a")
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	ticks, err := st.LoadTicks(args[0])
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.ExportCSV(os.Stdout, ticks)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	rods, err := st.LoadRods(runID)
	if err != nil {
		return err
	}

	curve, err := experiment.NewRegistry().GetCurve(cfg.Curve.Shape, cfg.Curve.Power)
	if err != nil {
		return err
	}
	sig, err := signal.New(curve, cfg.Period(), cfg.AlternateDirection)
	if err != nil {
		return err
	}

	var doc string
	switch svgStyle {
	case "scene":
		doc = export.SceneToSVG(export.Scene{
			Rods:   rods,
			Pose:   meta.Pose,
			Curve:  curve,
			Cursor: sig.At(meta.Length()).Cursor(),
			Width:  svgWidth,
			Height: svgHeight,
		})
	case "braille":
		// One braille cell is 2x4 dots; scale 2 keeps the requested width.
		canvas := viz.NewCanvas(max(svgWidth/4, 1), max(svgHeight/8, 1))
		viz.Scene(canvas, viz.NewCamera(), meta.Pose, rods)
		doc = export.CanvasToSVG(canvas, 2)
	case "trace":
		ticks, err := st.LoadTicks(runID)
		if err != nil {
			return err
		}
		pop := analysis.Resample(ticks, meta.Length(), analysis.DefaultRate)
		doc = export.SeriesToSVG(pop, svgWidth, svgHeight, "#ffffff")
		if doc == "" {
			return fmt.Errorf("run %s is too short to plot", runID)
		}
	default:
		return fmt.Errorf("unknown svg style %q (scene|braille|trace)", svgStyle)
	}

	if svgOut == "" {
		_, err = fmt.Print(doc)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d rods)\n", svgOut, len(rods))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tTICKS\tPEAK\tFINAL")
	for i, r := range results {
		id, err := st.Save(r.Name, r.Config, r.FPS, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.0f\t%d\n", i+1, id, len(r.Result.Ticks), r.Result.Metrics["peak_population"], r.Result.FinalPopulation())
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	base := preset
	if base == "" {
		base = "classic"
	}
	var dur time.Duration
	if runTime > 0 {
		dur = time.Duration(runTime * float64(time.Second))
	}

	fmt.Printf("sweeping %s over [%g, %g] in %d steps (preset %s)\n\n", sweepParam, sweepMin, sweepMax, sweepSteps, base)
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Preset:    base,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Duration:  dur,
		Seed:      seed,
	}, registry)
	if err != nil {
		if errors.Is(err, experiment.ErrUnknown) {
			return fmt.Errorf("%w (available: %v)", err, registry.ListParams())
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tFINAL\tMEAN DELAY\tPERIOD\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%d\t%d\t%v\t%v\n", r.ParamValue, r.PeakPopulation, r.FinalPop, r.MeanDelay, r.DominantPeriod)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	var dur time.Duration
	if runTime > 0 {
		dur = time.Duration(runTime * float64(time.Second))
	}
	stats, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Preset:    preset,
		NumTrials: trials,
		Duration:  dur,
		Seed:      seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("trials: %d\n", stats.Trials)
	fmt.Printf("peak population: mean %.1f  std %.1f  min %d  max %d\n", stats.MeanPk, stats.StdPk, stats.MinPk, stats.MaxPk)
	fmt.Printf("final population: mean %.1f\n", stats.MeanEnd)
	return nil
}

// parseGrid reads "name=lo:hi:n".
func parseGrid(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	parts := strings.Split(rng, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid grid %q, want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %s: point count must be a positive integer", name)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridSpecs))
	ranges := make([][]float64, 0, len(gridSpecs))
	for _, spec := range gridSpecs {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	dur := runDuration(cfg, 1)
	fmt.Printf("tuning %v for %s = %g over %v per point\n", names, tuneMetric, tuneTarget, dur)

	best, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), cfg, dur,
		experiment.NewRegistry(), optim.MetricDistance(tuneMetric, tuneTarget))
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points (%d invalid skipped)\n\nbest:\n", best.Evaluated, best.Skipped)
	printMetrics(best.Params)
	fmt.Printf("distance from target: %.3f\n", best.Score)
	return nil
}

func plotCurve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	curve, err := experiment.NewRegistry().GetCurve(cfg.Curve.Shape, cfg.Curve.Power)
	if err != nil {
		return err
	}

	const n = 120
	intensity := signal.Samples(curve, n)
	fmt.Println(asciigraph.Plot(intensity,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s intensity over one cycle", curve.Name())),
	))
	fmt.Println()

	dc := cfg.DelayCurve()
	delays := make([]float64, n)
	for i, v := range intensity {
		delays[i] = float64(dc.Delay(v)) / float64(time.Millisecond)
	}
	fmt.Println(asciigraph.Plot(delays,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("tick delay (ms) over one cycle"),
	))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPERIOD\tCURVE\tPOLICY\tPLACEMENT\tDELAY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%v\t%s^%g\t%s\t%s\t%g..%gms k=%g\n",
			name,
			p.Period(),
			p.Curve.Shape, p.Curve.Power,
			p.Policy,
			p.Rods.Placement,
			p.Scheduler.MinDelayMs, p.Scheduler.MaxDelayMs, p.Scheduler.DelaySharpness,
		)
	}
	return w.Flush()
}

func configInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", path)
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
