package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/rodsphere/internal/audio"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/viz"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)    // Deep Black
	ColAccent  = rl.NewColor(180, 180, 180, 255) // Soft White
	ColSelect  = rl.NewColor(255, 255, 255, 255) // Bright White
	ColText    = rl.NewColor(140, 140, 140, 255) // Neutral Gray
	ColTextDim = rl.NewColor(60, 60, 60, 255)    // Dark Gray (Subtle)
	ColRod     = rl.NewColor(255, 255, 255, 128) // White at half opacity
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
	fontPath      = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	maxTelemetry  = 600
)

type Options struct {
	Title      string
	FPS        int
	Audio      bool
	Fullscreen bool
	Logger     *slog.Logger
}

type App struct {
	Engine    *engine.Engine
	Title     string
	Camera    rl.Camera3D
	Frame     engine.Frame
	Spark     *viz.Sparkline
	Telemetry []float64 // Ring buffer of population per frame
	Font      rl.Font
	ShowHUD   bool
	Muted     bool

	Audio  *audio.Player
	logger *slog.Logger
	quit   bool
}

// initWindow opens a resizable window, sets the frame rate, and disables the
// default exit key so Q and the close button are the only ways out.
func initWindow(opts Options) {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(defaultWidth, defaultHeight, opts.Title)
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
	if opts.Fullscreen {
		rl.ToggleFullscreen()
	}
}

// loadFont loads Liberation Mono when the system has it and falls back to
// raylib's built-in font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp wires an engine to a window that must already be open. When audio
// is requested but no device is available the app runs silently.
func NewApp(eng *engine.Engine, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := eng.Config()
	app := &App{
		Engine:    eng,
		Title:     opts.Title,
		Camera:    cameraFor(eng.Frame().Pose),
		Spark:     viz.NewSparkline(eng.Signal().Curve(), viz.SparklineMargin),
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      loadFont(),
		ShowHUD:   true,
		logger:    logger,
	}
	app.layout()

	if opts.Audio {
		player := audio.NewPlayer()
		if err := player.Start(); err != nil {
			logger.Warn("audio unavailable", "error", err)
		} else {
			app.Audio = player
			eng.AddObserver(player)
		}
	}
	logger.Debug("gui ready", "curve", cfg.Curve.Shape, "policy", cfg.Policy, "seed", eng.Seed())
	return app
}

// Run opens the window, drives the engine's tick loop in the background and
// blocks until the window closes or ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, opts Options) error {
	if opts.Title == "" {
		opts.Title = "rodsphere"
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	initWindow(opts)
	defer rl.CloseWindow()

	app := NewApp(eng, opts)
	defer app.Close()

	errc := make(chan error, 1)
	go func() { errc <- eng.Run(ctx) }()

	app.RunLoop(ctx)
	eng.Stop()
	if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) RunLoop(ctx context.Context) {
	for !rl.WindowShouldClose() && !a.quit && ctx.Err() == nil {
		a.Update()
		a.Draw()
	}
}

func (a *App) Close() {
	if a.Audio != nil {
		a.Audio.Stop()
	}
	if a.Font.Texture.ID != rl.GetFontDefault().Texture.ID {
		rl.UnloadFont(a.Font)
	}
}

// layout refits everything that depends on the window size.
func (a *App) layout() {
	a.Spark.Fit(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeyF) || rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		rl.ToggleFullscreen()
		a.layout()
	}
	if rl.IsWindowResized() {
		a.layout()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		paused := a.Engine.TogglePause()
		if a.Audio != nil {
			a.Audio.SetPaused(paused)
		}
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.ShowHUD = !a.ShowHUD
	}
	if rl.IsKeyPressed(rl.KeyM) && a.Audio != nil {
		a.Muted = a.Audio.ToggleMute()
	}

	a.Frame = a.Engine.Frame()
	a.Camera = cameraFor(a.Frame.Pose)
	if a.Audio != nil {
		a.Audio.SetIntensity(a.Frame.Sample.Intensity)
	}

	a.Telemetry = append(a.Telemetry, float64(a.Frame.Population))
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(a.Camera)
	a.RenderRods()
	rl.EndMode3D()

	a.RenderSparkline()
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	f := a.Frame

	a.drawText(a.Title, 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Engine.Config().Curve.Shape), 30+14*len(a.Title), 34, 16, ColText)

	status, col := "GROWING", ColSelect
	switch {
	case f.Paused:
		status, col = "PAUSED", ColTextDim
	case f.Shrinking:
		status, col = "SHRINKING", ColAccent
	}
	a.drawText(status, w-130, 30, 16, col)

	a.drawText(fmt.Sprintf("cycle %d  phase %.2f  intensity %.2f", f.Sample.Cycle, f.Sample.Phase, f.Sample.Intensity), 30, 64, 14, ColText)
	a.drawText(fmt.Sprintf("rods %d  next %v  elapsed %v", f.Population, f.NextDelay, f.Elapsed.Truncate(100*time.Millisecond)), 30, 84, 14, ColText)

	a.DrawTelemetry()

	help := "[SPACE] PAUSE  [F] FULLSCREEN  [H] HUD  [Q] QUIT"
	if a.Audio != nil {
		help = "[SPACE] PAUSE  [F] FULLSCREEN  [H] HUD  [M] MUTE  [Q] QUIT"
	}
	a.drawText(help, w-9*len(help)-30, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), w-100, 60, 14, ColTextDim)

	if a.Audio != nil {
		label := "AUDIO"
		if a.Muted {
			label = "AUDIO [MUTED]"
		}
		a.drawText(fmt.Sprintf("%s %s", label, levelBar(a.Audio.Pad().Level(), 20)), w-330, h-150, 14, ColAccent)
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}
