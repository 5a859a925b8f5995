package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rodsphere/internal/engine"
)

const (
	defaultWidth    = 100
	defaultHeight   = 30
	statsWidth      = 48
	sparkRows       = 4
	historyCapacity = 600
)

type TickMsg time.Time

// Model renders an engine in the terminal. The engine's tick chain runs
// separately; the model only samples frames.
type Model struct {
	eng           *engine.Engine
	title         string
	interval      time.Duration
	width, height int
	canvas        *Canvas
	sparkCanvas   *Canvas
	spark         *Sparkline
	camera        *Camera
	theme         Theme
	styles        Styles
	frame         engine.Frame
	history       []float64
	showHelp      bool
}

func NewModel(eng *engine.Engine, title string, fps int, theme string) Model {
	if fps <= 0 {
		fps = 60
	}
	t := GetTheme(theme)
	m := Model{
		eng:         eng,
		title:       title,
		interval:    time.Second / time.Duration(fps),
		canvas:      NewCanvas(1, 1),
		sparkCanvas: NewCanvas(1, 1),
		spark:       NewSparkline(eng.Signal().Curve(), 1),
		camera:      NewCamera(),
		theme:       t,
		styles:      NewStyles(t),
		history:     make([]float64, 0, historyCapacity),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.eng.Stop()
			return m, tea.Quit
		case " ":
			m.eng.TogglePause()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

// resize recomputes canvas and sparkline geometry; the curve is resampled
// here rather than per frame.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := max(w-statsWidth-6, 10)
	ch := max(h-sparkRows-4, 5)
	m.canvas.Resize(cw, ch)
	m.sparkCanvas.Resize(min(cw, max(cw/2, 20)), sparkRows)
	m.spark.Layout(float64(m.sparkCanvas.SubWidth()), float64(m.sparkCanvas.SubHeight()))
}

func (m *Model) step() {
	m.frame = m.eng.Frame()
	m.history = append(m.history, float64(m.frame.Population))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.draw()
}

func (m *Model) draw() {
	Scene(m.canvas, m.camera, m.frame.Pose, m.frame.Rods)
	m.sparkCanvas.Clear()
	m.spark.Draw(m.sparkCanvas, m.frame.Sample.Cursor())
}

func (m Model) Frame() engine.Frame { return m.frame }
func (m Model) Theme() Theme        { return m.theme }

func (m Model) View() string {
	st := m.styles
	f := m.frame

	left := lipgloss.JoinVertical(lipgloss.Left,
		st.Canvas.Render(m.canvas.String()),
		st.Spark.Render(m.sparkCanvas.String()),
	)

	var s strings.Builder
	s.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")

	status := st.Growing.Render("GROWING")
	switch {
	case f.Paused:
		status = st.Paused.Render("PAUSED")
	case f.Shrinking:
		status = st.Shrinking.Render("SHRINKING")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Cycle", fmt.Sprintf("%d", f.Sample.Cycle))
	row("Phase", fmt.Sprintf("%.3f %s", f.Sample.Phase, ProgressBar(f.Sample.Phase, 12)))
	row("Intensity", fmt.Sprintf("%.3f %s", f.Sample.Intensity, ProgressBar(f.Sample.Intensity, 12)))
	direction := "forward"
	if f.Sample.Reverse {
		direction = "reverse"
	}
	row("Direction", direction)
	row("Population", fmt.Sprintf("%d", f.Population))
	row("Next tick", f.NextDelay.Round(time.Millisecond).String())
	row("Elapsed", f.Elapsed.Round(100*time.Millisecond).String())
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(statsWidth-14),
			asciigraph.Caption("Population"),
		)
		s.WriteString(st.Graph.Render(chart) + "\n")
	}

	s.WriteString(st.Help.Render(Separator(statsWidth-6) + "\nSP:Pause T:Theme ?:Help Q:Quit\n+/-:Zoom"))
	main := lipgloss.JoinHorizontal(lipgloss.Top, left, st.Stats.Render(s.String()))

	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  T        - Cycle themes             ║
║  + / -    - Zoom in / out            ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// RunLive drives the engine in the background and renders it until the user
// quits or ctx is cancelled.
func RunLive(ctx context.Context, eng *engine.Engine, title string, fps int, theme string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	p := tea.NewProgram(NewModel(eng, title, fps, theme), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	eng.Stop()
	cancel()
	if rerr := <-runErr; rerr != nil && !errors.Is(rerr, context.Canceled) && err == nil {
		err = rerr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
