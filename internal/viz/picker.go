package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rodsphere/internal/engine"
)

// Launcher builds a ready engine for a preset name.
type Launcher func(preset string) (*engine.Engine, error)

var presetInfo = map[string]string{
	"classic":   "peaked sine, steep delay",
	"parabolic": "early parabolic sketch",
	"steep":     "very sharp delay shaping",
	"gentle":    "slow two-minute swell",
	"legacy":    "pole-biased placement",
	"decoupled": "shrink on odd cycles",
}

const (
	stateMenu = iota
	stateLive
)

// Picker lists presets and switches to the live view for the chosen one.
type Picker struct {
	ctx     context.Context
	state   int
	cursor  int
	presets []string
	launch  Launcher
	fps     int
	theme   string
	err     error
	live    Model
	eng     *engine.Engine
}

func NewPicker(ctx context.Context, presets []string, launch Launcher, fps int, theme string) Picker {
	return Picker{ctx: ctx, presets: presets, launch: launch, fps: fps, theme: theme}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p Picker) start() (tea.Model, tea.Cmd) {
	if len(p.presets) == 0 {
		return p, nil
	}
	name := p.presets[p.cursor]
	eng, err := p.launch(name)
	if err != nil {
		p.err = err
		return p, nil
	}
	go func() { _ = eng.Run(p.ctx) }()

	p.eng = eng
	p.live = NewModel(eng, name, p.fps, p.theme)
	p.state = stateLive
	return p, p.live.Init()
}

// Engine returns the engine started from the menu, if any.
func (p Picker) Engine() *engine.Engine { return p.eng }

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	var (
		head   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
		sub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
		sel    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
		desc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
		dimmed = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
		key    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
		errSt  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	)

	var b strings.Builder
	b.WriteString("\n\n    " + head.Render("RODSPHERE") + "\n    " + sub.Render("rods on a breathing sphere") + "\n    " + sub.Render(Separator(26)) + "\n\n")
	for i, name := range p.presets {
		info := presetInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", key.Render("▸"), sel.Render(fmt.Sprintf("%-12s", name)), desc.Render(info)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dimmed.Render(fmt.Sprintf("%-12s", name)), dimmed.Render(info)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + errSt.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + dimmed.Render(" navigate  ") + key.Render("enter") + dimmed.Render(" start  ") + key.Render("q") + dimmed.Render(" quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu and the live view of the chosen preset.
func RunPicker(ctx context.Context, presets []string, launch Launcher, fps int, theme string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	final, err := tea.NewProgram(NewPicker(ctx, presets, launch, fps, theme), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if p, ok := final.(Picker); ok && p.eng != nil {
		p.eng.Stop()
	}
	return err
}
