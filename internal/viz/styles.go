package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from one theme.
type Styles struct {
	Canvas    lipgloss.Style
	Spark     lipgloss.Style
	Stats     lipgloss.Style
	Header    lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Graph     lipgloss.Style
	Help      lipgloss.Style
	Growing   lipgloss.Style
	Shrinking lipgloss.Style
	Paused    lipgloss.Style
	Subtle    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Canvas: lipgloss.NewStyle().Foreground(t.Rods).Padding(1, 2),
		Spark:  lipgloss.NewStyle().Foreground(t.Curve).Padding(0, 2),
		Stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(44),
		Header:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		Label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:     lipgloss.NewStyle().Foreground(t.Text),
		Graph:     lipgloss.NewStyle().Foreground(t.Curve).Padding(1, 0),
		Help:      lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		Growing:   lipgloss.NewStyle().Foreground(t.Growing).Bold(true),
		Shrinking: lipgloss.NewStyle().Foreground(t.Shrinking).Bold(true),
		Paused:    lipgloss.NewStyle().Foreground(t.Paused).Bold(true),
		Subtle:    lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// ProgressBar renders a fixed-width bar for a value in [0,1].
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Separator is a decorative rule of the given width.
func Separator(width int) string {
	if width < 7 {
		return strings.Repeat("─", max(width, 0))
	}
	mid := width / 2
	return strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3)
}
