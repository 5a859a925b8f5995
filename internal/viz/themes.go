package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name      string
	Rods      lipgloss.Color
	Curve     lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Growing   lipgloss.Color
	Shrinking lipgloss.Color
	Paused    lipgloss.Color
	Border    lipgloss.Color
}

var (
	ThemeMono = Theme{
		Name:      "mono",
		Rods:      lipgloss.Color("#d0d0d0"),
		Curve:     lipgloss.Color("#ffffff"),
		Accent:    lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#eeeeee"),
		Muted:     lipgloss.Color("#666666"),
		Growing:   lipgloss.Color("#ffffff"),
		Shrinking: lipgloss.Color("#999999"),
		Paused:    lipgloss.Color("#ffaa00"),
		Border:    lipgloss.Color("#333333"),
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Rods:      lipgloss.Color("#ff00ff"),
		Curve:     lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Growing:   lipgloss.Color("#00ff00"),
		Shrinking: lipgloss.Color("#ff8800"),
		Paused:    lipgloss.Color("#ff0000"),
		Border:    lipgloss.Color("#444466"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Rods:      lipgloss.Color("#00ff00"),
		Curve:     lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Growing:   lipgloss.Color("#88ff88"),
		Shrinking: lipgloss.Color("#00aa00"),
		Paused:    lipgloss.Color("#ffff00"),
		Border:    lipgloss.Color("#003300"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Rods:      lipgloss.Color("#00a8cc"),
		Curve:     lipgloss.Color("#e0f0ff"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Growing:   lipgloss.Color("#00ff88"),
		Shrinking: lipgloss.Color("#ffcc00"),
		Paused:    lipgloss.Color("#ff4444"),
		Border:    lipgloss.Color("#0077be"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Rods:      lipgloss.Color("#ff6b6b"),
		Curve:     lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Growing:   lipgloss.Color("#5fd068"),
		Shrinking: lipgloss.Color("#ffc048"),
		Paused:    lipgloss.Color("#ff4757"),
		Border:    lipgloss.Color("#2d1b2e"),
	}

	Themes = []Theme{
		ThemeMono,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to mono.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeMono
}

// NextTheme returns the theme after name in cycle order.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
