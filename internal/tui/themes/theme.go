// Package themes holds the color palettes for the terminal UI.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Clock      lipgloss.Style
	Paused     lipgloss.Style
	Done       lipgloss.Style
	Error      lipgloss.Style
	Box        lipgloss.Style
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	ErrorColor lipgloss.Color
}

// Default is the default theme.
var Default = build(Theme{
	Primary:    lipgloss.Color("#E9B872"),
	Secondary:  lipgloss.Color("#4ECDC4"),
	Muted:      lipgloss.Color("#666666"),
	Border:     lipgloss.Color("#333333"),
	Success:    lipgloss.Color("#4ECDC4"),
	Warning:    lipgloss.Color("#FFE66D"),
	ErrorColor: lipgloss.Color("#FF6B6B"),
})

// Light is tuned for light terminal backgrounds.
var Light = build(Theme{
	Primary:    lipgloss.Color("#8A5A00"),
	Secondary:  lipgloss.Color("#00736B"),
	Muted:      lipgloss.Color("#888888"),
	Border:     lipgloss.Color("#CCCCCC"),
	Success:    lipgloss.Color("#00736B"),
	Warning:    lipgloss.Color("#A07800"),
	ErrorColor: lipgloss.Color("#C0392B"),
})

func build(t Theme) Theme {
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	t.Subtitle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Clock = lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
	t.Paused = lipgloss.NewStyle().Foreground(t.Warning)
	t.Done = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	t.Error = lipgloss.NewStyle().Foreground(t.ErrorColor)
	t.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(1, 2)
	return t
}

// ByName returns the named theme, falling back to Default.
func ByName(name string) Theme {
	if name == "light" {
		return Light
	}
	return Default
}
