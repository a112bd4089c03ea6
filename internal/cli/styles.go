// Package cli renders hourglass output for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	SandColor    = lipgloss.Color("#E9B872")
	SuccessColor = lipgloss.Color("#10B981")
	WarningColor = lipgloss.Color("#F59E0B")
	ErrorColor   = lipgloss.Color("#EF4444")
	InfoColor    = lipgloss.Color("#8B5CF6")
	SubtleColor  = lipgloss.Color("#6B7280")
	BorderColor  = lipgloss.Color("#3F3F46")
)

var (
	// TitleStyle renders command headings.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(SandColor).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// LabelStyle pads the label column of key/value blocks.
	LabelStyle = lipgloss.NewStyle().PaddingRight(2)

	// PanelStyle frames the stats summary.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 2)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(SandColor)
)

// Icons.
const (
	SuccessIcon   = "✓"
	ErrorIcon     = "✗"
	WarningIcon   = "!"
	InfoIcon      = "›"
	HourglassIcon = "⏳"
	TimerIcon     = "⏱"
	ChartIcon     = "📊"
	FireIcon      = "🔥"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a heading with the hourglass icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(HourglassIcon + " " + title)
}

// FormatPrompt renders an input label followed by a colon.
func FormatPrompt(label string) string {
	return promptStyle.Render(label + ": ")
}

// RenderPanel frames content under a bold heading.
func RenderPanel(heading, content string) string {
	return PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(heading),
		content,
	))
}
