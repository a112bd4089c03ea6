package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the pomodoro shortcuts.
type KeyMap struct {
	Pause   key.Binding
	Stop    key.Binding
	Abandon key.Binding
	Quit    key.Binding
	Help    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "stop & save"),
		),
		Abandon: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "abandon"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "detach"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Stop, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Stop, k.Abandon},
		{k.Quit, k.Help},
	}
}
