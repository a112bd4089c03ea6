// Package tui provides the interactive pomodoro countdown.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/tui/themes"
)

// Session controls the running time entry behind the countdown.
type Session interface {
	Stop(ctx context.Context) (*model.TimeEntry, error)
	Abandon(ctx context.Context) error
}

// Outcome is how a pomodoro ended.
type Outcome int

const (
	// OutcomeDetached leaves the timer running.
	OutcomeDetached Outcome = iota
	// OutcomeCompleted means the countdown ran out and the entry was saved.
	OutcomeCompleted
	// OutcomeStopped means the user saved the entry early.
	OutcomeStopped
	// OutcomeAbandoned means the entry was discarded.
	OutcomeAbandoned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeAbandoned:
		return "abandoned"
	}
	return "detached"
}

// Config configures a pomodoro.
type Config struct {
	Session  Session
	Theme    *themes.Theme // nil selects themes.Default
	Category string
	Duration time.Duration
	Interval time.Duration // tick interval, defaults to one second
}

// Result is the final state after the program exits.
type Result struct {
	Entry   *model.TimeEntry
	Err     error
	Outcome Outcome
}

type stoppedMsg struct {
	entry   *model.TimeEntry
	outcome Outcome
}

type abandonedMsg struct{}

type errMsg struct{ err error }

// Model is the bubbletea model for the countdown.
type Model struct {
	ctx      context.Context
	session  Session
	result   Result
	theme    themes.Theme
	keys     KeyMap
	help     help.Model
	progress progress.Model
	timer    timer.Model
	category string
	duration time.Duration
	busy     bool
	quitting bool
}

// New builds a countdown model.
func New(ctx context.Context, cfg Config) Model {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	theme := themes.Default
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}

	return Model{
		ctx:      ctx,
		session:  cfg.Session,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		timer:    timer.NewWithInterval(cfg.Duration, interval),
		category: cfg.Category,
		duration: cfg.Duration,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.timer.Init()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-8, 10), 60)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case timer.TickMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd

	case timer.StartStopMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd

	case timer.TimeoutMsg:
		if msg.ID != m.timer.ID() || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.stop(OutcomeCompleted)

	case stoppedMsg:
		m.result = Result{Outcome: msg.outcome, Entry: msg.entry}
		m.quitting = true
		return m, tea.Quit

	case abandonedMsg:
		m.result = Result{Outcome: OutcomeAbandoned}
		m.quitting = true
		return m, tea.Quit

	case errMsg:
		m.result = Result{Outcome: OutcomeDetached, Err: msg.err}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Pause):
		return m, m.timer.Toggle()
	case key.Matches(msg, m.keys.Stop):
		m.busy = true
		return m, m.stop(OutcomeStopped)
	case key.Matches(msg, m.keys.Abandon):
		m.busy = true
		return m, m.abandon()
	case key.Matches(msg, m.keys.Quit):
		m.result = Result{Outcome: OutcomeDetached}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) stop(outcome Outcome) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.session.Stop(m.ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to stop timer: %w", err)}
		}
		return stoppedMsg{entry: entry, outcome: outcome}
	}
}

func (m Model) abandon() tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Abandon(m.ctx); err != nil {
			return errMsg{err: fmt.Errorf("failed to abandon timer: %w", err)}
		}
		return abandonedMsg{}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("⏳ Pomodoro") + m.theme.Subtitle.Render(" · "+m.category))
	b.WriteString("\n\n")

	b.WriteString(m.theme.Clock.Render(formatClock(m.timer.Timeout)))
	switch {
	case m.busy:
		b.WriteString(m.theme.Subtitle.Render("  saving..."))
	case !m.timer.Running():
		b.WriteString(m.theme.Paused.Render("  paused"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.Elapsed()))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return m.theme.Box.Render(b.String())
}

// Elapsed returns the finished fraction of the countdown in [0, 1].
func (m Model) Elapsed() float64 {
	if m.duration <= 0 {
		return 1
	}
	f := 1 - float64(m.timer.Timeout)/float64(m.duration)
	return min(max(f, 0), 1)
}

// Result returns how the countdown ended.
func (m Model) Result() Result {
	return m.result
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
