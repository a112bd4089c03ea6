package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the countdown until it ends, the user stops it or ctx is done.
func Run(ctx context.Context, cfg Config) (Result, error) {
	p := tea.NewProgram(New(ctx, cfg), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Result{}, fmt.Errorf("pomodoro ui: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{Outcome: OutcomeDetached}, nil
	}
	return m.Result(), m.Result().Err
}
