package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/tui/themes"
)

type fakeSession struct {
	stopErr  error
	entry    *model.TimeEntry
	stops    int
	abandons int
}

func (f *fakeSession) Stop(context.Context) (*model.TimeEntry, error) {
	f.stops++
	return f.entry, f.stopErr
}

func (f *fakeSession) Abandon(context.Context) error {
	f.abandons++
	return nil
}

func newTestModel(s Session) Model {
	return New(context.Background(), Config{
		Session:  s,
		Category: "Work",
		Duration: 25 * time.Minute,
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step feeds msg to m and, when a command comes back, runs it once and feeds its message too.
func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	out := cmd()
	next, _ = m.Update(out)
	return next.(Model), out
}

func TestPomodoro_TimeoutStopsEntry(t *testing.T) {
	entry := &model.TimeEntry{ID: "e1", Duration: 1500}
	s := &fakeSession{entry: entry}
	m := newTestModel(s)

	m, out := step(t, m, timer.TimeoutMsg{ID: m.timer.ID()})
	assert.IsType(t, stoppedMsg{}, out)
	assert.Equal(t, 1, s.stops)
	assert.Equal(t, OutcomeCompleted, m.Result().Outcome)
	assert.Equal(t, entry, m.Result().Entry)
	assert.Empty(t, m.View())
}

func TestPomodoro_IgnoresForeignTimeout(t *testing.T) {
	s := &fakeSession{}
	m := newTestModel(s)

	next, cmd := m.Update(timer.TimeoutMsg{ID: m.timer.ID() + 1000})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, s.stops)
	assert.NotEmpty(t, next.(Model).View())
}

func TestPomodoro_Keys(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		s := &fakeSession{entry: &model.TimeEntry{ID: "e1"}}
		m, _ := step(t, newTestModel(s), runes("s"))
		assert.Equal(t, 1, s.stops)
		assert.Equal(t, OutcomeStopped, m.Result().Outcome)
	})

	t.Run("abandon", func(t *testing.T) {
		s := &fakeSession{}
		m, out := step(t, newTestModel(s), runes("x"))
		assert.IsType(t, abandonedMsg{}, out)
		assert.Equal(t, 1, s.abandons)
		assert.Equal(t, OutcomeAbandoned, m.Result().Outcome)
	})

	t.Run("detach", func(t *testing.T) {
		s := &fakeSession{}
		next, cmd := newTestModel(s).Update(runes("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, OutcomeDetached, next.(Model).Result().Outcome)
		assert.Zero(t, s.stops+s.abandons)
	})

	t.Run("help toggles", func(t *testing.T) {
		m := newTestModel(&fakeSession{})
		next, _ := m.Update(runes("?"))
		assert.True(t, next.(Model).help.ShowAll)
	})

	t.Run("keys ignored while saving", func(t *testing.T) {
		s := &fakeSession{}
		m := newTestModel(s)
		next, _ := m.Update(runes("s"))
		next, cmd := next.(Model).Update(runes("x"))
		assert.Nil(t, cmd)
		assert.Contains(t, next.(Model).View(), "saving")
	})
}

func TestPomodoro_StopError(t *testing.T) {
	s := &fakeSession{stopErr: errors.New("database is locked")}
	m, out := step(t, newTestModel(s), runes("s"))
	assert.IsType(t, errMsg{}, out)
	require.Error(t, m.Result().Err)
	assert.Contains(t, m.Result().Err.Error(), "database is locked")
	assert.Equal(t, OutcomeDetached, m.Result().Outcome)
}

func TestPomodoro_TickAndView(t *testing.T) {
	m := New(context.Background(), Config{
		Session:  &fakeSession{},
		Category: "Reading",
		Duration: 4 * time.Second,
		Theme:    &themes.Light,
	})
	assert.InDelta(t, 0.0, m.Elapsed(), 0.0001)

	next, _ := m.Update(timer.TickMsg{ID: m.timer.ID()})
	m = next.(Model)
	assert.InDelta(t, 0.25, m.Elapsed(), 0.0001)

	view := m.View()
	assert.Contains(t, view, "Reading")
	assert.Contains(t, view, "00:03")
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", formatClock(25*time.Minute))
	assert.Equal(t, "01:05", formatClock(65*time.Second))
	assert.Equal(t, "00:00", formatClock(-time.Second))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "completed", OutcomeCompleted.String())
	assert.Equal(t, "detached", OutcomeDetached.String())
}
