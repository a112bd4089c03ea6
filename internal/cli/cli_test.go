package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/model"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		want    string
		seconds int64
	}{
		{"0s", 0},
		{"0s", -5},
		{"45s", 45},
		{"12m 30s", 750},
		{"1h 00m", 3600},
		{"2h 05m", 7500},
		{"26h 00m", 26 * 3600},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "seconds=%d", tt.seconds)
	}
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(&model.Stats{
		TodayTotal:        1800,
		WeekTotal:         7200,
		MonthTotal:        36000,
		Streak:            4,
		MostProductiveDay: model.DayTotal{Date: "2024-03-01", Duration: 10800},
	})
	assert.Contains(t, out, "30m 00s")
	assert.Contains(t, out, "10h 00m")
	assert.Contains(t, out, "4 days")
	assert.Contains(t, out, "2024-03-01 (3h 00m)")

	out = RenderStats(&model.Stats{})
	assert.NotContains(t, out, "Best day")
}

func TestRenderDistribution(t *testing.T) {
	assert.Contains(t, RenderDistribution(nil), "No time tracked")

	out := RenderDistribution([]model.CategoryShare{
		{CategoryName: "Work", Color: "#3B82F6", Duration: 7200, Percentage: 80},
		{CategoryName: "Sleep", Color: "#6366F1", Duration: 1800, Percentage: 20},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Work")
	assert.Contains(t, lines[1], "80.0%")
	assert.Contains(t, lines[2], "30m 00s")
}

func TestRenderRating(t *testing.T) {
	out := RenderRating("2024-03-01", &model.DayRating{
		Level: model.RatingSilver, Score: 67, TotalTasks: 3, CompletedTasks: 2, Message: "Solid",
	})
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "Silver")
	assert.Contains(t, out, "2/3 tasks (67%)")
}

func TestRenderEntry(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	running := &model.TimeEntry{StartTime: start, Category: &model.Category{Name: "Work"}}
	assert.Contains(t, RenderEntry(running, start.Add(25*time.Minute)), "25m 00s running")

	end := start.Add(time.Hour)
	done := &model.TimeEntry{StartTime: start, EndTime: &end, Duration: 3600, CategoryID: "cat-1", Notes: "deep work"}
	out := RenderEntry(done, end)
	assert.Contains(t, out, "cat-1")
	assert.Contains(t, out, "1h 00m")
	assert.Contains(t, out, "deep work")
}

func TestNewProgressBar(t *testing.T) {
	out := &syncBuffer{}
	bar := NewProgressBar(out, 2, "Importing entries...")
	Step(bar)
	Step(bar)
	assert.True(t, bar.IsFinished())
}

func TestInterruptHandler(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Import", "Rows already imported are kept.")
	ctx := h.HandleInterrupts(context.Background())

	assert.False(t, h.WasInterrupted())
	h.interrupt()
	h.interrupt()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}
	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Import interrupted!"))
	assert.Contains(t, out.String(), "Rows already imported are kept.")
}

func TestNewInterruptHandler_DefaultWriter(t *testing.T) {
	h := NewInterruptHandler(nil, "Import", "")
	assert.NotNil(t, h.writer)
}

func TestLineReader(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewLineReader(strings.NewReader("  Ada Lovelace \n\nlast"), out)
	ctx := context.Background()

	name, err := r.Prompt(ctx, "Name", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)
	assert.Contains(t, out.String(), "Name")

	tz, err := r.Prompt(ctx, "Timezone", "UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", tz)

	line, err := r.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLineReader(pr, io.Discard).ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}
