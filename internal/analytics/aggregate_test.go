package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/hourglass/internal/model"
)

func entry(categoryID, name string, start time.Time, seconds int64) model.TimeEntry {
	end := start.Add(time.Duration(seconds) * time.Second)
	return model.TimeEntry{
		CategoryID: categoryID,
		Category:   &model.Category{ID: categoryID, Name: name, Color: "#FFFFFF"},
		StartTime:  start,
		EndTime:    &end,
		Duration:   seconds,
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name     string
		duration int64
		max      int64
		want     int
	}{
		{name: "zero", duration: 0, max: 100, want: 0},
		{name: "tiny rounds up", duration: 1, max: 100, want: 1},
		{name: "quarter", duration: 25, max: 100, want: 1},
		{name: "just over quarter", duration: 26, max: 100, want: 2},
		{name: "three quarters", duration: 75, max: 100, want: 3},
		{name: "max", duration: 100, max: 100, want: 4},
		{name: "zero max treated as one", duration: 0, max: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.duration, tt.max))
		})
	}
}

func TestHeatmap(t *testing.T) {
	totals := map[string]int64{
		"2024-03-02": 3600,
		"2024-03-01": 900,
		"2024-02-28": 1800,
	}

	days := Heatmap(totals)
	assert.Equal(t, []model.HeatmapDay{
		{Date: "2024-02-28", Duration: 1800, Level: 2},
		{Date: "2024-03-01", Duration: 900, Level: 1},
		{Date: "2024-03-02", Duration: 3600, Level: 4},
	}, days)

	for _, d := range days {
		assert.GreaterOrEqual(t, d.Level, 0)
		assert.LessOrEqual(t, d.Level, MaxLevel)
	}

	assert.Empty(t, Heatmap(map[string]int64{}))
}

func TestDailyTotals_SkipsRunningAndUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2024, 3, 2, 2, 0, 0, 0, time.UTC) // 21:00 on March 1 in loc
	running := model.TimeEntry{StartTime: late}

	totals := DailyTotals([]model.TimeEntry{entry("c", "Work", late, 60), running}, loc)
	assert.Equal(t, map[string]int64{"2024-03-01": 60}, totals)
}

func TestMostProductiveDay(t *testing.T) {
	assert.Equal(t, model.DayTotal{}, MostProductiveDay(nil))

	best := MostProductiveDay(map[string]int64{
		"2024-03-03": 500,
		"2024-03-01": 500,
		"2024-03-02": 100,
	})
	assert.Equal(t, model.DayTotal{Date: "2024-03-01", Duration: 500}, best, "ties keep the earliest date")
}

func TestStreak(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		totals map[string]int64
		name   string
		want   int
	}{
		{name: "nothing tracked", totals: map[string]int64{}, want: 0},
		{name: "only today", totals: map[string]int64{"2024-03-10": 60}, want: 1},
		{
			name:   "three days",
			totals: map[string]int64{"2024-03-10": 60, "2024-03-09": 1, "2024-03-08": 30, "2024-03-06": 99},
			want:   3,
		},
		{name: "yesterday only breaks at today", totals: map[string]int64{"2024-03-09": 60}, want: 0},
		{name: "zero duration day breaks", totals: map[string]int64{"2024-03-10": 60, "2024-03-09": 0, "2024-03-08": 60}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.totals, now, time.UTC, StreakLookbackDays))
		})
	}

	t.Run("bounded by lookback", func(t *testing.T) {
		totals := map[string]int64{}
		day := now
		for i := 0; i < 400; i++ {
			totals[DayKey(day, time.UTC)] = 10
			day = day.AddDate(0, 0, -1)
		}
		assert.Equal(t, StreakLookbackDays, Streak(totals, now, time.UTC, StreakLookbackDays))
	})
}

func TestDistribution(t *testing.T) {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.TimeEntry{
		entry("w", "Work", day, 300),
		entry("r", "Reading", day, 100),
		entry("w", "Work", day.Add(time.Hour), 300),
		entry("s", "Alpha", day, 100),
	}

	shares := Distribution(entries)
	assert.Len(t, shares, 3)
	assert.Equal(t, "Work", shares[0].CategoryName)
	assert.Equal(t, int64(600), shares[0].Duration)
	assert.InDelta(t, 75.0, shares[0].Percentage, 0.0001)
	assert.Equal(t, "Alpha", shares[1].CategoryName, "equal durations sort by name")
	assert.Equal(t, "Reading", shares[2].CategoryName)

	var sum float64
	for _, s := range shares {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.0001)

	t.Run("zero total", func(t *testing.T) {
		shares := Distribution([]model.TimeEntry{entry("w", "Work", day, 0)})
		assert.Len(t, shares, 1)
		assert.Zero(t, shares[0].Percentage)
	})
}

func TestTrends(t *testing.T) {
	now := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	rows := Trends(map[string]int64{"2024-03-02": 42}, now, time.UTC, 3)

	assert.Equal(t, []model.DayTotal{
		{Date: "2024-02-29", Duration: 0},
		{Date: "2024-03-01", Duration: 0},
		{Date: "2024-03-02", Duration: 42},
		{Date: "2024-03-03", Duration: 0},
	}, rows)
}

func TestRate(t *testing.T) {
	tests := []struct {
		name      string
		level     model.RatingLevel
		total     int
		completed int
		score     int
	}{
		{name: "no tasks", total: 0, completed: 0, score: 0, level: model.RatingNone},
		{name: "none completed", total: 4, completed: 0, score: 0, level: model.RatingNone},
		{name: "a quarter", total: 4, completed: 1, score: 25, level: model.RatingBronze},
		{name: "just under half", total: 100, completed: 49, score: 49, level: model.RatingBronze},
		{name: "half", total: 2, completed: 1, score: 50, level: model.RatingSilver},
		{name: "two thirds", total: 3, completed: 2, score: 67, level: model.RatingSilver},
		{name: "eighty", total: 5, completed: 4, score: 80, level: model.RatingGold},
		{name: "rounds to 100 but not done", total: 200, completed: 199, score: 100, level: model.RatingGold},
		{name: "all done", total: 3, completed: 3, score: 100, level: model.RatingPlatinum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating := Rate(tt.total, tt.completed)
			assert.Equal(t, tt.score, rating.Score)
			assert.Equal(t, tt.level, rating.Level)
			assert.Equal(t, tt.total, rating.TotalTasks)
			assert.Equal(t, tt.completed, rating.CompletedTasks)
			assert.NotEmpty(t, rating.Message)
		})
	}
}
