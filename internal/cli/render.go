package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/hourglass/internal/model"
)

// barWidth is the widest distribution bar, in cells.
const barWidth = 30

// FormatDuration renders seconds as "2h 05m", "12m 30s" or "45s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// RenderStats renders the headline totals and streak.
func RenderStats(stats *model.Stats) string {
	rows := [][2]string{
		{"Today", FormatDuration(stats.TodayTotal)},
		{"Last 7 days", FormatDuration(stats.WeekTotal)},
		{"Last 30 days", FormatDuration(stats.MonthTotal)},
		{"Streak", fmt.Sprintf("%s %d days", FireIcon, stats.Streak)},
	}
	if stats.MostProductiveDay.Duration > 0 {
		rows = append(rows, [2]string{
			"Best day",
			fmt.Sprintf("%s (%s)", stats.MostProductiveDay.Date, FormatDuration(stats.MostProductiveDay.Duration)),
		})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, LabelStyle.Width(14).Render(SubtleStyle.Render(r[0]))+BoldStyle.Render(r[1]))
	}
	return RenderPanel(ChartIcon+" Stats", strings.Join(lines, "\n"))
}

// RenderDistribution renders one bar per category, colored with the category color.
func RenderDistribution(shares []model.CategoryShare) string {
	if len(shares) == 0 {
		return SubtleStyle.Render("No time tracked in this period.")
	}

	nameWidth := 0
	for _, s := range shares {
		nameWidth = max(nameWidth, lipgloss.Width(s.CategoryName))
	}

	lines := make([]string, 0, len(shares)+1)
	lines = append(lines, BoldStyle.Render("Distribution"))
	for _, s := range shares {
		cells := int(s.Percentage / 100 * barWidth)
		if cells == 0 && s.Duration > 0 {
			cells = 1
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", cells))
		lines = append(lines, fmt.Sprintf("%-*s %s %5.1f%%  %s",
			nameWidth, s.CategoryName, bar+strings.Repeat(" ", barWidth-cells), s.Percentage, FormatDuration(s.Duration)))
	}
	return strings.Join(lines, "\n")
}

var ratingColors = map[model.RatingLevel]lipgloss.Color{
	model.RatingNone:     SubtleColor,
	model.RatingBronze:   lipgloss.Color("#CD7F32"),
	model.RatingSilver:   lipgloss.Color("#C0C0C0"),
	model.RatingGold:     lipgloss.Color("#FFD700"),
	model.RatingPlatinum: lipgloss.Color("#E5E4E2"),
}

// RenderRating renders the rating line for date.
func RenderRating(date string, r *model.DayRating) string {
	level := lipgloss.NewStyle().Bold(true).Foreground(ratingColors[r.Level]).Render(string(r.Level))
	return fmt.Sprintf("%s %s  %d/%d tasks (%d%%)  %s",
		date, level, r.CompletedTasks, r.TotalTasks, r.Score, SubtleStyle.Render(r.Message))
}

// RenderEntry renders a time entry in one line. A running timer shows elapsed time at now.
func RenderEntry(e *model.TimeEntry, now time.Time) string {
	category := e.CategoryID
	if e.Category != nil {
		category = e.Category.Name
	}
	start := e.StartTime.Local().Format("Jan 2 15:04")

	if e.EndTime == nil {
		elapsed := model.ElapsedSeconds(e.StartTime, now)
		return fmt.Sprintf("%s %s since %s (%s running)", TimerIcon, BoldStyle.Render(category), start, FormatDuration(elapsed))
	}
	line := fmt.Sprintf("%s %s %s-%s (%s)", SuccessIcon, BoldStyle.Render(category), start,
		e.EndTime.Local().Format("15:04"), FormatDuration(e.Duration))
	if e.Notes != "" {
		line += " " + SubtleStyle.Render(e.Notes)
	}
	return line
}
