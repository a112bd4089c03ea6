// Package analytics derives reports from tracked time and scheduled tasks.
// The functions in this file are pure; Engine loads the data they need.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/Veraticus/hourglass/internal/model"
)

// MaxLevel is the highest heatmap intensity.
const MaxLevel = 4

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayKey returns the YYYY-MM-DD date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(model.DateLayout)
}

// DailyTotals sums completed entry durations per start date. Running entries are skipped.
func DailyTotals(entries []model.TimeEntry, loc *time.Location) map[string]int64 {
	totals := make(map[string]int64)
	for i := range entries {
		if entries[i].IsActive() {
			continue
		}
		totals[DayKey(entries[i].StartTime, loc)] += entries[i].Duration
	}
	return totals
}

// Level maps a day's duration to a heatmap intensity in [0, MaxLevel].
func Level(duration, maxDuration int64) int {
	if maxDuration < 1 {
		maxDuration = 1
	}
	level := int(math.Ceil(float64(duration) / float64(maxDuration) * MaxLevel))
	return min(MaxLevel, max(0, level))
}

// Heatmap converts daily totals into cells sorted by date. Days without entries are absent.
func Heatmap(totals map[string]int64) []model.HeatmapDay {
	var maxDuration int64 = 1
	for _, d := range totals {
		maxDuration = max(maxDuration, d)
	}

	days := make([]model.HeatmapDay, 0, len(totals))
	for _, date := range sortedDates(totals) {
		days = append(days, model.HeatmapDay{
			Date:     date,
			Duration: totals[date],
			Level:    Level(totals[date], maxDuration),
		})
	}
	return days
}

// MostProductiveDay returns the day with the largest total. Ties keep the earliest date;
// an empty map yields a zero DayTotal.
func MostProductiveDay(totals map[string]int64) model.DayTotal {
	best := model.DayTotal{}
	for _, date := range sortedDates(totals) {
		if totals[date] > best.Duration {
			best = model.DayTotal{Date: date, Duration: totals[date]}
		}
	}
	return best
}

// Streak counts consecutive days with tracked time ending today. lookback bounds the walk.
func Streak(totals map[string]int64, now time.Time, loc *time.Location, lookback int) int {
	day := StartOfDay(now, loc)
	streak := 0
	for streak < lookback {
		if totals[DayKey(day, loc)] <= 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// SumSince totals completed entries that started at or after since.
func SumSince(entries []model.TimeEntry, since time.Time) int64 {
	var total int64
	for i := range entries {
		if entries[i].IsActive() || entries[i].StartTime.Before(since) {
			continue
		}
		total += entries[i].Duration
	}
	return total
}

// Distribution splits completed time by category, largest first and then by name.
func Distribution(entries []model.TimeEntry) []model.CategoryShare {
	byCategory := make(map[string]*model.CategoryShare)
	var total int64
	for i := range entries {
		e := &entries[i]
		if e.IsActive() {
			continue
		}
		share, ok := byCategory[e.CategoryID]
		if !ok {
			share = &model.CategoryShare{CategoryID: e.CategoryID}
			if e.Category != nil {
				share.CategoryName = e.Category.Name
				share.Color = e.Category.Color
			}
			byCategory[e.CategoryID] = share
		}
		share.Duration += e.Duration
		total += e.Duration
	}

	shares := make([]model.CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		if total > 0 {
			share.Percentage = float64(share.Duration) / float64(total) * 100
		}
		shares = append(shares, *share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Duration != shares[j].Duration {
			return shares[i].Duration > shares[j].Duration
		}
		if shares[i].CategoryName != shares[j].CategoryName {
			return shares[i].CategoryName < shares[j].CategoryName
		}
		return shares[i].CategoryID < shares[j].CategoryID
	})
	return shares
}

// Trends returns one zero-filled row per day from today-days through today.
func Trends(totals map[string]int64, now time.Time, loc *time.Location, days int) []model.DayTotal {
	start := StartOfDay(now, loc).AddDate(0, 0, -days)
	rows := make([]model.DayTotal, 0, days+1)
	for i := 0; i <= days; i++ {
		date := DayKey(start.AddDate(0, 0, i), loc)
		rows = append(rows, model.DayTotal{Date: date, Duration: totals[date]})
	}
	return rows
}

var ratingMessages = map[model.RatingLevel]string{
	model.RatingNone:     "No tasks completed yet. Every journey starts with a single step.",
	model.RatingBronze:   "Good start! Keep the momentum going.",
	model.RatingSilver:   "Solid progress. You're more than halfway there.",
	model.RatingGold:     "Great work! Almost everything is done.",
	model.RatingPlatinum: "Perfect day! Every task is complete.",
}

// Rate scores a day from its scheduled and completed task counts.
func Rate(total, completed int) model.DayRating {
	rating := model.DayRating{TotalTasks: total, CompletedTasks: completed}
	if total > 0 {
		rating.Score = int(math.Round(float64(completed) / float64(total) * 100))
	}

	switch {
	case total == 0 || completed == 0:
		rating.Level = model.RatingNone
	case completed >= total:
		rating.Level = model.RatingPlatinum
	case rating.Score < 50:
		rating.Level = model.RatingBronze
	case rating.Score < 80:
		rating.Level = model.RatingSilver
	default:
		// Includes ratios that round up to 100 with tasks still open.
		rating.Level = model.RatingGold
	}
	rating.Message = ratingMessages[rating.Level]
	return rating
}

func sortedDates(totals map[string]int64) []string {
	dates := make([]string, 0, len(totals))
	for date := range totals {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
