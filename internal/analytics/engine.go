package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

// Window defaults and bounds, in days.
const (
	HeatmapWindowDays  = 365
	StreakLookbackDays = 366
	DefaultDays        = 30
	MaxDays            = 366
)

// Store is the read access the engine needs.
type Store interface {
	ListEntries(ctx context.Context, userID string, filter service.EntryFilter) ([]model.TimeEntry, error)
	CountTasksForDate(ctx context.Context, userID, date string) (total, completed int, err error)
}

// Engine computes reports for a user against the configured clock and location.
type Engine struct {
	store Store
	now   service.Clock
	loc   *time.Location
}

// NewEngine creates an engine. Nil clock and location default to time.Now and time.Local.
func NewEngine(store Store, clock service.Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{store: store, now: clock, loc: loc}
}

// Location returns the time zone used for day buckets.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) completedSince(ctx context.Context, userID string, since time.Time, until *time.Time, categoryID string) ([]model.TimeEntry, error) {
	return e.store.ListEntries(ctx, userID, service.EntryFilter{
		StartDate:     &since,
		EndDate:       until,
		CategoryID:    categoryID,
		CompletedOnly: true,
	})
}

// Heatmap returns per-day totals and levels over the last year, optionally for one category.
func (e *Engine) Heatmap(ctx context.Context, userID, categoryID string) ([]model.HeatmapDay, error) {
	now := e.now()
	entries, err := e.completedSince(ctx, userID, now.AddDate(0, 0, -HeatmapWindowDays), &now, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load heatmap entries: %w", err)
	}
	return Heatmap(DailyTotals(entries, e.loc)), nil
}

// Stats returns today, week and month totals, the best recent day and the current streak.
func (e *Engine) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	now := e.now().In(e.loc)
	entries, err := e.completedSince(ctx, userID, StartOfDay(now, e.loc).AddDate(0, 0, -StreakLookbackDays), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load stats entries: %w", err)
	}

	monthStart := now.AddDate(0, 0, -30)
	var month []model.TimeEntry
	for i := range entries {
		if !entries[i].StartTime.Before(monthStart) {
			month = append(month, entries[i])
		}
	}

	return &model.Stats{
		TodayTotal:        SumSince(entries, StartOfDay(now, e.loc)),
		WeekTotal:         SumSince(entries, now.AddDate(0, 0, -7)),
		MonthTotal:        SumSince(entries, monthStart),
		MostProductiveDay: MostProductiveDay(DailyTotals(month, e.loc)),
		Streak:            Streak(DailyTotals(entries, e.loc), now, e.loc, StreakLookbackDays),
	}, nil
}

// Distribution splits the last days of tracked time by category.
func (e *Engine) Distribution(ctx context.Context, userID string, days int) ([]model.CategoryShare, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}
	entries, err := e.completedSince(ctx, userID, e.now().In(e.loc).AddDate(0, 0, -days), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load distribution entries: %w", err)
	}
	return Distribution(entries), nil
}

// Trends returns zero-filled daily totals for the last days plus today.
func (e *Engine) Trends(ctx context.Context, userID string, days int) ([]model.DayTotal, error) {
	if err := ValidateDays(days); err != nil {
		return nil, err
	}
	now := e.now()
	entries, err := e.completedSince(ctx, userID, StartOfDay(now, e.loc).AddDate(0, 0, -days), nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load trend entries: %w", err)
	}
	return Trends(DailyTotals(entries, e.loc), now, e.loc, days), nil
}

// DayRating scores task completion for date (YYYY-MM-DD, empty for today).
func (e *Engine) DayRating(ctx context.Context, userID, date string) (*model.DayRating, error) {
	if date == "" {
		date = DayKey(e.now(), e.loc)
	}
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}

	total, completed, err := e.store.CountTasksForDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	rating := Rate(total, completed)
	return &rating, nil
}

// ValidateDays checks a report window length.
func ValidateDays(days int) error {
	if days < 1 || days > MaxDays {
		return common.NewValidationError("days", fmt.Sprintf("must be between 1 and %d", MaxDays))
	}
	return nil
}

// ParseDays parses a days query value, using DefaultDays when raw is empty.
func ParseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError("days", "must be an integer")
	}
	return days, ValidateDays(days)
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, common.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	return t, nil
}
