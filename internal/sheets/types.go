package sheets

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/hourglass/internal/model"
)

// DateRange is the period a timesheet covers.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// EntryRow is one completed time entry on the sheet.
type EntryRow struct {
	Start    time.Time
	End      time.Time
	Category string
	Notes    string
	Tasks    []string
	Duration int64 // seconds
	Manual   bool
}

// CategoryHours is one line of the per-category summary.
type CategoryHours struct {
	Category string
	Duration int64 // seconds
	Entries  int
}

// Timesheet holds everything written to the sheet.
type Timesheet struct {
	Range      DateRange
	Entries    []EntryRow
	Categories []CategoryHours
	Total      int64 // seconds
}

// BuildTimesheet converts completed entries into a timesheet. Running timers
// are skipped. Entries are listed oldest first; categories by time spent.
func BuildTimesheet(entries []model.TimeEntry, r DateRange, loc *time.Location) Timesheet {
	if loc == nil {
		loc = time.Local
	}

	ts := Timesheet{Range: r, Entries: make([]EntryRow, 0, len(entries))}
	byCategory := make(map[string]*CategoryHours)

	for _, e := range entries {
		if e.EndTime == nil {
			continue
		}
		name := e.CategoryID
		if e.Category != nil {
			name = e.Category.Name
		}
		titles := make([]string, 0, len(e.Tasks))
		for _, t := range e.Tasks {
			titles = append(titles, t.Title)
		}

		ts.Entries = append(ts.Entries, EntryRow{
			Start:    e.StartTime.In(loc),
			End:      e.EndTime.In(loc),
			Category: name,
			Notes:    e.Notes,
			Tasks:    titles,
			Duration: e.Duration,
			Manual:   e.IsManual,
		})
		ts.Total += e.Duration

		ch, ok := byCategory[name]
		if !ok {
			ch = &CategoryHours{Category: name}
			byCategory[name] = ch
		}
		ch.Duration += e.Duration
		ch.Entries++
	}

	sort.SliceStable(ts.Entries, func(i, j int) bool {
		return ts.Entries[i].Start.Before(ts.Entries[j].Start)
	})

	ts.Categories = make([]CategoryHours, 0, len(byCategory))
	for _, ch := range byCategory {
		ts.Categories = append(ts.Categories, *ch)
	}
	sort.Slice(ts.Categories, func(i, j int) bool {
		if ts.Categories[i].Duration != ts.Categories[j].Duration {
			return ts.Categories[i].Duration > ts.Categories[j].Duration
		}
		return strings.ToLower(ts.Categories[i].Category) < strings.ToLower(ts.Categories[j].Category)
	})

	return ts
}

// Hours converts seconds to hours rounded to two decimals.
func Hours(seconds int64) float64 {
	return math.Round(float64(seconds)/36) / 100
}
