package model

import "time"

// TimeEntry is a tracked span of time against a category.
// A nil EndTime means the timer is still running.
type TimeEntry struct {
	StartTime  time.Time  `json:"startTime"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	EndTime    *time.Time `json:"endTime"`
	Category   *Category  `json:"category,omitempty"`
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	CategoryID string     `json:"categoryId"`
	Notes      string     `json:"notes,omitempty"`
	Tasks      []Task     `json:"tasks"`
	Duration   int64      `json:"duration"` // seconds
	IsManual   bool       `json:"isManual"`
}

// IsActive reports whether the entry is a running timer.
func (e *TimeEntry) IsActive() bool {
	return e.EndTime == nil
}

// TaskIDs returns the ids of the linked tasks.
func (e *TimeEntry) TaskIDs() []string {
	ids := make([]string, 0, len(e.Tasks))
	for _, t := range e.Tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// ElapsedSeconds returns floor((end - start) in seconds), clamped at zero.
func ElapsedSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}
