package model

import "time"

// Priority ranks tasks within a day.
type Priority string

const (
	// PriorityLow is the lowest priority.
	PriorityLow Priority = "LOW"
	// PriorityMedium is the default priority.
	PriorityMedium Priority = "MEDIUM"
	// PriorityHigh is the highest priority.
	PriorityHigh Priority = "HIGH"
)

// Weight orders priorities: HIGH > MEDIUM > LOW.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Weight() > 0
}

// DateLayout is the wire and storage layout for date-only values.
const DateLayout = "2006-01-02"

// Task is a unit of planned work, optionally scheduled for a calendar day.
type Task struct {
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CompletedAt   *time.Time `json:"completedAt"`
	ProjectID     *string    `json:"projectId"`
	ScheduledDate *string    `json:"scheduledDate"` // YYYY-MM-DD, timezone-naive
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      Priority   `json:"priority"`
	EstimatedTime int        `json:"estimatedTime"` // minutes
	IsCompleted   bool       `json:"isCompleted"`
}
