package model

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectActive is the default status for new projects.
	ProjectActive ProjectStatus = "ACTIVE"
	// ProjectCompleted marks a finished project.
	ProjectCompleted ProjectStatus = "COMPLETED"
	// ProjectArchived hides a project from day-to-day planning.
	ProjectArchived ProjectStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Project groups tasks under a shared goal.
type Project struct {
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Deadline    *time.Time    `json:"deadline"`
	Budget      *int          `json:"budget"` // minutes
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Color       string        `json:"color"`
	Status      ProjectStatus `json:"status"`
	TaskCount   int           `json:"taskCount"`
}

// ProjectDetails augments a project with tracked time and task progress.
type ProjectDetails struct {
	Project
	TotalDuration  int64 `json:"totalDuration"` // seconds
	Progress       int   `json:"progress"`      // percent, 0-100
	CompletedTasks int   `json:"completedTasks"`
	TotalTasks     int   `json:"totalTasks"`
}
