// Package service defines the interfaces shared between the persistence layer and the domain services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/hourglass/internal/model"
)

// EntryFilter narrows time entry queries.
type EntryFilter struct {
	StartDate     *time.Time // inclusive lower bound on start time
	EndDate       *time.Time // inclusive upper bound on start time
	CategoryID    string
	CompletedOnly bool
}

// TaskFilter narrows task queries.
type TaskFilter struct {
	ScheduledDate *string
	IsCompleted   *bool
	ProjectID     *string
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser stores the user and seeds its categories atomically.
	CreateUser(ctx context.Context, user *model.User, categories []model.Category) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
}

// ProjectStore persists projects.
type ProjectStore interface {
	ListProjects(ctx context.Context, userID string) ([]model.Project, error)
	GetProject(ctx context.Context, userID, id string) (*model.Project, error)
	GetProjectDetails(ctx context.Context, userID, id string) (*model.ProjectDetails, error)
	CreateProject(ctx context.Context, project *model.Project) error
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, userID, id string) error
}

// TaskStore persists tasks.
type TaskStore interface {
	ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error)
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	// CountTasksForDate returns the number of tasks scheduled on date and how many are done.
	CountTasksForDate(ctx context.Context, userID, date string) (total, completed int, err error)
}

// EntryStore persists time entries.
type EntryStore interface {
	// StartEntry inserts an open entry unless the user already has one.
	StartEntry(ctx context.Context, entry *model.TimeEntry) error
	// CloseActiveEntry sets end time, duration and notes on the user's open entry.
	CloseActiveEntry(ctx context.Context, userID, entryID string, end time.Time, duration int64, notes *string) error
	// DeleteActiveEntry removes the user's open entry.
	DeleteActiveEntry(ctx context.Context, userID string) error
	GetActiveEntry(ctx context.Context, userID string) (*model.TimeEntry, error)
	GetEntry(ctx context.Context, userID, id string) (*model.TimeEntry, error)
	ListEntries(ctx context.Context, userID string, filter EntryFilter) ([]model.TimeEntry, error)
	CreateEntry(ctx context.Context, entry *model.TimeEntry) error
	UpdateEntry(ctx context.Context, entry *model.TimeEntry) error
	DeleteEntry(ctx context.Context, userID, id string) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	UserStore
	CategoryStore
	ProjectStore
	TaskStore
	EntryStore

	Migrate(ctx context.Context) error
	Close() error
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time
