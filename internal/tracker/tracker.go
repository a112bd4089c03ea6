// Package tracker drives time entries: the running timer and manual logs.
// At most one entry per user is open at any time.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

// Store is the persistence the tracker needs.
type Store interface {
	service.EntryStore
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
	GetTask(ctx context.Context, userID, id string) (*model.Task, error)
}

// StartInput selects what a new timer tracks.
type StartInput struct {
	CategoryID string
	TaskIDs    []string
}

// ManualInput describes a finished entry logged after the fact.
type ManualInput struct {
	EndTime    *time.Time
	IsManual   *bool
	StartTime  time.Time
	CategoryID string
	Notes      string
	TaskIDs    []string
}

// Patch holds optional changes to an entry. Nil fields are left unchanged.
type Patch struct {
	CategoryID *string
	StartTime  *time.Time
	EndTime    *time.Time
	Notes      *string
	IsManual   *bool
	TaskIDs    []string // nil keeps the current links, empty clears them
}

// Tracker implements timer and entry operations scoped to one user per call.
type Tracker struct {
	store Store
	now   service.Clock
}

// New creates a tracker. A nil clock uses time.Now.
func New(store Store, clock service.Clock) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	return &Tracker{store: store, now: clock}
}

// Start opens a timer for the category. It fails with a conflict when one is already running.
func (t *Tracker) Start(ctx context.Context, userID string, in StartInput) (*model.TimeEntry, error) {
	if in.CategoryID == "" {
		return nil, common.NewValidationError("categoryId", "is required")
	}

	cat, err := t.store.GetCategory(ctx, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tasks, err := t.resolveTasks(ctx, userID, in.TaskIDs)
	if err != nil {
		return nil, err
	}

	now := t.now()
	entry := &model.TimeEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: cat.ID,
		Category:   cat,
		StartTime:  now,
		Tasks:      tasks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.store.StartEntry(ctx, entry); err != nil {
		return nil, err
	}

	common.LogInfo(ctx, "timer started", common.Fields{"user_id": userID, "entry_id": entry.ID, "category": cat.Name})
	return entry, nil
}

// Stop closes the running timer. notes replaces the entry's notes when non-nil.
func (t *Tracker) Stop(ctx context.Context, userID string, notes *string) (*model.TimeEntry, error) {
	active, err := t.store.GetActiveEntry(ctx, userID)
	if err != nil {
		return nil, err
	}

	end := t.now()
	duration := model.ElapsedSeconds(active.StartTime, end)
	if err := t.store.CloseActiveEntry(ctx, userID, active.ID, end, duration, notes); err != nil {
		return nil, err
	}

	common.LogInfo(ctx, "timer stopped", common.Fields{"user_id": userID, "entry_id": active.ID, "duration": duration})
	return t.store.GetEntry(ctx, userID, active.ID)
}

// Abandon discards the running timer without recording it.
func (t *Tracker) Abandon(ctx context.Context, userID string) error {
	if err := t.store.DeleteActiveEntry(ctx, userID); err != nil {
		return err
	}
	common.LogInfo(ctx, "timer abandoned", common.Fields{"user_id": userID})
	return nil
}

// Active returns the running timer, or nil when none is running.
func (t *Tracker) Active(ctx context.Context, userID string) (*model.TimeEntry, error) {
	entry, err := t.store.GetActiveEntry(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// CreateManual logs a finished entry. The end time is required and may not precede the start.
func (t *Tracker) CreateManual(ctx context.Context, userID string, in ManualInput) (*model.TimeEntry, error) {
	v := &common.ValidationError{}
	if in.CategoryID == "" {
		v.Add("categoryId", "is required")
	}
	if in.StartTime.IsZero() {
		v.Add("startTime", "is required")
	}
	if in.EndTime == nil {
		v.Add("endTime", "is required")
	} else if in.EndTime.Before(in.StartTime) {
		v.Add("endTime", "must not be before startTime")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	cat, err := t.store.GetCategory(ctx, userID, in.CategoryID)
	if err != nil {
		return nil, err
	}
	tasks, err := t.resolveTasks(ctx, userID, in.TaskIDs)
	if err != nil {
		return nil, err
	}

	isManual := true
	if in.IsManual != nil {
		isManual = *in.IsManual
	}

	now := t.now()
	end := *in.EndTime
	entry := &model.TimeEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: cat.ID,
		Category:   cat,
		StartTime:  in.StartTime,
		EndTime:    &end,
		Duration:   model.ElapsedSeconds(in.StartTime, end),
		Notes:      in.Notes,
		IsManual:   isManual,
		Tasks:      tasks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies patch to one of the user's entries. Setting an end time on the
// running entry closes it; durations are recomputed whenever the entry has an end.
func (t *Tracker) Update(ctx context.Context, userID, entryID string, patch Patch) (*model.TimeEntry, error) {
	entry, err := t.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if patch.CategoryID != nil && *patch.CategoryID != entry.CategoryID {
		cat, err := t.store.GetCategory(ctx, userID, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		entry.CategoryID = cat.ID
		entry.Category = cat
	}
	if patch.StartTime != nil {
		entry.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		end := *patch.EndTime
		entry.EndTime = &end
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}
	if patch.IsManual != nil {
		entry.IsManual = *patch.IsManual
	}
	if patch.TaskIDs != nil {
		tasks, err := t.resolveTasks(ctx, userID, patch.TaskIDs)
		if err != nil {
			return nil, err
		}
		entry.Tasks = tasks
	}

	if entry.EndTime != nil {
		if entry.EndTime.Before(entry.StartTime) {
			return nil, common.NewValidationError("endTime", "must not be before startTime")
		}
		entry.Duration = model.ElapsedSeconds(entry.StartTime, *entry.EndTime)
	}
	entry.UpdatedAt = t.now()

	if err := t.store.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes one of the user's entries.
func (t *Tracker) Delete(ctx context.Context, userID, entryID string) error {
	return t.store.DeleteEntry(ctx, userID, entryID)
}

// Get returns one of the user's entries.
func (t *Tracker) Get(ctx context.Context, userID, entryID string) (*model.TimeEntry, error) {
	return t.store.GetEntry(ctx, userID, entryID)
}

// List returns the user's entries matching filter, newest first.
func (t *Tracker) List(ctx context.Context, userID string, filter service.EntryFilter) ([]model.TimeEntry, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, common.NewValidationError("endDate", "must not be before startDate")
	}
	return t.store.ListEntries(ctx, userID, filter)
}

func (t *Tracker) resolveTasks(ctx context.Context, userID string, ids []string) ([]model.Task, error) {
	tasks := make([]model.Task, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		task, err := t.store.GetTask(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}
