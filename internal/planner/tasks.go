package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

// TaskInput creates a task.
type TaskInput struct {
	ProjectID     *string        `json:"projectId"`
	ScheduledDate *string        `json:"scheduledDate"`
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description" validate:"max=2000"`
	Priority      model.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	EstimatedTime int            `json:"estimatedTime" validate:"gte=0"`
	IsCompleted   bool           `json:"isCompleted"`
}

// TaskPatch changes a task. Nil fields are left unchanged; an empty
// ProjectID or ScheduledDate clears the value.
type TaskPatch struct {
	ProjectID     *string         `json:"projectId"`
	ScheduledDate *string         `json:"scheduledDate"`
	Title         *string         `json:"title" validate:"omitnil,min=1,max=200"`
	Description   *string         `json:"description" validate:"omitnil,max=2000"`
	Priority      *model.Priority `json:"priority" validate:"omitnil,oneof=LOW MEDIUM HIGH"`
	EstimatedTime *int            `json:"estimatedTime" validate:"omitnil,gte=0"`
	IsCompleted   *bool           `json:"isCompleted"`
}

func validateScheduledDate(v *common.ValidationError, date *string) {
	if date == nil || *date == "" {
		return
	}
	if _, err := time.Parse(model.DateLayout, *date); err != nil {
		v.Add("scheduledDate", "must be formatted as YYYY-MM-DD")
	}
}

// validateTask runs struct tags and the checks tags cannot express.
func validateTask(in any, date *string) error {
	if err := common.Validate(in); err != nil {
		return err
	}
	v := &common.ValidationError{}
	validateScheduledDate(v, date)
	return v.OrNil()
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// ListTasks returns the user's tasks: incomplete first, then by priority, then newest.
func (p *Planner) ListTasks(ctx context.Context, userID string, filter service.TaskFilter) ([]model.Task, error) {
	if filter.ScheduledDate != nil {
		v := &common.ValidationError{}
		validateScheduledDate(v, filter.ScheduledDate)
		if err := v.OrNil(); err != nil {
			return nil, err
		}
	}
	return p.store.ListTasks(ctx, userID, filter)
}

// GetTask returns one of the user's tasks.
func (p *Planner) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	return p.store.GetTask(ctx, userID, id)
}

// CreateTask adds a task, optionally inside one of the user's projects.
func (p *Planner) CreateTask(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateTask(in, in.ScheduledDate); err != nil {
		return nil, err
	}
	in.ProjectID = emptyToNil(in.ProjectID)
	if err := p.checkProject(ctx, userID, in.ProjectID); err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	now := p.now()
	task := &model.Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		ProjectID:     in.ProjectID,
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		EstimatedTime: in.EstimatedTime,
		ScheduledDate: emptyToNil(in.ScheduledDate),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	setCompleted(task, in.IsCompleted, now)

	if err := p.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies patch to one of the user's tasks.
func (p *Planner) UpdateTask(ctx context.Context, userID, id string, patch TaskPatch) (*model.Task, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if err := validateTask(patch, patch.ScheduledDate); err != nil {
		return nil, err
	}

	task, err := p.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if patch.ProjectID != nil {
		if err := p.checkProject(ctx, userID, patch.ProjectID); err != nil {
			return nil, err
		}
		task.ProjectID = emptyToNil(patch.ProjectID)
	}
	if patch.ScheduledDate != nil {
		task.ScheduledDate = emptyToNil(patch.ScheduledDate)
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.EstimatedTime != nil {
		task.EstimatedTime = *patch.EstimatedTime
	}

	now := p.now()
	if patch.IsCompleted != nil {
		setCompleted(task, *patch.IsCompleted, now)
	}
	task.UpdatedAt = now

	if err := p.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and its links to time entries.
func (p *Planner) DeleteTask(ctx context.Context, userID, id string) error {
	return p.store.DeleteTask(ctx, userID, id)
}

// setCompleted stamps completedAt when a task becomes done and clears it when reopened.
func setCompleted(task *model.Task, completed bool, now time.Time) {
	switch {
	case completed && !task.IsCompleted:
		task.CompletedAt = &now
	case !completed:
		task.CompletedAt = nil
	}
	task.IsCompleted = completed
}
