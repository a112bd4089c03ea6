// Package storage provides the data persistence layer for hourglass.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

// ErrNilContext is a programming error and is not reported to callers as invalid input.
var ErrNilContext = errors.New("context cannot be nil")

// Validation errors. Each wraps common.ErrValidation.
var (
	ErrEmptyString      = fmt.Errorf("%w: string parameter cannot be empty", common.ErrValidation)
	ErrNilParameter     = fmt.Errorf("%w: parameter cannot be nil", common.ErrValidation)
	ErrInvalidDateRange = fmt.Errorf("%w: start date must be before end date", common.ErrValidation)
	ErrInvalidEntry     = fmt.Errorf("%w: invalid time entry", common.ErrValidation)
	ErrInvalidTask      = fmt.Errorf("%w: invalid task", common.ErrValidation)
	ErrInvalidProject   = fmt.Errorf("%w: invalid project", common.ErrValidation)
	ErrInvalidCategory  = fmt.Errorf("%w: invalid category", common.ErrValidation)
	ErrInvalidUser      = fmt.Errorf("%w: invalid user", common.ErrValidation)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if user.ID == "" || user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("%w: id, email and password hash are required", ErrInvalidUser)
	}
	return nil
}

func validateCategory(cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if cat.ID == "" || cat.UserID == "" {
		return fmt.Errorf("%w: missing id or owner", ErrInvalidCategory)
	}
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	return nil
}

func validateProject(p *model.Project) error {
	if p == nil {
		return fmt.Errorf("%w: project", ErrNilParameter)
	}
	if p.ID == "" || p.UserID == "" {
		return fmt.Errorf("%w: missing id or owner", ErrInvalidProject)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidProject, p.Status)
	}
	return nil
}

func validateTask(task *model.Task) error {
	if task == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	if task.ID == "" || task.UserID == "" {
		return fmt.Errorf("%w: missing id or owner", ErrInvalidTask)
	}
	if !task.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", ErrInvalidTask, task.Priority)
	}
	return nil
}

// validateEntry checks the record-level invariants of a time entry.
func validateEntry(entry *model.TimeEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if entry.ID == "" || entry.UserID == "" || entry.CategoryID == "" {
		return fmt.Errorf("%w: missing id, owner or category", ErrInvalidEntry)
	}
	if entry.StartTime.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidEntry)
	}
	if entry.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidEntry)
	}
	if entry.EndTime != nil && entry.EndTime.Before(entry.StartTime) {
		return fmt.Errorf("%w: end time before start time", ErrInvalidEntry)
	}
	if entry.EndTime == nil && entry.Duration != 0 {
		return fmt.Errorf("%w: running entry must have zero duration", ErrInvalidEntry)
	}
	return nil
}
