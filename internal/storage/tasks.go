package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

const taskColumns = `t.id, t.user_id, t.project_id, t.title, t.description, t.priority, t.estimated_time,
	t.is_completed, t.scheduled_date, t.completed_at, t.created_at, t.updated_at`

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var (
		task        model.Task
		projectID   sql.NullString
		scheduled   sql.NullString
		completedAt sql.NullTime
		priority    string
	)
	if err := row.Scan(&task.ID, &task.UserID, &projectID, &task.Title, &task.Description, &priority,
		&task.EstimatedTime, &task.IsCompleted, &scheduled, &completedAt, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.Priority = model.Priority(priority)
	task.ProjectID = stringPtr(projectID)
	task.ScheduledDate = stringPtr(scheduled)
	task.CompletedAt = timePtr(completedAt)
	return &task, nil
}

// SortTasks orders tasks: incomplete first, then priority high to low, then newest first.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if a.Priority != b.Priority {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// ListTasks returns the user's tasks matching filter.
func (s *SQLiteStorage) ListTasks(ctx context.Context, userID string, filter service.TaskFilter) ([]model.Task, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where := []string{"t.user_id = ?"}
	args := []any{userID}
	if filter.ScheduledDate != nil {
		where = append(where, "t.scheduled_date = ?")
		args = append(args, *filter.ScheduledDate)
	}
	if filter.IsCompleted != nil {
		where = append(where, "t.is_completed = ?")
		args = append(args, *filter.IsCompleted)
	}
	if filter.ProjectID != nil {
		where = append(where, "t.project_id = ?")
		args = append(args, *filter.ProjectID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE `+strings.Join(where, " AND ")+` ORDER BY t.created_at DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	SortTasks(tasks)
	return tasks, nil
}

// GetTask returns a task owned by userID.
func (s *SQLiteStorage) GetTask(ctx context.Context, userID, id string) (*model.Task, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	task, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t WHERE t.id = ? AND t.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("task")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

// CreateTask creates a new task.
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *model.Task) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTask(task); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, project_id, title, description, priority, estimated_time,
			is_completed, scheduled_date, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, nullString(task.ProjectID), task.Title, task.Description, string(task.Priority),
		task.EstimatedTime, task.IsCompleted, nullString(task.ScheduledDate), nullTime(task.CompletedAt),
		utc(task.CreatedAt), utc(task.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask overwrites the mutable fields of a task.
func (s *SQLiteStorage) UpdateTask(ctx context.Context, task *model.Task) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTask(task); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET project_id = ?, title = ?, description = ?, priority = ?, estimated_time = ?,
			is_completed = ?, scheduled_date = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		nullString(task.ProjectID), task.Title, task.Description, string(task.Priority), task.EstimatedTime,
		task.IsCompleted, nullString(task.ScheduledDate), nullTime(task.CompletedAt), utc(task.UpdatedAt),
		task.ID, task.UserID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectOneRow(res, common.NotFound("task"))
}

// DeleteTask removes a task and its links to time entries.
func (s *SQLiteStorage) DeleteTask(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectOneRow(res, common.NotFound("task"))
}

// CountTasksForDate counts tasks scheduled on date and how many of them are completed.
func (s *SQLiteStorage) CountTasksForDate(ctx context.Context, userID, date string) (int, int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, 0, err
	}

	var total, completed int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0)
		FROM tasks WHERE user_id = ? AND scheduled_date = ?`, userID, date).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tasks for %s: %w", date, err)
	}
	return total, completed, nil
}
