package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

const projectSelect = `
	SELECT p.id, p.user_id, p.name, p.description, p.color, p.status, p.deadline, p.budget,
		p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count
	FROM projects p`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var (
		p        model.Project
		deadline sql.NullTime
		budget   sql.NullInt64
		status   string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Color, &status, &deadline, &budget,
		&p.CreatedAt, &p.UpdatedAt, &p.TaskCount); err != nil {
		return nil, err
	}
	p.Status = model.ProjectStatus(status)
	p.Deadline = timePtr(deadline)
	p.Budget = intPtr(budget)
	return &p, nil
}

// ListProjects returns the user's projects, newest first, with task counts.
func (s *SQLiteStorage) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, projectSelect+` WHERE p.user_id = ? ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project owned by userID.
func (s *SQLiteStorage) GetProject(ctx context.Context, userID, id string) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	p, err := scanProject(s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = ? AND p.user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("project")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return p, nil
}

// GetProjectDetails returns the project with tracked time and task progress.
func (s *SQLiteStorage) GetProjectDetails(ctx context.Context, userID, id string) (*model.ProjectDetails, error) {
	p, err := s.GetProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	details := &model.ProjectDetails{Project: *p}

	// Entries linked to several tasks of the same project count once.
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(e.duration), 0)
		FROM time_entries e
		WHERE e.user_id = ? AND e.id IN (
			SELECT et.entry_id FROM entry_tasks et
			JOIN tasks t ON t.id = et.task_id
			WHERE t.project_id = ?
		)`, userID, id).Scan(&details.TotalDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to sum project duration: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0)
		FROM tasks WHERE project_id = ?`, id).Scan(&details.TotalTasks, &details.CompletedTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to count project tasks: %w", err)
	}

	if details.TotalTasks > 0 {
		details.Progress = int(math.Round(float64(details.CompletedTasks) / float64(details.TotalTasks) * 100))
	}
	return details, nil
}

// CreateProject creates a new project.
func (s *SQLiteStorage) CreateProject(ctx context.Context, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProject(project); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, description, color, status, deadline, budget, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.UserID, project.Name, project.Description, project.Color, string(project.Status),
		nullTime(project.Deadline), nullInt(project.Budget), utc(project.CreatedAt), utc(project.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// UpdateProject overwrites the mutable fields of a project.
func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProject(project); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, description = ?, color = ?, status = ?, deadline = ?, budget = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		project.Name, project.Description, project.Color, string(project.Status),
		nullTime(project.Deadline), nullInt(project.Budget), utc(project.UpdatedAt),
		project.ID, project.UserID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return expectOneRow(res, common.NotFound("project"))
}

// DeleteProject removes a project; its tasks stay and lose the project link.
func (s *SQLiteStorage) DeleteProject(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectOneRow(res, common.NotFound("project"))
}
