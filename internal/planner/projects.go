package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#000000"

// ProjectInput creates a project.
type ProjectInput struct {
	Deadline    *time.Time          `json:"deadline"`
	Budget      *int                `json:"budget" validate:"omitnil,gte=0"`
	Name        string              `json:"name" validate:"required,max=100"`
	Description string              `json:"description" validate:"max=1000"`
	Color       string              `json:"color" validate:"omitempty,hexcolor,len=7"`
	Status      model.ProjectStatus `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED ARCHIVED"`
}

// ProjectPatch changes a project. Nil fields are left unchanged.
type ProjectPatch struct {
	Deadline    *time.Time           `json:"deadline"`
	Budget      *int                 `json:"budget" validate:"omitnil,gte=0"`
	Name        *string              `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string              `json:"description" validate:"omitnil,max=1000"`
	Color       *string              `json:"color" validate:"omitnil,hexcolor,len=7"`
	Status      *model.ProjectStatus `json:"status" validate:"omitnil,oneof=ACTIVE COMPLETED ARCHIVED"`
}

// ListProjects returns the user's projects with task counts.
func (p *Planner) ListProjects(ctx context.Context, userID string) ([]model.Project, error) {
	return p.store.ListProjects(ctx, userID)
}

// GetProject returns a project with its tracked time and task progress.
func (p *Planner) GetProject(ctx context.Context, userID, id string) (*model.ProjectDetails, error) {
	return p.store.GetProjectDetails(ctx, userID, id)
}

// CreateProject adds a project.
func (p *Planner) CreateProject(ctx context.Context, userID string, in ProjectInput) (*model.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return nil, err
	}
	if in.Color == "" {
		in.Color = DefaultProjectColor
	}
	if in.Status == "" {
		in.Status = model.ProjectActive
	}

	now := p.now()
	project := &model.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Color:       strings.ToUpper(in.Color),
		Status:      in.Status,
		Deadline:    in.Deadline,
		Budget:      in.Budget,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies patch to one of the user's projects.
func (p *Planner) UpdateProject(ctx context.Context, userID, id string, patch ProjectPatch) (*model.Project, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := common.Validate(patch); err != nil {
		return nil, err
	}

	project, err := p.store.GetProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		project.Name = *patch.Name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Color != nil {
		project.Color = strings.ToUpper(*patch.Color)
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.Deadline != nil {
		project.Deadline = patch.Deadline
	}
	if patch.Budget != nil {
		project.Budget = patch.Budget
	}
	project.UpdatedAt = p.now()

	if err := p.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project; its tasks are kept without a project.
func (p *Planner) DeleteProject(ctx context.Context, userID, id string) error {
	return p.store.DeleteProject(ctx, userID, id)
}
