// Package planner manages categories, projects and tasks for a user.
package planner

import (
	"context"
	"time"

	"github.com/Veraticus/hourglass/internal/service"
)

// Store is the persistence the planner needs.
type Store interface {
	service.CategoryStore
	service.ProjectStore
	service.TaskStore
}

// Planner implements category, project and task operations. Every call is scoped to one user.
type Planner struct {
	store Store
	now   service.Clock
}

// New creates a planner. A nil clock uses time.Now.
func New(store Store, clock service.Clock) *Planner {
	if clock == nil {
		clock = time.Now
	}
	return &Planner{store: store, now: clock}
}

func (p *Planner) checkProject(ctx context.Context, userID string, projectID *string) error {
	if projectID == nil || *projectID == "" {
		return nil
	}
	_, err := p.store.GetProject(ctx, userID, *projectID)
	return err
}
