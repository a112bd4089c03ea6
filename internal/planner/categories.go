package planner

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

// CategoryInput creates a category.
type CategoryInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Icon  string `json:"icon" validate:"required,max=50"`
}

// CategoryPatch changes a category. Nil fields are left unchanged.
type CategoryPatch struct {
	Name  *string `json:"name" validate:"omitnil,min=1,max=50"`
	Color *string `json:"color" validate:"omitnil,hexcolor,len=7"`
	Icon  *string `json:"icon" validate:"omitnil,min=1,max=50"`
}

// ListCategories returns the user's categories, oldest first.
func (p *Planner) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	return p.store.ListCategories(ctx, userID)
}

// CreateCategory adds a category.
func (p *Planner) CreateCategory(ctx context.Context, userID string, in CategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	cat := &model.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Color:     strings.ToUpper(in.Color),
		Icon:      in.Icon,
		CreatedAt: p.now(),
	}
	if err := p.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// UpdateCategory applies patch to one of the user's categories.
func (p *Planner) UpdateCategory(ctx context.Context, userID, id string, patch CategoryPatch) (*model.Category, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := common.Validate(patch); err != nil {
		return nil, err
	}

	cat, err := p.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		cat.Name = *patch.Name
	}
	if patch.Color != nil {
		cat.Color = strings.ToUpper(*patch.Color)
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}

	if err := p.store.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category. Categories with time entries cannot be deleted.
func (p *Planner) DeleteCategory(ctx context.Context, userID, id string) error {
	return p.store.DeleteCategory(ctx, userID, id)
}
