package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

const categoryColumns = `id, user_id, name, color, icon, created_at`

func scanCategory(row interface{ Scan(...any) error }, cat *model.Category) error {
	return row.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.Icon, &cat.CreatedAt)
}

// ListCategories returns the user's categories, oldest first.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = ?
		ORDER BY created_at, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var cat model.Category
		if err := scanCategory(rows, &cat); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user_id", userID, "count", len(categories))
	return categories, nil
}

// GetCategory returns a category owned by userID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, userID, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategory(ctx, s.db, `WHERE id = ? AND user_id = ?`, id, userID)
}

// GetCategoryByName returns the user's category with the given name, ignoring case.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getCategory(ctx, s.db, `WHERE user_id = ? AND name = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`, userID, name)
}

func getCategory(ctx context.Context, q queryer, where string, args ...any) (*model.Category, error) {
	var cat model.Category
	err := scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories `+where, args...), &cat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("category")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &cat, nil
}

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := insertCategory(ctx, s.db, category); err != nil {
		return err
	}
	slog.Info("created new category", "name", category.Name, "id", category.ID)
	return nil
}

func insertCategory(ctx context.Context, q queryer, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, category.Color, category.Icon, utc(category.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory updates name, color and icon of a category owned by category.UserID.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ?
		WHERE id = ? AND user_id = ?`,
		category.Name, category.Color, category.Icon, category.ID, category.UserID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return expectOneRow(res, common.NotFound("category"))
}

// DeleteCategory removes a category. Categories that still have time entries cannot be deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var inUse bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM time_entries WHERE category_id = ? AND user_id = ?)`,
			id, userID).Scan(&inUse); err != nil {
			return fmt.Errorf("failed to check category entries: %w", err)
		}
		if inUse {
			return common.Conflict("category has time entries")
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return common.Conflict("category has time entries")
			}
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return expectOneRow(res, common.NotFound("category"))
	})
	if err != nil {
		return err
	}

	slog.Info("deleted category", "id", id)
	return nil
}
