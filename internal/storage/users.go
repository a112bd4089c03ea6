package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
)

// CreateUser inserts the user and its starter categories in one transaction.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, name, password_hash, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Name, user.PasswordHash, utc(user.CreatedAt))
		if err != nil {
			if isConstraint(err, sqlite3.ErrConstraintUnique) {
				return common.Conflict("user already exists")
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		for i := range categories {
			categories[i].UserID = user.ID
			if err := insertCategory(ctx, tx, &categories[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("created user", "id", user.ID, "categories", len(categories))
	return nil
}

// GetUserByID returns the user with the given id.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail returns the user with the given email, compared case-insensitively.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUser(ctx, `WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStorage) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
