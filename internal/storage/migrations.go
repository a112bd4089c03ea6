package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the user_version Migrate leaves the database at.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT UNIQUE NOT NULL,
					name TEXT NOT NULL,
					password_hash TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					color TEXT NOT NULL,
					icon TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_categories_user ON categories(user_id)`,

				`CREATE TABLE IF NOT EXISTS time_entries (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
					start_time DATETIME NOT NULL,
					end_time DATETIME,
					duration INTEGER NOT NULL DEFAULT 0 CHECK (duration >= 0),
					notes TEXT NOT NULL DEFAULT '',
					is_manual BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_time_entries_user_start ON time_entries(user_id, start_time)`,
				`CREATE INDEX idx_time_entries_category ON time_entries(category_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Enforce a single running timer per user",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE UNIQUE INDEX idx_time_entries_one_active
					ON time_entries(user_id) WHERE end_time IS NULL`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add projects and tasks",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS projects (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '#000000',
					status TEXT NOT NULL DEFAULT 'ACTIVE',
					deadline DATETIME,
					budget INTEGER,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_projects_user ON projects(user_id)`,

				`CREATE TABLE IF NOT EXISTS tasks (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					project_id TEXT REFERENCES projects(id) ON DELETE SET NULL,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					priority TEXT NOT NULL DEFAULT 'MEDIUM',
					estimated_time INTEGER NOT NULL DEFAULT 0,
					is_completed BOOLEAN NOT NULL DEFAULT 0,
					scheduled_date TEXT,
					completed_at DATETIME,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_tasks_user_scheduled ON tasks(user_id, scheduled_date)`,
				`CREATE INDEX idx_tasks_project ON tasks(project_id)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Link time entries to tasks",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS entry_tasks (
					entry_id TEXT NOT NULL REFERENCES time_entries(id) ON DELETE CASCADE,
					task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
					PRIMARY KEY (entry_id, task_id)
				)`,
				`CREATE INDEX idx_entry_tasks_task ON entry_tasks(task_id)`,
			})
		},
	},
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
