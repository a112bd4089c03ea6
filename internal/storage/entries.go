package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
)

const entrySelect = `
	SELECT e.id, e.user_id, e.category_id, e.start_time, e.end_time, e.duration, e.notes, e.is_manual,
		e.created_at, e.updated_at,
		c.id, c.user_id, c.name, c.color, c.icon, c.created_at
	FROM time_entries e
	JOIN categories c ON c.id = e.category_id`

func scanEntry(row interface{ Scan(...any) error }) (*model.TimeEntry, error) {
	var (
		entry model.TimeEntry
		cat   model.Category
		end   sql.NullTime
	)
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.CategoryID, &entry.StartTime, &end, &entry.Duration,
		&entry.Notes, &entry.IsManual, &entry.CreatedAt, &entry.UpdatedAt,
		&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.Icon, &cat.CreatedAt); err != nil {
		return nil, err
	}
	entry.EndTime = timePtr(end)
	entry.Category = &cat
	entry.Tasks = []model.Task{}
	return &entry, nil
}

// StartEntry inserts a running entry. It fails with a conflict when the user
// already has one; the partial unique index backs the check under concurrency.
func (s *SQLiteStorage) StartEntry(ctx context.Context, entry *model.TimeEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}
	if entry.EndTime != nil {
		return fmt.Errorf("%w: running entry cannot have an end time", ErrInvalidEntry)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var openID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM time_entries WHERE user_id = ? AND end_time IS NULL`, entry.UserID,
		).Scan(&openID)
		switch {
		case err == nil:
			return common.Conflict("a timer is already running")
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check running timer: %w", err)
		}

		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		return linkTasks(ctx, tx, entry.ID, entry.UserID, entry.TaskIDs())
	})
	if err != nil {
		return err
	}

	slog.Debug("started timer", "user_id", entry.UserID, "entry_id", entry.ID)
	return nil
}

// CloseActiveEntry ends the running entry entryID. notes replaces the stored notes when non-nil.
func (s *SQLiteStorage) CloseActiveEntry(ctx context.Context, userID, entryID string, end time.Time, duration int64, notes *string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidEntry)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE time_entries
		SET end_time = ?, duration = ?, notes = COALESCE(?, notes), updated_at = ?
		WHERE id = ? AND user_id = ? AND end_time IS NULL`,
		utc(end), duration, nullString(notes), utc(end), entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to stop timer: %w", err)
	}
	return expectOneRow(res, common.NotFound("active timer"))
}

// DeleteActiveEntry removes the user's running entry.
func (s *SQLiteStorage) DeleteActiveEntry(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM time_entries WHERE user_id = ? AND end_time IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("failed to abandon timer: %w", err)
	}
	return expectOneRow(res, common.NotFound("active timer"))
}

// GetActiveEntry returns the user's running entry or a not-found error.
func (s *SQLiteStorage) GetActiveEntry(ctx context.Context, userID string) (*model.TimeEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getEntry(ctx, `WHERE e.user_id = ? AND e.end_time IS NULL`, common.NotFound("active timer"), userID)
}

// GetEntry returns an entry owned by userID.
func (s *SQLiteStorage) GetEntry(ctx context.Context, userID, id string) (*model.TimeEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getEntry(ctx, `WHERE e.id = ? AND e.user_id = ?`, common.NotFound("time entry"), id, userID)
}

func (s *SQLiteStorage) getEntry(ctx context.Context, where string, notFound error, args ...any) (*model.TimeEntry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, entrySelect+" "+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query time entry: %w", err)
	}

	if err := s.attachTasks(ctx, []*model.TimeEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns the user's entries matching filter, newest first.
func (s *SQLiteStorage) ListEntries(ctx context.Context, userID string, filter service.EntryFilter) ([]model.TimeEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidDateRange
	}

	where := []string{"e.user_id = ?"}
	args := []any{userID}
	if filter.StartDate != nil {
		where = append(where, "e.start_time >= ?")
		args = append(args, utc(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "e.start_time <= ?")
		args = append(args, utc(*filter.EndDate))
	}
	if filter.CategoryID != "" {
		where = append(where, "e.category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.CompletedOnly {
		where = append(where, "e.end_time IS NOT NULL")
	}

	rows, err := s.db.QueryContext(ctx,
		entrySelect+` WHERE `+strings.Join(where, " AND ")+` ORDER BY e.start_time DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var ptrs []*model.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		ptrs = append(ptrs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}
	// Release the connection before loading tasks; the pool holds only one.
	rows.Close()

	if err := s.attachTasks(ctx, ptrs); err != nil {
		return nil, err
	}

	entries := make([]model.TimeEntry, 0, len(ptrs))
	for _, e := range ptrs {
		entries = append(entries, *e)
	}
	return entries, nil
}

// attachTasks loads linked tasks for the given entries in one query.
func (s *SQLiteStorage) attachTasks(ctx context.Context, entries []*model.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[string]*model.TimeEntry, len(entries))
	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		placeholders = append(placeholders, "?")
		args = append(args, e.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT et.entry_id, `+taskColumns+`
		FROM entry_tasks et
		JOIN tasks t ON t.id = et.task_id
		WHERE et.entry_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY t.created_at`, args...)
	if err != nil {
		return fmt.Errorf("failed to query entry tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID string
		task, err := scanTask(prefixScanner{row: rows, prefix: []any{&entryID}})
		if err != nil {
			return fmt.Errorf("failed to scan entry task: %w", err)
		}
		if e, ok := byID[entryID]; ok {
			e.Tasks = append(e.Tasks, *task)
		}
	}
	return rows.Err()
}

// prefixScanner lets scanTask read rows that carry extra leading columns.
type prefixScanner struct {
	row    interface{ Scan(...any) error }
	prefix []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.row.Scan(append(append([]any{}, p.prefix...), dest...)...)
}

// CreateEntry inserts a finished entry, typically a manual one.
func (s *SQLiteStorage) CreateEntry(ctx context.Context, entry *model.TimeEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		return linkTasks(ctx, tx, entry.ID, entry.UserID, entry.TaskIDs())
	})
}

// UpdateEntry overwrites the entry and replaces its task links with entry.Tasks.
func (s *SQLiteStorage) UpdateEntry(ctx context.Context, entry *model.TimeEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE time_entries
			SET category_id = ?, start_time = ?, end_time = ?, duration = ?, notes = ?, is_manual = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			entry.CategoryID, utc(entry.StartTime), nullTime(entry.EndTime), entry.Duration, entry.Notes,
			entry.IsManual, utc(entry.UpdatedAt), entry.ID, entry.UserID)
		if err != nil {
			return mapEntryWriteError(err)
		}
		if err := expectOneRow(res, common.NotFound("time entry")); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tasks WHERE entry_id = ?`, entry.ID); err != nil {
			return fmt.Errorf("failed to clear entry tasks: %w", err)
		}
		return linkTasks(ctx, tx, entry.ID, entry.UserID, entry.TaskIDs())
	})
}

// DeleteEntry removes an entry and its task links.
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, userID, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	return expectOneRow(res, common.NotFound("time entry"))
}

func insertEntry(ctx context.Context, q queryer, entry *model.TimeEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO time_entries (id, user_id, category_id, start_time, end_time, duration, notes, is_manual, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.CategoryID, utc(entry.StartTime), nullTime(entry.EndTime),
		entry.Duration, entry.Notes, entry.IsManual, utc(entry.CreatedAt), utc(entry.UpdatedAt))
	if err != nil {
		return mapEntryWriteError(err)
	}
	return nil
}

func mapEntryWriteError(err error) error {
	switch {
	case isConstraint(err, sqlite3.ErrConstraintUnique):
		return common.Conflict("a timer is already running")
	case isForeignKeyViolation(err):
		return common.NotFound("category")
	case isConstraint(err, sqlite3.ErrConstraintCheck):
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	default:
		return fmt.Errorf("failed to write time entry: %w", err)
	}
}

// linkTasks links the user's tasks to an entry. Ids of foreign or missing tasks are rejected.
func linkTasks(ctx context.Context, q queryer, entryID, userID string, taskIDs []string) error {
	for _, taskID := range taskIDs {
		res, err := q.ExecContext(ctx, `
			INSERT OR IGNORE INTO entry_tasks (entry_id, task_id)
			SELECT ?, id FROM tasks WHERE id = ? AND user_id = ?`, entryID, taskID, userID)
		if err != nil {
			return fmt.Errorf("failed to link task %s: %w", taskID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 && !linkExists(ctx, q, entryID, taskID) {
			return common.NotFound("task")
		}
	}
	return nil
}

func linkExists(ctx context.Context, q queryer, entryID, taskID string) bool {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM entry_tasks WHERE entry_id = ? AND task_id = ?`, entryID, taskID).Scan(&one)
	return err == nil
}
