package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/model"
)

// Seeder adds completed time entries and tasks for one user.
//
// Example:
//
//	db.Seed(db.User.ID).
//		Entry("Work", day.Add(9*time.Hour), time.Hour).
//		Entry("Reading", day.Add(20*time.Hour), 30*time.Minute).
//		Task("2024-03-01", true)
type Seeder struct {
	db     *TestDB
	t      *testing.T
	userID string
}

// Seed starts seeding data owned by userID.
func (db *TestDB) Seed(userID string) *Seeder {
	return &Seeder{db: db, t: db.t, userID: userID}
}

// Entry stores a completed entry of length d in the named category.
func (s *Seeder) Entry(category string, start time.Time, d time.Duration) *Seeder {
	s.t.Helper()
	s.EntryReturning(category, start, d)
	return s
}

// EntryReturning stores a completed entry and returns it.
func (s *Seeder) EntryReturning(category string, start time.Time, d time.Duration) *model.TimeEntry {
	s.t.Helper()

	cat := s.db.MustCategoryFor(s.userID, category)
	end := start.Add(d)
	entry := &model.TimeEntry{
		ID:         uuid.NewString(),
		UserID:     s.userID,
		CategoryID: cat.ID,
		StartTime:  start,
		EndTime:    &end,
		Duration:   model.ElapsedSeconds(start, end),
		IsManual:   true,
		CreatedAt:  start,
		UpdatedAt:  end,
	}
	if err := s.db.Storage.CreateEntry(context.Background(), entry); err != nil {
		s.t.Fatalf("failed to seed entry: %v", err)
	}
	return entry
}

// Task stores a task scheduled on date.
func (s *Seeder) Task(date string, completed bool) *Seeder {
	s.t.Helper()
	s.TaskReturning("task", date, completed)
	return s
}

// TaskReturning stores a task scheduled on date (empty for none) and returns it.
func (s *Seeder) TaskReturning(title, date string, completed bool) *model.Task {
	s.t.Helper()

	now := time.Now().UTC()
	task := &model.Task{
		ID:          uuid.NewString(),
		UserID:      s.userID,
		Title:       title,
		Priority:    model.PriorityMedium,
		IsCompleted: completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if date != "" {
		task.ScheduledDate = &date
	}
	if completed {
		task.CompletedAt = &now
	}
	if err := s.db.Storage.CreateTask(context.Background(), task); err != nil {
		s.t.Fatalf("failed to seed task: %v", err)
	}
	return task
}
