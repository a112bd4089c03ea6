// Package testutil provides test utilities for hourglass: isolated SQLite
// databases seeded with a user, and a fluent builder for time entries and tasks.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/storage"
)

// TestDB is a migrated database with one seeded user.
type TestDB struct {
	Storage *storage.SQLiteStorage
	User    *model.User
	t       *testing.T
}

// SetupTestDB creates a migrated database in a temp directory and seeds a
// user with the default categories. Cleanup is registered on t.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	work := db.MustCategory("Work")
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "hourglass.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	db.User = db.CreateUser("tester@example.com")
	return db
}

// CreateUser seeds another user with the default categories.
func (db *TestDB) CreateUser(email string) *model.User {
	db.t.Helper()

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now().UTC(),
	}

	cats := model.DefaultCategories()
	for i := range cats {
		cats[i].ID = uuid.NewString()
		cats[i].CreatedAt = user.CreatedAt.Add(time.Duration(i) * time.Millisecond)
	}

	if err := db.Storage.CreateUser(context.Background(), user, cats); err != nil {
		db.t.Fatalf("failed to seed user %q: %v", email, err)
	}
	return user
}

// MustCategory returns the seeded user's category called name or fails the test.
func (db *TestDB) MustCategory(name string) model.Category {
	db.t.Helper()
	return db.MustCategoryFor(db.User.ID, name)
}

// MustCategoryFor returns userID's category called name or fails the test.
func (db *TestDB) MustCategoryFor(userID, name string) model.Category {
	db.t.Helper()

	cat, err := db.Storage.GetCategoryByName(context.Background(), userID, name)
	if err != nil {
		db.t.Fatalf("category %q not found: %v", name, err)
	}
	return *cat
}

// FixedClock returns a clock that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// Clock is an adjustable clock for tests that need time to move.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now reports the current fake time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
