package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/model"
	"github.com/Veraticus/hourglass/internal/service"
	"github.com/Veraticus/hourglass/internal/testutil"
)

func setup(t *testing.T) (*Planner, *testutil.TestDB, *testutil.Clock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(db.Storage, clock.Now), db, clock
}

func ptr[T any](v T) *T { return &v }

func TestCategories(t *testing.T) {
	p, db, _ := setup(t)
	ctx := context.Background()

	cat, err := p.CreateCategory(ctx, db.User.ID, CategoryInput{Name: " Music ", Color: "#aabbcc", Icon: "Music"})
	require.NoError(t, err)
	assert.Equal(t, "Music", cat.Name)
	assert.Equal(t, "#AABBCC", cat.Color)

	cats, err := p.ListCategories(ctx, db.User.ID)
	require.NoError(t, err)
	assert.Len(t, cats, 5)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Music")

	_, err = p.CreateCategory(ctx, db.User.ID, CategoryInput{Name: "Bad", Color: "blue", Icon: "x"})
	assert.ErrorIs(t, err, common.ErrValidation)

	updated, err := p.UpdateCategory(ctx, db.User.ID, cat.ID, CategoryPatch{Icon: ptr("Guitar")})
	require.NoError(t, err)
	assert.Equal(t, "Guitar", updated.Icon)
	assert.Equal(t, "Music", updated.Name)

	_, err = p.UpdateCategory(ctx, db.User.ID, cat.ID, CategoryPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrValidation)

	other := db.CreateUser("other@example.com")
	_, err = p.UpdateCategory(ctx, other.ID, cat.ID, CategoryPatch{Icon: ptr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, p.DeleteCategory(ctx, db.User.ID, cat.ID))

	db.Seed(db.User.ID).Entry("Work", time.Now().Add(-time.Hour), time.Minute)
	err = p.DeleteCategory(ctx, db.User.ID, db.MustCategory("Work").ID)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestProjects(t *testing.T) {
	p, db, clock := setup(t)
	ctx := context.Background()

	project, err := p.CreateProject(ctx, db.User.ID, ProjectInput{Name: "Garden"})
	require.NoError(t, err)
	assert.Equal(t, DefaultProjectColor, project.Color)
	assert.Equal(t, model.ProjectActive, project.Status)

	_, err = p.CreateProject(ctx, db.User.ID, ProjectInput{Name: "Broke", Budget: ptr(-1)})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = p.CreateProject(ctx, db.User.ID, ProjectInput{Name: "Odd", Status: "PAUSED"})
	assert.ErrorIs(t, err, common.ErrValidation)

	clock.Advance(time.Hour)
	archived := model.ProjectArchived
	updated, err := p.UpdateProject(ctx, db.User.ID, project.ID, ProjectPatch{Status: &archived, Budget: ptr(120)})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectArchived, updated.Status)
	assert.Equal(t, 120, *updated.Budget)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "dig", ProjectID: &project.ID, IsCompleted: true})
	require.NoError(t, err)
	_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "plant", ProjectID: &project.ID})
	require.NoError(t, err)

	details, err := p.GetProject(ctx, db.User.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, details.TotalTasks)
	assert.Equal(t, 50, details.Progress)

	require.NoError(t, p.DeleteProject(ctx, db.User.ID, project.ID))
	_, err = p.GetProject(ctx, db.User.ID, project.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTasks(t *testing.T) {
	p, db, clock := setup(t)
	ctx := context.Background()

	task, err := p.CreateTask(ctx, db.User.ID, TaskInput{Title: "read", ScheduledDate: ptr("2024-03-01"), EstimatedTime: 30})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Nil(t, task.CompletedAt)

	t.Run("invalid input", func(t *testing.T) {
		_, err := p.CreateTask(ctx, db.User.ID, TaskInput{Title: " "})
		assert.ErrorIs(t, err, common.ErrValidation)
		_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "x", ScheduledDate: ptr("03/01/2024")})
		assert.ErrorIs(t, err, common.ErrValidation)
		_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "x", EstimatedTime: -5})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("foreign project", func(t *testing.T) {
		other := db.CreateUser("owner@example.com")
		theirs, err := p.CreateProject(ctx, other.ID, ProjectInput{Name: "theirs"})
		require.NoError(t, err)
		_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "sneaky", ProjectID: &theirs.ID})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("completion stamps and clears completedAt", func(t *testing.T) {
		clock.Advance(time.Hour)
		done, err := p.UpdateTask(ctx, db.User.ID, task.ID, TaskPatch{IsCompleted: ptr(true)})
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)
		assert.Equal(t, clock.Now(), *done.CompletedAt)

		reopened, err := p.UpdateTask(ctx, db.User.ID, task.ID, TaskPatch{IsCompleted: ptr(false)})
		require.NoError(t, err)
		assert.Nil(t, reopened.CompletedAt)
	})

	t.Run("clear scheduled date", func(t *testing.T) {
		cleared, err := p.UpdateTask(ctx, db.User.ID, task.ID, TaskPatch{ScheduledDate: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, cleared.ScheduledDate)
	})

	t.Run("ordering", func(t *testing.T) {
		_, err := p.CreateTask(ctx, db.User.ID, TaskInput{Title: "urgent", Priority: model.PriorityHigh})
		require.NoError(t, err)
		_, err = p.CreateTask(ctx, db.User.ID, TaskInput{Title: "finished", Priority: model.PriorityHigh, IsCompleted: true})
		require.NoError(t, err)

		tasks, err := p.ListTasks(ctx, db.User.ID, service.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "urgent", tasks[0].Title)
		assert.Equal(t, "read", tasks[1].Title)
		assert.Equal(t, "finished", tasks[2].Title)
	})

	t.Run("bad filter date", func(t *testing.T) {
		_, err := p.ListTasks(ctx, db.User.ID, service.TaskFilter{ScheduledDate: ptr("tomorrow")})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	require.NoError(t, p.DeleteTask(ctx, db.User.ID, task.ID))
	assert.ErrorIs(t, p.DeleteTask(ctx, db.User.ID, task.ID), common.ErrNotFound)
}
