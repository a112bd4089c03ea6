package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/hourglass/internal/common"
	"github.com/Veraticus/hourglass/internal/service"
	"github.com/Veraticus/hourglass/internal/testutil"
)

func setup(t *testing.T) (*Tracker, *testutil.TestDB, *testutil.Clock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := testutil.NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(db.Storage, clock.Now), db, clock
}

func TestStartStop(t *testing.T) {
	tr, db, clock := setup(t)
	ctx := context.Background()
	work := db.MustCategory("Work")

	entry, err := tr.Start(ctx, db.User.ID, StartInput{CategoryID: work.ID})
	require.NoError(t, err)
	assert.Nil(t, entry.EndTime)
	assert.Equal(t, int64(0), entry.Duration)
	assert.False(t, entry.IsManual)

	_, err = tr.Start(ctx, db.User.ID, StartInput{CategoryID: work.ID})
	assert.ErrorIs(t, err, common.ErrConflict)

	clock.Advance(25*time.Minute + 900*time.Millisecond)
	notes := "deep work"
	stopped, err := tr.Stop(ctx, db.User.ID, &notes)
	require.NoError(t, err)
	require.NotNil(t, stopped.EndTime)
	assert.Equal(t, int64(25*60), stopped.Duration, "duration is floored to whole seconds")
	assert.Equal(t, "deep work", stopped.Notes)
	assert.Equal(t, "Work", stopped.Category.Name)

	_, err = tr.Stop(ctx, db.User.ID, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// A new timer can start once the previous one is closed.
	_, err = tr.Start(ctx, db.User.ID, StartInput{CategoryID: work.ID})
	require.NoError(t, err)
}

func TestStart_Validation(t *testing.T) {
	tr, db, _ := setup(t)
	ctx := context.Background()
	other := db.CreateUser("someone@example.com")
	foreign := db.MustCategoryFor(other.ID, "Work")

	tests := []struct {
		name    string
		in      StartInput
		wantErr error
	}{
		{name: "missing category", in: StartInput{}, wantErr: common.ErrValidation},
		{name: "unknown category", in: StartInput{CategoryID: "nope"}, wantErr: common.ErrNotFound},
		{name: "foreign category", in: StartInput{CategoryID: foreign.ID}, wantErr: common.ErrNotFound},
		{name: "unknown task", in: StartInput{CategoryID: db.MustCategory("Work").ID, TaskIDs: []string{"nope"}}, wantErr: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Start(ctx, db.User.ID, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	active, err := tr.Active(ctx, db.User.ID)
	require.NoError(t, err)
	assert.Nil(t, active, "failed starts leave no timer behind")
}

func TestStart_WithTasks(t *testing.T) {
	tr, db, _ := setup(t)
	ctx := context.Background()
	task := db.Seed(db.User.ID).TaskReturning("outline", "", false)

	entry, err := tr.Start(ctx, db.User.ID, StartInput{
		CategoryID: db.MustCategory("Study").ID,
		TaskIDs:    []string{task.ID, task.ID},
	})
	require.NoError(t, err)

	active, err := tr.Active(ctx, db.User.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, entry.ID, active.ID)
	require.Len(t, active.Tasks, 1)
	assert.Equal(t, "outline", active.Tasks[0].Title)
}

func TestAbandon(t *testing.T) {
	tr, db, _ := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, tr.Abandon(ctx, db.User.ID), common.ErrNotFound)

	entry, err := tr.Start(ctx, db.User.ID, StartInput{CategoryID: db.MustCategory("Reading").ID})
	require.NoError(t, err)
	require.NoError(t, tr.Abandon(ctx, db.User.ID))

	_, err = tr.Get(ctx, db.User.ID, entry.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateManual(t *testing.T) {
	tr, db, _ := setup(t)
	ctx := context.Background()
	cat := db.MustCategory("Exercise")
	start := time.Date(2024, 2, 28, 7, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	before := start.Add(-time.Second)

	entry, err := tr.CreateManual(ctx, db.User.ID, ManualInput{CategoryID: cat.ID, StartTime: start, EndTime: &end})
	require.NoError(t, err)
	assert.True(t, entry.IsManual)
	assert.Equal(t, int64(45*60), entry.Duration)

	zero, err := tr.CreateManual(ctx, db.User.ID, ManualInput{CategoryID: cat.ID, StartTime: start, EndTime: &start})
	require.NoError(t, err)
	assert.Equal(t, int64(0), zero.Duration)

	_, err = tr.CreateManual(ctx, db.User.ID, ManualInput{CategoryID: cat.ID, StartTime: start})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = tr.CreateManual(ctx, db.User.ID, ManualInput{CategoryID: cat.ID, StartTime: start, EndTime: &before})
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endTime", verr.Fields[0].Field)

	// Manual entries do not count as a running timer.
	active, err := tr.Active(ctx, db.User.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestUpdate(t *testing.T) {
	tr, db, clock := setup(t)
	ctx := context.Background()
	work := db.MustCategory("Work")
	study := db.MustCategory("Study")

	start := time.Date(2024, 2, 28, 7, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	entry, err := tr.CreateManual(ctx, db.User.ID, ManualInput{CategoryID: work.ID, StartTime: start, EndTime: &end})
	require.NoError(t, err)

	t.Run("recomputes duration", func(t *testing.T) {
		newStart := start.Add(30 * time.Minute)
		updated, err := tr.Update(ctx, db.User.ID, entry.ID, Patch{StartTime: &newStart, CategoryID: &study.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(30*60), updated.Duration)
		assert.Equal(t, study.ID, updated.CategoryID)
	})

	t.Run("negative duration rejected", func(t *testing.T) {
		early := start.Add(-time.Hour)
		_, err := tr.Update(ctx, db.User.ID, entry.ID, Patch{EndTime: &early})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := tr.Update(ctx, db.User.ID, "missing", Patch{})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("other users cannot touch it", func(t *testing.T) {
		other := db.CreateUser("intruder@example.com")
		_, err := tr.Update(ctx, other.ID, entry.ID, Patch{})
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorIs(t, tr.Delete(ctx, other.ID, entry.ID), common.ErrNotFound)
	})

	t.Run("setting an end closes the running timer", func(t *testing.T) {
		running, err := tr.Start(ctx, db.User.ID, StartInput{CategoryID: work.ID})
		require.NoError(t, err)

		stop := clock.Now().Add(10 * time.Minute)
		closed, err := tr.Update(ctx, db.User.ID, running.ID, Patch{EndTime: &stop})
		require.NoError(t, err)
		assert.Equal(t, int64(600), closed.Duration)

		active, err := tr.Active(ctx, db.User.ID)
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("replaces task links", func(t *testing.T) {
		task := db.Seed(db.User.ID).TaskReturning("linked", "", false)
		updated, err := tr.Update(ctx, db.User.ID, entry.ID, Patch{TaskIDs: []string{task.ID}})
		require.NoError(t, err)
		require.Len(t, updated.Tasks, 1)

		cleared, err := tr.Update(ctx, db.User.ID, entry.ID, Patch{TaskIDs: []string{}})
		require.NoError(t, err)
		assert.Empty(t, cleared.Tasks)
	})
}

func TestList(t *testing.T) {
	tr, db, _ := setup(t)
	ctx := context.Background()
	day := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	db.Seed(db.User.ID).
		Entry("Work", day, time.Hour).
		Entry("Work", day.AddDate(0, 0, 1), time.Hour).
		Entry("Reading", day.AddDate(0, 0, 2), time.Hour)

	entries, err := tr.List(ctx, db.User.ID, service.EntryFilter{CategoryID: db.MustCategory("Work").ID})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	from := day.AddDate(0, 0, 3)
	_, err = tr.List(ctx, db.User.ID, service.EntryFilter{StartDate: &from, EndDate: &day})
	assert.ErrorIs(t, err, common.ErrValidation)
}
