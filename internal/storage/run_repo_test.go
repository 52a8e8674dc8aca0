package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

func newTestRepo(t *testing.T) *RunRepo {
	t.Helper()
	db, err := ConnectRunDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunRepo(db)
}

func TestRunRepo_CreateAndFinish(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := repo.CreateRun(ctx, domain.Run{
		RunID:          "run-1",
		CollectionName: "accounts",
		LogicalName:    "account",
		RowCount:       3,
		State:          "Idle",
		StartedAt:      started,
	})
	require.NoError(t, err)

	run, err := repo.FindRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "account", run.LogicalName)
	assert.Equal(t, 3, run.RowCount)
	assert.Equal(t, "Idle", run.State)
	assert.True(t, started.Equal(run.StartedAt))
	assert.Nil(t, run.FinishedAt)

	finished := started.Add(2 * time.Second)
	require.NoError(t, repo.FinishRun(ctx, "run-1", "Succeeded", 200, "", finished))

	run, err = repo.FindRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "Succeeded", run.State)
	assert.Equal(t, 200, run.StatusCode)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, finished.Equal(*run.FinishedAt))
}

func TestRunRepo_DuplicateRun(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	run := domain.Run{RunID: "dup", CollectionName: "contacts", LogicalName: "contact", RowCount: 1, State: "Idle", StartedAt: time.Now()}

	require.NoError(t, repo.CreateRun(ctx, run))
	assert.ErrorIs(t, repo.CreateRun(ctx, run), ErrRunExists)
}

func TestRunRepo_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.FindRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = repo.FinishRun(ctx, "missing", "Failed", 0, "boom", time.Now())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunRepo_ListRunsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateRun(ctx, domain.Run{
			RunID:          id,
			CollectionName: "accounts",
			LogicalName:    "account",
			RowCount:       1,
			State:          "Idle",
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "a", runs[2].RunID)

	runs, err = repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestConnectRunDB_Isolated(t *testing.T) {
	first := newTestRepo(t)
	second := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, first.CreateRun(ctx, domain.Run{RunID: "only-here", CollectionName: "accounts", LogicalName: "account", RowCount: 1, State: "Idle", StartedAt: time.Now()}))

	runs, err := second.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
