package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copylab/adlens/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "ads.csv", "ELISA kits", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "ads.csv", got.Source)
	assert.Equal(t, "ELISA kits", got.Context)
	assert.Equal(t, 10, got.Records)
	assert.Nil(t, got.Result)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "ads.csv", "", 2)
	require.NoError(t, err)

	result := &model.BatchResult{
		Rows:      []model.Row{{"title": "A"}, {"title": "B"}},
		Attempted: 2,
		Succeeded: 1,
		Degraded:  1,
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 2, got.Result.Attempted)
	assert.Equal(t, 1, got.Result.Succeeded)
	assert.Len(t, got.Result.Rows, 2)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "ads.csv", "", 5)
	require.NoError(t, err)

	require.NoError(t, st.FailRun(ctx, run.ID, "quota unavailable"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "quota unavailable", got.Error)
}

func TestSQLite_UpdateUnknownRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.FailRun(ctx, "no-such-run", "reason")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.CreateRun(ctx, "a.csv", "", 1)
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.csv", "", 2)
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, first.ID, &model.BatchResult{Attempted: 1, Succeeded: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	completed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_GetUnknownRun(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
