package state_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blagoySimandov/nem12ingest/internal/models"
	"github.com/blagoySimandov/nem12ingest/internal/pipeline"
	"github.com/blagoySimandov/nem12ingest/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput(t *testing.T) string {
	t.Helper()
	readings := strings.TrimSuffix(strings.Repeat("1,", 48), ",")
	content := "200,NEM1201009,E1E2,1,E1,N1,01009,kWh,30,20050610\n" +
		"300,20050301," + readings + ",A,,,20050310121004\n"
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManagerRunsToCompletion(t *testing.T) {
	outDir := t.TempDir()
	m := state.NewManager(state.NewMemoryStore(), state.ManagerConfig{
		OutputDir:    outDir,
		OutputPrefix: "meter_readings_insert",
		Workers:      2,
	})
	ctx := context.Background()

	run, err := m.Start(ctx, sampleInput(t))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPending, run.Status)
	assert.Equal(t, outDir, filepath.Dir(run.OutputPath))
	assert.True(t, strings.HasPrefix(filepath.Base(run.OutputPath), "meter_readings_insert_"+run.RunID[:8]+"_"))

	m.Wait()

	got, err := m.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Nil(t, got.Error)
	require.NotNil(t, got.Stats)
	assert.Equal(t, int64(1), got.Stats.RowsWritten)
	require.NotNil(t, got.FinishedAt)

	content, err := os.ReadFile(run.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "'NEM1201009', '2005-03-01 00:00:00', 48.00")
}

func TestManagerRecordsFailure(t *testing.T) {
	m := state.NewManager(state.NewMemoryStore(), state.ManagerConfig{
		OutputDir:    filepath.Join(t.TempDir(), "missing"),
		OutputPrefix: "out",
		Workers:      1,
	})
	ctx := context.Background()

	run, err := m.Start(ctx, sampleInput(t))
	require.NoError(t, err)
	m.Wait()

	got, err := m.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, got.Status)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, pipeline.ErrOutputWrite.Error())
}

func TestManagerRejectsMissingInput(t *testing.T) {
	store := state.NewMemoryStore()
	m := state.NewManager(store, state.ManagerConfig{OutputDir: t.TempDir(), OutputPrefix: "out"})

	_, err := m.Start(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	assert.ErrorIs(t, err, pipeline.ErrInputUnavailable)
	runs, err := m.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := state.NewMemoryStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateRun(ctx, &models.IngestionRun{
			RunID:     id,
			Status:    models.RunStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	assert.Error(t, store.CreateRun(ctx, &models.IngestionRun{RunID: "a"}))

	runs, err := store.ListRuns(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].RunID)

	runs, err = store.ListRuns(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "b", runs[0].RunID)

	runs, err = store.ListRuns(ctx, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	run, err := store.GetRun(ctx, "a")
	require.NoError(t, err)
	run.Status = models.RunStatusCompleted
	run.Stats = &models.RunStats{RowsWritten: 3}
	require.NoError(t, store.UpdateRun(ctx, run))

	// stored copies are isolated from callers
	run.Stats.RowsWritten = 99

	got, err := store.GetRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, got.Status)
	assert.Equal(t, int64(3), got.Stats.RowsWritten)

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, state.ErrRunNotFound)
	assert.ErrorIs(t, store.UpdateRun(ctx, &models.IngestionRun{RunID: "missing"}), state.ErrRunNotFound)
}
