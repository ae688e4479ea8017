package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	hsparquet "github.com/arsham/git-hotspots/internal/parquet"
	"github.com/arsham/git-hotspots/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestStoreManager_Concurrency(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	mgr := &StoreManager{analysis: store}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, store, mgr.GetAnalysisStore())
		}()
	}
	wg.Wait()
}

func TestStoreManager_Empty(t *testing.T) {
	mgr := &StoreManager{}
	assert.Nil(t, mgr.GetAnalysisStore())
}

func TestClearAnalysis(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hotspots.db")
		store, err := NewAnalysisStore(schema.SQLiteBackend, path)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearAnalysis(schema.SQLiteBackend, path, ""))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearAnalysis(schema.SQLiteBackend, filepath.Join(t.TempDir(), "none.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.SQLiteBackend, "", ""))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestPrintAnalysisStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintAnalysisStatus(&buf, schema.AnalysisStatus{Backend: "none"})
		assert.Equal(t, "Tracking Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("connected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintAnalysisStatus(&buf, schema.AnalysisStatus{
			Backend:       "sqlite",
			Connected:     true,
			TotalRuns:     2,
			LastRunID:     7,
			LastRunTime:   sampleTime,
			OldestRunTime: sampleTime.Add(-time.Hour),
			TotalRows:     30,
			TableSizes:    map[string]int64{functionsTable: 30, runsTable: 2},
		})
		got := buf.String()
		assert.Contains(t, got, "Total Runs: 2\n")
		assert.Contains(t, got, "Last Run ID: 7\n")
		assert.Contains(t, got, "Last Run: 2024-05-01 12:00:00\n")
		assert.Contains(t, got, "Oldest Run: 2024-05-01 11:00:00\n")
		assert.Contains(t, got, "Total Rows Recorded: 30\n")
		assert.Contains(t, got, "  hotspots_functions: 30 rows\n  hotspots_runs: 2 rows\n")
	})
}

func TestExecuteAnalysisExport(t *testing.T) {
	store := newSQLiteStore(t)
	id, err := store.BeginAnalysis(sampleTime, "/repo", map[string]any{"total": 2})
	require.NoError(t, err)
	require.NoError(t, store.RecordRows(id, sampleRankedRows()))
	require.NoError(t, store.EndAnalysis(id, sampleTime.Add(time.Second), 2))

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExecuteAnalysisExport(&out, store, base))
	assert.Contains(t, out.String(), "Exported 1 runs")
	assert.Contains(t, out.String(), "Exported 2 function records")

	runs, err := parquet.ReadFile[hsparquet.AnalysisRun](base + ".runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/repo", runs[0].RepoRoot)

	records, err := parquet.ReadFile[hsparquet.FunctionRecord](base + ".functions.parquet")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Run", records[0].Function)
}

func TestExecuteAnalysisExport_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, ExecuteAnalysisExport(&out, newSQLiteStore(t), ""), "--output-file")
	assert.ErrorContains(t, ExecuteAnalysisExport(&out, nil, "x"), "not enabled")

	err := ExecuteAnalysisExport(&out, newSQLiteStore(t), filepath.Join(t.TempDir(), "x"))
	assert.ErrorIs(t, err, ErrNoTrackedRuns)
}
