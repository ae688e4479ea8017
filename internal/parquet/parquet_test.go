package parquet

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/arsham/git-hotspots/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tcs := map[string]struct {
		model   any
		columns []string
	}{
		"hotspot row": {new(HotspotRow), []string{"rank", "file", "line", "function", "frequency"}},
		"analysis run": {new(AnalysisRun), []string{
			"analysis_id", "start_time", "end_time", "run_duration_ms", "total_rows", "repo_root", "config_params",
		}},
		"function record": {new(FunctionRecord), []string{
			"analysis_id", "rank", "file_path", "line", "function", "frequency",
		}},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			s := parquet.SchemaOf(tc.model)
			require.NotNil(t, s)
			for _, col := range tc.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist in schema", col)
			}
		})
	}
}

func TestWriteHotspots(t *testing.T) {
	rows := schema.RankRows([]schema.ReportRow{
		{File: "core/core.go", Line: 12, Name: "Run", Freq: 9},
		{File: "cmd/root.go", Line: 40, Name: "(*app) Execute", Freq: 4},
	}, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteHotspots(&buf, rows))

	got, err := parquet.Read[HotspotRow](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ConvertRankedRows(rows), got)
	assert.Equal(t, int32(2), got[1].Rank)
	assert.Equal(t, "(*app) Execute", got[1].Function)
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	dur := int32(3000)
	params := `{"total":50}`
	data := ConvertAnalysisRunRecords([]schema.AnalysisRunRecord{
		{AnalysisID: 1, StartTime: start, EndTime: &end, RunDurationMs: &dur, TotalRows: 50, RepoRoot: ".", ConfigParams: &params},
		{AnalysisID: 2, StartTime: start, RepoRoot: "/src"},
	})
	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	got, err := parquet.ReadFile[AnalysisRun](outputPath)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].AnalysisID)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Millisecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, dur, *got[0].RunDurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
	assert.Equal(t, "/src", got[1].RepoRoot)
}

func TestWriteFunctionRecordsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "functions.parquet")
	data := ConvertFunctionRecords([]schema.FunctionRecord{
		{AnalysisID: 1, Rank: 1, FilePath: "a.go", Line: 3, Name: "A", Frequency: 5},
		{AnalysisID: 1, Rank: 2, FilePath: "b.rs", Line: 1, Name: "b", Frequency: 2},
	})
	require.NoError(t, WriteFunctionRecordsParquet(data, outputPath))

	got, err := parquet.ReadFile[FunctionRecord](outputPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteFunctionRecordsParquet([]FunctionRecord{}, outputPath))

	got, err := parquet.ReadFile[FunctionRecord](outputPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteAnalysisRunsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
