package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/schema"
	"github.com/fatih/color"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hsparquet "github.com/arsham/git-hotspots/internal/parquet"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleRows() []schema.RankedRow {
	return schema.RankRows([]schema.ReportRow{
		{File: "core/core.go", Line: 52, Name: "Run", Freq: 10},
		{File: "internal/extract/golang.go", Line: 15, Name: "(*x) Canonicalize", Freq: 4},
		{File: "main.go", Line: 3, Name: "main", Freq: 0},
	}, 2)
}

func writeTo(t *testing.T, mode schema.OutputMode) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	cfg := &contract.Config{Output: mode, OutputFile: out, Width: 200}
	require.NoError(t, NewOutWriter().WriteHotspots(sampleRows(), cfg, time.Second))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	return string(data)
}

func TestWriteHotspots_Table(t *testing.T) {
	got := writeTo(t, schema.TextOut)
	for _, want := range []string{"FILE", "LINE", "FUNCTION", "FREQUENCY", "core/core.go", "(*x) Canonicalize", "52", "10"} {
		assert.Contains(t, got, want)
	}
	assert.Less(t, strings.Index(got, "Run"), strings.Index(got, "main "), "rows keep their order")
}

func TestWriteHotspots_TableTruncatesPaths(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	long := strings.Repeat("deep/", 30) + "file.go"
	rows := schema.RankRows([]schema.ReportRow{{File: long, Line: 1, Name: "F", Freq: 1}}, 0)
	cfg := &contract.Config{Output: schema.TextOut, OutputFile: out, Width: 80}
	require.NoError(t, NewOutWriter().WriteHotspots(rows, cfg, 0))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "...")
	assert.Contains(t, string(data), "file.go")
	assert.NotContains(t, string(data), long)
}

func TestWriteHotspots_JSON(t *testing.T) {
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(writeTo(t, schema.JSONOut)), &got))
	require.Len(t, got, 3)
	assert.Equal(t, float64(3), got[0]["rank"])
	assert.Equal(t, "core/core.go", got[0]["file"])
	assert.Equal(t, "Run", got[0]["function"])
	assert.Equal(t, float64(10), got[0]["frequency"])
	assert.Equal(t, float64(52), got[0]["line"])
}

func TestWriteHotspots_CSV(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(writeTo(t, schema.CSVOut)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "rank,file,line,function,frequency", lines[0])
	assert.Equal(t, "3,core/core.go,52,Run,10", lines[1])
	assert.Equal(t, "4,internal/extract/golang.go,15,(*x) Canonicalize,4", lines[2])
}

func TestWriteHotspots_Parquet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: out}
	require.NoError(t, NewOutWriter().WriteHotspots(sampleRows(), cfg, 0))

	got, err := parquet.ReadFile[hsparquet.HotspotRow](out)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Run", got[0].Function)
	assert.Equal(t, int32(3), got[0].Rank)
}

func TestWriteHotspots_BadOutputFile(t *testing.T) {
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: "/nonexistent/dir/out.csv"}
	assert.Error(t, NewOutWriter().WriteHotspots(sampleRows(), cfg, 0))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := map[string]struct {
		width int
		want  int
	}{
		"narrow":  {width: 40, want: minPathWidth},
		"exact":   {width: 100, want: 40},
		"wide":    {width: 300, want: maxPathWidth},
		"default": {width: 0, want: fallbackWidth - reservedWidth},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := GetMaxTablePathWidth(&contract.Config{Width: tt.width})
			if tt.width == 0 {
				assert.GreaterOrEqual(t, got, minPathWidth)
				assert.LessOrEqual(t, got, maxPathWidth)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
