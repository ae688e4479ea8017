// Package parquet provides data structures and functions for exporting hotspot
// rows and tracked runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arsham/git-hotspots/schema"
	"github.com/parquet-go/parquet-go"
)

// HotspotRow is one ranked function of a single run.
type HotspotRow struct {
	Rank      int32  `parquet:"rank,snappy"`
	File      string `parquet:"file,snappy,dict"`
	Line      int32  `parquet:"line,snappy"`
	Function  string `parquet:"function,snappy"`
	Frequency int32  `parquet:"frequency,snappy"`
}

// AnalysisRun represents a single tracked run with its metadata.
// This struct maps to the hotspots_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of rows the run reported
	TotalRows int32 `parquet:"total_rows,snappy"`

	// RepoRoot is the directory the run inspected
	RepoRoot string `parquet:"repo_root,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FunctionRecord is a ranked function stored by a tracked run.
// This struct maps to the hotspots_functions database table.
type FunctionRecord struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	Rank       int32  `parquet:"rank,snappy"`
	FilePath   string `parquet:"file_path,snappy,dict"`
	Line       int32  `parquet:"line,snappy"`
	Function   string `parquet:"function,snappy"`
	Frequency  int32  `parquet:"frequency,snappy"`
}

// WriteHotspots writes ranked rows to w.
func WriteHotspots(w io.Writer, rows []schema.RankedRow) error {
	return write(w, ConvertRankedRows(rows))
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteFunctionRecordsParquet writes a slice of FunctionRecord structs to a Parquet file.
func WriteFunctionRecordsParquet(data []FunctionRecord, outputPath string) error {
	return writeFile(data, outputPath)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write encodes data with a schema derived from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRankedRows converts ranked rows to HotspotRow for Parquet export.
func ConvertRankedRows(rows []schema.RankedRow) []HotspotRow {
	result := make([]HotspotRow, len(rows))
	for i, r := range rows {
		result[i] = HotspotRow{
			Rank:      int32(r.Rank),
			File:      r.File,
			Line:      int32(r.Line),
			Function:  r.Name,
			Frequency: int32(r.Freq),
		}
	}
	return result
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			RepoRoot:      record.RepoRoot,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFunctionRecords converts schema.FunctionRecord to FunctionRecord for Parquet export.
func ConvertFunctionRecords(records []schema.FunctionRecord) []FunctionRecord {
	result := make([]FunctionRecord, len(records))
	for i, record := range records {
		result[i] = FunctionRecord{
			AnalysisID: record.AnalysisID,
			Rank:       record.Rank,
			FilePath:   record.FilePath,
			Line:       record.Line,
			Function:   record.Name,
			Frequency:  record.Frequency,
		}
	}
	return result
}
