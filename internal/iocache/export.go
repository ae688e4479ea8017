package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/parquet"
)

// ErrNoTrackedRuns is returned when an export finds nothing to write.
var ErrNoTrackedRuns = errors.New("no tracked runs found to export")

// ExecuteAnalysisExport writes every tracked run and row to two Parquet
// files named after outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is not enabled, set --analysis-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get tracking status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoTrackedRuns
	}

	fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	fmt.Fprintf(w, "Total function records: %d\n", status.TableSizes[functionsTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	records, err := store.GetAllFunctionRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve function records: %w", err)
	}

	parquetRuns := parquet.ConvertAnalysisRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetRecords := parquet.ConvertFunctionRecords(records)
	functionsFile := outputFile + ".functions.parquet"
	if err := parquet.WriteFunctionRecordsParquet(parquetRecords, functionsFile); err != nil {
		return fmt.Errorf("failed to write function records: %w", err)
	}
	fmt.Fprintf(w, "Exported %d function records to: %s\n", len(parquetRecords), functionsFile)

	return nil
}
