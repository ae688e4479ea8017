// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/parquet"
	"github.com/arsham/git-hotspots/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// OutWriter renders hotspot rows in the configured output format.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteHotspots outputs the rows, dispatching based on the configured output format.
func (ow *OutWriter) WriteHotspots(rows []schema.RankedRow, cfg *contract.Config, duration time.Duration) error {
	slog.Info("analysis completed", "rows", len(rows), "workers", cfg.Workers, "took", duration)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHotspotsCSV(w, rows)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteHotspots(w, rows)
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHotspotsTable(w, rows, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeHotspotsTable generates and writes the human-readable table.
func writeHotspotsTable(w io.Writer, rows []schema.RankedRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"FILE", "LINE", "FUNCTION", "FREQUENCY"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignLeft, tw.AlignRight}
	})

	maxFreq := 0
	for _, r := range rows {
		maxFreq = max(maxFreq, r.Freq)
	}
	pathWidth := GetMaxTablePathWidth(cfg)

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{
			contract.TruncatePath(r.File, pathWidth),
			strconv.Itoa(r.Line),
			r.Name,
			contract.ColorizeFreq(r.Freq, maxFreq),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeHotspotsCSV writes the rows in CSV format.
func writeHotspotsCSV(w io.Writer, rows []schema.RankedRow) error {
	header := []string{"rank", "file", "line", "function", "frequency"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.File,
				strconv.Itoa(r.Line),
				r.Name,
				strconv.Itoa(r.Freq),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
