package core

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/arsham/git-hotspots/internal/insight"
	"github.com/arsham/git-hotspots/internal/progress"
	"github.com/arsham/git-hotspots/schema"
	"golang.org/x/sync/errgroup"
)

// examineHistory counts the commits of every element on at most workers
// goroutines. Row i always belongs to elems[i]. A failed lookup is logged and
// counted as zero.
func examineHistory(ctx context.Context, workers int, inspector *insight.Inspector, elems []schema.Element, sink progress.Sink) ([]schema.ReportRow, error) {
	rows := make([]schema.ReportRow, len(elems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, el := range elems {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			hashes, err := inspector.FunctionHistory(gctx, gitPath(inspector.Root(), el.File), el.Name)
			if err != nil {
				slog.Warn("failed to read function history", "file", el.File, "function", el.Name, "error", err)
			}
			rows[i] = schema.ReportRow{
				File: el.File,
				Line: el.Line,
				Name: el.Name,
				Freq: len(hashes),
			}
			sink.AddDone(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// gitPath returns file relative to root, which is where git runs. The walked
// path is returned when it cannot be made relative.
func gitPath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return file
	}
	return filepath.ToSlash(rel)
}
