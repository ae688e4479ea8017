// Package core drives the hotspot pipeline: discovery, extraction, history
// and ranking.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/discovery"
	"github.com/arsham/git-hotspots/internal/extract"
	"github.com/arsham/git-hotspots/internal/insight"
	"github.com/arsham/git-hotspots/internal/progress"
	"github.com/arsham/git-hotspots/schema"
)

// extractorCapacity is the initial file capacity of each extractor.
const extractorCapacity = 100

// progressInterval is how often the progress line is redrawn.
const progressInterval = 100 * time.Millisecond

// ExecuteHotspots runs the pipeline, records the run when tracking is enabled
// and writes the rows with writer. It is the entry point of the root command.
func ExecuteHotspots(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, writer contract.OutputWriter) error {
	start := time.Now()

	bar := progress.ForStderr(cfg.NoProgress)
	bar.Start(progressInterval)
	defer bar.Finish()

	ranked, err := GetHotspotResults(ctx, cfg, client, mgr, bar)
	if err != nil {
		return err
	}
	bar.Finish()

	return writer.WriteHotspots(ranked, cfg, time.Since(start))
}

// GetHotspotResults runs the pipeline and returns the ranked rows, recording
// the run when mgr has a tracking store.
func GetHotspotResults(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager, sink progress.Sink) ([]schema.RankedRow, error) {
	tracker := beginTracking(cfg, mgr, time.Now())

	rows, err := Run(ctx, cfg, client, sink)
	if err != nil {
		return nil, err
	}

	ranked := schema.RankRows(rows, cfg.Skip)
	tracker.finish(ranked)
	return ranked, nil
}

// Run discovers, extracts and examines every function under cfg.RepoPath and
// returns the rows sorted by frequency, after applying skip and total.
func Run(ctx context.Context, cfg *contract.Config, client contract.GitClient, sink progress.Sink) ([]schema.ReportRow, error) {
	if sink == nil {
		sink = progress.Discard
	}

	inspector, err := insight.New(ctx, client, cfg.RepoPath)
	if err != nil {
		return nil, err
	}

	files, err := discovery.Discover(ctx, cfg.RepoPath, discoveryOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	extractors, err := distribute(files, cfg)
	if err != nil {
		return nil, err
	}

	var report []schema.ReportRow
	for _, x := range extractors {
		start := time.Now()
		elems, err := x.Extract(ctx, sink)
		var parseErr *extract.ParseFileError
		switch {
		case errors.Is(err, extract.ErrNoFilesAdded):
			slog.Debug("extractor didn't find any files", "lang", x.Lang())
			continue
		case errors.As(err, &parseErr):
			slog.Warn("extractor encountered an error", "lang", x.Lang(), "error", parseErr.Msg)
			continue
		case err != nil:
			return nil, fmt.Errorf("extracting %s functions: %w", x.Lang(), err)
		}
		slog.Debug("extraction finished", "lang", x.Lang(), "functions", len(elems), "took", time.Since(start))

		start = time.Now()
		rows, err := examineHistory(ctx, cfg.Workers, inspector, elems, sink)
		if err != nil {
			return nil, err
		}
		slog.Debug("function history examination finished", "lang", x.Lang(), "took", time.Since(start))
		report = append(report, rows...)
	}

	return rankAndSlice(report, cfg.Skip, cfg.Total), nil
}

// newExtractor builds the extractor of lang with the function name filters
// applied.
func newExtractor(lang schema.Lang, cfg *contract.Config) (*extract.Extractor, error) {
	x, err := extract.New(lang, extractorCapacity)
	if err != nil {
		return nil, err
	}
	for _, f := range cfg.ExcludeFuncs {
		x.FilterName(f)
	}
	return x, nil
}

func discoveryOptions(cfg *contract.Config) []discovery.Option {
	opts := []discovery.Option{
		discovery.WithWorkers(cfg.Workers),
		discovery.RespectGitignore(cfg.Gitignore),
	}
	for _, p := range cfg.Prefixes {
		opts = append(opts, discovery.WithPrefix(p))
	}
	for _, s := range cfg.NotContains {
		opts = append(opts, discovery.NotContains(s))
	}
	for _, g := range cfg.ExcludeGlobs {
		opts = append(opts, discovery.ExcludeGlob(g))
	}
	return opts
}

// distribute hands each file to the extractor of its language and returns
// the extractors in extraction order. An extractor is only built for a
// language that has at least one file. Files are sorted by path first so
// repeated runs extract in the same order.
func distribute(files []schema.FileRef, cfg *contract.Config) ([]*extract.Extractor, error) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	byLang := make(map[schema.Lang]*extract.Extractor, len(schema.ExtractionOrder))
	for _, f := range files {
		if !slices.Contains(schema.ExtractionOrder, f.Lang) {
			slog.Warn("unsupported file", "file", f.Path)
			continue
		}
		x, ok := byLang[f.Lang]
		if !ok {
			var err error
			if x, err = newExtractor(f.Lang, cfg); err != nil {
				return nil, err
			}
			byLang[f.Lang] = x
		}
		if err := x.AddFile(f); err != nil {
			slog.Warn("failed to load file", "file", f.Path, "error", err)
			continue
		}
		slog.Info("added file", "file", f.Path)
	}

	extractors := make([]*extract.Extractor, 0, len(byLang))
	for _, lang := range schema.ExtractionOrder {
		if x, ok := byLang[lang]; ok {
			extractors = append(extractors, x)
		}
	}
	return extractors, nil
}

// rankAndSlice sorts rows by frequency, highest first, keeping the extraction
// order of equal rows, and returns at most total rows after skipping skip.
func rankAndSlice(rows []schema.ReportRow, skip, total int) []schema.ReportRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Freq > rows[j].Freq
	})
	if skip >= len(rows) {
		return []schema.ReportRow{}
	}
	rows = rows[skip:]
	if total < len(rows) {
		rows = rows[:total]
	}
	return rows
}
