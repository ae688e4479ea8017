package core

import (
	"fmt"
	"time"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/schema"
)

// tracker records a single run in the analysis store. A zero tracker records
// nothing.
type tracker struct {
	store contract.AnalysisStore
	id    int64
}

// beginTracking opens a run in the analysis store when one is configured.
// Failures are logged and disable tracking for this run only.
func beginTracking(cfg *contract.Config, mgr contract.StoreManager, start time.Time) tracker {
	if mgr == nil {
		return tracker{}
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return tracker{}
	}
	configParams := map[string]any{
		"total":         cfg.Total,
		"skip":          cfg.Skip,
		"workers":       cfg.Workers,
		"prefixes":      cfg.Prefixes,
		"invert_match":  cfg.NotContains,
		"exclude_funcs": cfg.ExcludeFuncs,
		"exclude_globs": cfg.ExcludeGlobs,
		"gitignore":     cfg.Gitignore,
	}
	id, err := store.BeginAnalysis(start, cfg.RepoPath, configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return tracker{}
	}
	return tracker{store: store, id: id}
}

// finish stores the rows and closes the run.
func (t tracker) finish(rows []schema.RankedRow) {
	if t.store == nil || t.id <= 0 {
		return
	}
	if err := t.store.RecordRows(t.id, rows); err != nil {
		logTrackingError("RecordRows", err)
	}
	if err := t.store.EndAnalysis(t.id, time.Now(), len(rows)); err != nil {
		logTrackingError("EndAnalysis", err)
	}
}

// logTrackingError logs database tracking errors without disrupting the run.
func logTrackingError(operation string, err error) {
	contract.LogWarn(fmt.Sprintf("Analysis tracking failed for %s", operation), err)
}
