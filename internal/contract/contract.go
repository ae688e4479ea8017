// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/arsham/git-hotspots/schema"
)

// GitClient defines the git operations the hotspot pipeline relies on.
// This allows the history logic to be tested without needing a real git executable.
type GitClient interface {
	// IsInsideWorkTree reports whether dir is inside a git working tree. A git
	// process that exits with a non-zero status yields false and no error.
	IsInsideWorkTree(ctx context.Context, dir string) (bool, error)

	// LineLog runs "git log -L <spec>" inside dir and returns its standard
	// output regardless of the exit status. Only a failure to launch git is
	// returned as an error.
	LineLog(ctx context.Context, dir string, spec string) ([]byte, error)
}

// OutputWriter renders the ranked rows of a finished run.
type OutputWriter interface {
	WriteHotspots(rows []schema.RankedRow, cfg *Config, duration time.Duration) error
}

// StoreManager defines the interface for reaching the run tracking store.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
}

// AnalysisStore defines the interface for tracking hotspot runs and their rows.
type AnalysisStore interface {
	// BeginAnalysis creates a new run and returns its unique ID.
	BeginAnalysis(startTime time.Time, repoRoot string, configParams map[string]any) (int64, error)

	// RecordRows stores the ranked rows produced by a run.
	RecordRows(analysisID int64, rows []schema.RankedRow) error

	// EndAnalysis updates the run with completion data.
	EndAnalysis(analysisID int64, endTime time.Time, totalRows int) error

	// GetStatus returns status information about the store.
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every stored run ordered by ID.
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllFunctionRecords returns every stored row ordered by run and rank.
	GetAllFunctionRecords() ([]schema.FunctionRecord, error)

	// Close closes the underlying connection.
	Close() error
}
