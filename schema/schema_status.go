package schema

import "time"

// AnalysisStatus represents the status of the run tracking store.
type AnalysisStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalRows     int              `json:"total_rows"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// AnalysisRunRecord represents a row from the hotspots_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	RepoRoot      string
	ConfigParams  *string
}

// FunctionRecord represents a row from the hotspots_functions table.
type FunctionRecord struct {
	AnalysisID int64
	Rank       int32
	FilePath   string
	Line       int32
	Name       string
	Frequency  int32
}
