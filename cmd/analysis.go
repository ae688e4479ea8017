package cmd

import (
	"fmt"
	"os"

	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/iocache"
	"github.com/arsham/git-hotspots/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analysisSetup loads the configuration needed for run tracking commands
// without validating the rest of the flags.
func analysisSetup(initStores bool) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, err := contract.ParseBackend(viper.GetString("analysis-backend"))
	if err != nil {
		return err
	}
	connStr := viper.GetString("analysis-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	contract.InitLogger(viper.GetInt("log-level"))

	if !initStores {
		return nil
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	return nil
}

// sqlitePath returns the SQLite file the tracking commands act on.
func sqlitePath() string {
	if cfg.AnalysisDBConnect != "" {
		return cfg.AnalysisDBConnect
	}
	return contract.GetAnalysisDBFilePath()
}

// analysisCmd groups the run tracking commands.
//
// Note: these subcommands skip the repository validation of the root command.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage the history of tracked runs",
	Long: `Manage the runs recorded when --analysis-backend is set.

Every tracked run stores its start and end time, the directory it inspected,
its flags and the ranked functions it reported.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Examples:
  # Check tracking status
  git-hotspots analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  git-hotspots analysis export --analysis-backend sqlite --output-file runs`,
}

// analysisClearCmd clears the tracked runs.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs",
	Long: `Delete all stored runs and their functions.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: func(_ *cobra.Command, _ []string) error { return analysisSetup(false) },
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, sqlitePath(), cfg.AnalysisDBConnect); err != nil {
			return fmt.Errorf("failed to clear tracked runs: %w", err)
		}
		fmt.Println("Tracked runs cleared successfully.")
		return nil
	},
}

// analysisStatusCmd shows the tracking status.
var analysisStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: func(_ *cobra.Command, _ []string) error { return analysisSetup(true) },
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			fmt.Println("Run tracking is disabled. Set --analysis-backend to enable it.")
			return nil
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get tracking status: %w", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
		return nil
	},
}

// analysisExportCmd exports the tracked runs to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet",
	Long: `Export all tracked runs to two Parquet files:
  <output-file>.runs.parquet       one row per run
  <output-file>.functions.parquet  one row per reported function

Requires: --output-file parameter

Examples:
  git-hotspots analysis export --analysis-backend sqlite --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.functions.parquet') LIMIT 10"`,
	PreRunE: func(_ *cobra.Command, _ []string) error { return analysisSetup(true) },
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, iocache.Manager.GetAnalysisStore(), cfg.OutputFile); err != nil {
			return fmt.Errorf("failed to export tracked runs: %w", err)
		}
		return nil
	},
}

// analysisMigrateCmd runs database migrations for the tracking store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  git-hotspots analysis migrate --analysis-backend sqlite

  # Rollback to initial state
  git-hotspots analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error { return analysisSetup(false) },
	RunE: func(_ *cobra.Command, _ []string) error {
		connStr := cfg.AnalysisDBConnect
		if cfg.AnalysisBackend == schema.SQLiteBackend {
			connStr = sqlitePath()
		}
		if err := iocache.MigrateAnalysis(os.Stdout, cfg.AnalysisBackend, connStr, viper.GetInt("target-version")); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	},
}
