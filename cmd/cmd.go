// Package cmd defines the command-line interface for git-hotspots.
package cmd

import (
	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.StringP("root", "r", contract.DefaultRoot, "Directory to inspect when no positional root is given")
	flags.IntP("total", "t", contract.DefaultTotal, "Number of functions to show")
	flags.IntP("skip", "s", contract.DefaultSkip, "Number of top functions to skip")
	flags.StringArrayP("prefix", "p", nil, "Only inspect files under this directory (repeatable)")
	flags.StringArrayP("invert-match", "v", nil, "Skip files whose path contains this string (repeatable)")
	flags.StringArrayP("exclude-func", "F", nil, "Skip functions whose name contains this string (repeatable)")
	flags.StringArray("exclude-glob", nil, "Skip files matching this doublestar pattern (repeatable)")
	flags.Bool("gitignore", false, "Skip files ignored by the root .gitignore")
	flags.CountP("log-level", "V", "Log verbosity: -V error, -VV warn, -VVV info, -VVVV debug")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored frequencies in output (yes/no/true/false/1/0)")
	flags.Bool("no-progress", false, "Do not draw the progress line")
	flags.String("analysis-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	flags.String("analysis-db-connect", "", "Database connection string for run tracking")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
