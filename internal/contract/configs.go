package contract

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/arsham/git-hotspots/schema"
	"github.com/bmatcuk/doublestar/v4"
)

// Default values for configuration.
const (
	DefaultRoot  = "."
	DefaultTotal = 50
	DefaultSkip  = 0
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	RepoPath     string
	Total        int
	Skip         int
	Prefixes     []string // Already prefixed with "./"
	NotContains  []string
	ExcludeFuncs []string
	ExcludeGlobs []string
	Gitignore    bool
	Verbosity    int
	Workers      int
	Output       schema.OutputMode
	OutputFile   string
	Width        int // Terminal width override (0 = auto-detect)
	UseColors    bool
	NoProgress   bool

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Root              string   `mapstructure:"root"`
	Total             int      `mapstructure:"total"`
	Skip              int      `mapstructure:"skip"`
	Prefix            []string `mapstructure:"prefix"`
	InvertMatch       []string `mapstructure:"invert-match"`
	ExcludeFunc       []string `mapstructure:"exclude-func"`
	ExcludeGlob       []string `mapstructure:"exclude-glob"`
	Gitignore         bool     `mapstructure:"gitignore"`
	LogLevel          int      `mapstructure:"log-level"`
	Workers           int      `mapstructure:"workers"`
	Output            string   `mapstructure:"output"`
	OutputFile        string   `mapstructure:"output-file"`
	Width             int      `mapstructure:"width"`
	Color             string   `mapstructure:"color"`
	NoProgress        bool     `mapstructure:"no-progress"`
	AnalysisBackend   string   `mapstructure:"analysis-backend"`
	AnalysisDBConnect string   `mapstructure:"analysis-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Prefixes = cloneStrings(c.Prefixes)
	clone.NotContains = cloneStrings(c.NotContains)
	clone.ExcludeFuncs = cloneStrings(c.ExcludeFuncs)
	clone.ExcludeGlobs = cloneStrings(c.ExcludeGlobs)
	return &clone
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processFilters(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	resolveRoot(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("analysis-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBackend turns the raw backend flag into a DatabaseBackend. An empty
// value disables tracking.
func ParseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// validateBackendConfigs validates the run tracking backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.AnalysisBackend)
	if err != nil {
		return err
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	return ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
}

// validateSimpleInputs processes and validates all non-filter fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Gitignore = input.Gitignore
	cfg.NoProgress = input.NoProgress
	cfg.Verbosity = input.LogLevel

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Total < 0 {
		return fmt.Errorf("total cannot be negative (received %d)", input.Total)
	}
	cfg.Total = input.Total

	if input.Skip < 0 {
		return fmt.Errorf("skip cannot be negative (received %d)", input.Skip)
	}
	cfg.Skip = input.Skip

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	return nil
}

// processFilters copies the path and name filters. Prefixes are anchored to
// the walk root by prepending "./"; the other filters are used verbatim.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	cfg.Prefixes = nil
	for _, p := range input.Prefix {
		if p == "" {
			continue
		}
		cfg.Prefixes = append(cfg.Prefixes, "./"+p)
	}
	cfg.NotContains = cloneStrings(input.InvertMatch)
	cfg.ExcludeFuncs = cloneStrings(input.ExcludeFunc)

	cfg.ExcludeGlobs = nil
	for _, g := range input.ExcludeGlob {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid --exclude-glob pattern %q", g)
		}
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, g)
	}
	return nil
}

// resolveRoot picks the walk root: positional argument first, then --root,
// then the current directory.
func resolveRoot(cfg *Config, input *ConfigRawInput) {
	switch {
	case input.RepoPathStr != "":
		cfg.RepoPath = input.RepoPathStr
	case input.Root != "":
		cfg.RepoPath = input.Root
	default:
		cfg.RepoPath = DefaultRoot
	}
}
