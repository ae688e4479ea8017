package contract

import (
	"testing"

	"github.com/arsham/git-hotspots/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Total:   DefaultTotal,
		Skip:    DefaultSkip,
		Workers: 4,
		Output:  "text",
		Color:   "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError string
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid minimal config",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ".", cfg.RepoPath)
				assert.Equal(t, 50, cfg.Total)
				assert.Equal(t, 0, cfg.Skip)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.NoneBackend, cfg.AnalysisBackend)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name:        "negative total",
			modify:      func(in *ConfigRawInput) { in.Total = -1 },
			expectError: "total cannot be negative",
		},
		{
			name:        "negative skip",
			modify:      func(in *ConfigRawInput) { in.Skip = -3 },
			expectError: "skip cannot be negative",
		},
		{
			name:        "zero workers",
			modify:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: "workers must be greater than 0",
		},
		{
			name:        "unknown output",
			modify:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "parquet without file",
			modify:      func(in *ConfigRawInput) { in.Output = "parquet" },
			expectError: "--output-file is required",
		},
		{
			name:        "bad color",
			modify:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: "invalid --color value",
		},
		{
			name:        "bad glob",
			modify:      func(in *ConfigRawInput) { in.ExcludeGlob = []string{"[abc"} },
			expectError: "invalid --exclude-glob pattern",
		},
		{
			name:        "unknown backend",
			modify:      func(in *ConfigRawInput) { in.AnalysisBackend = "oracle" },
			expectError: "invalid analysis backend",
		},
		{
			name:        "mysql without connection",
			modify:      func(in *ConfigRawInput) { in.AnalysisBackend = "mysql" },
			expectError: "analysis-db-connect is required",
		},
		{
			name: "zero total is allowed",
			modify: func(in *ConfigRawInput) {
				in.Total = 0
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0, cfg.Total)
			},
		},
		{
			name: "prefixes are anchored and filters kept verbatim",
			modify: func(in *ConfigRawInput) {
				in.Prefix = []string{"cmd", "", "internal/x"}
				in.InvertMatch = []string{"_test", "vendor/"}
				in.ExcludeFunc = []string{"init"}
				in.ExcludeGlob = []string{" **/*.pb.go ", ""}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"./cmd", "./internal/x"}, cfg.Prefixes)
				assert.Equal(t, []string{"_test", "vendor/"}, cfg.NotContains)
				assert.Equal(t, []string{"init"}, cfg.ExcludeFuncs)
				assert.Equal(t, []string{"**/*.pb.go"}, cfg.ExcludeGlobs)
			},
		},
		{
			name: "positional root wins over flag",
			modify: func(in *ConfigRawInput) {
				in.RepoPathStr = "/positional"
				in.Root = "/flag"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/positional", cfg.RepoPath)
			},
		},
		{
			name:   "root flag used without positional",
			modify: func(in *ConfigRawInput) { in.Root = "/flag" },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/flag", cfg.RepoPath)
			},
		},
		{
			name: "sqlite backend",
			modify: func(in *ConfigRawInput) {
				in.AnalysisBackend = "SQLite"
				in.LogLevel = 3
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.AnalysisBackend)
				assert.Equal(t, 3, cfg.Verbosity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			if tt.modify != nil {
				tt.modify(input)
			}
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/hotspots", false},
		{"mysql no tcp", schema.MySQLBackend, "root:pw@localhost/hotspots", true},
		{"mysql no db", schema.MySQLBackend, "root:pw@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=hotspots", false},
		{"postgres no host", schema.PostgreSQLBackend, "dbname=hotspots", true},
		{"postgres no db", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		RepoPath:     ".",
		Prefixes:     []string{"./a"},
		NotContains:  []string{"b"},
		ExcludeFuncs: []string{"c"},
	}
	clone := cfg.Clone()
	clone.Prefixes[0] = "./z"
	clone.NotContains = append(clone.NotContains, "y")

	assert.Equal(t, []string{"./a"}, cfg.Prefixes)
	assert.Equal(t, []string{"b"}, cfg.NotContains)
	assert.Equal(t, []string{"c"}, clone.ExcludeFuncs)
	assert.Nil(t, clone.ExcludeGlobs)
}
