package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/arsham/git-hotspots/core"
	"github.com/arsham/git-hotspots/internal/contract"
	"github.com/arsham/git-hotspots/internal/discovery"
	"github.com/arsham/git-hotspots/internal/iocache"
	"github.com/arsham/git-hotspots/internal/outwriter"
	"github.com/arsham/git-hotspots/schema"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// gitClient runs the git commands of every command.
var gitClient contract.GitClient = contract.NewLocalGitClient()

// cpuProfile is the open CPU profile when --profile is set.
var cpuProfile *os.File

// rootCmd ranks the functions of the repository. It is also the parent of
// every other command.
var rootCmd = &cobra.Command{
	Use:   "git-hotspots [root]",
	Short: "Rank functions by how often Git history changed them.",
	Long: `git-hotspots finds every Go, Rust and Lua function under a directory and
counts the commits that touched each one with "git log -L".

Functions are listed from the most to the least frequently changed.

Examples:
  # Top 50 functions of the current repository
  git-hotspots

  # Skip the first 10 and show the next 20
  git-hotspots -s 10 -t 20

  # Only look under internal/ and ignore vendored code
  git-hotspots -p internal -v vendor

  # Write the table as CSV
  git-hotspots --output csv --output-file hotspots.csv`,
	Args:               cobra.MaximumNArgs(1),
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PreRunE:            sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		err := core.ExecuteHotspots(rootCtx, cfg, gitClient, iocache.Manager, outwriter.NewOutWriter())
		if err != nil && !errors.Is(err, discovery.ErrNoFiles) {
			return fmt.Errorf("cannot run hotspot analysis: %w", err)
		}
		return err
	},
}

// FatalMessage returns the message printed before exiting because of err.
func FatalMessage(err error) string {
	if errors.Is(err, discovery.ErrNoFiles) {
		return "No files found in the current directory"
	}
	return "Error"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".git-hotspots")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("HOTSPOTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("root", contract.DefaultRoot)
	viper.SetDefault("total", contract.DefaultTotal)
	viper.SetDefault("skip", contract.DefaultSkip)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("analysis-backend", "")
	viper.SetDefault("analysis-db-connect", "")
	viper.SetDefault("color", "yes")
}

// loadConfigFile reads the config file. A missing file is not an error.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	if err := startProfiling(viper.GetString("profile")); err != nil {
		return err
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.RepoPathStr = ""
	if len(args) == 1 {
		input.RepoPathStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	contract.InitLogger(cfg.Verbosity)
	color.NoColor = color.NoColor || !cfg.UseColors

	// 5. Initialize run tracking with validated config
	if err := iocache.InitStores(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// startProfiling starts CPU profiling when prefix is not empty.
func startProfiling(prefix string) error {
	if prefix == "" || cpuProfile != nil {
		return nil
	}
	f, err := os.Create(prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	cpuProfile = f
	return nil
}

// StopProfiling stops the CPU profile and writes the heap profile next to it.
func StopProfiling() error {
	if cpuProfile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	_ = cpuProfile.Close()
	prefix := strings.TrimSuffix(cpuProfile.Name(), ".cpu.prof")
	cpuProfile = nil

	memFile, err := os.Create(prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", prefix)
	return nil
}

// Execute runs the root command with ctx as the context of every operation.
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}
