package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// shortCommit returns the first seven characters of the build commit.
func shortCommit() string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of git-hotspots.",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("git-hotspots %s (%s)\n", version, shortCommit())
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
