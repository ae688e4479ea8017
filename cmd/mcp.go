package cmd

import (
	"github.com/arsham/git-hotspots/internal/iocache"
	"github.com/arsham/git-hotspots/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the git-hotspots MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents rank the functions of a repository.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		// stdout carries the protocol.
		cfg.NoProgress = true
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, gitClient, iocache.Manager, version)
	},
}
