package cmd

import (
	"github.com/conneroisu/vedit/internal/config"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/mcptools"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the locate, patch and Tailwind tools over MCP stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing
locate_element, apply_visual_edit and map_tailwind_class. Logs go to
stderr so they never mix with protocol traffic.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	logger := logging.Nop()
	if cfg, err := config.Load(); err == nil {
		opened, closeLog, err := cfg.OpenLogger()
		if err == nil {
			defer closeLog()
			logger = opened
		}
	}
	return mcptools.ServeStdio(logger.WithComponent("mcp"))
}
