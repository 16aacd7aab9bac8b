package cmd

import (
	"context"
	"os"

	appLog "github.com/chris-regnier/daybook/internal/log"
	"github.com/chris-regnier/daybook/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run MCP server on stdio",
	Long: `Starts a Model Context Protocol (MCP) server that exposes daybook tools
over stdio transport. This allows MCP clients like Claude Desktop to read
your overview and anniversaries and write day logs.

Available tools:
  - get_overview: Work entries, due todos and anniversaries for a date range
  - get_day: Day log and anniversaries for one date
  - list_rules: Recurring yearly and monthly rules
  - write_day_log: Create or replace a day log

Example usage in Claude Desktop config:
  {
    "mcpServers": {
      "daybook": {
        "command": "/path/to/daybook",
        "args": ["mcp-serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	// Storage is already initialized in PersistentPreRunE
	if store == nil {
		return cmd.Help()
	}

	server := mcptools.CreateMCPServer(mcptools.Deps{
		Service: svc,
		Store:   store,
		Owner:   appConfig.Owner,
		DataDir: appConfig.DataDir,
	})

	// Log to stderr (stdout is reserved for MCP protocol)
	appLog.SetOutput(os.Stderr)
	appLog.Info("starting daybook MCP server", "transport", "stdio",
		"storage", appConfig.Storage, "data_dir", appConfig.DataDir)

	// Blocks until the transport is closed
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
