package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/astdigest/internal/logging"
	"github.com/mvp-joe/astdigest/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [root]",
	Short: "Start the MCP server exposing the compressor as tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
request Java digests on demand.

The MCP server provides:
- compress_java: digest one file by path, or raw source text
- digest_stats: corpus summary for a directory

Paths are resolved against the root (default: the current directory).
Communicates via stdio (standard MCP transport); logs go to stderr.

Example:
  astdigest mcp`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := targetDir(args)
		if err != nil {
			return err
		}
		cfg, log, err := setup(root)
		if err != nil {
			return err
		}
		defer logging.Sync(log)

		if cfg.Logging.Output == "stdout" {
			return fmt.Errorf("logging.output must not be stdout while serving MCP on stdio")
		}

		server, err := mcp.NewServer(cfg, root, Version, log)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		defer server.Close()

		if err := server.Serve(cmd.Context()); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
