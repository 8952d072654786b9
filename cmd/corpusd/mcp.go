package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/corpuslabs/corpusd/internal/adapters/driving/mcp"
	"github.com/corpuslabs/corpusd/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant
integration.

By default the server communicates over stdio using JSON-RPC. MCP
transports carry no caller identity, so every tool call runs as the
account given with --user.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (for Claude Desktop)
  corpusd mcp --user 6f1e...

  # HTTP mode (for MCP Inspector, remote access)
  corpusd mcp --user 6f1e... --port 8081`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().String("user", "", "acting user id (required)")
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	_ = mcpCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	rawUser, err := cmd.Flags().GetString("user")
	if err != nil {
		return fmt.Errorf("getting user flag: %w", err)
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawUser, err)
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: a.retrieval,
		Ingestion: a.ingestion,
		Projects:  a.projects,
		Documents: a.documents,
		UserID:    userID,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}
