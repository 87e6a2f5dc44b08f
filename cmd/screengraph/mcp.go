package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/aretw0/screengraph/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [graph]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the graph to AI agents as MCP tools (get_graph, find_path,
list_actions) and resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		cfg, logger := loadConfig(cmd)
		g := loadGraph(cmd, args, nil)

		srv := mcp.NewServer(g, logger)

		switch transport {
		case "stdio":
			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			if err := srv.ServeSSE(sigCtx, cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP server execution failed", "error", err)
				os.Exit(1)
			}
			logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
