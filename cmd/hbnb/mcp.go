package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/hbnb/internal/adapters/mcp"
	"github.com/aretw0/hbnb/internal/cli"
	"github.com/aretw0/hbnb/internal/logging"
	"github.com/aretw0/hbnb/pkg/models"
	"github.com/aretw0/hbnb/pkg/storage"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the console as an MCP Server so AI agents can manage HBNB objects.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Stdout carries JSON-RPC on stdio, so logs always go to stderr.
		logger := logging.NewNop()
		if cfg.Debug {
			logger = cli.CreateLogger(true)
		}
		log.SetOutput(os.Stderr)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		engine, err := cli.OpenStore(sigCtx, cfg, storage.WithLogger(logger))
		if err != nil {
			return err
		}
		defer engine.Close()

		srv := mcp.NewServer(engine, models.DefaultRegistry(), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting HBNB MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			addr := fmt.Sprintf(":%d", port)
			return srv.ServeSSE(sigCtx, addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
