package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/adapters/file"
	"github.com/aretw0/espalier/internal/logging"
	mcpadapter "github.com/aretw0/espalier/pkg/adapters/mcp"
	"github.com/aretw0/espalier/pkg/registry"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the workflow registry as an MCP Server.
This allows AI agents to query workflows as tools: next-agent resolution,
transition checks, loop membership, pathfinding and validation.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs go to stderr so stdout stays clean for JSON-RPC framing.
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		engineOpts := []espalier.Option{espalier.WithLogger(logger)}
		if cfg.Strict {
			engineOpts = append(engineOpts, espalier.WithStrict())
		}

		reg := registry.New(file.New(cfg.Workflows),
			registry.WithLogger(logger),
			registry.WithEngineOptions(engineOpts...),
		)
		if err := reg.LoadAll(cmd.Context()); err != nil {
			logger.Warn("some workflows failed to load", "error", err)
		}

		srv := mcpadapter.NewServer(reg, mcpadapter.WithLogger(logger))

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			logger.Info("starting espalier MCP server (stdio)", "workflows", reg.Len())
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			logger.Info("starting espalier MCP server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					logger.Error("MCP server execution failed", "error", err)
					os.Exit(1)
				}
			}
			logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("workflows", ".", "Directory containing .mmd workflow files")
	mcpCmd.Flags().String("config", "", "Path to a YAML config file")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8090, "Port to listen on (only for SSE)")
}
