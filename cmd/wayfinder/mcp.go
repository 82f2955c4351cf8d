package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp [flow]",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the flow to AI agents as MCP tools. The tools are stateless:
every call carries the JSON state returned by the previous one.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			transport, _ := cmd.Flags().GetString("transport")
			addr, _ := cmd.Flags().GetString("addr")
			baseURL, _ := cmd.Flags().GetString("base-url")

			// Stdout carries JSON-RPC; logs must stay on stderr.
			log.SetOutput(os.Stderr)
			logger := cli.NewLogger(cfg.Log, debugEnabled(cmd))

			engine, err := cli.CreateEngine(cmd.Context(), flowArg(args, cfg), cli.EngineOptions{Logger: logger})
			if err != nil {
				return err
			}
			srv := mcp.NewServer(engine, wayfinder.Version, mcp.WithLogger(logger))

			switch transport {
			case "stdio":
				logger.Info("starting MCP server (stdio)", "flow", engine.Name)
				return srv.ServeStdio()
			case "sse":
				ctx := cli.NewSignalContext(cmd.Context())
				defer ctx.Cancel()
				if baseURL == "" {
					baseURL = "http://localhost" + addr
				}
				if err := srv.ServeSSE(ctx, addr, baseURL); err != nil {
					return err
				}
				logger.Info("MCP server stopped gracefully")
				return nil
			}
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().String("addr", ":8080", "Address to listen on (only for SSE)")
	cmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")
	return cmd
}
