package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clawd-xsl/android-remote/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the device agent as tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the agent's
operations as tools. AI agents can call tools directly without an HTTP hop.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  android-remote mcp
  android-remote mcp --transport streamable-http --port 8081`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	mcpCmd.Flags().Int("port", 8081, "HTTP port for streamable-http transport")
	addRuntimeFlags(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newDeviceRuntime(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer rt.close()
	rt.startCapture(cmd)

	return server.NewMCP(rt.agent, rt.logger).Serve(server.MCPConfig{
		Transport: transport,
		Port:      port,
	})
}
