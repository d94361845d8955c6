package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	shipmcp "github.com/gorewood/shipwright/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run shipwright as a Model Context Protocol (MCP) server over stdio.

This exposes read-only release inspection as MCP tools, so an agent can check
versions and preview a release before an operator runs it. Releases themselves
stay interactive and are not exposed.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "shipwright": {
        "command": "shipwright",
        "args": ["serve"]
      }
    }
  }

Available tools: current_version, workspace_members, release_plan`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			server := shipmcp.NewServer(buildVersion(), &shipmcp.Env{Config: a.cfg, Root: a.root, Tags: a.repo})
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
