// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/storagegate/underwrite/internal/tool"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: "Serve exposes the evaluate_site and query_vault tools over MCP on\n" +
			"stdin/stdout. Logs are written to stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.close()

			store, err := a.openVault()
			if err != nil {
				return err
			}
			defer store.Close()

			srv := tool.NewServer(version, a.orchestrator, store, a.batchOptions())
			a.logger.Info("starting underwrite MCP server over stdio")
			return srv.MCPServer.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
