// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storagegate/underwrite/internal/intake"
	"github.com/storagegate/underwrite/internal/intake/decoders"
	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/vault"
)

// Server exposes the underwriting pipeline as MCP tools. Run it with
// s.MCPServer.Run(ctx, &mcp.StdioTransport{}).
type Server struct {
	MCPServer *mcp.Server

	orchestrator *pipeline.Orchestrator
	registry     *intake.Registry
	store        vault.Store
	batch        pipeline.BatchOptions
}

// NewServer registers the tools. store may be nil, in which case query_vault
// and persisting runs report an error.
func NewServer(version string, orch *pipeline.Orchestrator, store vault.Store, batch pipeline.BatchOptions) *Server {
	s := &Server{
		MCPServer: mcp.NewServer(
			&mcp.Implementation{Name: "underwrite", Version: version},
			nil,
		),
		orchestrator: orch,
		registry:     decoders.NewDefaultRegistry(),
		store:        store,
		batch:        batch,
	}
	mcp.AddTool(s.MCPServer, MetadataEvaluateSite, s.EvaluateSite)
	mcp.AddTool(s.MCPServer, MetadataQueryVault, s.QueryVault)
	return s
}
