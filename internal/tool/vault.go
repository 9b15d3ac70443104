// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storagegate/underwrite/internal/vault"
)

const defaultQueryLimit = 20

// MetadataQueryVault describes the query_vault tool.
var MetadataQueryVault = &mcp.Tool{
	Name: "query_vault",
	Description: "List recorded underwriting runs from the vault, newest first. " +
		"Filter by opportunity id, two-letter state or decision (PROCEED, EVALUATE, WALK).",
}

// InputQueryVault is the input for the QueryVault tool.
type InputQueryVault struct {
	OpportunityID string `json:"opportunity_id,omitempty" jsonschema:"only runs for this opportunity"`
	State         string `json:"state,omitempty" jsonschema:"only runs in this state"`
	Decision      string `json:"decision,omitempty" jsonschema:"only runs with this decision"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum runs returned (default 20)"`
}

// OutputQueryVault is the output for the QueryVault tool.
type OutputQueryVault struct {
	Payloads []vault.Payload `json:"payloads"`
	Count    int             `json:"count"`
}

func (s *Server) QueryVault(ctx context.Context, _ *mcp.CallToolRequest, input InputQueryVault) (*mcp.CallToolResult, OutputQueryVault, error) {
	if s.store == nil {
		return nil, OutputQueryVault{}, fmt.Errorf("no vault configured")
	}
	if input.Limit < 0 {
		return nil, OutputQueryVault{}, fmt.Errorf("limit must not be negative")
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultQueryLimit
	}

	payloads, err := s.store.Query(ctx, vault.Filter{
		OpportunityID: input.OpportunityID,
		State:         input.State,
		Decision:      input.Decision,
		Limit:         limit,
	})
	if err != nil {
		return nil, OutputQueryVault{}, err
	}
	return nil, OutputQueryVault{Payloads: payloads, Count: len(payloads)}, nil
}
