// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/spoke"
	"github.com/storagegate/underwrite/internal/vault"
)

const siteYAML = `opportunityId: opp-mcp
location:
  zip: "78701"
  state: TX
site:
  acreage: 3
  landCostPerAcre: 150000
  zoningCode: LI-2
  avgSlopePct: 1
  soilType: loam
macro:
  population: 60000
`

func newTestServer(t *testing.T) (*Server, vault.Store) {
	t.Helper()
	orch, err := pipeline.New(spoke.NewSet(spoke.DefaultDoctrine()))
	require.NoError(t, err)
	store := vault.NewMemStore()
	return NewServer("test", orch, store, pipeline.BatchOptions{Concurrency: 2, Timeout: 10 * time.Second}), store
}

func TestEvaluateSite(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s, store := newTestServer(t)

	tests := []struct {
		name           string
		input          InputEvaluateSite
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputEvaluateSite)
	}{
		{
			name:        "empty content returns error",
			input:       InputEvaluateSite{Content: ""},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name:        "unrecognised content returns error",
			input:       InputEvaluateSite{Content: "hello there"},
			wantErr:     true,
			errContains: "unsupported intake format",
		},
		{
			name:  "single yaml site is evaluated",
			input: InputEvaluateSite{Content: siteYAML, Format: "yaml"},
			validateOutput: func(t *testing.T, output OutputEvaluateSite) {
				assert.Equal(t, "document", output.DecoderUsed)
				require.Len(t, output.Runs, 1)
				assert.Empty(t, output.Failures)
				run := output.Runs[0]
				assert.Equal(t, "opp-mcp", run.Payload.OpportunityID)
				assert.Equal(t, spoke.StatusOK, run.Payload.VerdictStatus)
				assert.Contains(t, run.Report, "| zoning |")
				assert.Empty(t, run.PersistError)
			},
		},
		{
			name: "overrides apply and blocked sites are failures",
			input: InputEvaluateSite{
				Content: siteYAML + "---\nopportunityId: opp-bad\nlocation: {zip: \"1\", state: TX}\nmacro: {population: 10}\n",
				Acreage: 5,
			},
			validateOutput: func(t *testing.T, output OutputEvaluateSite) {
				assert.Equal(t, "multidoc", output.DecoderUsed)
				require.Len(t, output.Runs, 1)
				assert.Equal(t, 5*150000.0, output.Runs[0].Payload.LandCost)
				require.Len(t, output.Failures, 1)
				f := output.Failures[0]
				assert.Equal(t, 1, f.Index)
				assert.Equal(t, "opp-bad", f.OpportunityID)
				assert.Contains(t, f.Blockers, "zip must be exactly 5 digits")
			},
		},
		{
			name:  "persist records the run",
			input: InputEvaluateSite{Content: siteYAML, Persist: true},
			validateOutput: func(t *testing.T, output OutputEvaluateSite) {
				require.Len(t, output.Runs, 1)
				assert.Empty(t, output.Runs[0].PersistError)
				got, err := store.Query(ctx, vault.Filter{OpportunityID: "opp-mcp"})
				require.NoError(t, err)
				assert.Len(t, got, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := s.EvaluateSite(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestQueryVault(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	s, _ := newTestServer(t)

	_, out, err := s.EvaluateSite(ctx, req, InputEvaluateSite{Content: siteYAML, Persist: true})
	require.NoError(t, err)
	require.Len(t, out.Runs, 1)

	_, got, err := s.QueryVault(ctx, req, InputQueryVault{State: "tx"})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, out.Runs[0].RunID, got.Payloads[0].RunID)

	_, none, err := s.QueryVault(ctx, req, InputQueryVault{State: "FL"})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Count)
	assert.NotNil(t, none.Payloads)

	_, _, err = s.QueryVault(ctx, req, InputQueryVault{Limit: -1})
	assert.ErrorContains(t, err, "limit")

	noVault := &Server{}
	_, _, err = noVault.QueryVault(ctx, req, InputQueryVault{})
	assert.ErrorContains(t, err, "no vault configured")
}

func TestServer_InMemoryTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, _ := newTestServer(t)

	t1, t2 := mcp.NewInMemoryTransports()
	_, err := s.MCPServer.Connect(ctx, t1, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tl := range tools.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"evaluate_site", "query_vault"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "evaluate_site",
		Arguments: map[string]any{"content": siteYAML},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out OutputEvaluateSite
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			require.NoError(t, json.Unmarshal([]byte(tc.Text), &out))
		}
	}
	require.Len(t, out.Runs, 1)
	assert.Equal(t, "opp-mcp", out.Runs[0].Payload.OpportunityID)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "evaluate_site",
		Arguments: map[string]any{"content": ""},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
