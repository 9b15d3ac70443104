// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/storagegate/underwrite/internal/intake"
	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/report"
	"github.com/storagegate/underwrite/internal/vault"
)

// MetadataEvaluateSite describes the evaluate_site tool.
var MetadataEvaluateSite = &mcp.Tool{
	Name: "evaluate_site",
	Description: "Underwrite one or more candidate self-storage sites. " +
		"Content is a YAML or JSON candidate, a multi-document YAML batch, or a Markdown site memo " +
		"with YAML front matter. Each site runs through the validation gate and every analysis spoke " +
		"(zoning, permits, civil, pricing, momentum, demand, competition, feasibility, reverse " +
		"feasibility) and receives a PROCEED, EVALUATE or WALK verdict. Sites that fail validation " +
		"are reported as failures with their blockers.",
}

// InputEvaluateSite is the input for the EvaluateSite tool.
type InputEvaluateSite struct {
	Content         string  `json:"content" jsonschema:"raw candidate content"`
	Format          string  `json:"format,omitempty" jsonschema:"format hint: yaml, json, batch or markdown; auto-detected when omitted"`
	SourceID        string  `json:"source_id,omitempty" jsonschema:"identifier for the content, used in error messages"`
	Acreage         float64 `json:"acreage,omitempty" jsonschema:"acreage override applied to every site"`
	LandCostPerAcre float64 `json:"land_cost_per_acre,omitempty" jsonschema:"land cost per acre override applied to every site"`
	SkipValidation  bool    `json:"skip_validation,omitempty" jsonschema:"run the spokes even when the validation gate reports blockers"`
	Persist         bool    `json:"persist,omitempty" jsonschema:"record successful runs in the vault"`
}

// RunOutput is one successful evaluation.
type RunOutput struct {
	RunID             string                    `json:"run_id"`
	ValidationSkipped bool                      `json:"validation_skipped"`
	Payload           vault.Payload             `json:"payload"`
	Validation        pipeline.ValidationReport `json:"validation"`
	// Report is the Markdown rendering of the run.
	Report string `json:"report"`
	// PersistError is set when the run could not be recorded.
	PersistError string `json:"persist_error,omitempty"`
}

// FailureOutput is one site that produced no evaluation.
type FailureOutput struct {
	Index         int      `json:"index"`
	OpportunityID string   `json:"opportunity_id"`
	Error         string   `json:"error"`
	Blockers      []string `json:"blockers"`
}

// OutputEvaluateSite is the output for the EvaluateSite tool.
type OutputEvaluateSite struct {
	// DecoderUsed is the name of the intake decoder that was selected.
	DecoderUsed string          `json:"decoder_used"`
	Runs        []RunOutput     `json:"runs"`
	Failures    []FailureOutput `json:"failures"`
}

// EvaluateSite decodes the content and evaluates every site it holds.
func (s *Server) EvaluateSite(ctx context.Context, _ *mcp.CallToolRequest, input InputEvaluateSite) (*mcp.CallToolResult, OutputEvaluateSite, error) {
	if input.Content == "" {
		return nil, OutputEvaluateSite{}, fmt.Errorf("content is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	decoded, err := s.registry.DecodeWithMeta(ctx, intake.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	})
	if err != nil {
		return nil, OutputEvaluateSite{}, err
	}

	items := decoded.Items
	for i := range items {
		if input.Acreage > 0 {
			items[i].Options.Acreage = input.Acreage
		}
		if input.LandCostPerAcre > 0 {
			items[i].Options.LandCostPerAcre = input.LandCostPerAcre
		}
		if input.SkipValidation {
			items[i].Options.SkipValidation = true
		}
	}

	batch := s.orchestrator.EvaluateBatch(ctx, items, s.batch)

	out := OutputEvaluateSite{
		DecoderUsed: decoded.DecoderUsed,
		Runs:        make([]RunOutput, 0, len(batch.Results)),
		Failures:    make([]FailureOutput, 0, len(batch.Failures)),
	}
	for _, res := range batch.Results {
		run := RunOutput{
			RunID:             res.RunID,
			ValidationSkipped: res.ValidationSkipped,
			Payload:           res.VaultPayload,
		}
		if res.Validation != nil {
			run.Validation = *res.Validation
		}
		var buf bytes.Buffer
		if err := report.Evaluation(&buf, report.Markdown, res); err == nil {
			run.Report = buf.String()
		}
		if input.Persist {
			if err := s.persist(ctx, res); err != nil {
				run.PersistError = err.Error()
			}
		}
		out.Runs = append(out.Runs, run)
	}
	for _, f := range batch.Failures {
		fo := FailureOutput{Index: f.Index, OpportunityID: f.OpportunityID, Error: f.Error, Blockers: []string{}}
		if f.Result != nil && f.Result.Validation != nil {
			fo.Blockers = f.Result.Validation.BlockerMessages()
		}
		out.Failures = append(out.Failures, fo)
	}
	return nil, out, nil
}

func (s *Server) persist(ctx context.Context, res pipeline.EvaluationResult) error {
	if s.store == nil {
		return fmt.Errorf("no vault configured")
	}
	return pipeline.Persist(ctx, s.store, res)
}
