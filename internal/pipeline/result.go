// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"

	"github.com/storagegate/underwrite/internal/spoke"
	"github.com/storagegate/underwrite/internal/vault"
)

// ErrBlocked marks a run the validation gate refused.
var ErrBlocked = errors.New("validation blocked")

// EvaluationResult is the complete output of one run. Every spoke field is
// populated on every path, including blocked runs.
type EvaluationResult struct {
	Success           bool   `json:"success"`
	RunID             string `json:"runId"`
	Timestamp         string `json:"timestamp"`
	ValidationSkipped bool   `json:"validationSkipped"`

	Zoning             spoke.Result[spoke.Zoning]              `json:"zoning"`
	Permits            spoke.Result[spoke.Permit]              `json:"permits"`
	Civil              spoke.Result[spoke.Civil]               `json:"civil"`
	Pricing            spoke.Result[spoke.Pricing]             `json:"pricing"`
	Momentum           spoke.Result[spoke.Momentum]            `json:"momentum"`
	FusionDemand       spoke.Result[spoke.FusionDemand]        `json:"fusionDemand"`
	Competitive        spoke.Result[spoke.CompetitivePressure] `json:"competitive"`
	Feasibility        spoke.Result[spoke.Feasibility]         `json:"feasibility"`
	ReverseFeasibility spoke.Result[spoke.ReverseFeasibility]  `json:"reverseFeasibility"`
	Verdict            spoke.Result[spoke.Verdict]             `json:"verdict"`

	VaultPayload vault.Payload     `json:"vaultPayload"`
	Error        string            `json:"error,omitempty"`
	Validation   *ValidationReport `json:"validation,omitempty"`
}

// Err reports a blocked run as an error wrapping ErrBlocked.
func (r EvaluationResult) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return ErrBlocked
	}
	return fmt.Errorf("%w: %s", ErrBlocked, r.Error)
}

// Decision is the verdict decision, whatever the verdict status.
func (r EvaluationResult) Decision() spoke.Decision {
	return r.Verdict.Snapshot().Decision
}

func (r EvaluationResult) vaultSource(in spoke.Inputs) vault.Source {
	return vault.Source{
		RunID:         r.RunID,
		Timestamp:     r.Timestamp,
		OpportunityID: in.OpportunityID,
		Zip:           in.Zip,
		State:         in.State,
		County:        in.County,
		City:          in.City,
		Zoning:        r.Zoning,
		Permit:        r.Permits,
		Civil:         r.Civil,
		Pricing:       r.Pricing,
		Momentum:      r.Momentum,
		Fusion:        r.FusionDemand,
		Competitive:   r.Competitive,
		Feasibility:   r.Feasibility,
		Reverse:       r.ReverseFeasibility,
		Verdict:       r.Verdict,
	}
}
