// SPDX-License-Identifier: Apache-2.0

// Package report renders evaluation results for people: terminal tables,
// Markdown for memos, or indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/spoke"
	"github.com/storagegate/underwrite/internal/vault"
)

// Evaluation writes one run.
func Evaluation(w io.Writer, m Mode, res pipeline.EvaluationResult) error {
	if m == JSON {
		return writeJSON(w, res)
	}

	p := res.VaultPayload
	var b strings.Builder

	b.WriteString(headline(res))
	b.WriteString("\n\n")
	b.WriteString(spokeTable(m, p).String())
	b.WriteString("\n")

	if res.Validation != nil && len(res.Validation.Blockers)+len(res.Validation.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(validationTable(m, *res.Validation).String())
		b.WriteString("\n")
	}

	v := res.Verdict.Snapshot()
	if len(v.FatalFlaws)+len(v.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(flawTable(m, v).String())
		b.WriteString("\n")
	}

	if len(p.Summary.NextSteps) > 0 {
		b.WriteString("\nNext steps:\n")
		for i, step := range p.Summary.NextSteps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Batch writes the successful runs followed by the failures, each in input
// order.
func Batch(w io.Writer, m Mode, out pipeline.BatchResult) error {
	if m == JSON {
		return writeJSON(w, out)
	}

	t := newTable(m, "Batch")
	t.header("Opportunity", "Run", "Decision", "Score", "Confidence", "Headline")
	t.columns(
		column{number: 4, align: text.AlignRight},
		column{number: 5, align: text.AlignRight},
		column{number: 6, maxWidth: 60},
	)
	for _, res := range out.Results {
		p := res.VaultPayload
		t.row(p.OpportunityID, p.RunID, string(p.Decision),
			fmt.Sprintf("%.1f", p.Score), fmt.Sprintf("%.2f", p.Confidence), p.Summary.Headline)
	}
	t.footer(fmt.Sprintf("%d evaluated", len(out.Results)), "", "", "", "", "")

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(out.Failures) > 0 {
		f := newTable(m, "Failures")
		f.header("#", "Opportunity", "Error")
		f.columns(column{number: 3, maxWidth: 80})
		for _, fail := range out.Failures {
			f.row(fail.Index, fail.OpportunityID, fail.Error)
		}
		b.WriteString("\n")
		b.WriteString(f.String())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Payloads writes vault query results, newest first as returned.
func Payloads(w io.Writer, m Mode, payloads []vault.Payload) error {
	if m == JSON {
		return writeJSON(w, payloads)
	}

	t := newTable(m, "Vault")
	t.header("Recorded", "Run", "Opportunity", "State", "Decision", "Score", "Headline")
	t.columns(
		column{number: 6, align: text.AlignRight},
		column{number: 7, maxWidth: 60},
	)
	for _, p := range payloads {
		t.row(p.Timestamp, p.RunID, p.OpportunityID, p.State, string(p.Decision), fmt.Sprintf("%.1f", p.Score), p.Summary.Headline)
	}
	t.footer("", "", "", "", "", len(payloads), "")
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

func headline(res pipeline.EvaluationResult) string {
	p := res.VaultPayload
	head := fmt.Sprintf("%s (%s %s)", p.OpportunityID, p.State, p.Zip)
	if !res.Success {
		return fmt.Sprintf("%s: %s", head, res.Error)
	}
	out := fmt.Sprintf("%s: %s", head, p.Summary.Headline)
	if res.ValidationSkipped {
		out += " [validation skipped]"
	}
	return out
}

func spokeTable(m Mode, p vault.Payload) *tableBuilder {
	t := newTable(m, fmt.Sprintf("Run %s", p.RunID))
	t.header("Spoke", "Status", "Result")
	t.columns(column{number: 3, maxWidth: 70})
	t.row("zoning", p.ZoningStatus, fmt.Sprintf("%s %s, score %.0f", p.ZoningCode, p.ZoningClassification, p.ZoningScore))
	t.row("permits", p.PermitStatus, fmt.Sprintf("%s complexity, %d weeks, fee $%.0f", p.PermitComplexity, p.PermitTimelineWeeks, p.PermitFee))
	t.row("civil", p.CivilStatus, fmt.Sprintf("%s, score %.0f, adder $%.0f, %.2f developable ac", p.CivilRating, p.CivilScore, p.CivilCostAdder, p.DevelopableAcres))
	t.row("pricing", p.PricingStatus, fmt.Sprintf("$%.4f/sf/mo (%s, verified %t)", p.RentPSF, p.RentSource, p.RentVerified))
	t.row("momentum", p.MomentumStatus, fmt.Sprintf("industrial %s, housing %s", p.IndustrialRating, p.HousingRating))
	t.row("fusionDemand", p.DemandStatus, fmt.Sprintf("score %.0f, gap %.0f sf, %s timing", p.DemandScore, p.SupplyGap, p.MarketTiming))
	t.row("competitive", p.CompetitiveStatus, fmt.Sprintf("%s, %.2f sf/capita, pressure %.0f", p.Saturation, p.SqftPerCapita, p.PressureScore))
	t.row("feasibility", p.FeasibilityStatus, fmt.Sprintf("cap %.2f%%, DSCR %.2f, ROI %.1f%%, TDC $%.0f", p.CapRate, p.DSCR, p.ROI5yr, p.TotalDevelopmentCost))
	t.row("reverseFeasibility", p.ReverseStatus, fmt.Sprintf("target $%.4f/sf/mo, max land $%.0f/ac", p.TargetRentPSF, p.MaxLandPricePerAcre))
	t.footer("verdict", p.VerdictStatus, fmt.Sprintf("%s %.1f (confidence %.2f, %s weights)", p.Decision, p.Score, p.Confidence, p.WeightProfile))
	return t
}

func validationTable(m Mode, r pipeline.ValidationReport) *tableBuilder {
	t := newTable(m, "Validation")
	t.header("Level", "Field", "Message")
	for _, b := range r.Blockers {
		t.row("blocker", b.Field, b.Message)
	}
	for _, w := range r.Warnings {
		t.row("warning", w.Field, w.Message)
	}
	return t
}

func flawTable(m Mode, v spoke.Verdict) *tableBuilder {
	t := newTable(m, "Flaws")
	t.header("Severity", "Code", "Message")
	t.columns(column{number: 3, maxWidth: 70})
	for _, f := range v.FatalFlaws {
		t.row(f.Severity, f.Code, f.Message)
	}
	for _, f := range v.Warnings {
		t.row(f.Severity, f.Code, f.Message)
	}
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
