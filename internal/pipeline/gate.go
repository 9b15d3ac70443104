// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/storagegate/underwrite/internal/site"
	"github.com/storagegate/underwrite/internal/spoke"
)

// gateSchema holds the structural rules a candidate must satisfy before any
// spoke runs. Every violation is a blocker.
const gateSchema = `
opportunityId: string & !=""
zip:           string & =~"^[0-9]{5}$"
state:         string & =~"^[A-Z]{2}$"
population:    int & >0
acreage:       number & >0
`

// blockerMessages maps schema fields to the message reported for them.
var blockerMessages = map[string]string{
	"opportunityId": "opportunityId is required",
	"zip":           "zip must be exactly 5 digits",
	"state":         "state must be a two-letter upper-case code",
	"population":    "population must be a positive integer",
	"acreage":       "acreage must be positive",
}

// Issue is one gate finding.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ValidationReport is the gate's verdict on a candidate.
type ValidationReport struct {
	Valid    bool    `json:"valid"`
	Blockers []Issue `json:"blockers"`
	Warnings []Issue `json:"warnings"`
}

// BlockerMessages lists blocker messages in report order.
func (r ValidationReport) BlockerMessages() []string {
	out := make([]string, len(r.Blockers))
	for i, b := range r.Blockers {
		out[i] = b.Message
	}
	return out
}

// gateDoc is the resolved view the schema is unified with. Acreage is
// checked after run options are applied.
type gateDoc struct {
	OpportunityID string  `json:"opportunityId"`
	Zip           string  `json:"zip"`
	State         string  `json:"state"`
	Population    int     `json:"population"`
	Acreage       float64 `json:"acreage"`
}

// Gate validates candidates. A cue.Context is not safe for concurrent use,
// so checks are serialised.
type Gate struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

func NewGate() (*Gate, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(gateSchema, cue.Filename("gate.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile gate schema: %w", err)
	}
	return &Gate{ctx: ctx, schema: schema}, nil
}

// Check runs the blocking schema checks and the advisory warnings.
func (g *Gate) Check(in spoke.Inputs, c site.CandidateSite) ValidationReport {
	report := ValidationReport{
		Blockers: g.blockers(in),
		Warnings: warnings(in, c),
	}
	report.Valid = len(report.Blockers) == 0
	return report
}

func (g *Gate) blockers(in spoke.Inputs) []Issue {
	doc, err := json.Marshal(gateDoc{
		OpportunityID: in.OpportunityID,
		Zip:           in.Zip,
		State:         in.State,
		Population:    in.Population,
		Acreage:       in.Acreage,
	})
	if err != nil {
		return []Issue{{Field: "candidate", Message: "candidate could not be encoded", Detail: err.Error()}}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	data := g.ctx.CompileBytes(doc, cue.Filename("candidate.json"))
	if err := data.Err(); err != nil {
		return []Issue{{Field: "candidate", Message: "candidate could not be read", Detail: err.Error()}}
	}
	err = g.schema.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return []Issue{}
	}

	issues := []Issue{}
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if seen[field] {
			continue
		}
		seen[field] = true
		msg, ok := blockerMessages[field]
		if !ok {
			msg = e.Error()
		}
		issues = append(issues, Issue{Field: field, Message: msg, Detail: e.Error()})
	}
	return issues
}

// warningRule flags an input gap that degrades the analysis without
// blocking it.
type warningRule struct {
	field   string
	applies func(in spoke.Inputs, c site.CandidateSite) bool
	message func(in spoke.Inputs, c site.CandidateSite) string
}

func fixed(msg string) func(spoke.Inputs, site.CandidateSite) string {
	return func(spoke.Inputs, site.CandidateSite) string { return msg }
}

var warningRules = []warningRule{
	{
		field:   "site.zoningCode",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return in.ZoningCode == "" },
		message: fixed("no zoning code; zoning will be stubbed"),
	},
	{
		field:   "site.avgSlopePct",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return !in.SlopeKnown },
		message: fixed("no slope survey; flat site assumed"),
	},
	{
		field:   "site.soilType",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return in.Soil == "unknown" },
		message: fixed("no soil type; medium infiltration assumed"),
	},
	{
		field:   "macro.competitors",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return len(in.Competitors) == 0 },
		message: fixed("no competitors reported; supply may be understated"),
	},
	{
		field:   "pricing.observations",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return len(in.Pricing.Observations) == 0 },
		message: fixed("no street-rate observations; rents are unverified"),
	},
	{
		field:   "macro.demandSqft",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return in.DemandDerived && in.SupplyDerived },
		message: fixed("no demand or supply sqft; both derived from population and competitors"),
	},
	{
		field:   "macro.industrial",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool { return in.Industrial == nil && in.Housing == nil },
		message: fixed("no industrial or housing signals; momentum will be stubbed"),
	},
	{
		field: "recon.method",
		applies: func(in spoke.Inputs, _ site.CandidateSite) bool {
			return in.Recon != nil && strings.EqualFold(in.Recon.Method, site.ReconManual)
		},
		message: func(in spoke.Inputs, _ site.CandidateSite) string {
			return fmt.Sprintf("market data collected manually (confidence %.2f)", in.Recon.Confidence)
		},
	},
}

func warnings(in spoke.Inputs, c site.CandidateSite) []Issue {
	out := []Issue{}
	for _, rule := range warningRules {
		if rule.applies(in, c) {
			out = append(out, Issue{Field: rule.field, Message: rule.message(in, c)})
		}
	}
	return out
}
