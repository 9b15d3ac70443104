// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"
	"strings"

	"github.com/storagegate/underwrite/internal/spoke"
)

// Source is everything a run produced that the vault records.
type Source struct {
	RunID     string
	Timestamp string

	OpportunityID string
	Zip           string
	State         string
	County        string
	City          string

	Zoning      spoke.Result[spoke.Zoning]
	Permit      spoke.Result[spoke.Permit]
	Civil       spoke.Result[spoke.Civil]
	Pricing     spoke.Result[spoke.Pricing]
	Momentum    spoke.Result[spoke.Momentum]
	Fusion      spoke.Result[spoke.FusionDemand]
	Competitive spoke.Result[spoke.CompetitivePressure]
	Feasibility spoke.Result[spoke.Feasibility]
	Reverse     spoke.Result[spoke.ReverseFeasibility]
	Verdict     spoke.Result[spoke.Verdict]
}

// Payload is the flat, immutable record persisted for one run. Values of
// non-ok spokes are their stub defaults; the matching status field says so.
type Payload struct {
	RunID     string `json:"runId"`
	Timestamp string `json:"timestamp"`

	OpportunityID string `json:"opportunityId"`
	Zip           string `json:"zip"`
	State         string `json:"state"`
	County        string `json:"county,omitempty"`
	City          string `json:"city,omitempty"`

	ZoningStatus         spoke.Status         `json:"zoningStatus"`
	ZoningCode           string               `json:"zoningCode"`
	ZoningClassification spoke.Classification `json:"zoningClassification"`
	ZoningScore          float64              `json:"zoningScore"`

	PermitStatus        spoke.Status     `json:"permitStatus"`
	PermitComplexity    spoke.Complexity `json:"permitComplexity"`
	PermitTimelineWeeks int              `json:"permitTimelineWeeks"`
	PermitFee           float64          `json:"permitFee"`

	CivilStatus         spoke.Status      `json:"civilStatus"`
	CivilScore          float64           `json:"civilScore"`
	CivilRating         spoke.CivilRating `json:"civilRating"`
	CivilCostAdder      float64           `json:"civilCostAdder"`
	LotCoverageFeasible bool              `json:"lotCoverageFeasible"`
	DevelopableAcres    float64           `json:"developableAcres"`

	PricingStatus spoke.Status        `json:"pricingStatus"`
	RentPSF       float64             `json:"rentPsf"`
	RentSource    spoke.PricingSource `json:"rentSource"`
	RentVerified  bool                `json:"rentVerified"`

	MomentumStatus   spoke.Status `json:"momentumStatus"`
	IndustrialRating spoke.Rating `json:"industrialRating"`
	HousingRating    spoke.Rating `json:"housingRating"`

	DemandStatus spoke.Status       `json:"demandStatus"`
	DemandScore  float64            `json:"demandScore"`
	SupplyGap    float64            `json:"supplyGap"`
	MarketTiming spoke.MarketTiming `json:"marketTiming"`

	CompetitiveStatus spoke.Status     `json:"competitiveStatus"`
	Saturation        spoke.Saturation `json:"saturation"`
	SqftPerCapita     float64          `json:"sqftPerCapita"`
	PressureScore     float64          `json:"pressureScore"`

	FeasibilityStatus    spoke.Status `json:"feasibilityStatus"`
	LandCost             float64      `json:"landCost"`
	TotalDevelopmentCost float64      `json:"totalDevelopmentCost"`
	NOI                  float64      `json:"noi"`
	CapRate              float64      `json:"capRate"`
	DSCR                 float64      `json:"dscr"`
	ROI5yr               float64      `json:"roi5yr"`
	IsViable             bool         `json:"isViable"`

	ReverseStatus       spoke.Status `json:"reverseStatus"`
	TargetRentPSF       float64      `json:"targetRentPsf"`
	MaxLandPricePerAcre float64      `json:"maxLandPricePerAcre"`

	VerdictStatus spoke.Status   `json:"verdictStatus"`
	Decision      spoke.Decision `json:"decision"`
	Score         float64        `json:"score"`
	Confidence    float64        `json:"confidence"`
	WeightProfile string         `json:"weightProfile"`
	FatalFlaws    []string       `json:"fatalFlaws"`
	Warnings      []string       `json:"warnings"`

	Summary Summary `json:"summary"`
}

// Summary is the human-facing digest of a run.
type Summary struct {
	Headline   string   `json:"headline"`
	KeyFactors []string `json:"keyFactors"`
	Risks      []string `json:"risks"`
	NextSteps  []string `json:"nextSteps"`
}

// headlineRule picks the summary headline. Rules are evaluated in order; the
// first match wins.
type headlineRule struct {
	match  func(p Payload) bool
	render func(p Payload) string
}

var headlineRules = []headlineRule{
	{
		match:  func(p Payload) bool { return p.VerdictStatus != spoke.StatusOK },
		render: func(p Payload) string { return "Not evaluated: verdict " + string(p.VerdictStatus) },
	},
	{
		match: func(p Payload) bool { return len(p.FatalFlaws) > 0 },
		render: func(p Payload) string {
			return fmt.Sprintf("WALK: %s", strings.Join(p.FatalFlaws, ", "))
		},
	},
	{
		match: func(p Payload) bool { return p.Decision == spoke.DecisionProceed },
		render: func(p Payload) string {
			return fmt.Sprintf("PROCEED at %.1f: cap %.2f%%, DSCR %.2f", p.Score, p.CapRate, p.DSCR)
		},
	},
	{
		match: func(p Payload) bool { return p.Decision == spoke.DecisionEvaluate && !p.IsViable },
		render: func(p Payload) string {
			return fmt.Sprintf("EVALUATE at %.1f: returns below target", p.Score)
		},
	},
	{
		match: func(Payload) bool { return true },
		render: func(p Payload) string {
			return fmt.Sprintf("%s at %.1f", p.Decision, p.Score)
		},
	},
}

// Mapper flattens a run into a Payload.
type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

// Map builds the payload. Identity fields are copied verbatim, never
// substituted, so Validate can reject incomplete records.
func (m *Mapper) Map(src Source) Payload {
	p := Payload{
		RunID:         src.RunID,
		Timestamp:     src.Timestamp,
		OpportunityID: src.OpportunityID,
		Zip:           src.Zip,
		State:         src.State,
		County:        src.County,
		City:          src.City,
	}

	z := src.Zoning.Snapshot()
	p.ZoningStatus, p.ZoningCode, p.ZoningClassification, p.ZoningScore =
		src.Zoning.Status(), z.Code, z.Classification, z.ZoningScore

	pm := src.Permit.Snapshot()
	p.PermitStatus, p.PermitComplexity, p.PermitTimelineWeeks, p.PermitFee =
		src.Permit.Status(), pm.Complexity, pm.TimelineWeeks, pm.EstimatedFee

	c := src.Civil.Snapshot()
	p.CivilStatus, p.CivilScore, p.CivilRating = src.Civil.Status(), c.CivilScore, c.CivilRating
	p.CivilCostAdder, p.LotCoverageFeasible, p.DevelopableAcres = c.TotalCivilCostAdder, c.LotCoverage.IsFeasible, c.DevelopableAcres

	pr := src.Pricing.Snapshot()
	p.PricingStatus, p.RentPSF, p.RentSource, p.RentVerified = src.Pricing.Status(), pr.BlendedRentPSF, pr.Source, pr.Verified

	mo := src.Momentum.Snapshot()
	p.MomentumStatus, p.IndustrialRating, p.HousingRating = src.Momentum.Status(), mo.IndustrialRating, mo.HousingRating

	fd := src.Fusion.Snapshot()
	p.DemandStatus, p.DemandScore, p.SupplyGap, p.MarketTiming = src.Fusion.Status(), fd.DemandScore, fd.SupplyGap, fd.MarketTiming

	cp := src.Competitive.Snapshot()
	p.CompetitiveStatus, p.Saturation, p.SqftPerCapita, p.PressureScore =
		src.Competitive.Status(), cp.Saturation, cp.SqftPerCapita, cp.PressureScore

	f := src.Feasibility.Snapshot()
	p.FeasibilityStatus = src.Feasibility.Status()
	p.LandCost, p.TotalDevelopmentCost, p.NOI = f.LandCost, f.TotalDevelopmentCost, f.NOI
	p.CapRate, p.DSCR, p.ROI5yr, p.IsViable = f.CapRate, f.DSCR, f.ROI5yr, f.IsViable

	rv := src.Reverse.Snapshot()
	p.ReverseStatus, p.TargetRentPSF, p.MaxLandPricePerAcre = src.Reverse.Status(), rv.TargetRentPSF, rv.MaxLandPricePerAcre

	v := src.Verdict.Snapshot()
	p.VerdictStatus, p.Decision, p.Score, p.Confidence, p.WeightProfile =
		src.Verdict.Status(), v.Decision, v.Score, v.Confidence, v.WeightProfile
	p.FatalFlaws = flawCodes(v.FatalFlaws)
	p.Warnings = flawCodes(v.Warnings)

	p.Summary = Summary{
		KeyFactors: nonNil(v.KeyFactors),
		Risks:      nonNil(v.Risks),
		NextSteps:  nonNil(v.NextSteps),
	}
	for _, rule := range headlineRules {
		if rule.match(p) {
			p.Summary.Headline = rule.render(p)
			break
		}
	}
	return p
}

// Validation is the outcome of Validate.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate rejects payloads missing identity or a computed verdict.
func Validate(p Payload) Validation {
	errs := []string{}
	if strings.TrimSpace(p.OpportunityID) == "" {
		errs = append(errs, "opportunityId is required")
	}
	if strings.TrimSpace(p.Zip) == "" {
		errs = append(errs, "zip is required")
	}
	if strings.TrimSpace(p.State) == "" {
		errs = append(errs, "state is required")
	}
	switch {
	case p.Decision == "":
		errs = append(errs, "verdict is required")
	case p.VerdictStatus != spoke.StatusOK:
		errs = append(errs, fmt.Sprintf("verdict was not computed (status %s)", p.VerdictStatus))
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func flawCodes(flaws []spoke.Flaw) []string {
	out := make([]string, 0, len(flaws))
	for _, f := range flaws {
		out = append(out, string(f.Code))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
