// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
	"strings"
)

type Decision string

const (
	DecisionProceed  Decision = "PROCEED"
	DecisionEvaluate Decision = "EVALUATE"
	DecisionWalk     Decision = "WALK"
)

// stubComponentScore is what a non-ok spoke contributes to the aggregate.
const stubComponentScore = 50.0

// Weights of the verdict aggregate. Civil is zero in the legacy profile.
type Weights struct {
	Feasibility float64 `json:"feasibility"`
	Fusion      float64 `json:"fusion"`
	Zoning      float64 `json:"zoning"`
	Permit      float64 `json:"permit"`
	Civil       float64 `json:"civil"`
}

var weightProfiles = map[string]Weights{
	ProfileCanonical: {Feasibility: 0.30, Fusion: 0.25, Zoning: 0.15, Permit: 0.15, Civil: 0.15},
	ProfileLegacy:    {Feasibility: 0.35, Fusion: 0.25, Zoning: 0.20, Permit: 0.20},
}

// WeightsFor returns the named profile, falling back to canonical.
func WeightsFor(profile string) Weights {
	if w, ok := weightProfiles[profile]; ok {
		return w
	}
	return weightProfiles[ProfileCanonical]
}

type ComponentScores struct {
	Feasibility float64 `json:"feasibility"`
	Fusion      float64 `json:"fusion"`
	Zoning      float64 `json:"zoning"`
	Permit      float64 `json:"permit"`
	Civil       float64 `json:"civil"`
	Weighted    float64 `json:"weighted"`
	Adjustment  float64 `json:"adjustment"`
}

type Verdict struct {
	Decision      Decision        `json:"decision"`
	Score         float64         `json:"score"`
	Confidence    float64         `json:"confidence"`
	WeightProfile string          `json:"weightProfile"`
	Components    ComponentScores `json:"components"`
	KeyFactors    []string        `json:"keyFactors"`
	Risks         []string        `json:"risks"`
	NextSteps     []string        `json:"nextSteps"`
	FatalFlaws    []Flaw          `json:"fatalFlaws"`
	Warnings      []Flaw          `json:"warnings"`
}

// VerdictInput carries every upstream result. Civil must be final.
type VerdictInput struct {
	Zoning      Result[Zoning]
	Permit      Result[Permit]
	Civil       Result[Civil]
	Pricing     Result[Pricing]
	Momentum    Result[Momentum]
	Fusion      Result[FusionDemand]
	Competitive Result[CompetitivePressure]
	Feasibility Result[Feasibility]
	Reverse     Result[ReverseFeasibility]
}

// VerdictSpoke is a pure function of its input: weighted aggregate plus the
// fatal-flaw override.
type VerdictSpoke struct {
	doctrine Doctrine
}

func NewVerdictSpoke(d Doctrine) *VerdictSpoke {
	return &VerdictSpoke{doctrine: d}
}

func (s *VerdictSpoke) Name() string { return "verdict" }

func (s *VerdictSpoke) Default() Verdict {
	return Verdict{
		Decision:      DecisionWalk,
		WeightProfile: s.profile(),
		KeyFactors:    []string{},
		Risks:         []string{},
		NextSteps:     []string{"Resolve input blockers and re-run the evaluation"},
		FatalFlaws:    []Flaw{},
		Warnings:      []Flaw{},
	}
}

func (s *VerdictSpoke) profile() string {
	if _, ok := weightProfiles[s.doctrine.WeightProfile]; ok {
		return s.doctrine.WeightProfile
	}
	return ProfileCanonical
}

func (s *VerdictSpoke) Run(_ context.Context, vi VerdictInput) (Result[Verdict], error) {
	d := s.doctrine
	v := Verdict{
		WeightProfile: s.profile(),
		KeyFactors:    []string{},
		Risks:         []string{},
		NextSteps:     []string{},
		FatalFlaws:    []Flaw{},
		Warnings:      []Flaw{},
	}

	zoning, zoningOK := vi.Zoning.Resolve(Zoning{})
	permit, permitOK := vi.Permit.Resolve(Permit{})
	civil, civilOK := vi.Civil.Resolve(Civil{})
	pricing, pricingOK := vi.Pricing.Resolve(Pricing{})
	fusion, fusionOK := vi.Fusion.Resolve(FusionDemand{})
	comp, compOK := vi.Competitive.Resolve(CompetitivePressure{})
	feas, feasOK := vi.Feasibility.Resolve(Feasibility{})
	rev, revOK := vi.Reverse.Resolve(ReverseFeasibility{})

	c := ComponentScores{
		Feasibility: pick(feasOK, feas.FeasibilityScore),
		Fusion:      pick(fusionOK, fusion.DemandScore),
		Zoning:      pick(zoningOK, zoning.ZoningScore),
		Permit:      pick(permitOK, permit.PermitScore),
		Civil:       pick(civilOK, civil.CivilScore),
	}
	w := WeightsFor(v.WeightProfile)
	c.Weighted = c.Feasibility*w.Feasibility + c.Fusion*w.Fusion + c.Zoning*w.Zoning + c.Permit*w.Permit + c.Civil*w.Civil

	if compOK {
		switch comp.Saturation {
		case Oversupplied:
			c.Adjustment -= 10
		case Undersupplied:
			c.Adjustment += 5
		}
		switch {
		case comp.PressureScore >= 70:
			c.Adjustment -= 5
		case comp.PressureScore <= 30:
			c.Adjustment += 5
		}
	}
	v.Components = c
	v.Score = math.Round(clamp(c.Weighted+c.Adjustment, 0, 100)*10) / 10
	v.Confidence = math.Min(math.Min(d.MaxConfidencePct, ConfidenceCeilingPct), v.Score) / 100

	// Fatal flaws only fire on computed results; a stub never condemns a site.
	if zoningOK && zoning.Classification == ZoneProhibited {
		v.FatalFlaws = append(v.FatalFlaws, fatal(FlawZoningProhibited,
			fmt.Sprintf("self-storage prohibited in %s (%s)", zoning.Code, zoning.District)))
	}
	if compOK && comp.Saturation == Oversupplied {
		v.FatalFlaws = append(v.FatalFlaws, fatal(FlawMarketOversupplied,
			fmt.Sprintf("market oversupplied at %.2f sqft/capita", comp.SqftPerCapita)).withNumbers(oversuppliedPerCapita, comp.SqftPerCapita))
	}
	if feasOK && feas.DSCR < d.FatalDSCR {
		v.FatalFlaws = append(v.FatalFlaws, fatal(FlawDSCRBelowFloor,
			fmt.Sprintf("DSCR %.2f cannot cover debt service", feas.DSCR)).withNumbers(d.FatalDSCR, feas.DSCR))
	}
	if civilOK && civil.CivilRating == CivilProhibitive {
		v.FatalFlaws = append(v.FatalFlaws, fatal(FlawCivilProhibitive,
			fmt.Sprintf("civil score %.0f is prohibitive", civil.CivilScore)).withNumbers(40, civil.CivilScore))
	}
	if civilOK && !civil.LotCoverage.IsFeasible {
		v.FatalFlaws = append(v.FatalFlaws, fatal(FlawLotCoverage,
			fmt.Sprintf("lot coverage %.1f%% exceeds %.0f%% allowed", civil.LotCoverage.RequiredPct, civil.LotCoverage.AllowedPct)).
			withNumbers(civil.LotCoverage.AllowedPct, civil.LotCoverage.RequiredPct))
	}

	v.Warnings = s.collectWarnings(vi, civil, civilOK, pricing, pricingOK, permit, permitOK, feas, feasOK)

	viable := feasOK && feas.IsViable
	switch {
	case len(v.FatalFlaws) > 0:
		v.Decision = DecisionWalk
	case v.Score >= d.ProceedScore && viable:
		v.Decision = DecisionProceed
	case v.Score >= d.EvaluateScore || viable:
		v.Decision = DecisionEvaluate
	default:
		v.Decision = DecisionWalk
	}

	v.KeyFactors = keyFactors(zoning, zoningOK, permit, permitOK, civil, civilOK, fusion, fusionOK, comp, compOK, feas, feasOK)
	v.Risks = risks(v, zoning, zoningOK, fusion, fusionOK, comp, compOK)
	v.NextSteps = nextSteps(v.Decision, zoning, zoningOK, pricing, pricingOK, civil, civilOK, rev, revOK, feas, comp, compOK)

	notes := fmt.Sprintf("%s at %.1f (confidence %.2f, %s weights)", v.Decision, v.Score, v.Confidence, v.WeightProfile)
	if len(v.FatalFlaws) > 0 {
		codes := make([]string, len(v.FatalFlaws))
		for i, f := range v.FatalFlaws {
			codes[i] = string(f.Code)
		}
		notes += "; fatal: " + strings.Join(codes, ", ")
	}
	return Ok(v, notes), nil
}

func (s *VerdictSpoke) collectWarnings(vi VerdictInput, civil Civil, civilOK bool, pricing Pricing, pricingOK bool,
	permit Permit, permitOK bool, feas Feasibility, feasOK bool,
) []Flaw {
	out := []Flaw{}
	if feasOK {
		out = append(out, feas.Warnings...)
	}
	if civilOK {
		if civil.Topography.RetainingWallsRequired {
			out = append(out, warning(WarnRetainingWalls,
				fmt.Sprintf("%s slope (%.1f%%) requires retaining walls", civil.Topography.Band, civil.Topography.AvgSlopePct)))
		}
		if !civil.Parking.ADACompliant {
			out = append(out, warning(WarnADA,
				fmt.Sprintf("average slope %.1f%% exceeds ADA maximum", civil.Topography.AvgSlopePct)).withNumbers(adaMaxSlopePct, civil.Topography.AvgSlopePct))
		}
	}
	if pricingOK && pricing.Source == PricingBlended && !pricing.Verified {
		out = append(out, warning(WarnPricingVariance,
			fmt.Sprintf("observed rents differ from benchmark by %.1f%%", pricing.VariancePct)).withNumbers(s.doctrine.PricingVariance, pricing.VariancePct))
	}
	if permitOK && (permit.Complexity == ComplexityHigh || permit.Complexity == ComplexityVeryHigh) {
		out = append(out, warning(WarnPermitComplexityHigh,
			fmt.Sprintf("%s permitting: ~%d weeks", permit.Complexity, permit.TimelineWeeks)))
	}

	degraded := []struct {
		name   string
		status Status
		notes  string
	}{
		{"zoning", vi.Zoning.Status(), vi.Zoning.Notes()},
		{"permits", vi.Permit.Status(), vi.Permit.Notes()},
		{"civil", vi.Civil.Status(), vi.Civil.Notes()},
		{"pricing", vi.Pricing.Status(), vi.Pricing.Notes()},
		{"momentum", vi.Momentum.Status(), vi.Momentum.Notes()},
		{"fusionDemand", vi.Fusion.Status(), vi.Fusion.Notes()},
		{"competitive", vi.Competitive.Status(), vi.Competitive.Notes()},
		{"feasibility", vi.Feasibility.Status(), vi.Feasibility.Notes()},
		{"reverseFeasibility", vi.Reverse.Status(), vi.Reverse.Notes()},
	}
	for _, sp := range degraded {
		if sp.status != StatusOK {
			out = append(out, warning(WarnStubbedSpoke, fmt.Sprintf("%s %s: %s", sp.name, sp.status, sp.notes)))
		}
	}
	return out
}

func keyFactors(zoning Zoning, zoningOK bool, permit Permit, permitOK bool, civil Civil, civilOK bool,
	fusion FusionDemand, fusionOK bool, comp CompetitivePressure, compOK bool, feas Feasibility, feasOK bool,
) []string {
	out := []string{}
	if zoningOK && zoning.Classification == ZonePermitted {
		if zoning.ByRight {
			out = append(out, fmt.Sprintf("Self-storage permitted by right in %s", zoning.Code))
		} else {
			out = append(out, fmt.Sprintf("Self-storage permitted in %s", zoning.Code))
		}
	}
	if feasOK && feas.IsViable {
		out = append(out, fmt.Sprintf("Meets return targets: cap rate %.2f%%, DSCR %.2f, 5-yr ROI %.1f%%", feas.CapRate, feas.DSCR, feas.ROI5yr))
	}
	if fusionOK && fusion.DemandScore >= 70 {
		out = append(out, fmt.Sprintf("Strong demand score %.0f", fusion.DemandScore))
	}
	if fusionOK && fusion.MarketTiming == TimingFavorable {
		out = append(out, fmt.Sprintf("Favorable timing with %.0f sqft supply gap", fusion.SupplyGap))
	}
	if compOK && comp.Saturation == Undersupplied {
		out = append(out, fmt.Sprintf("Undersupplied trade area at %.2f sqft/capita", comp.SqftPerCapita))
	}
	if civilOK && civil.CivilRating == CivilFavorable {
		out = append(out, fmt.Sprintf("Favorable civil profile (score %.0f)", civil.CivilScore))
	}
	if permitOK && permit.Complexity == ComplexityLow {
		out = append(out, fmt.Sprintf("Low permitting complexity (~%d weeks)", permit.TimelineWeeks))
	}
	return out
}

func risks(v Verdict, zoning Zoning, zoningOK bool, fusion FusionDemand, fusionOK bool, comp CompetitivePressure, compOK bool) []string {
	out := []string{}
	for _, f := range v.FatalFlaws {
		out = append(out, "FATAL: "+f.Message)
	}
	for _, f := range v.Warnings {
		out = append(out, f.Message)
	}
	if zoningOK && zoning.RequiresHearing {
		out = append(out, fmt.Sprintf("Conditional use in %s requires a public hearing", zoning.Code))
	}
	if fusionOK && fusion.DemandScore < 45 {
		out = append(out, fmt.Sprintf("Weak demand score %.0f", fusion.DemandScore))
	}
	if fusionOK && fusion.MarketTiming == TimingUnfavorable {
		out = append(out, fmt.Sprintf("Supply exceeds demand by %.0f sqft", -fusion.SupplyGap))
	}
	if compOK && comp.PressureScore >= 70 {
		out = append(out, fmt.Sprintf("High competitive pressure (%.0f) with %d facilities within 5 miles", comp.PressureScore, comp.Within5Miles))
	}
	return out
}

func nextSteps(dec Decision, zoning Zoning, zoningOK bool, pricing Pricing, pricingOK bool, civil Civil, civilOK bool,
	rev ReverseFeasibility, revOK bool, feas Feasibility, comp CompetitivePressure, compOK bool,
) []string {
	out := []string{}
	switch dec {
	case DecisionProceed:
		if revOK {
			out = append(out, fmt.Sprintf("Submit LOI at or below $%.0f/acre", rev.MaxLandPricePerAcre))
		} else {
			out = append(out, "Submit LOI at the modeled land price")
		}
		out = append(out, "Order Phase I ESA, ALTA survey and title commitment")
		if zoningOK && zoning.RequiresHearing {
			out = append(out, "Schedule pre-application meeting for conditional use approval")
		} else {
			out = append(out, "Confirm by-right use in writing with planning staff")
		}
		if civilOK && civil.Stormwater.DetentionRequired {
			out = append(out, "Engage civil engineer for detention design")
		}
	case DecisionEvaluate:
		if !pricingOK || pricing.Source == PricingDefault || !pricing.Verified {
			out = append(out, "Verify street rates with a secret-shop of nearby facilities")
		}
		if revOK && rev.LandCushionPct < 0 {
			out = append(out, fmt.Sprintf("Negotiate land to $%.0f/acre or below", rev.MaxLandPricePerAcre))
		}
		if civilOK && (civil.Topography.RetainingWallsRequired || civil.Stormwater.InfiltrationRating == "low") {
			out = append(out, "Commission geotechnical and topographic survey")
		}
		if !feas.IsViable {
			out = append(out, "Test alternative product mix or phasing to lift returns")
		}
		out = append(out, "Re-run underwriting once open items are resolved")
	case DecisionWalk:
		out = append(out, "Archive opportunity with recorded fatal flaws and risks")
		if compOK && comp.Saturation == Oversupplied {
			out = append(out, "Monitor trade area for absorption of existing supply")
		}
		if zoningOK && zoning.Classification == ZoneProhibited {
			out = append(out, "Revisit only if a rezoning path is confirmed")
		}
	}
	return out
}

func pick(ok bool, score float64) float64 {
	if ok {
		return score
	}
	return stubComponentScore
}

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
