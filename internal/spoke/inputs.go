// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"strings"

	"github.com/storagegate/underwrite/internal/site"
)

const sqftPerAcre = 43560.0

// Inputs is the fully-populated view of a candidate. Every default is
// decided here, once, so the formula code never has to guess.
type Inputs struct {
	OpportunityID string
	State         string
	Zip           string
	County        string
	City          string

	Acreage         float64
	LandCostPerAcre float64
	LandCostDefault bool

	ZoningCode          string
	LotCoverageLimitPct float64
	LotCoverageFromCode bool

	SlopePct   float64
	SlopeKnown bool
	Soil       string

	Population    int
	DemandSqft    float64
	DemandDerived bool
	SupplySqft    float64
	SupplyDerived bool
	Competitors   []site.Competitor
	Industrial    *site.Industrial
	Housing       *site.Housing

	Pricing site.Pricing
	Toggles site.Toggles
	Recon   *site.Recon
}

// Resolve applies run options and doctrine defaults to a candidate.
func Resolve(c site.CandidateSite, opts site.Options, d Doctrine) Inputs {
	in := Inputs{
		OpportunityID: strings.TrimSpace(c.OpportunityID),
		State:         c.StateCode(),
		Zip:           strings.TrimSpace(c.Location.Zip),
		County:        c.Location.County,
		City:          c.Location.City,
		Acreage:       c.Site.Acreage,
		ZoningCode:    strings.TrimSpace(c.Site.ZoningCode),
		Soil:          normalizeSoil(c.Site.SoilType),
		Population:    c.Macro.Population,
		Competitors:   c.Macro.Competitors,
		Industrial:    c.Macro.Industrial,
		Housing:       c.Macro.Housing,
		Pricing:       c.Pricing,
		Toggles:       c.Toggles,
		Recon:         c.Recon,
	}

	if opts.Acreage > 0 {
		in.Acreage = opts.Acreage
	}

	switch {
	case opts.LandCostPerAcre > 0:
		in.LandCostPerAcre = opts.LandCostPerAcre
	case c.Site.LandCostPerAcre > 0:
		in.LandCostPerAcre = c.Site.LandCostPerAcre
	default:
		in.LandCostPerAcre = d.DefaultLandCostPerAcre
		in.LandCostDefault = true
	}

	if c.Site.MaxLotCoveragePct != nil {
		in.LotCoverageLimitPct = *c.Site.MaxLotCoveragePct
	} else {
		in.LotCoverageLimitPct = lookupDistrict(in.ZoningCode).maxCoverage
		in.LotCoverageFromCode = true
	}

	if c.Site.AvgSlopePct != nil {
		in.SlopePct = *c.Site.AvgSlopePct
		in.SlopeKnown = true
	}

	var nearbySqft float64
	for _, comp := range c.Macro.Competitors {
		if comp.DistanceMiles <= outerRadiusMiles {
			nearbySqft += comp.Sqft
		}
	}
	if c.Macro.DemandSqft != nil {
		in.DemandSqft = *c.Macro.DemandSqft
	} else {
		in.DemandSqft = float64(c.Macro.Population) * d.SqftPerCapita
		in.DemandDerived = true
	}
	if c.Macro.SupplySqft != nil {
		in.SupplySqft = *c.Macro.SupplySqft
	} else {
		in.SupplySqft = nearbySqft
		in.SupplyDerived = true
	}

	return in
}

// SiteSqft is the gross parcel area.
func (in Inputs) SiteSqft() float64 { return in.Acreage * sqftPerAcre }

func normalizeSoil(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "unknown"
	case strings.Contains(s, "sand"), strings.Contains(s, "gravel"):
		return "sand"
	case strings.Contains(s, "loam"), strings.Contains(s, "silt"):
		return "loam"
	case strings.Contains(s, "clay"):
		return "clay"
	case strings.Contains(s, "rock"), strings.Contains(s, "bedrock"), strings.Contains(s, "shale"):
		return "rock"
	}
	return "unknown"
}
