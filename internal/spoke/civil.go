// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Civil engineering constants.
const (
	sqftPerRentableStall  = 7500.0
	minParkingStalls      = 5
	sqftPerStall          = 350.0
	adaMaxSlopePct        = 2.0
	landscapeBufferPct    = 12.0
	imperviousCoefficient = 0.95
	landscapedCoefficient = 0.25
	gradingCostPerAcre    = 18000.0
	retainingWallPerAcre  = 95000.0
	detentionCostPerAcre  = 85000.0
	retentionSurcharge    = 120000.0
	bmpSurcharge          = 40000.0
	bondPremiumRate       = 0.02
	defaultStringency     = 55
	detentionStringency   = 30
	bmpStringency         = 75
	retentionStringency   = 85
)

type CivilRating string

const (
	CivilFavorable   CivilRating = "favorable"
	CivilModerate    CivilRating = "moderate"
	CivilChallenging CivilRating = "challenging"
	CivilProhibitive CivilRating = "prohibitive"
)

type SlopeBand string

const (
	SlopeFlat     SlopeBand = "flat"
	SlopeGentle   SlopeBand = "gentle"
	SlopeModerate SlopeBand = "moderate"
	SlopeSteep    SlopeBand = "steep"
)

type Parking struct {
	RequiredStalls   int     `json:"requiredStalls"`
	AccessibleStalls int     `json:"accessibleStalls"`
	ParkingAreaSqft  float64 `json:"parkingAreaSqft"`
	ADACompliant     bool    `json:"adaCompliant"`
}

type LotCoverage struct {
	FootprintSqft float64 `json:"footprintSqft"`
	ParkingSqft   float64 `json:"parkingSqft"`
	LandscapeSqft float64 `json:"landscapeSqft"`
	RequiredPct   float64 `json:"requiredPct"`
	AllowedPct    float64 `json:"allowedPct"`
	IsFeasible    bool    `json:"isFeasible"`
}

type Topography struct {
	AvgSlopePct               float64   `json:"avgSlopePct"`
	Band                      SlopeBand `json:"band"`
	BuildableAreaReductionPct float64   `json:"buildableAreaReductionPct"`
	GradingCostMultiplier     float64   `json:"gradingCostMultiplier"`
	RetainingWallsRequired    bool      `json:"retainingWallsRequired"`
	GradingCost               float64   `json:"gradingCost"`
}

type Stormwater struct {
	RunoffCoefficient  float64 `json:"runoffCoefficient"`
	Stringency         int     `json:"stringency"`
	DetentionRequired  bool    `json:"detentionRequired"`
	DetentionAcres     float64 `json:"detentionAcres"`
	RetentionRequired  bool    `json:"retentionRequired"`
	BMPRequired        bool    `json:"bmpRequired"`
	InfiltrationRating string  `json:"infiltrationRating"`
	EstimatedCost      float64 `json:"estimatedCost"`
}

type Bonding struct {
	Required         bool    `json:"required"`
	Pct              float64 `json:"pct"`
	EstimatedDevCost float64 `json:"estimatedDevCost"`
	Amount           float64 `json:"amount"`
	Premium          float64 `json:"premium"`
}

type Civil struct {
	Parking             Parking     `json:"parking"`
	LotCoverage         LotCoverage `json:"lotCoverage"`
	Topography          Topography  `json:"topography"`
	Stormwater          Stormwater  `json:"stormwater"`
	Bonding             Bonding     `json:"bonding"`
	CivilScore          float64     `json:"civilScore"`
	CivilRating         CivilRating `json:"civilRating"`
	TotalCivilCostAdder float64     `json:"totalCivilCostAdder"`
	DevelopableAcres    float64     `json:"developableAcres"`
}

// IsCivillyFeasible holds only for a computed result whose lot coverage fits
// and whose rating is not prohibitive.
func IsCivillyFeasible(r Result[Civil]) bool {
	return Switch(r,
		func(c Civil) bool { return c.LotCoverage.IsFeasible && c.CivilRating != CivilProhibitive },
		func(Civil, string) bool { return false },
		func(Civil, string) bool { return false },
	)
}

type slopeProfile struct {
	maxPct     float64
	band       SlopeBand
	reduction  float64
	multiplier float64
	walls      bool
	penalty    float64
}

var slopeProfiles = []slopeProfile{
	{maxPct: 2, band: SlopeFlat, reduction: 0, multiplier: 1.00},
	{maxPct: 5, band: SlopeGentle, reduction: 10, multiplier: 1.25},
	{maxPct: 10, band: SlopeModerate, reduction: 20, multiplier: 1.60, walls: true, penalty: 15},
	{maxPct: math.Inf(1), band: SlopeSteep, reduction: 40, multiplier: 2.20, walls: true, penalty: 25},
}

func classifySlope(pct float64) slopeProfile {
	for _, p := range slopeProfiles {
		if pct <= p.maxPct {
			return p
		}
	}
	return slopeProfiles[len(slopeProfiles)-1]
}

// adaBands: upper stall bound -> accessible stalls. Above the last band the
// requirement is 2% of total.
var adaBands = []struct {
	maxStalls  int
	accessible int
}{
	{25, 1}, {50, 2}, {75, 3}, {100, 4}, {150, 5},
	{200, 6}, {300, 7}, {400, 8}, {500, 9},
}

func accessibleStalls(total int) int {
	for _, b := range adaBands {
		if total <= b.maxStalls {
			return b.accessible
		}
	}
	return int(math.Ceil(float64(total) * 0.02))
}

// stormwaterStringency is a 0-100 index of state stormwater regulation.
var stormwaterStringency = map[string]int{
	"CA": 92, "NJ": 88, "MD": 86, "WA": 85, "MA": 84, "NY": 80, "FL": 78,
	"PA": 76, "VA": 72, "CO": 66, "NC": 65, "IL": 62, "GA": 60, "OH": 55,
	"AZ": 45, "TX": 50, "TN": 45, "IN": 48, "SC": 52,
}

type bondProfile struct {
	required bool
	pct      float64
}

var stateBonding = map[string]bondProfile{
	"CA": {true, 10}, "NJ": {true, 8}, "NY": {true, 7}, "MA": {true, 6},
	"PA": {true, 6}, "MD": {true, 6}, "WA": {true, 5}, "FL": {true, 5},
	"IL": {true, 5}, "VA": {true, 4}, "NC": {true, 4}, "CO": {true, 4},
	"GA": {true, 3}, "OH": {true, 3}, "TX": {false, 0}, "TN": {false, 0},
	"AZ": {false, 0}, "IN": {true, 3}, "SC": {true, 3},
}

var defaultBonding = bondProfile{required: true, pct: 5}

func infiltrationFor(soil string) string {
	switch soil {
	case "sand":
		return "high"
	case "loam", "unknown":
		return "medium"
	}
	return "low"
}

func civilRating(score float64) CivilRating {
	switch {
	case score >= 80:
		return CivilFavorable
	case score >= 60:
		return CivilModerate
	case score >= 40:
		return CivilChallenging
	}
	return CivilProhibitive
}

// CivilConstraintsSpoke computes site-engineering feasibility and the civil
// cost adder consumed by feasibility and verdict.
type CivilConstraintsSpoke struct {
	doctrine Doctrine
}

func NewCivilConstraintsSpoke(d Doctrine) *CivilConstraintsSpoke {
	return &CivilConstraintsSpoke{doctrine: d}
}

func (s *CivilConstraintsSpoke) Name() string { return "civil" }

// Default assumes a flat, feasible site with no cost adder and a score of 50.
func (s *CivilConstraintsSpoke) Default() Civil {
	return Civil{
		Parking:     Parking{RequiredStalls: minParkingStalls, AccessibleStalls: 1, ADACompliant: true},
		LotCoverage: LotCoverage{IsFeasible: true},
		Topography:  Topography{Band: SlopeFlat, GradingCostMultiplier: 1},
		Stormwater:  Stormwater{Stringency: defaultStringency, InfiltrationRating: "medium"},
		Bonding:     Bonding{Required: defaultBonding.required, Pct: defaultBonding.pct},
		CivilScore:  50,
		CivilRating: CivilChallenging,
	}
}

func (s *CivilConstraintsSpoke) Run(_ context.Context, in Inputs) (Result[Civil], error) {
	if in.Toggles.SkipCivil {
		return Stub(s.Default(), "civil analysis disabled by toggle"), nil
	}
	if in.Acreage <= 0 {
		return Result[Civil]{}, fmt.Errorf("civil analysis needs positive acreage, got %v", in.Acreage)
	}

	d := s.doctrine
	siteSqft := in.SiteSqft()
	buildableSqft := siteSqft * d.BuildableRatio
	netRentable := buildableSqft * d.NetRentableRatio

	var c Civil
	var notes []string

	// Parking.
	stalls := int(math.Ceil(netRentable / sqftPerRentableStall))
	if stalls < minParkingStalls {
		stalls = minParkingStalls
	}
	c.Parking = Parking{
		RequiredStalls:   stalls,
		AccessibleStalls: accessibleStalls(stalls),
		ParkingAreaSqft:  float64(stalls) * sqftPerStall,
		ADACompliant:     in.SlopePct <= adaMaxSlopePct,
	}

	// Topography.
	sp := classifySlope(in.SlopePct)
	c.Topography = Topography{
		AvgSlopePct:               in.SlopePct,
		Band:                      sp.band,
		BuildableAreaReductionPct: sp.reduction,
		GradingCostMultiplier:     sp.multiplier,
		RetainingWallsRequired:    sp.walls,
		GradingCost:               in.Acreage * gradingCostPerAcre * sp.multiplier,
	}
	if !in.SlopeKnown {
		notes = append(notes, "slope not surveyed; flat site assumed")
	}

	// Lot coverage.
	footprint := netRentable / d.NetRentableRatio
	landscape := siteSqft * landscapeBufferPct / 100
	requiredPct := (footprint + c.Parking.ParkingAreaSqft + landscape) / siteSqft * 100
	c.LotCoverage = LotCoverage{
		FootprintSqft: footprint,
		ParkingSqft:   c.Parking.ParkingAreaSqft,
		LandscapeSqft: landscape,
		RequiredPct:   round2(requiredPct),
		AllowedPct:    in.LotCoverageLimitPct,
		IsFeasible:    requiredPct <= in.LotCoverageLimitPct,
	}

	// Stormwater.
	stringency, known := stormwaterStringency[in.State]
	if !known {
		stringency = defaultStringency
	}
	impervious := math.Min(footprint+c.Parking.ParkingAreaSqft, siteSqft)
	landscaped := siteSqft - impervious
	runoff := (impervious*imperviousCoefficient + landscaped*landscapedCoefficient) / siteSqft
	sw := Stormwater{
		RunoffCoefficient:  round2(runoff),
		Stringency:         stringency,
		DetentionRequired:  stringency >= detentionStringency,
		RetentionRequired:  stringency >= retentionStringency,
		BMPRequired:        stringency >= bmpStringency,
		InfiltrationRating: infiltrationFor(in.Soil),
	}
	if sw.DetentionRequired {
		sw.DetentionAcres = round2(in.Acreage * runoff * (0.05 + float64(stringency)/1000))
	}
	sw.EstimatedCost = sw.DetentionAcres * detentionCostPerAcre
	if sw.RetentionRequired {
		sw.EstimatedCost += retentionSurcharge
	}
	if sw.BMPRequired {
		sw.EstimatedCost += bmpSurcharge
	}
	c.Stormwater = sw

	// Bonding.
	bp, known := stateBonding[in.State]
	if !known {
		bp = defaultBonding
	}
	estDevCost := buildableSqft * d.ConstructionCostPSF
	c.Bonding = Bonding{Required: bp.required, Pct: bp.pct, EstimatedDevCost: estDevCost}
	if bp.required {
		c.Bonding.Amount = estDevCost * bp.pct / 100
		c.Bonding.Premium = c.Bonding.Amount * bondPremiumRate
	}

	// Score.
	score := 100.0
	if !c.LotCoverage.IsFeasible {
		score -= 30
	}
	score -= sp.penalty
	if sp.walls {
		score -= 10
	}
	if sw.RetentionRequired {
		score -= 10
	}
	if sw.BMPRequired {
		score -= 5
	}
	if sw.InfiltrationRating == "low" {
		score -= 10
	}
	if !c.Parking.ADACompliant {
		score -= 15
	}
	c.CivilScore = math.Max(0, score)
	c.CivilRating = civilRating(c.CivilScore)

	wallCost := 0.0
	if sp.walls {
		wallCost = in.Acreage * retainingWallPerAcre
	}
	c.TotalCivilCostAdder = math.Round(c.Topography.GradingCost + wallCost + sw.EstimatedCost + c.Bonding.Premium)
	c.DevelopableAcres = in.Acreage * (1 - sp.reduction/100)

	notes = append(notes, fmt.Sprintf("civil %s (%.0f); coverage %.1f%% of %.0f%% allowed; cost adder $%.0f",
		c.CivilRating, c.CivilScore, c.LotCoverage.RequiredPct, c.LotCoverage.AllowedPct, c.TotalCivilCostAdder))
	return Ok(c, strings.Join(notes, "; ")), nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
