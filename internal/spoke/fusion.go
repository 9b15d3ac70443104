// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
)

const (
	industrialWeight = 0.55
	housingWeight    = 0.25
	populationWeight = 0.20

	favorableGapSqft      = 50000.0
	favorableHousingScore = 60.0
)

type MarketTiming string

const (
	TimingFavorable   MarketTiming = "favorable"
	TimingNeutral     MarketTiming = "neutral"
	TimingUnfavorable MarketTiming = "unfavorable"
)

type FusionDemand struct {
	DemandScore     float64      `json:"demandScore"`
	IndustrialScore float64      `json:"industrialScore"`
	HousingScore    float64      `json:"housingScore"`
	PopulationScore float64      `json:"populationScore"`
	DemandSqft      float64      `json:"demandSqft"`
	SupplySqft      float64      `json:"supplySqft"`
	SupplyGap       float64      `json:"supplyGap"`
	MarketTiming    MarketTiming `json:"marketTiming"`
}

// FusionInput pairs the candidate with the momentum result it fuses.
type FusionInput struct {
	Inputs   Inputs
	Momentum Result[Momentum]
}

func industrialAnchor(r Rating) float64 {
	switch r {
	case RatingStrong:
		return 90
	case RatingWeak:
		return 30
	}
	return 60
}

func housingAnchor(units int) float64 {
	switch {
	case units >= 500:
		return 90
	case units >= 250:
		return 70
	case units >= 100:
		return 50
	case units > 0:
		return 30
	}
	return 20
}

func populationAnchor(pop int) float64 {
	switch {
	case pop >= 100_000:
		return 100
	case pop >= 50_000:
		return 80
	case pop >= 25_000:
		return 60
	case pop >= 10_000:
		return 40
	}
	return 20
}

// FusionDemandSpoke combines momentum and population into one demand score
// and reads the supply gap.
type FusionDemandSpoke struct{}

func NewFusionDemandSpoke() *FusionDemandSpoke { return &FusionDemandSpoke{} }

func (s *FusionDemandSpoke) Name() string { return "fusionDemand" }

func (s *FusionDemandSpoke) Default() FusionDemand {
	return FusionDemand{DemandScore: 50, IndustrialScore: 60, HousingScore: 50, PopulationScore: 50, MarketTiming: TimingNeutral}
}

func (s *FusionDemandSpoke) Run(_ context.Context, fi FusionInput) (Result[FusionDemand], error) {
	in := fi.Inputs
	if in.Population <= 0 {
		return Stub(s.Default(), "population unavailable"), nil
	}

	industrial, housing, momentumNote := Switch(fi.Momentum,
		func(m Momentum) anchors {
			h := 50.0
			if m.HousingReported {
				h = housingAnchor(m.NewHousingUnits)
			}
			return anchors{industrialAnchor(m.IndustrialRating), h, ""}
		},
		func(_ Momentum, notes string) anchors {
			return anchors{60, 50, "momentum stubbed (" + notes + "); default anchors"}
		},
		func(_ Momentum, notes string) anchors {
			return anchors{60, 50, "momentum failed (" + notes + "); default anchors"}
		},
	).unpack()

	f := FusionDemand{
		IndustrialScore: industrial,
		HousingScore:    housing,
		PopulationScore: populationAnchor(in.Population),
		DemandSqft:      math.Round(in.DemandSqft),
		SupplySqft:      math.Round(in.SupplySqft),
	}
	f.DemandScore = math.Round(f.IndustrialScore*industrialWeight + f.HousingScore*housingWeight + f.PopulationScore*populationWeight)
	f.SupplyGap = f.DemandSqft - f.SupplySqft

	switch {
	case f.SupplyGap > favorableGapSqft && f.HousingScore > favorableHousingScore:
		f.MarketTiming = TimingFavorable
	case f.SupplyGap < 0:
		f.MarketTiming = TimingUnfavorable
	default:
		f.MarketTiming = TimingNeutral
	}

	notes := fmt.Sprintf("demand %.0f; gap %.0f sqft; timing %s", f.DemandScore, f.SupplyGap, f.MarketTiming)
	if in.DemandDerived {
		notes += "; demand derived from population"
	}
	if momentumNote != "" {
		notes += "; " + momentumNote
	}
	return Ok(f, notes), nil
}

type anchors struct {
	industrial, housing float64
	note                string
}

func (a anchors) unpack() (float64, float64, string) { return a.industrial, a.housing, a.note }
