// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
)

const (
	innerRadiusMiles = 5.0
	outerRadiusMiles = 10.0

	undersuppliedPerCapita = 5.0
	oversuppliedPerCapita  = 8.0
)

type Saturation string

const (
	Undersupplied Saturation = "undersupplied"
	Balanced      Saturation = "balanced"
	Oversupplied  Saturation = "oversupplied"
)

type CompetitivePressure struct {
	Within5Miles        int        `json:"within5Miles"`
	Within10Miles       int        `json:"within10Miles"`
	TotalCompetitorSqft float64    `json:"totalCompetitorSqft"`
	SqftPerCapita       float64    `json:"sqftPerCapita"`
	Saturation          Saturation `json:"saturation"`
	PressureScore       float64    `json:"pressureScore"`
}

// CompetitivePressureSpoke reads competitor density and per-capita supply.
type CompetitivePressureSpoke struct{}

func NewCompetitivePressureSpoke() *CompetitivePressureSpoke { return &CompetitivePressureSpoke{} }

func (s *CompetitivePressureSpoke) Name() string { return "competitive" }

func (s *CompetitivePressureSpoke) Default() CompetitivePressure {
	return CompetitivePressure{Saturation: Balanced, PressureScore: 50}
}

func (s *CompetitivePressureSpoke) Run(_ context.Context, in Inputs) (Result[CompetitivePressure], error) {
	if in.Toggles.SkipCompetition {
		return Stub(s.Default(), "competition analysis disabled by toggle"), nil
	}
	if in.Population <= 0 {
		return Stub(s.Default(), "population unavailable; per-capita supply not computed"), nil
	}

	var cp CompetitivePressure
	for i, c := range in.Competitors {
		if c.DistanceMiles < 0 || c.Sqft < 0 {
			return Result[CompetitivePressure]{}, fmt.Errorf("competitor %d (%s): negative distance or sqft", i, c.Name)
		}
		if c.DistanceMiles <= innerRadiusMiles {
			cp.Within5Miles++
		}
		if c.DistanceMiles <= outerRadiusMiles {
			cp.Within10Miles++
			cp.TotalCompetitorSqft += c.Sqft
		}
	}
	perCapita := cp.TotalCompetitorSqft / float64(in.Population)
	cp.SqftPerCapita = round2(perCapita)

	// Classify on the unrounded ratio; rounding is for display only.
	switch {
	case perCapita < undersuppliedPerCapita:
		cp.Saturation = Undersupplied
	case perCapita > oversuppliedPerCapita:
		cp.Saturation = Oversupplied
	default:
		cp.Saturation = Balanced
	}

	score := 50.0
	switch {
	case cp.Within5Miles >= 5:
		score += 20
	case cp.Within5Miles >= 3:
		score += 10
	case cp.Within5Miles == 0:
		score -= 15
	}
	switch cp.Saturation {
	case Oversupplied:
		score += 20
	case Undersupplied:
		score -= 15
	}
	cp.PressureScore = math.Max(0, math.Min(100, score))

	notes := fmt.Sprintf("%d within 5mi, %d within 10mi; %.2f sqft/capita (%s); pressure %.0f",
		cp.Within5Miles, cp.Within10Miles, cp.SqftPerCapita, cp.Saturation, cp.PressureScore)
	if len(in.Competitors) == 0 {
		notes += "; no competitors reported"
	}
	return Ok(cp, notes), nil
}
