// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type ReverseFeasibility struct {
	TargetRentPSF       float64 `json:"targetRentPsf"`
	MinDSCRRentPSF      float64 `json:"minDscrRentPsf"`
	BreakEvenRentPSF    float64 `json:"breakEvenRentPsf"`
	RentCushionPct      float64 `json:"rentCushionPct"`
	MaxLandPricePerAcre float64 `json:"maxLandPricePerAcre"`
	LandCushionPct      float64 `json:"landCushionPct"`
	BreakEvenOccupancy  float64 `json:"breakEvenOccupancy"`
}

type ReverseInput struct {
	Feasibility Result[Feasibility]
}

// ReverseFeasibilitySpoke inverts the feasibility formula to find the rent
// and land price at which the deal just meets its targets.
type ReverseFeasibilitySpoke struct {
	doctrine Doctrine
}

func NewReverseFeasibilitySpoke(d Doctrine) *ReverseFeasibilitySpoke {
	return &ReverseFeasibilitySpoke{doctrine: d}
}

func (s *ReverseFeasibilitySpoke) Name() string { return "reverseFeasibility" }

func (s *ReverseFeasibilitySpoke) Default() ReverseFeasibility { return ReverseFeasibility{} }

func (s *ReverseFeasibilitySpoke) Run(_ context.Context, ri ReverseInput) (Result[ReverseFeasibility], error) {
	f, ok := ri.Feasibility.Resolve(Feasibility{})
	if !ok {
		return Stub(s.Default(), fmt.Sprintf("feasibility %s; nothing to invert", ri.Feasibility.Status())), nil
	}
	d := s.doctrine

	// NOI produced per $1/sf/mo of rent.
	noiPerRentDollar := f.NetRentableSqft * 12 * d.Occupancy * (1 - d.ExpenseRatio)
	if noiPerRentDollar <= 0 {
		return Result[ReverseFeasibility]{}, errors.New("net rentable area is zero; rent cannot be inverted")
	}

	r := ReverseFeasibility{
		TargetRentPSF:    round4(d.TargetCapRate * f.TotalDevelopmentCost / noiPerRentDollar),
		MinDSCRRentPSF:   round4(d.MinDSCR * f.AnnualDebtService / noiPerRentDollar),
		BreakEvenRentPSF: round4(f.AnnualDebtService / noiPerRentDollar),
	}
	if f.BlendedRentPSF > 0 {
		r.RentCushionPct = round2((f.BlendedRentPSF - r.TargetRentPSF) / f.BlendedRentPSF * 100)
	}

	maxTotal := f.NOI / d.TargetCapRate
	maxLand := math.Max(0, maxTotal-f.ConstructionCost-f.SoftCosts)
	r.MaxLandPricePerAcre = math.Round(maxLand / f.Acreage)
	if f.LandCostPerAcre > 0 {
		r.LandCushionPct = round2((r.MaxLandPricePerAcre - f.LandCostPerAcre) / f.LandCostPerAcre * 100)
	}

	if gprAfterExpenses := f.GrossPotentialRent * (1 - d.ExpenseRatio); gprAfterExpenses > 0 {
		r.BreakEvenOccupancy = round4(f.AnnualDebtService / gprAfterExpenses)
	}

	return Ok(r, fmt.Sprintf("target rent $%.2f/sf/mo (cushion %.1f%%); max land $%.0f/acre",
		r.TargetRentPSF, r.RentCushionPct, r.MaxLandPricePerAcre)), nil
}
