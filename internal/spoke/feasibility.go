// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const holdYears = 5

type Feasibility struct {
	Acreage          float64 `json:"acreage"`
	LandCostPerAcre  float64 `json:"landCostPerAcre"`
	LandCost         float64 `json:"landCost"`
	BuildableSqft    float64 `json:"buildableSqft"`
	NetRentableSqft  float64 `json:"netRentableSqft"`
	CivilCostAdder   float64 `json:"civilCostAdder"`
	ConstructionCost float64 `json:"constructionCost"`
	SoftCosts        float64 `json:"softCosts"`
	// TotalDevelopmentCost is always LandCost + ConstructionCost + SoftCosts.
	TotalDevelopmentCost float64 `json:"totalDevelopmentCost"`

	BlendedRentPSF       float64       `json:"blendedRentPsf"`
	RentSource           PricingSource `json:"rentSource"`
	GrossPotentialRent   float64       `json:"grossPotentialRent"`
	EffectiveGrossIncome float64       `json:"effectiveGrossIncome"`
	OperatingExpenses    float64       `json:"operatingExpenses"`
	NOI                  float64       `json:"noi"`

	CapRate           float64 `json:"capRate"`
	StabilizedValue   float64 `json:"stabilizedValue"`
	ROI5yr            float64 `json:"roi5yr"`
	DebtAmount        float64 `json:"debtAmount"`
	AnnualDebtService float64 `json:"annualDebtService"`
	DSCR              float64 `json:"dscr"`
	CashOnCash        float64 `json:"cashOnCash"`
	NOIPerAcre        float64 `json:"noiPerAcre"`
	BuildCostPSF      float64 `json:"buildCostPsf"`

	IsViable         bool    `json:"isViable"`
	FeasibilityScore float64 `json:"feasibilityScore"`
	Warnings         []Flaw  `json:"warnings"`
}

// FeasibilityInput carries the upstream results feasibility depends on.
// Civil must have completed before this is built.
type FeasibilityInput struct {
	Inputs  Inputs
	Pricing Result[Pricing]
	Civil   Result[Civil]
}

// FeasibilitySpoke computes development cost, income and returns.
type FeasibilitySpoke struct {
	doctrine Doctrine
}

func NewFeasibilitySpoke(d Doctrine) *FeasibilitySpoke {
	return &FeasibilitySpoke{doctrine: d}
}

func (s *FeasibilitySpoke) Name() string { return "feasibility" }

// Default is not viable and scores 50. Its zero DSCR is never read as a
// fatal flaw because the verdict only reads DSCR from an ok result.
func (s *FeasibilitySpoke) Default() Feasibility {
	return Feasibility{FeasibilityScore: 50, RentSource: PricingDefault, Warnings: []Flaw{}}
}

func (s *FeasibilitySpoke) Run(_ context.Context, fi FeasibilityInput) (Result[Feasibility], error) {
	in := fi.Inputs
	d := s.doctrine
	if in.Acreage <= 0 {
		return Result[Feasibility]{}, fmt.Errorf("feasibility needs positive acreage, got %v", in.Acreage)
	}

	var notes []string

	rent, rentSource := d.DefaultRentPSF, PricingDefault
	if p, ok := fi.Pricing.Resolve(Pricing{}); ok {
		rent, rentSource = p.BlendedRentPSF, p.Source
	} else {
		notes = append(notes, fmt.Sprintf("pricing %s; default rent $%.2f/sf/mo", fi.Pricing.Status(), rent))
	}

	developable, adder := in.Acreage, 0.0
	if c, ok := fi.Civil.Resolve(Civil{}); ok {
		developable, adder = c.DevelopableAcres, c.TotalCivilCostAdder
	} else {
		notes = append(notes, fmt.Sprintf("civil %s; gross acreage used, no cost adder", fi.Civil.Status()))
	}

	f := Feasibility{
		Acreage:         in.Acreage,
		LandCostPerAcre: in.LandCostPerAcre,
		BlendedRentPSF:  rent,
		RentSource:      rentSource,
		CivilCostAdder:  adder,
		Warnings:        []Flaw{},
	}
	f.LandCost = in.Acreage * in.LandCostPerAcre
	f.BuildableSqft = developable * sqftPerAcre * d.BuildableRatio
	f.NetRentableSqft = f.BuildableSqft * d.NetRentableRatio
	f.ConstructionCost = f.BuildableSqft*d.ConstructionCostPSF + adder
	f.SoftCosts = f.ConstructionCost * d.SoftCostRatio
	f.TotalDevelopmentCost = f.LandCost + f.ConstructionCost + f.SoftCosts

	f.GrossPotentialRent = f.NetRentableSqft * rent * 12
	f.EffectiveGrossIncome = f.GrossPotentialRent * d.Occupancy
	f.OperatingExpenses = f.EffectiveGrossIncome * d.ExpenseRatio
	f.NOI = f.EffectiveGrossIncome - f.OperatingExpenses

	if f.TotalDevelopmentCost <= 0 {
		return Result[Feasibility]{}, fmt.Errorf("total development cost is %v; cannot compute returns", f.TotalDevelopmentCost)
	}

	f.CapRate = f.NOI / f.TotalDevelopmentCost * 100
	f.StabilizedValue = f.NOI / d.TargetCapRate
	f.ROI5yr = roi5yr(f.NOI, f.StabilizedValue, f.TotalDevelopmentCost, d.GrowthRate)

	f.DebtAmount = f.TotalDevelopmentCost * d.LTV
	f.AnnualDebtService = f.DebtAmount * d.InterestRate
	f.DSCR = f.NOI / f.AnnualDebtService
	if equity := f.TotalDevelopmentCost - f.DebtAmount; equity > 0 {
		f.CashOnCash = (f.NOI - f.AnnualDebtService) / equity * 100
	}
	f.NOIPerAcre = f.NOI / in.Acreage
	if f.BuildableSqft > 0 {
		f.BuildCostPSF = f.ConstructionCost / f.BuildableSqft
	}

	f.IsViable = f.CapRate >= d.TargetCapRate*100 && f.ROI5yr > d.MinROI5yr && f.DSCR >= d.MinDSCR
	f.FeasibilityScore = feasibilityScore(f, d)
	f.Warnings = doctrineWarnings(f, d)

	notes = append([]string{fmt.Sprintf("cap %.2f%%, ROI5 %.1f%%, DSCR %.2f; viable=%t",
		f.CapRate, f.ROI5yr, f.DSCR, f.IsViable)}, notes...)
	return Ok(f, strings.Join(notes, "; ")), nil
}

// roi5yr is cumulative NOI over the hold plus value appreciation, over cost.
func roi5yr(noi, stabilized, cost, growth float64) float64 {
	var cumulative float64
	for y := 0; y < holdYears; y++ {
		cumulative += noi * math.Pow(1+growth, float64(y))
	}
	appreciation := stabilized * (math.Pow(1+growth, holdYears) - 1)
	return (cumulative + appreciation) / cost * 100
}

func feasibilityScore(f Feasibility, d Doctrine) float64 {
	target := d.TargetCapRate * 100
	var score float64
	switch {
	case f.CapRate >= target+2:
		score += 40
	case f.CapRate >= target:
		score += 30
	case f.CapRate >= target-1:
		score += 15
	}
	switch {
	case f.DSCR >= 1.5:
		score += 30
	case f.DSCR >= d.MinDSCR:
		score += 20
	case f.DSCR >= d.FatalDSCR:
		score += 10
	}
	switch {
	case f.ROI5yr >= 2*d.MinROI5yr:
		score += 30
	case f.ROI5yr > d.MinROI5yr:
		score += 20
	case f.ROI5yr > 10:
		score += 10
	}
	return score
}

func doctrineWarnings(f Feasibility, d Doctrine) []Flaw {
	out := []Flaw{}
	if f.DSCR < d.MinDSCR {
		out = append(out, warning(WarnDSCRBelowMinimum,
			fmt.Sprintf("DSCR %.2f below doctrine minimum %.2f", f.DSCR, d.MinDSCR)).withNumbers(d.MinDSCR, f.DSCR))
	}
	if f.NOIPerAcre < d.MinNOIPerAcre {
		out = append(out, warning(WarnNOIPerAcre,
			fmt.Sprintf("NOI/acre $%.0f below doctrine minimum $%.0f", f.NOIPerAcre, d.MinNOIPerAcre)).withNumbers(d.MinNOIPerAcre, f.NOIPerAcre))
	}
	if f.BuildCostPSF > d.MaxBuildCostPSF {
		out = append(out, warning(WarnBuildCostCeiling,
			fmt.Sprintf("build cost $%.2f/sf above ceiling $%.2f/sf", f.BuildCostPSF, d.MaxBuildCostPSF)).withNumbers(d.MaxBuildCostPSF, f.BuildCostPSF))
	}
	return out
}
