// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"errors"
	"fmt"
)

// Doctrine is the fixed set of numeric assumptions and thresholds every
// spoke reads. It is loaded once per process and passed in explicitly.
type Doctrine struct {
	// Site geometry.
	BuildableRatio   float64 `yaml:"buildableRatio" json:"buildableRatio"`
	NetRentableRatio float64 `yaml:"netRentableRatio" json:"netRentableRatio"`

	// Cost assumptions.
	DefaultLandCostPerAcre float64 `yaml:"defaultLandCostPerAcre" json:"defaultLandCostPerAcre"`
	ConstructionCostPSF    float64 `yaml:"constructionCostPsf" json:"constructionCostPsf"`
	SoftCostRatio          float64 `yaml:"softCostRatio" json:"softCostRatio"`

	// Revenue assumptions.
	DefaultRentPSF float64 `yaml:"defaultRentPsf" json:"defaultRentPsf"`
	Occupancy      float64 `yaml:"occupancy" json:"occupancy"`
	ExpenseRatio   float64 `yaml:"expenseRatio" json:"expenseRatio"`
	GrowthRate     float64 `yaml:"growthRate" json:"growthRate"`

	// Capital markets.
	TargetCapRate float64 `yaml:"targetCapRate" json:"targetCapRate"`
	LTV           float64 `yaml:"ltv" json:"ltv"`
	InterestRate  float64 `yaml:"interestRate" json:"interestRate"`

	// Viability gates.
	MinDSCR          float64 `yaml:"minDscr" json:"minDscr"`
	FatalDSCR        float64 `yaml:"fatalDscr" json:"fatalDscr"`
	MinROI5yr        float64 `yaml:"minRoi5yr" json:"minRoi5yr"`
	MinNOIPerAcre    float64 `yaml:"minNoiPerAcre" json:"minNoiPerAcre"`
	MaxBuildCostPSF  float64 `yaml:"maxBuildCostPsf" json:"maxBuildCostPsf"`
	SqftPerCapita    float64 `yaml:"sqftPerCapita" json:"sqftPerCapita"`
	PricingVariance  float64 `yaml:"pricingVariancePct" json:"pricingVariancePct"`
	ObservedWeight   float64 `yaml:"observedWeight" json:"observedWeight"`
	WeightProfile    string  `yaml:"weightProfile" json:"weightProfile"`
	ProceedScore     float64 `yaml:"proceedScore" json:"proceedScore"`
	EvaluateScore    float64 `yaml:"evaluateScore" json:"evaluateScore"`
	MaxConfidencePct float64 `yaml:"maxConfidencePct" json:"maxConfidencePct"`
}

// ConfidenceCeilingPct bounds MaxConfidencePct; verdict confidence never exceeds 0.95.
const ConfidenceCeilingPct = 95.0

// Weight profiles for the verdict aggregate.
const (
	ProfileCanonical = "canonical"
	ProfileLegacy    = "legacy"
)

// DefaultDoctrine returns the underwriting defaults.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		BuildableRatio:         0.40,
		NetRentableRatio:       0.85,
		DefaultLandCostPerAcre: 150000,
		ConstructionCostPSF:    65,
		SoftCostRatio:          0.15,
		DefaultRentPSF:         1.15,
		Occupancy:              0.88,
		ExpenseRatio:           0.35,
		GrowthRate:             0.03,
		TargetCapRate:          0.065,
		LTV:                    0.70,
		InterestRate:           0.07,
		MinDSCR:                1.25,
		FatalDSCR:              1.0,
		MinROI5yr:              25,
		MinNOIPerAcre:          35000,
		MaxBuildCostPSF:        85,
		SqftPerCapita:          7.0,
		PricingVariance:        25,
		ObservedWeight:         0.70,
		WeightProfile:          ProfileCanonical,
		ProceedScore:           70,
		EvaluateScore:          45,
		MaxConfidencePct:       95,
	}
}

// Validate reports doctrine values that would make the formulas meaningless.
func (d Doctrine) Validate() error {
	var errs []error
	unit := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0,1], got %v", name, v))
		}
	}
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	unit("buildableRatio", d.BuildableRatio)
	unit("netRentableRatio", d.NetRentableRatio)
	unit("occupancy", d.Occupancy)
	unit("ltv", d.LTV)
	unit("targetCapRate", d.TargetCapRate)
	unit("observedWeight", d.ObservedWeight)
	positive("constructionCostPsf", d.ConstructionCostPSF)
	positive("defaultRentPsf", d.DefaultRentPSF)
	positive("interestRate", d.InterestRate)
	positive("minDscr", d.MinDSCR)
	if d.ExpenseRatio < 0 || d.ExpenseRatio >= 1 {
		errs = append(errs, fmt.Errorf("expenseRatio must be in [0,1), got %v", d.ExpenseRatio))
	}
	if d.FatalDSCR > d.MinDSCR {
		errs = append(errs, fmt.Errorf("fatalDscr %v exceeds minDscr %v", d.FatalDSCR, d.MinDSCR))
	}
	if d.MaxConfidencePct < 0 || d.MaxConfidencePct > ConfidenceCeilingPct {
		errs = append(errs, fmt.Errorf("maxConfidencePct must be in [0,%v], got %v", ConfidenceCeilingPct, d.MaxConfidencePct))
	}
	switch d.WeightProfile {
	case ProfileCanonical, ProfileLegacy:
	default:
		errs = append(errs, fmt.Errorf("unknown weightProfile %q", d.WeightProfile))
	}
	return errors.Join(errs...)
}
