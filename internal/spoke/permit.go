// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
)

// Complexity of the entitlement and building-permit path.
type Complexity string

const (
	ComplexityLow      Complexity = "low"
	ComplexityModerate Complexity = "moderate"
	ComplexityHigh     Complexity = "high"
	ComplexityVeryHigh Complexity = "very_high"
)

type Permit struct {
	Jurisdiction  string     `json:"jurisdiction"`
	Complexity    Complexity `json:"complexity"`
	EstimatedFee  float64    `json:"estimatedFee"`
	TimelineWeeks int        `json:"timelineWeeks"`
	PermitScore   float64    `json:"permitScore"`
}

type permitProfile struct {
	complexity Complexity
	baseFee    float64
	feePerAcre float64
	weeks      int
}

var statePermitProfiles = map[string]permitProfile{
	"CA": {ComplexityVeryHigh, 45000, 6000, 52},
	"NY": {ComplexityVeryHigh, 38000, 5500, 48},
	"NJ": {ComplexityHigh, 30000, 4500, 40},
	"MA": {ComplexityHigh, 28000, 4200, 40},
	"WA": {ComplexityHigh, 26000, 4000, 36},
	"MD": {ComplexityHigh, 24000, 3800, 34},
	"IL": {ComplexityModerate, 18000, 3000, 26},
	"PA": {ComplexityModerate, 17000, 2800, 26},
	"FL": {ComplexityModerate, 16000, 2600, 24},
	"VA": {ComplexityModerate, 15000, 2500, 24},
	"CO": {ComplexityModerate, 15000, 2500, 24},
	"NC": {ComplexityModerate, 12000, 2000, 20},
	"GA": {ComplexityLow, 10000, 1800, 16},
	"OH": {ComplexityLow, 9500, 1600, 16},
	"TN": {ComplexityLow, 9000, 1500, 14},
	"TX": {ComplexityLow, 9000, 1500, 14},
	"AZ": {ComplexityLow, 9500, 1500, 16},
	"IN": {ComplexityLow, 8000, 1400, 14},
	"SC": {ComplexityLow, 8000, 1400, 14},
}

var defaultPermitProfile = permitProfile{ComplexityModerate, 15000, 2500, 24}

func permitScore(c Complexity) float64 {
	switch c {
	case ComplexityLow:
		return 90
	case ComplexityModerate:
		return 70
	case ComplexityHigh:
		return 45
	}
	return 25
}

// PermitSpoke estimates permitting complexity, fee and timeline for the
// jurisdiction.
type PermitSpoke struct{}

func NewPermitSpoke() *PermitSpoke { return &PermitSpoke{} }

func (s *PermitSpoke) Name() string { return "permits" }

func (s *PermitSpoke) Default() Permit {
	return Permit{
		Complexity:    defaultPermitProfile.complexity,
		EstimatedFee:  defaultPermitProfile.baseFee,
		TimelineWeeks: defaultPermitProfile.weeks,
		PermitScore:   50,
	}
}

func (s *PermitSpoke) Run(_ context.Context, in Inputs) (Result[Permit], error) {
	if in.Acreage <= 0 {
		return Result[Permit]{}, fmt.Errorf("permit fee needs positive acreage, got %v", in.Acreage)
	}
	jurisdiction := jurisdictionName(in)
	profile, known := statePermitProfiles[in.State]
	if !known {
		return Stub(s.Default(), fmt.Sprintf("%s: no permit profile for state %q; national averages used", jurisdiction, in.State)), nil
	}
	p := Permit{
		Jurisdiction:  jurisdiction,
		Complexity:    profile.complexity,
		EstimatedFee:  profile.baseFee + profile.feePerAcre*in.Acreage,
		TimelineWeeks: profile.weeks,
		PermitScore:   permitScore(profile.complexity),
	}
	return Ok(p, fmt.Sprintf("%s: %s complexity, ~%d weeks", jurisdiction, p.Complexity, p.TimelineWeeks)), nil
}

func jurisdictionName(in Inputs) string {
	switch {
	case in.City != "":
		return in.City + ", " + in.State
	case in.County != "":
		return in.County + " County, " + in.State
	}
	return in.State
}
