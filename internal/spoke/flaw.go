// SPDX-License-Identifier: Apache-2.0

package spoke

// Severity of a business-rule finding.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityWarning Severity = "warning"
)

// FlawCode identifies the rule that produced a Flaw.
type FlawCode string

const (
	FlawZoningProhibited     FlawCode = "ZONING_PROHIBITED"
	FlawMarketOversupplied   FlawCode = "MARKET_OVERSUPPLIED"
	FlawDSCRBelowFloor       FlawCode = "DSCR_BELOW_FLOOR"
	FlawCivilProhibitive     FlawCode = "CIVIL_PROHIBITIVE"
	FlawLotCoverage          FlawCode = "LOT_COVERAGE_INFEASIBLE"
	WarnDSCRBelowMinimum     FlawCode = "DSCR_BELOW_MINIMUM"
	WarnNOIPerAcre           FlawCode = "NOI_PER_ACRE_BELOW_MINIMUM"
	WarnBuildCostCeiling     FlawCode = "BUILD_COST_ABOVE_CEILING"
	WarnRetainingWalls       FlawCode = "RETAINING_WALLS_REQUIRED"
	WarnADA                  FlawCode = "ADA_SLOPE_NONCOMPLIANT"
	WarnPricingVariance      FlawCode = "PRICING_VARIANCE_HIGH"
	WarnStubbedSpoke         FlawCode = "SPOKE_DEGRADED"
	WarnPermitComplexityHigh FlawCode = "PERMIT_COMPLEXITY_HIGH"
)

// Flaw is a business-rule outcome, distinct from an execution error.
// Threshold and Actual are set when the rule is numeric.
type Flaw struct {
	Code      FlawCode `json:"code"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Threshold *float64 `json:"threshold,omitempty"`
	Actual    *float64 `json:"actual,omitempty"`
}

func fatal(code FlawCode, msg string) Flaw {
	return Flaw{Code: code, Severity: SeverityFatal, Message: msg}
}

func warning(code FlawCode, msg string) Flaw {
	return Flaw{Code: code, Severity: SeverityWarning, Message: msg}
}

func (f Flaw) withNumbers(threshold, actual float64) Flaw {
	f.Threshold = &threshold
	f.Actual = &actual
	return f
}
