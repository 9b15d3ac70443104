// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"strings"
)

// Classification of self-storage use under a zoning district.
type Classification string

const (
	ZonePermitted   Classification = "permitted"
	ZoneConditional Classification = "conditional"
	ZoneProhibited  Classification = "prohibited"
	ZoneUnknown     Classification = "unknown"
)

type Zoning struct {
	Code              string         `json:"code"`
	District          string         `json:"district"`
	Classification    Classification `json:"classification"`
	ByRight           bool           `json:"byRight"`
	RequiresHearing   bool           `json:"requiresHearing"`
	MaxLotCoveragePct float64        `json:"maxLotCoveragePct"`
	ZoningScore       float64        `json:"zoningScore"`
}

// district maps a set of code prefixes to a district profile.
type district struct {
	prefixes    []string
	name        string
	class       Classification
	byRight     bool
	maxCoverage float64
}

// districtRules is evaluated in order; the first prefix match wins, so
// longer or more specific prefixes come first.
var districtRules = []district{
	{prefixes: []string{"PUD", "PD"}, name: "planned development", class: ZoneConditional, maxCoverage: 55},
	{prefixes: []string{"MU", "MX"}, name: "mixed use", class: ZoneConditional, maxCoverage: 60},
	{prefixes: []string{"LI", "HI", "IND", "IL", "IH", "M", "I"}, name: "industrial", class: ZonePermitted, byRight: true, maxCoverage: 70},
	{prefixes: []string{"HC", "CH", "HB", "C3", "B3", "C4", "B4"}, name: "highway commercial", class: ZonePermitted, byRight: true, maxCoverage: 65},
	{prefixes: []string{"GC", "CG", "C2", "B2"}, name: "general commercial", class: ZoneConditional, maxCoverage: 60},
	{prefixes: []string{"NC", "CN", "C1", "B1", "O"}, name: "neighborhood commercial", class: ZoneProhibited, maxCoverage: 50},
	{prefixes: []string{"R"}, name: "residential", class: ZoneProhibited, maxCoverage: 35},
	{prefixes: []string{"AG", "A"}, name: "agricultural", class: ZoneProhibited, maxCoverage: 25},
}

var unknownDistrict = district{name: "unrecognized", class: ZoneUnknown, maxCoverage: 60}

func normalizeZoningCode(code string) string {
	r := strings.NewReplacer("-", "", " ", "", "_", "", ".", "")
	return r.Replace(strings.ToUpper(strings.TrimSpace(code)))
}

func lookupDistrict(code string) district {
	norm := normalizeZoningCode(code)
	if norm == "" {
		return unknownDistrict
	}
	for _, d := range districtRules {
		for _, p := range d.prefixes {
			if strings.HasPrefix(norm, p) {
				return d
			}
		}
	}
	return unknownDistrict
}

func zoningScore(class Classification, byRight bool) float64 {
	switch class {
	case ZonePermitted:
		if byRight {
			return 100
		}
		return 85
	case ZoneConditional:
		return 60
	case ZoneProhibited:
		return 0
	}
	return 40
}

// ZoningSpoke classifies self-storage use for the parcel's zoning code.
type ZoningSpoke struct{}

func NewZoningSpoke() *ZoningSpoke { return &ZoningSpoke{} }

func (s *ZoningSpoke) Name() string { return "zoning" }

// Default is used whenever the zoning code could not be classified.
func (s *ZoningSpoke) Default() Zoning {
	return Zoning{
		District:          unknownDistrict.name,
		Classification:    ZoneUnknown,
		MaxLotCoveragePct: unknownDistrict.maxCoverage,
		ZoningScore:       50,
	}
}

func (s *ZoningSpoke) Run(_ context.Context, in Inputs) (Result[Zoning], error) {
	if in.ZoningCode == "" {
		return Stub(s.Default(), "no zoning code supplied"), nil
	}
	d := lookupDistrict(in.ZoningCode)
	z := Zoning{
		Code:              in.ZoningCode,
		District:          d.name,
		Classification:    d.class,
		ByRight:           d.byRight,
		RequiresHearing:   d.class == ZoneConditional,
		MaxLotCoveragePct: in.LotCoverageLimitPct,
		ZoningScore:       zoningScore(d.class, d.byRight),
	}
	notes := fmt.Sprintf("%s classified as %s (%s)", in.ZoningCode, d.class, d.name)
	if !in.LotCoverageFromCode {
		notes += fmt.Sprintf("; lot coverage limit %.0f%% supplied by candidate", in.LotCoverageLimitPct)
	}
	return Ok(z, notes), nil
}
