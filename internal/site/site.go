// SPDX-License-Identifier: Apache-2.0

package site

import "strings"

// CandidateSite is the immutable input record for one underwriting run.
// It is owned by the caller; nothing in the pipeline writes to it.
type CandidateSite struct {
	OpportunityID string   `json:"opportunityId" yaml:"opportunityId"`
	Location      Location `json:"location" yaml:"location"`
	Toggles       Toggles  `json:"toggles,omitempty" yaml:"toggles"`
	Site          Facts    `json:"site" yaml:"site"`
	Macro         Macro    `json:"macro" yaml:"macro"`
	Pricing       Pricing  `json:"pricing,omitempty" yaml:"pricing"`
	Recon         *Recon   `json:"recon,omitempty" yaml:"recon"`
}

type Location struct {
	GeoID  string  `json:"geoId,omitempty" yaml:"geoId"`
	Zip    string  `json:"zip" yaml:"zip"`
	State  string  `json:"state" yaml:"state"`
	County string  `json:"county,omitempty" yaml:"county"`
	City   string  `json:"city,omitempty" yaml:"city"`
	Lat    float64 `json:"lat,omitempty" yaml:"lat"`
	Lng    float64 `json:"lng,omitempty" yaml:"lng"`
}

// Toggles switch individual analyses off. A disabled spoke reports a stub.
type Toggles struct {
	SkipCompetition bool `json:"skipCompetition,omitempty" yaml:"skipCompetition"`
	SkipMomentum    bool `json:"skipMomentum,omitempty" yaml:"skipMomentum"`
	SkipPricing     bool `json:"skipPricing,omitempty" yaml:"skipPricing"`
	SkipCivil       bool `json:"skipCivil,omitempty" yaml:"skipCivil"`
}

// Facts are the parcel-level inputs. Pointer fields distinguish "not
// collected" from a real zero.
type Facts struct {
	Acreage           float64  `json:"acreage,omitempty" yaml:"acreage"`
	LandCostPerAcre   float64  `json:"landCostPerAcre,omitempty" yaml:"landCostPerAcre"`
	ZoningCode        string   `json:"zoningCode,omitempty" yaml:"zoningCode"`
	MaxLotCoveragePct *float64 `json:"maxLotCoveragePct,omitempty" yaml:"maxLotCoveragePct"`
	AvgSlopePct       *float64 `json:"avgSlopePct,omitempty" yaml:"avgSlopePct"`
	SoilType          string   `json:"soilType,omitempty" yaml:"soilType"`
}

// Macro carries the upstream market signals gathered before the run.
type Macro struct {
	Population  int          `json:"population" yaml:"population"`
	DemandSqft  *float64     `json:"demandSqft,omitempty" yaml:"demandSqft"`
	SupplySqft  *float64     `json:"supplySqft,omitempty" yaml:"supplySqft"`
	Competitors []Competitor `json:"competitors,omitempty" yaml:"competitors"`
	Industrial  *Industrial  `json:"industrial,omitempty" yaml:"industrial"`
	Housing     *Housing     `json:"housing,omitempty" yaml:"housing"`
}

type Competitor struct {
	Name          string  `json:"name" yaml:"name"`
	DistanceMiles float64 `json:"distanceMiles" yaml:"distanceMiles"`
	Sqft          float64 `json:"sqft" yaml:"sqft"`
}

// Industrial growth indicators. Rating, when present, was assigned upstream
// and takes precedence over the raw indicators.
type Industrial struct {
	Rating              string  `json:"rating,omitempty" yaml:"rating"`
	EmploymentGrowthPct float64 `json:"employmentGrowthPct,omitempty" yaml:"employmentGrowthPct"`
	AnnouncedProjects   int     `json:"announcedProjects,omitempty" yaml:"announcedProjects"`
	NewFacilitySqft     float64 `json:"newFacilitySqft,omitempty" yaml:"newFacilitySqft"`
}

type Housing struct {
	NewUnits        int     `json:"newUnits" yaml:"newUnits"`
	PermitGrowthPct float64 `json:"permitGrowthPct,omitempty" yaml:"permitGrowthPct"`
}

type Pricing struct {
	Observations     []RateObservation `json:"observations,omitempty" yaml:"observations"`
	BenchmarkRentPSF float64           `json:"benchmarkRentPsf,omitempty" yaml:"benchmarkRentPsf"`
}

// RateObservation is one advertised monthly unit rate.
type RateObservation struct {
	Facility    string  `json:"facility,omitempty" yaml:"facility"`
	UnitSize    string  `json:"unitSize,omitempty" yaml:"unitSize"`
	Sqft        float64 `json:"sqft" yaml:"sqft"`
	MonthlyRate float64 `json:"monthlyRate" yaml:"monthlyRate"`
	Climate     bool    `json:"climate,omitempty" yaml:"climate"`
	Source      string  `json:"source,omitempty" yaml:"source"`
}

// Recon is the read-only output of the capability-assessment service that
// decided how data for this location was collected.
type Recon struct {
	Method     string  `json:"method" yaml:"method"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence"`
	AssessedAt string  `json:"assessedAt,omitempty" yaml:"assessedAt"`
}

// Recon collection methods.
const (
	ReconAPI    = "api"
	ReconScrape = "scrape"
	ReconPortal = "portal"
	ReconManual = "manual"
)

// StateCode returns the normalised two-letter state code.
func (c CandidateSite) StateCode() string {
	return strings.ToUpper(strings.TrimSpace(c.Location.State))
}

// Options are per-run overrides supplied alongside the candidate.
type Options struct {
	Acreage         float64 `json:"acreage,omitempty" yaml:"acreage"`
	LandCostPerAcre float64 `json:"landCostPerAcre,omitempty" yaml:"landCostPerAcre"`
	SkipValidation  bool    `json:"skipValidation,omitempty" yaml:"skipValidation"`
	// RunID replaces the generated run id, for re-runs.
	RunID string `json:"runId,omitempty" yaml:"runId"`
}
