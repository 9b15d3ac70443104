// SPDX-License-Identifier: Apache-2.0

package spoke_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storagegate/underwrite/internal/site"
	"github.com/storagegate/underwrite/internal/spoke"
)

func ptr(v float64) *float64 { return &v }

func baseCandidate() site.CandidateSite {
	return site.CandidateSite{
		OpportunityID: "opp-100",
		Location:      site.Location{Zip: "78701", State: "tx", City: "Austin"},
		Site:          site.Facts{Acreage: 3, LandCostPerAcre: 150000, ZoningCode: "LI-2", AvgSlopePct: ptr(1), SoilType: "sandy loam"},
		Macro:         site.Macro{Population: 60000},
	}
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve_Defaults(t *testing.T) {
	d := spoke.DefaultDoctrine()
	c := baseCandidate()
	c.Site.LandCostPerAcre = 0
	c.Site.AvgSlopePct = nil
	c.Macro.Competitors = []site.Competitor{
		{Name: "near", DistanceMiles: 2, Sqft: 60000},
		{Name: "edge", DistanceMiles: 10, Sqft: 40000},
		{Name: "far", DistanceMiles: 14, Sqft: 90000},
	}

	in := spoke.Resolve(c, site.Options{}, d)

	assert.Equal(t, "TX", in.State)
	assert.Equal(t, d.DefaultLandCostPerAcre, in.LandCostPerAcre)
	assert.True(t, in.LandCostDefault)
	assert.False(t, in.SlopeKnown)
	assert.Equal(t, 0.0, in.SlopePct)
	assert.Equal(t, "sand", in.Soil)
	assert.Equal(t, 70.0, in.LotCoverageLimitPct, "industrial district coverage")
	assert.True(t, in.LotCoverageFromCode)
	assert.InDelta(t, 60000*d.SqftPerCapita, in.DemandSqft, 1e-9)
	assert.True(t, in.DemandDerived)
	assert.Equal(t, 100000.0, in.SupplySqft, "only competitors within 10 miles count")
	assert.True(t, in.SupplyDerived)
}

func TestResolve_OptionsOverrideCandidate(t *testing.T) {
	c := baseCandidate()
	c.Site.MaxLotCoveragePct = ptr(45)
	c.Macro.DemandSqft = ptr(500000)

	in := spoke.Resolve(c, site.Options{Acreage: 5, LandCostPerAcre: 90000}, spoke.DefaultDoctrine())

	assert.Equal(t, 5.0, in.Acreage)
	assert.Equal(t, 90000.0, in.LandCostPerAcre)
	assert.False(t, in.LandCostDefault)
	assert.Equal(t, 45.0, in.LotCoverageLimitPct)
	assert.False(t, in.LotCoverageFromCode)
	assert.Equal(t, 500000.0, in.DemandSqft)
	assert.False(t, in.DemandDerived)
}

// ---------------------------------------------------------------------------
// Zoning
// ---------------------------------------------------------------------------

func TestZoningSpoke_Run(t *testing.T) {
	s := spoke.NewZoningSpoke()
	ctx := context.Background()

	tests := []struct {
		name       string
		code       string
		wantStatus spoke.Status
		wantClass  spoke.Classification
		wantScore  float64
		wantByRite bool
	}{
		{name: "industrial is permitted by right", code: "LI-2", wantStatus: spoke.StatusOK, wantClass: spoke.ZonePermitted, wantScore: 100, wantByRite: true},
		{name: "highway commercial is permitted by right", code: "c-3", wantStatus: spoke.StatusOK, wantClass: spoke.ZonePermitted, wantScore: 100, wantByRite: true},
		{name: "general commercial is conditional", code: "C-2", wantStatus: spoke.StatusOK, wantClass: spoke.ZoneConditional, wantScore: 60},
		{name: "mixed use matches before industrial M", code: "MU-1", wantStatus: spoke.StatusOK, wantClass: spoke.ZoneConditional, wantScore: 60},
		{name: "residential is prohibited", code: "R-1", wantStatus: spoke.StatusOK, wantClass: spoke.ZoneProhibited, wantScore: 0},
		{name: "unrecognised code is unknown", code: "XYZ", wantStatus: spoke.StatusOK, wantClass: spoke.ZoneUnknown, wantScore: 40},
		{name: "missing code is a stub", code: "", wantStatus: spoke.StatusStub, wantClass: spoke.ZoneUnknown, wantScore: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCandidate()
			c.Site.ZoningCode = tt.code
			in := spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine())

			r, err := s.Run(ctx, in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, r.Status())
			z := r.Snapshot()
			assert.Equal(t, tt.wantClass, z.Classification)
			assert.Equal(t, tt.wantScore, z.ZoningScore)
			assert.Equal(t, tt.wantByRite, z.ByRight)
			assert.Equal(t, tt.wantClass == spoke.ZoneConditional, z.RequiresHearing)
		})
	}
}

// ---------------------------------------------------------------------------
// Permit
// ---------------------------------------------------------------------------

func TestPermitSpoke_Run(t *testing.T) {
	s := spoke.NewPermitSpoke()
	ctx := context.Background()
	d := spoke.DefaultDoctrine()

	t.Run("known state uses its profile", func(t *testing.T) {
		in := spoke.Resolve(baseCandidate(), site.Options{}, d)
		r, err := s.Run(ctx, in)
		require.NoError(t, err)
		p, ok := r.Resolve(s.Default())
		require.True(t, ok)
		assert.Equal(t, spoke.ComplexityLow, p.Complexity)
		assert.Equal(t, 13500.0, p.EstimatedFee)
		assert.Equal(t, 90.0, p.PermitScore)
		assert.Equal(t, "Austin, TX", p.Jurisdiction)
	})

	t.Run("unknown state falls back to national averages", func(t *testing.T) {
		c := baseCandidate()
		c.Location.State = "WY"
		r, err := s.Run(ctx, spoke.Resolve(c, site.Options{}, d))
		require.NoError(t, err)
		assert.Equal(t, spoke.StatusStub, r.Status())
		assert.Equal(t, s.Default(), r.Snapshot(), "a stub carries the documented default")
		assert.Equal(t, 50.0, r.Snapshot().PermitScore)
		assert.Contains(t, r.Notes(), "WY")
	})

	t.Run("zero acreage is an error", func(t *testing.T) {
		c := baseCandidate()
		c.Site.Acreage = 0
		_, err := s.Run(ctx, spoke.Resolve(c, site.Options{}, d))
		assert.ErrorContains(t, err, "positive acreage")
	})
}

// ---------------------------------------------------------------------------
// Pricing
// ---------------------------------------------------------------------------

func TestPricingVerificationSpoke_Run(t *testing.T) {
	d := spoke.DefaultDoctrine()
	s := spoke.NewPricingVerificationSpoke(d)
	ctx := context.Background()

	obs := []site.RateObservation{
		{UnitSize: "10x10", Sqft: 100, MonthlyRate: 100},
		{UnitSize: "10x10", Sqft: 100, MonthlyRate: 120, Climate: true},
		{UnitSize: "10x10", Sqft: 100, MonthlyRate: 150},
	}

	tests := []struct {
		name         string
		pricing      site.Pricing
		skip         bool
		wantErr      string
		wantStatus   spoke.Status
		wantSource   spoke.PricingSource
		wantRent     float64
		wantVerified bool
	}{
		{name: "observations blended with benchmark", pricing: site.Pricing{Observations: obs, BenchmarkRentPSF: 1.25},
			wantStatus: spoke.StatusOK, wantSource: spoke.PricingBlended, wantRent: 1.215, wantVerified: true},
		{name: "observations only use the median", pricing: site.Pricing{Observations: obs},
			wantStatus: spoke.StatusOK, wantSource: spoke.PricingObserved, wantRent: 1.2},
		{name: "benchmark only", pricing: site.Pricing{BenchmarkRentPSF: 1.4},
			wantStatus: spoke.StatusOK, wantSource: spoke.PricingBenchmark, wantRent: 1.4},
		{name: "nothing observed is a stub at the default rent", wantStatus: spoke.StatusStub, wantSource: spoke.PricingDefault, wantRent: 1.15},
		{name: "toggle off is a stub", pricing: site.Pricing{Observations: obs}, skip: true,
			wantStatus: spoke.StatusStub, wantSource: spoke.PricingDefault, wantRent: 1.15},
		{name: "zero-sqft observation is an error", pricing: site.Pricing{Observations: []site.RateObservation{{UnitSize: "bad", Sqft: 0, MonthlyRate: 90}}},
			wantErr: "invalid sqft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCandidate()
			c.Pricing = tt.pricing
			c.Toggles.SkipPricing = tt.skip

			r, err := s.Run(ctx, spoke.Resolve(c, site.Options{}, d))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, r.Status())
			p := r.Snapshot()
			assert.Equal(t, tt.wantSource, p.Source)
			assert.InDelta(t, tt.wantRent, p.BlendedRentPSF, 1e-9)
			assert.Equal(t, tt.wantVerified, p.Verified)
		})
	}
}

// ---------------------------------------------------------------------------
// Momentum
// ---------------------------------------------------------------------------

func TestMomentumSpoke_Run(t *testing.T) {
	s := spoke.NewMomentumSpoke()
	ctx := context.Background()

	tests := []struct {
		name           string
		industrial     *site.Industrial
		housing        *site.Housing
		wantErr        bool
		wantStatus     spoke.Status
		wantIndustrial spoke.Rating
		wantHousing    spoke.Rating
	}{
		{name: "upstream rating wins over indicators", industrial: &site.Industrial{Rating: "STRONG", EmploymentGrowthPct: 0},
			housing: &site.Housing{NewUnits: 600}, wantStatus: spoke.StatusOK, wantIndustrial: spoke.RatingStrong, wantHousing: spoke.RatingStrong},
		{name: "indicators derive moderate", industrial: &site.Industrial{AnnouncedProjects: 1},
			wantStatus: spoke.StatusOK, wantIndustrial: spoke.RatingModerate, wantHousing: spoke.RatingModerate},
		{name: "quiet indicators are weak", industrial: &site.Industrial{EmploymentGrowthPct: 0.2}, housing: &site.Housing{NewUnits: 40},
			wantStatus: spoke.StatusOK, wantIndustrial: spoke.RatingWeak, wantHousing: spoke.RatingWeak},
		{name: "no signals is a stub", wantStatus: spoke.StatusStub, wantIndustrial: spoke.RatingModerate, wantHousing: spoke.RatingModerate},
		{name: "unrecognised rating is an error", industrial: &site.Industrial{Rating: "booming"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCandidate()
			c.Macro.Industrial, c.Macro.Housing = tt.industrial, tt.housing

			r, err := s.Run(ctx, spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine()))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, r.Status())
			assert.Equal(t, tt.wantIndustrial, r.Snapshot().IndustrialRating)
			assert.Equal(t, tt.wantHousing, r.Snapshot().HousingRating)
		})
	}
}

// ---------------------------------------------------------------------------
// FusionDemand
// ---------------------------------------------------------------------------

func TestFusionDemandSpoke_ScenarioD(t *testing.T) {
	d := spoke.DefaultDoctrine()
	c := baseCandidate()
	c.Macro.Population = 120000
	c.Macro.Industrial = &site.Industrial{Rating: "strong"}
	c.Macro.Housing = &site.Housing{NewUnits: 600}
	in := spoke.Resolve(c, site.Options{}, d)

	momentum, err := spoke.NewMomentumSpoke().Run(context.Background(), in)
	require.NoError(t, err)

	r, err := spoke.NewFusionDemandSpoke().Run(context.Background(), spoke.FusionInput{Inputs: in, Momentum: momentum})
	require.NoError(t, err)
	f, ok := r.Resolve(spoke.FusionDemand{})
	require.True(t, ok)

	// 90×0.55 + 90×0.25 + 100×0.20
	assert.Equal(t, 92.0, f.DemandScore)
	assert.Equal(t, 90.0, f.IndustrialScore)
	assert.Equal(t, 90.0, f.HousingScore)
	assert.Equal(t, 100.0, f.PopulationScore)
	assert.Equal(t, 840000.0, f.SupplyGap, "no competitors: the gap is the whole derived demand")
	assert.Equal(t, spoke.TimingFavorable, f.MarketTiming)
}

func TestFusionDemandSpoke_NonOKMomentumUsesDefaultAnchors(t *testing.T) {
	c := baseCandidate()
	c.Macro.SupplySqft = ptr(500000)
	in := spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine())

	for _, m := range []spoke.Result[spoke.Momentum]{
		spoke.Stub(spoke.Momentum{IndustrialRating: spoke.RatingStrong}, "toggle"),
		spoke.Failed(spoke.Momentum{IndustrialRating: spoke.RatingStrong}, assert.AnError),
	} {
		r, err := spoke.NewFusionDemandSpoke().Run(context.Background(), spoke.FusionInput{Inputs: in, Momentum: m})
		require.NoError(t, err)
		f := r.Snapshot()
		assert.Equal(t, 60.0, f.IndustrialScore, "stub value must not leak into the score")
		assert.Equal(t, 50.0, f.HousingScore)
		// 60×0.55 + 50×0.25 + 80×0.20 = 61.5
		assert.Equal(t, 62.0, f.DemandScore)
		assert.Equal(t, spoke.TimingUnfavorable, f.MarketTiming)
		assert.Contains(t, r.Notes(), "default anchors")
	}
}

func TestFusionDemandSpoke_NoPopulationIsStub(t *testing.T) {
	c := baseCandidate()
	c.Macro.Population = 0
	s := spoke.NewFusionDemandSpoke()
	r, err := s.Run(context.Background(), spoke.FusionInput{Inputs: spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine())})
	require.NoError(t, err)
	assert.Equal(t, spoke.StatusStub, r.Status())
	assert.Equal(t, s.Default(), r.Snapshot())
}

// ---------------------------------------------------------------------------
// CompetitivePressure
// ---------------------------------------------------------------------------

func TestCompetitivePressureSpoke_Run(t *testing.T) {
	s := spoke.NewCompetitivePressureSpoke()

	competitors := func(n int, miles, sqft float64) []site.Competitor {
		out := make([]site.Competitor, n)
		for i := range out {
			out[i] = site.Competitor{Name: "facility", DistanceMiles: miles, Sqft: sqft}
		}
		return out
	}

	tests := []struct {
		name           string
		population     int
		competitors    []site.Competitor
		wantSaturation spoke.Saturation
		wantPressure   float64
	}{
		{name: "three nearby at 6 sqft/capita is balanced", population: 10000, competitors: competitors(3, 2, 20000),
			wantSaturation: spoke.Balanced, wantPressure: 60},
		{name: "five nearby and oversupplied maxes pressure", population: 10000, competitors: competitors(5, 1, 20000),
			wantSaturation: spoke.Oversupplied, wantPressure: 90},
		{name: "empty trade area is undersupplied", population: 10000,
			wantSaturation: spoke.Undersupplied, wantPressure: 20},
		{name: "just above eight sqft/capita is oversupplied", population: 100000,
			competitors: []site.Competitor{{Name: "mega", DistanceMiles: 3, Sqft: 800400}},
			wantSaturation: spoke.Oversupplied, wantPressure: 70},
		{name: "just below five sqft/capita is undersupplied", population: 100000,
			competitors: []site.Competitor{{Name: "mid", DistanceMiles: 3, Sqft: 499600}},
			wantSaturation: spoke.Undersupplied, wantPressure: 35},
		{name: "competitors beyond ten miles are ignored", population: 10000, competitors: competitors(4, 12, 50000),
			wantSaturation: spoke.Undersupplied, wantPressure: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCandidate()
			c.Macro.Population = tt.population
			c.Macro.Competitors = tt.competitors
			r, err := s.Run(context.Background(), spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine()))
			require.NoError(t, err)
			cp, ok := r.Resolve(s.Default())
			require.True(t, ok)
			assert.Equal(t, tt.wantSaturation, cp.Saturation)
			assert.Equal(t, tt.wantPressure, cp.PressureScore)
		})
	}
}

func TestCompetitivePressureSpoke_NegativeSqftIsError(t *testing.T) {
	c := baseCandidate()
	c.Macro.Competitors = []site.Competitor{{Name: "typo", DistanceMiles: 1, Sqft: -5}}
	_, err := spoke.NewCompetitivePressureSpoke().Run(context.Background(), spoke.Resolve(c, site.Options{}, spoke.DefaultDoctrine()))
	assert.ErrorContains(t, err, "typo")
}
