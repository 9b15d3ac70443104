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

func runFeasibility(t *testing.T, c site.CandidateSite, pricing spoke.Result[spoke.Pricing], civil spoke.Result[spoke.Civil]) spoke.Result[spoke.Feasibility] {
	t.Helper()
	d := spoke.DefaultDoctrine()
	r, err := spoke.NewFeasibilitySpoke(d).Run(context.Background(), spoke.FeasibilityInput{
		Inputs:  spoke.Resolve(c, site.Options{}, d),
		Pricing: pricing,
		Civil:   civil,
	})
	require.NoError(t, err)
	return r
}

func stubPricing() spoke.Result[spoke.Pricing] {
	return spoke.Stub(spoke.Pricing{BlendedRentPSF: 9.99, Source: spoke.PricingDefault}, "no pricing data")
}

func stubCivil() spoke.Result[spoke.Civil] {
	return spoke.Stub(spoke.Civil{DevelopableAcres: 0.1, TotalCivilCostAdder: 1e9}, "civil analysis disabled by toggle")
}

// ---------------------------------------------------------------------------
// Feasibility
// ---------------------------------------------------------------------------

func TestFeasibilitySpoke_ScenarioA(t *testing.T) {
	r := runFeasibility(t, baseCandidate(), stubPricing(), stubCivil())
	f, ok := r.Resolve(spoke.Feasibility{})
	require.True(t, ok)

	assert.Equal(t, 450000.0, f.LandCost)
	// Stub values must not leak: gross acreage, no adder, doctrine rent.
	assert.InDelta(t, 52272.0, f.BuildableSqft, 1e-6)
	assert.Equal(t, 0.0, f.CivilCostAdder)
	assert.Equal(t, 1.15, f.BlendedRentPSF)
	assert.Equal(t, spoke.PricingDefault, f.RentSource)
	assert.Contains(t, r.Notes(), "gross acreage")

	assert.InDelta(t, 8.05, f.CapRate, 0.01)
	assert.InDelta(t, 1.64, f.DSCR, 0.01)
	assert.InDelta(t, 62.5, f.ROI5yr, 0.1)
	assert.True(t, f.IsViable)
	assert.Equal(t, 90.0, f.FeasibilityScore)
	assert.Empty(t, f.Warnings)
}

func TestFeasibilitySpoke_TotalDevelopmentCostIdentity(t *testing.T) {
	steep := baseCandidate()
	steep.Site.AvgSlopePct = ptr(12)

	cases := []struct {
		name  string
		site  site.CandidateSite
		civil spoke.Result[spoke.Civil]
	}{
		{name: "civil stubbed", site: baseCandidate(), civil: stubCivil()},
		{name: "civil computed", site: baseCandidate(), civil: runCivil(t, baseCandidate())},
		{name: "steep civil computed", site: steep, civil: runCivil(t, steep)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := runFeasibility(t, tc.site, stubPricing(), tc.civil).Snapshot()
			assert.InDelta(t, f.LandCost+f.ConstructionCost+f.SoftCosts, f.TotalDevelopmentCost, 1e-6)
			assert.InDelta(t, f.ConstructionCost*0.15, f.SoftCosts, 1e-6)
		})
	}
}

func TestFeasibilitySpoke_UsesComputedCivil(t *testing.T) {
	c := baseCandidate()
	c.Site.AvgSlopePct = ptr(12)
	civil := runCivil(t, c)

	f := runFeasibility(t, c, stubPricing(), civil).Snapshot()

	assert.InDelta(t, 1.8*43560*0.40, f.BuildableSqft, 1e-6)
	assert.Equal(t, civil.Snapshot().TotalCivilCostAdder, f.CivilCostAdder)
	assert.InDelta(t, f.BuildableSqft*65+f.CivilCostAdder, f.ConstructionCost, 1e-6)
}

func TestFeasibilitySpoke_LowRentWarnings(t *testing.T) {
	pricing := spoke.Ok(spoke.Pricing{BlendedRentPSF: 0.5, Source: spoke.PricingBenchmark}, "benchmark only")
	f := runFeasibility(t, baseCandidate(), pricing, stubCivil()).Snapshot()

	assert.Less(t, f.DSCR, 1.0)
	assert.False(t, f.IsViable)
	require.NotEmpty(t, f.Warnings)
	assert.Equal(t, spoke.WarnDSCRBelowMinimum, f.Warnings[0].Code)
	assert.Equal(t, spoke.SeverityWarning, f.Warnings[0].Severity)
	require.NotNil(t, f.Warnings[0].Threshold)
	assert.Equal(t, 1.25, *f.Warnings[0].Threshold)
}

func TestFeasibilitySpoke_ZeroAcreageIsError(t *testing.T) {
	c := baseCandidate()
	c.Site.Acreage = 0
	d := spoke.DefaultDoctrine()
	_, err := spoke.NewFeasibilitySpoke(d).Run(context.Background(), spoke.FeasibilityInput{
		Inputs: spoke.Resolve(c, site.Options{}, d), Pricing: stubPricing(), Civil: stubCivil(),
	})
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// ReverseFeasibility
// ---------------------------------------------------------------------------

func TestReverseFeasibilitySpoke_TargetRentRoundTrips(t *testing.T) {
	d := spoke.DefaultDoctrine()
	feas := runFeasibility(t, baseCandidate(), stubPricing(), stubCivil())

	r, err := spoke.NewReverseFeasibilitySpoke(d).Run(context.Background(), spoke.ReverseInput{Feasibility: feas})
	require.NoError(t, err)
	rev, ok := r.Resolve(spoke.ReverseFeasibility{})
	require.True(t, ok)

	assert.InDelta(t, 0.9287, rev.TargetRentPSF, 1e-4)
	assert.Greater(t, rev.RentCushionPct, 0.0)
	assert.Greater(t, rev.MaxLandPricePerAcre, 150000.0)
	assert.Greater(t, rev.LandCushionPct, 0.0)
	assert.Less(t, rev.BreakEvenRentPSF, rev.MinDSCRRentPSF)

	// Underwriting again at the target rent lands on the target cap rate.
	atTarget := spoke.Ok(spoke.Pricing{BlendedRentPSF: rev.TargetRentPSF, Source: spoke.PricingBenchmark}, "")
	f := runFeasibility(t, baseCandidate(), atTarget, stubCivil()).Snapshot()
	assert.InDelta(t, d.TargetCapRate*100, f.CapRate, 0.01)
}

func TestReverseFeasibilitySpoke_StubWhenFeasibilityNotOK(t *testing.T) {
	s := spoke.NewReverseFeasibilitySpoke(spoke.DefaultDoctrine())
	for _, feas := range []spoke.Result[spoke.Feasibility]{
		spoke.Stub(spoke.Feasibility{NetRentableSqft: 1000}, "validation blocked"),
		spoke.Failed(spoke.Feasibility{}, assert.AnError),
	} {
		r, err := s.Run(context.Background(), spoke.ReverseInput{Feasibility: feas})
		require.NoError(t, err)
		assert.Equal(t, spoke.StatusStub, r.Status())
		assert.Equal(t, s.Default(), r.Snapshot())
	}
}
