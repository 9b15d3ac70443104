// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"math"
	"sort"
)

type PricingSource string

const (
	PricingObserved  PricingSource = "observed"
	PricingBenchmark PricingSource = "benchmark"
	PricingBlended   PricingSource = "blended"
	PricingDefault   PricingSource = "default"
)

type Pricing struct {
	ObservedRentPSF  float64       `json:"observedRentPsf"`
	BenchmarkRentPSF float64       `json:"benchmarkRentPsf"`
	BlendedRentPSF   float64       `json:"blendedRentPsf"`
	VariancePct      float64       `json:"variancePct"`
	ObservationCount int           `json:"observationCount"`
	ClimateShare     float64       `json:"climateShare"`
	Source           PricingSource `json:"source"`
	Verified         bool          `json:"verified"`
}

// PricingVerificationSpoke reconciles observed street rates with a
// benchmark into one blended monthly rent per square foot.
type PricingVerificationSpoke struct {
	doctrine Doctrine
}

func NewPricingVerificationSpoke(d Doctrine) *PricingVerificationSpoke {
	return &PricingVerificationSpoke{doctrine: d}
}

func (s *PricingVerificationSpoke) Name() string { return "pricing" }

func (s *PricingVerificationSpoke) Default() Pricing {
	return Pricing{BlendedRentPSF: s.doctrine.DefaultRentPSF, Source: PricingDefault}
}

func (s *PricingVerificationSpoke) Run(_ context.Context, in Inputs) (Result[Pricing], error) {
	if in.Toggles.SkipPricing {
		return Stub(s.Default(), "pricing verification disabled by toggle"), nil
	}

	var psf []float64
	climate := 0
	for i, o := range in.Pricing.Observations {
		if o.Sqft <= 0 || o.MonthlyRate < 0 {
			return Result[Pricing]{}, fmt.Errorf("observation %d (%s): invalid sqft %v or rate %v", i, o.UnitSize, o.Sqft, o.MonthlyRate)
		}
		psf = append(psf, o.MonthlyRate/o.Sqft)
		if o.Climate {
			climate++
		}
	}
	benchmark := in.Pricing.BenchmarkRentPSF

	p := Pricing{BenchmarkRentPSF: benchmark, ObservationCount: len(psf)}
	if len(psf) > 0 {
		p.ObservedRentPSF = round4(median(psf))
		p.ClimateShare = round2(float64(climate) / float64(len(psf)))
	}

	switch {
	case len(psf) > 0 && benchmark > 0:
		w := s.doctrine.ObservedWeight
		p.BlendedRentPSF = round4(p.ObservedRentPSF*w + benchmark*(1-w))
		p.VariancePct = round2(math.Abs(p.ObservedRentPSF-benchmark) / benchmark * 100)
		p.Source = PricingBlended
		p.Verified = p.VariancePct <= s.doctrine.PricingVariance
		return Ok(p, fmt.Sprintf("%d observations blended with benchmark; variance %.1f%%", len(psf), p.VariancePct)), nil
	case len(psf) > 0:
		p.BlendedRentPSF = p.ObservedRentPSF
		p.Source = PricingObserved
		return Ok(p, fmt.Sprintf("%d observations, no benchmark to verify against", len(psf))), nil
	case benchmark > 0:
		p.BlendedRentPSF = benchmark
		p.Source = PricingBenchmark
		return Ok(p, "benchmark only; no street rates observed"), nil
	}
	return Stub(s.Default(), fmt.Sprintf("no pricing data; default $%.2f/sf/mo", s.doctrine.DefaultRentPSF)), nil
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
