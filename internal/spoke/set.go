// SPDX-License-Identifier: Apache-2.0

package spoke

import "context"

// Spoke is one analysis step. Run returns a tagged Result for outcomes it
// understands and an error for anything it cannot; the caller converts the
// error (or a panic) into a Failed result carrying Default.
type Spoke[In, Out any] interface {
	Name() string
	Run(ctx context.Context, in In) (Result[Out], error)
	Default() Out
}

// Set is the full complement of spokes. It is built once and shared by every
// evaluation; spokes hold no per-run state.
type Set struct {
	Doctrine Doctrine

	Zoning      Spoke[Inputs, Zoning]
	Permit      Spoke[Inputs, Permit]
	Civil       Spoke[Inputs, Civil]
	Pricing     Spoke[Inputs, Pricing]
	Momentum    Spoke[Inputs, Momentum]
	Competitive Spoke[Inputs, CompetitivePressure]
	Fusion      Spoke[FusionInput, FusionDemand]
	Feasibility Spoke[FeasibilityInput, Feasibility]
	Reverse     Spoke[ReverseInput, ReverseFeasibility]
	Verdict     Spoke[VerdictInput, Verdict]
}

// NewSet wires the default implementation of every spoke against d.
func NewSet(d Doctrine) *Set {
	return &Set{
		Doctrine:    d,
		Zoning:      NewZoningSpoke(),
		Permit:      NewPermitSpoke(),
		Civil:       NewCivilConstraintsSpoke(d),
		Pricing:     NewPricingVerificationSpoke(d),
		Momentum:    NewMomentumSpoke(),
		Competitive: NewCompetitivePressureSpoke(),
		Fusion:      NewFusionDemandSpoke(),
		Feasibility: NewFeasibilitySpoke(d),
		Reverse:     NewReverseFeasibilitySpoke(d),
		Verdict:     NewVerdictSpoke(d),
	}
}

// Names lists the spokes in execution order.
func (s *Set) Names() []string {
	return []string{
		s.Zoning.Name(), s.Permit.Name(), s.Civil.Name(), s.Pricing.Name(),
		s.Momentum.Name(), s.Competitive.Name(), s.Fusion.Name(),
		s.Feasibility.Name(), s.Reverse.Name(), s.Verdict.Name(),
	}
}
