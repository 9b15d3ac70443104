// SPDX-License-Identifier: Apache-2.0

package spoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/storagegate/underwrite/internal/site"
)

type Rating string

const (
	RatingStrong   Rating = "strong"
	RatingModerate Rating = "moderate"
	RatingWeak     Rating = "weak"
)

type Momentum struct {
	IndustrialRating Rating `json:"industrialRating"`
	HousingRating    Rating `json:"housingRating"`
	NewHousingUnits  int    `json:"newHousingUnits"`
	HousingReported  bool   `json:"housingReported"`
	IndustrialSource string `json:"industrialSource"`
}

// MomentumSpoke summarises industrial and housing growth signals.
type MomentumSpoke struct{}

func NewMomentumSpoke() *MomentumSpoke { return &MomentumSpoke{} }

func (s *MomentumSpoke) Name() string { return "momentum" }

func (s *MomentumSpoke) Default() Momentum {
	return Momentum{IndustrialRating: RatingModerate, HousingRating: RatingModerate, IndustrialSource: "default"}
}

func (s *MomentumSpoke) Run(_ context.Context, in Inputs) (Result[Momentum], error) {
	if in.Toggles.SkipMomentum {
		return Stub(s.Default(), "momentum disabled by toggle"), nil
	}
	if in.Industrial == nil && in.Housing == nil {
		return Stub(s.Default(), "no industrial or housing signals"), nil
	}

	m := s.Default()
	var notes []string

	if in.Industrial != nil {
		r, src, err := industrialRating(*in.Industrial)
		if err != nil {
			return Result[Momentum]{}, err
		}
		m.IndustrialRating, m.IndustrialSource = r, src
		notes = append(notes, fmt.Sprintf("industrial %s (%s)", r, src))
	} else {
		notes = append(notes, "industrial signal missing; moderate assumed")
	}

	if in.Housing != nil {
		m.NewHousingUnits = in.Housing.NewUnits
		m.HousingReported = true
		m.HousingRating = housingRating(in.Housing.NewUnits)
		notes = append(notes, fmt.Sprintf("housing %s (%d new units)", m.HousingRating, in.Housing.NewUnits))
	} else {
		notes = append(notes, "housing signal missing; moderate assumed")
	}

	return Ok(m, strings.Join(notes, "; ")), nil
}

func industrialRating(ind site.Industrial) (Rating, string, error) {
	if ind.Rating != "" {
		switch r := Rating(strings.ToLower(strings.TrimSpace(ind.Rating))); r {
		case RatingStrong, RatingModerate, RatingWeak:
			return r, "upstream", nil
		default:
			return "", "", fmt.Errorf("unrecognized industrial rating %q", ind.Rating)
		}
	}
	switch {
	case ind.EmploymentGrowthPct >= 3 || ind.AnnouncedProjects >= 3 || ind.NewFacilitySqft >= 1_000_000:
		return RatingStrong, "indicators", nil
	case ind.EmploymentGrowthPct >= 1 || ind.AnnouncedProjects >= 1 || ind.NewFacilitySqft >= 250_000:
		return RatingModerate, "indicators", nil
	}
	return RatingWeak, "indicators", nil
}

func housingRating(units int) Rating {
	switch {
	case units >= 500:
		return RatingStrong
	case units >= 200:
		return RatingModerate
	}
	return RatingWeak
}
