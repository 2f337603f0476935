package rates

import (
	"math"

	"github.com/solventa-app/solventa/internal/shared"
)

// The three rate fields stay mutually consistent under:
//
//	TNA = TEM * 12
//	TEA = (1 + TEM)^12 - 1
//	TEM = (1 + TEA)^(1/12) - 1
//	TEM = TNA / 12
//
// with all values expressed as percentages and rounded to 3 decimals.

// ErrNegativeRate rejects negative input percentages.
var ErrNegativeRate = shared.NewBusinessError("interest rate cannot be negative")

// FromTEM derives the full rate set from a monthly periodic percentage.
func FromTEM(tem float64) (RateSet, error) {
	if tem < 0 {
		return RateSet{}, ErrNegativeRate
	}
	frac := tem / 100
	return RateSet{
		TEM: round3(tem),
		TNA: round3(tem * 12),
		TEA: round3((math.Pow(1+frac, 12) - 1) * 100),
	}, nil
}

// FromTNA derives the full rate set from an annual nominal percentage.
func FromTNA(tna float64) (RateSet, error) {
	if tna < 0 {
		return RateSet{}, ErrNegativeRate
	}
	set, err := FromTEM(tna / 12)
	if err != nil {
		return RateSet{}, err
	}
	set.TNA = round3(tna)
	return set, nil
}

// FromTEA derives the full rate set from an annual effective percentage.
func FromTEA(tea float64) (RateSet, error) {
	if tea < 0 {
		return RateSet{}, ErrNegativeRate
	}
	// Derive from the rounded value so the stored TEA and the TEM/TNA
	// computed from it stay mutually consistent.
	tea = round3(tea)
	tem := (math.Pow(1+tea/100, 1.0/12) - 1) * 100
	set, err := FromTEM(tem)
	if err != nil {
		return RateSet{}, err
	}
	set.TEA = tea
	return set, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
