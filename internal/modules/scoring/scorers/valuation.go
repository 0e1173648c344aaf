package scorers

import "github.com/aristath/stockscorer/internal/modules/scoring"

// ScoreMarginOfSafety tiers the P/E discount against the sector average.
//
// With a positive sector P/E the discount is (sectorPE - pe) / sectorPE.
// Without one, a P/E strictly between 0 and FallbackMaxPE counts as fair value
// and anything else (loss makers included) scores nothing.
func ScoreMarginOfSafety(pe, sectorPE float64) int {
	if sectorPE > 0 {
		mos := (sectorPE - pe) / sectorPE
		switch {
		case mos > scoring.MOSDeepDiscount:
			return scoring.TierMax
		case mos >= scoring.MOSDiscount:
			return scoring.TierHigh
		case mos >= scoring.MOSFairBand:
			return scoring.TierFair
		default:
			return scoring.TierNone
		}
	}

	if pe > 0 && pe < scoring.FallbackMaxPE {
		return scoring.TierFair
	}
	return scoring.TierNone
}

// MarginOfSafety returns the discount fraction and whether a sector anchor existed.
func MarginOfSafety(pe, sectorPE float64) (float64, bool) {
	if sectorPE <= 0 {
		return 0, false
	}
	return (sectorPE - pe) / sectorPE, true
}
