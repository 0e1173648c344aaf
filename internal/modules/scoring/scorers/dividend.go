package scorers

import "github.com/aristath/stockscorer/internal/modules/scoring"

// ScoreDividendYield tiers the dividend yield (%).
// A payer with fewer than MinConsecutiveDivYears of uninterrupted dividends
// scores zero whatever its yield; a qualifying payer never drops below TierFloor.
func ScoreDividendYield(yield float64, consecutiveYears int) int {
	if consecutiveYears < scoring.MinConsecutiveDivYears {
		return scoring.TierNone
	}

	switch {
	case yield >= scoring.DividendYieldHigh:
		return scoring.TierMax
	case yield >= scoring.DividendYieldGood:
		return scoring.TierHigh
	case yield >= scoring.DividendYieldModerate:
		return scoring.TierMid
	default:
		return scoring.TierFloor
	}
}
