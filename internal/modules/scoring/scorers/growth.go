// Package scorers implements the Master Scoring Model: five tiered sub-scores,
// a weighted aggregate and a target-return driven risk multiplier.
package scorers

import "github.com/aristath/stockscorer/internal/modules/scoring"

// ScoreIndustryGrowth tiers the industry's 3-year CAGR (%).
func ScoreIndustryGrowth(growth float64) int {
	switch {
	case growth >= scoring.IndustryGrowthStrong:
		return scoring.TierMax
	case growth >= scoring.IndustryGrowthModerate:
		return scoring.TierHigh
	case growth >= scoring.IndustryGrowthFlat:
		return scoring.TierMid
	default:
		return scoring.TierNone
	}
}

// ScoreProfitGrowth tiers the company's 5-year net profit CAGR (%).
func ScoreProfitGrowth(growth float64) int {
	switch {
	case growth >= scoring.ProfitGrowthStrong:
		return scoring.TierMax
	case growth >= scoring.ProfitGrowthModerate:
		return scoring.TierHigh
	case growth >= scoring.ProfitGrowthLow:
		return scoring.TierMid
	case growth >= scoring.ProfitGrowthFlat:
		return scoring.TierLow
	default:
		return scoring.TierNone
	}
}
