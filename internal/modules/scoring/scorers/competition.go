package scorers

import "github.com/aristath/stockscorer/internal/modules/scoring"

// ScoreCompetitiveness tiers how far the company outgrows its industry,
// in percentage points.
func ScoreCompetitiveness(companyGrowth, industryGrowth float64) int {
	diff := companyGrowth - industryGrowth

	switch {
	case diff >= scoring.CompetitionLeader:
		return scoring.TierMax
	case diff >= scoring.CompetitionAhead:
		return scoring.TierHigh
	case diff >= scoring.CompetitionParity:
		return scoring.TierFair
	default:
		return scoring.TierLaggard
	}
}
