package scorers

import (
	"math"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

// Score runs the Master Scoring Model.
//
// It is pure and total: it performs no I/O, holds no state and returns a report
// for every input, including negative growth, zero or negative P/E, zero beta
// and weights that do not sum to 100. Weights are applied as given.
func Score(metrics scoring.MetricSet, weights scoring.WeightSet, targetReturn float64) scoring.ScoreReport {
	raw := RawScoresFor(metrics)

	base := (float64(raw.Industry)*weights.Industry +
		float64(raw.Profit)*weights.Profit +
		float64(raw.MOS)*weights.MOS +
		float64(raw.Yield)*weights.YieldVal +
		float64(raw.Competition)*weights.Competition) / 100.0

	riskMult := RiskMultiplier(targetReturn, metrics.Beta)
	final := truncateScore(base * riskMult)

	return scoring.ScoreReport{
		BaseScore:   roundTo1(base),
		FinalScore:  final,
		Grade:       GradeFor(final),
		RiskMult:    riskMult,
		RawScores:   raw,
		RiskProfile: scoring.RiskBandFor(targetReturn),
	}
}

// RawScoresFor evaluates the five sub-scores.
func RawScoresFor(m scoring.MetricSet) scoring.RawScores {
	return scoring.RawScores{
		Industry:    ScoreIndustryGrowth(m.IndustryGrowth3yr),
		Profit:      ScoreProfitGrowth(m.NetProfitGrowth5yr),
		MOS:         ScoreMarginOfSafety(m.PERatio, m.SectorPE),
		Yield:       ScoreDividendYield(m.DividendYield, m.DividendYearsConsecutive),
		Competition: ScoreCompetitiveness(m.CompanyGrowthRate, m.IndustryGrowth3yr),
	}
}

// ScoreFromMaps coerces loosely typed inputs before scoring.
func ScoreFromMaps(metrics, weights map[string]interface{}, targetReturn float64) scoring.ScoreReport {
	return Score(scoring.MetricSetFromMap(metrics), scoring.WeightSetFromMap(weights), targetReturn)
}

// truncateScore truncates toward zero. Non-finite values (only reachable
// through malformed weights) collapse to 0; finite out-of-range values saturate.
func truncateScore(v float64) int {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int(v)
	}
}

func roundTo1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
