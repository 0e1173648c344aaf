package scorers

import "github.com/aristath/stockscorer/internal/modules/scoring"

// RiskMultiplier dampens the base score when the stock's beta does not suit
// the investor's target return (%). It never exceeds 1.0.
func RiskMultiplier(targetReturn, beta float64) float64 {
	switch scoring.RiskBandFor(targetReturn) {
	case scoring.RiskConservative:
		switch {
		case beta < scoring.ConservativeLowBeta:
			return scoring.ConservativeMultLow
		case beta <= scoring.ConservativeMaxBeta:
			return scoring.ConservativeMultMid
		default:
			return scoring.ConservativeMultHigh
		}

	case scoring.RiskAggressive:
		switch {
		case beta >= scoring.AggressiveMinBeta && beta <= scoring.AggressiveMaxBeta:
			return scoring.AggressiveMultInBand
		case beta >= scoring.AggressiveMidBeta && beta < scoring.AggressiveMinBeta:
			return scoring.AggressiveMultMid
		default:
			// Too sluggish (< 0.9) or too volatile (> 2.5)
			return scoring.AggressiveMultOutside
		}

	default:
		if beta >= scoring.ModerateMinBeta && beta <= scoring.ModerateMaxBeta {
			return scoring.ModerateMultInBand
		}
		return scoring.ModerateMultOutside
	}
}

// GradeFor maps a final score to its letter grade.
func GradeFor(finalScore int) string {
	switch {
	case finalScore >= scoring.GradeAThreshold:
		return scoring.GradeA
	case finalScore >= scoring.GradeBThreshold:
		return scoring.GradeB
	default:
		return scoring.GradeC
	}
}
