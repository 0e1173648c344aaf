package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// MinBetaObservations is the smallest price series (per side) beta is computed from.
const MinBetaObservations = 3

// CalculateBeta calculates the beta of a stock against a benchmark from
// aligned closing prices, using TA-Lib BETA over the trailing period.
//
// Args:
//
//	closes: stock closing prices, oldest first
//	benchmarkCloses: benchmark closing prices on the same dates
//	period: regression window in observations; <= 0 uses the whole series
//
// Returns:
//
//	Beta, or nil if the series are too short, misaligned or degenerate
func CalculateBeta(closes, benchmarkCloses []float64, period int) *float64 {
	if len(closes) != len(benchmarkCloses) || len(closes) < MinBetaObservations {
		return nil
	}

	if period <= 0 || period > len(closes)-1 {
		period = len(closes) - 1
	}

	// TA-Lib regresses the second series on the first
	beta := talib.Beta(benchmarkCloses, closes, period)
	if len(beta) == 0 {
		return nil
	}

	result := beta[len(beta)-1]
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil
	}
	if Variance(CalculateReturns(benchmarkCloses[len(benchmarkCloses)-period-1:])) == 0 {
		return nil
	}
	return &result
}

// BetaFromReturns calculates beta as cov(stock, benchmark) / var(benchmark).
func BetaFromReturns(returns, benchmarkReturns []float64) *float64 {
	if len(returns) != len(benchmarkReturns) || len(returns) < 2 {
		return nil
	}

	variance := Variance(benchmarkReturns)
	if variance == 0 || math.IsNaN(variance) {
		return nil
	}

	result := Covariance(returns, benchmarkReturns) / variance
	return &result
}
