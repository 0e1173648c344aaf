package formulas

import "math"

// CalculateCAGR calculates the compound annual growth rate between the first
// and last value of a series spanning the given number of years.
//
// Formula: CAGR = (Ending Value / Beginning Value)^(1/years) - 1
//
// Returns:
//
//	CAGR as decimal (e.g., 0.11 = 11%) or nil if the series cannot be annualized
func CalculateCAGR(values []float64, years float64) *float64 {
	if len(values) < 2 || years <= 0 || math.IsNaN(years) || math.IsInf(years, 0) {
		return nil
	}

	start := values[0]
	end := values[len(values)-1]
	if start <= 0 || end <= 0 {
		return nil
	}

	// Periods under a quarter are not annualized
	if years < 0.25 {
		result := end/start - 1
		return &result
	}

	cagr := math.Pow(end/start, 1/years) - 1
	return &cagr
}

// CAGRPercent is CalculateCAGR expressed in percent, the unit metric sets use.
func CAGRPercent(values []float64, years float64) *float64 {
	cagr := CalculateCAGR(values, years)
	if cagr == nil {
		return nil
	}
	pct := *cagr * 100
	return &pct
}
