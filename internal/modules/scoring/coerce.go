package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MetricSetFromMap builds a MetricSet from loosely typed input such as decoded
// JSON or oracle output. Absent or unparseable keys fall back to their defaults.
func MetricSetFromMap(raw map[string]interface{}) MetricSet {
	m := DefaultMetricSet()
	if raw == nil {
		return m
	}

	if v, ok := ToFloat(raw[KeyIndustryGrowth3yr]); ok {
		m.IndustryGrowth3yr = v
	}
	if v, ok := ToFloat(raw[KeyNetProfitGrowth5yr]); ok {
		m.NetProfitGrowth5yr = v
	}
	if v, ok := ToFloat(raw[KeyPERatio]); ok {
		m.PERatio = v
	}
	if v, ok := ToFloat(raw[KeySectorPE]); ok {
		m.SectorPE = v
	}
	if v, ok := ToFloat(raw[KeyDividendYield]); ok {
		m.DividendYield = v
	}
	if v, ok := ToFloat(raw[KeyDividendYearsConsecutive]); ok {
		m.DividendYearsConsecutive = toYears(v)
	}
	if v, ok := ToFloat(raw[KeyCompanyGrowthRate]); ok {
		m.CompanyGrowthRate = v
	}
	if v, ok := ToFloat(raw[KeyBeta]); ok {
		m.Beta = v
	}

	return m
}

// WeightSetFromMap builds a WeightSet, defaulting each absent key individually.
func WeightSetFromMap(raw map[string]interface{}) WeightSet {
	w := DefaultWeights()
	if raw == nil {
		return w
	}

	if v, ok := ToFloat(raw[WeightKeyIndustry]); ok {
		w.Industry = v
	}
	if v, ok := ToFloat(raw[WeightKeyProfit]); ok {
		w.Profit = v
	}
	if v, ok := ToFloat(raw[WeightKeyMOS]); ok {
		w.MOS = v
	}
	if v, ok := ToFloat(raw[WeightKeyYield]); ok {
		w.YieldVal = v
	}
	if v, ok := ToFloat(raw[WeightKeyCompetition]); ok {
		w.Competition = v
	}

	return w
}

// ToFloat converts a decoded value to a finite float64.
// Numeric strings are accepted, with an optional trailing "%".
func ToFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toYears truncates a year count toward zero and clamps it at zero.
func toYears(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
