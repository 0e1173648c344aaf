package scorers

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

func strongMetrics() scoring.MetricSet {
	return scoring.MetricSet{
		IndustryGrowth3yr:        25,
		NetProfitGrowth5yr:       22,
		PERatio:                  10,
		SectorPE:                 15,
		DividendYield:            9,
		DividendYearsConsecutive: 6,
		CompanyGrowthRate:        30,
		Beta:                     1.0,
	}
}

func TestScore_StrongCompanyModerateInvestor(t *testing.T) {
	report := Score(strongMetrics(), scoring.DefaultWeights(), 12)

	assert.Equal(t, scoring.RawScores{Industry: 100, Profit: 100, MOS: 80, Yield: 100, Competition: 80}, report.RawScores)
	assert.Equal(t, 94.0, report.BaseScore)
	assert.Equal(t, 1.0, report.RiskMult)
	assert.Equal(t, 94, report.FinalScore)
	assert.Equal(t, scoring.GradeA, report.Grade)
	assert.Equal(t, scoring.RiskModerate, report.RiskProfile)
}

func TestScore_ShortDividendHistoryZeroesYield(t *testing.T) {
	m := strongMetrics()
	m.DividendYearsConsecutive = 2
	m.DividendYield = 15

	report := Score(m, scoring.DefaultWeights(), 12)
	assert.Equal(t, 0, report.RawScores.Yield)
	// 94 minus the 20 points the yield axis contributed
	assert.Equal(t, 74.0, report.BaseScore)
	assert.Equal(t, scoring.GradeB, report.Grade)
}

func TestScore_MarginOfSafetyFallback(t *testing.T) {
	tests := []struct {
		name string
		pe   float64
		want int
	}{
		{name: "cheap without sector anchor", pe: 12, want: 50},
		{name: "expensive without sector anchor", pe: 25, want: 0},
		{name: "exactly at fallback cap", pe: 20, want: 0},
		{name: "loss maker", pe: -4, want: 0},
		{name: "zero pe", pe: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := strongMetrics()
			m.SectorPE = 0
			m.PERatio = tt.pe
			assert.Equal(t, tt.want, Score(m, scoring.DefaultWeights(), 12).RawScores.MOS)
		})
	}
}

func TestScore_AggressiveLowBeta(t *testing.T) {
	m := strongMetrics()
	m.Beta = 0.5

	report := Score(m, scoring.DefaultWeights(), 20)
	assert.Equal(t, scoring.RiskAggressive, report.RiskProfile)
	assert.Equal(t, 0.6, report.RiskMult)
	// 94 * 0.6 = 56.4
	assert.Equal(t, 56, report.FinalScore)
	assert.Equal(t, scoring.GradeC, report.Grade)
}

func TestScore_FinalIsTruncatedProduct(t *testing.T) {
	betas := []float64{0, 0.5, 0.79, 0.8, 1.0, 1.2, 1.21, 2.5, 3}
	targets := []float64{-5, 0, 9.99, 10, 12, 14.99, 15, 40}

	for _, target := range targets {
		for _, beta := range betas {
			m := strongMetrics()
			m.Beta = beta
			m.PERatio = 13.7
			report := Score(m, scoring.DefaultWeights(), target)

			raw := RawScoresFor(m)
			base := (float64(raw.Industry)*15 + float64(raw.Profit)*25 + float64(raw.MOS)*25 +
				float64(raw.Yield)*20 + float64(raw.Competition)*15) / 100
			assert.Equal(t, int(math.Floor(base*report.RiskMult)), report.FinalScore, "target=%v beta=%v", target, beta)
			assert.LessOrEqual(t, float64(report.FinalScore), report.BaseScore)
			assert.Equal(t, GradeFor(report.FinalScore), report.Grade)
		}
	}
}

func TestScore_RawScoresStayInTierSets(t *testing.T) {
	tiers := map[string][]int{
		scoring.RawIndustry:    {0, 60, 80, 100},
		scoring.RawProfit:      {0, 40, 60, 80, 100},
		scoring.RawMOS:         {0, 50, 80, 100},
		scoring.RawYield:       {0, 30, 60, 80, 100},
		scoring.RawCompetition: {20, 50, 80, 100},
	}
	values := []float64{-1e9, -50, -5, -0.01, 0, 0.5, 3, 4.99, 5, 9.99, 10, 15, 19.99, 20, 30, 1e9}

	for _, v := range values {
		for _, years := range []int{0, 4, 5, 30} {
			m := scoring.MetricSet{
				IndustryGrowth3yr:        v,
				NetProfitGrowth5yr:       v,
				PERatio:                  v,
				SectorPE:                 15,
				DividendYield:            v,
				DividendYearsConsecutive: years,
				CompanyGrowthRate:        -v,
				Beta:                     v,
			}
			for name, score := range Score(m, scoring.DefaultWeights(), v).RawScores.AsMap() {
				assert.Contains(t, tiers[name], score, "%s for value %v", name, v)
			}
		}
	}
}

func TestScore_WeightsAreNotNormalized(t *testing.T) {
	weights := scoring.WeightSet{Industry: 100, Profit: 100, MOS: 100, YieldVal: 100, Competition: 100}
	report := Score(strongMetrics(), weights, 12)

	assert.Equal(t, 460.0, report.BaseScore)
	assert.Equal(t, 460, report.FinalScore)
	assert.Equal(t, scoring.GradeA, report.Grade)

	report = Score(strongMetrics(), scoring.WeightSet{Industry: -50}, 12)
	assert.Equal(t, -50.0, report.BaseScore)
	assert.Equal(t, -50, report.FinalScore)
	assert.Equal(t, scoring.GradeC, report.Grade)
}

func TestScore_DegenerateInputsNeverPanic(t *testing.T) {
	inputs := []struct {
		name     string
		metrics  scoring.MetricSet
		weights  scoring.WeightSet
		target   float64
		wantZero bool
	}{
		{name: "zero value", metrics: scoring.MetricSet{}, weights: scoring.WeightSet{}},
		{name: "nan metrics", metrics: scoring.MetricSet{IndustryGrowth3yr: math.NaN(), PERatio: math.NaN(), SectorPE: math.NaN(), Beta: math.NaN()}, weights: scoring.DefaultWeights(), target: math.NaN()},
		{name: "infinite metrics", metrics: scoring.MetricSet{IndustryGrowth3yr: math.Inf(1), SectorPE: math.Inf(-1), Beta: math.Inf(1)}, weights: scoring.DefaultWeights(), target: math.Inf(1)},
		{name: "nan weights", metrics: strongMetrics(), weights: scoring.WeightSet{Industry: math.NaN()}, target: 12},
		{name: "infinite weights", metrics: strongMetrics(), weights: scoring.WeightSet{Profit: math.Inf(1)}, target: 12, wantZero: true},
		{name: "overflowing weights", metrics: strongMetrics(), weights: scoring.WeightSet{Profit: 1e308, Industry: 1e308}, target: 12, wantZero: true},
		{name: "huge weights", metrics: strongMetrics(), weights: scoring.WeightSet{Profit: 1e300}, target: 12},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				report := Score(tt.metrics, tt.weights, tt.target)
				assert.Contains(t, []string{scoring.GradeA, scoring.GradeB, scoring.GradeC}, report.Grade)
				assert.LessOrEqual(t, report.RiskMult, 1.0)
				assert.False(t, math.IsNaN(report.BaseScore))
				assert.LessOrEqual(t, float64(report.FinalScore), report.BaseScore)
				if tt.wantZero {
					assert.Equal(t, 0, report.FinalScore)
					assert.Equal(t, scoring.GradeC, report.Grade)
				}
			})
		})
	}
}

func TestScore_NaNWeightCollapsesToZero(t *testing.T) {
	report := Score(strongMetrics(), scoring.WeightSet{Industry: math.NaN()}, 12)
	assert.Equal(t, 0, report.FinalScore)
	assert.Equal(t, scoring.GradeC, report.Grade)
	assert.Equal(t, 0.0, report.BaseScore)
}

func TestScoreFromMaps_OverflowingWeightCollapsesToZero(t *testing.T) {
	report := ScoreFromMaps(nil, map[string]interface{}{"profit": 1e308}, 12)
	assert.Equal(t, 0, report.FinalScore)
	assert.Equal(t, scoring.GradeC, report.Grade)
	assert.Equal(t, 0.0, report.BaseScore)
}

func TestScore_Idempotent(t *testing.T) {
	first := Score(strongMetrics(), scoring.DefaultWeights(), 12)
	second := Score(strongMetrics(), scoring.DefaultWeights(), 12)
	assert.Equal(t, first, second)
}

func TestScore_ConcurrentCallers(t *testing.T) {
	want := Score(strongMetrics(), scoring.DefaultWeights(), 12)

	var wg sync.WaitGroup
	results := make([]scoring.ScoreReport, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Score(strongMetrics(), scoring.DefaultWeights(), 12)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestScoreFromMaps(t *testing.T) {
	metrics := map[string]interface{}{
		"industry_growth_3yr":        "25%",
		"net_profit_growth_5yr":      22,
		"pe_ratio":                   10.0,
		"sector_pe":                  "15",
		"dividend_yield":             9,
		"dividend_years_consecutive": 6.7,
		"company_growth_rate":        30,
		"unknown_key":                "ignored",
	}

	report := ScoreFromMaps(metrics, nil, 12)
	assert.Equal(t, 94, report.FinalScore)
	assert.Equal(t, 1.0, report.RiskMult, "missing beta defaults to 1.0")
}
