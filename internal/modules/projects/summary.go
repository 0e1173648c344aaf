package projects

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/stockscorer/internal/modules/scoring"
	"github.com/aristath/stockscorer/internal/modules/scoring/scorers"
)

// Summarize scores every stock of the project with the project's weights and
// target return. Stocks without a symbol are skipped; missing weights and
// metrics fall back to the engine defaults.
func Summarize(doc Document) Summary {
	target := scoring.DefaultTargetReturn
	if v, ok := scoring.ToFloat(doc[FieldTargetReturn]); ok {
		target = v
	}
	weights, _ := doc[FieldWeights].(map[string]interface{})

	summary := Summary{
		ProjectID:    doc.ID(),
		Name:         doc.Name(),
		TargetReturn: target,
		Grades:       map[string]int{scoring.GradeA: 0, scoring.GradeB: 0, scoring.GradeC: 0},
		Stocks:       make([]StockScore, 0),
	}

	stocks, _ := doc[FieldStocks].([]interface{})
	finals := make([]float64, 0, len(stocks))
	for _, entry := range stocks {
		stock, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		symbol, _ := stock["symbol"].(string)
		if strings.TrimSpace(symbol) == "" {
			continue
		}
		metrics, _ := stock["metrics"].(map[string]interface{})

		report := scorers.ScoreFromMaps(metrics, weights, target)
		summary.Stocks = append(summary.Stocks, StockScore{
			Symbol:     symbol,
			FinalScore: report.FinalScore,
			BaseScore:  report.BaseScore,
			Grade:      report.Grade,
		})
		summary.Grades[report.Grade]++
		finals = append(finals, float64(report.FinalScore))
	}

	summary.Count = len(finals)
	if summary.Count > 0 {
		summary.Mean = stat.Mean(finals, nil)
		summary.Min = int(floats.Min(finals))
		summary.Max = int(floats.Max(finals))
	}
	if summary.Count > 1 {
		summary.StdDev = stat.StdDev(finals, nil)
	}

	summary.Text = summaryText(summary)
	return summary
}

// summaryText is the one-line description fed to the strategy prompt
func summaryText(s Summary) string {
	if s.Count == 0 {
		return "No stocks"
	}

	ranked := make([]StockScore, len(s.Stocks))
	copy(ranked, s.Stocks)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	parts := make([]string, 0, len(ranked))
	for _, st := range ranked {
		parts = append(parts, fmt.Sprintf("%s (Score: %d, Grade %s)", st.Symbol, st.FinalScore, st.Grade))
	}

	return fmt.Sprintf("%s; %d stocks, mean score %.1f, range %d-%d, grades A:%d B:%d C:%d",
		strings.Join(parts, ", "), s.Count, s.Mean, s.Min, s.Max,
		s.Grades[scoring.GradeA], s.Grades[scoring.GradeB], s.Grades[scoring.GradeC])
}
