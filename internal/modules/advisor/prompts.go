package advisor

import (
	"fmt"
	"strings"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

const (
	consultantPersona = "You are Jomo, a witty investment consultant. Keep answers short, helpful, and suggest specific stock tickers."
	extractorPersona  = "You are a financial data extractor. Output ONLY valid JSON."
	jsonOnlyPersona   = "Output ONLY valid JSON."
)

func chatPrompt(req ChatRequest) string {
	if len(req.History) == 0 {
		return req.Message
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, turn := range req.History {
		role := "User"
		if turn.Role == "model" || turn.Role == "assistant" {
			role = "Jomo"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Text)
	}
	fmt.Fprintf(&b, "\nUser: %s", req.Message)
	return b.String()
}

func metricsPrompt(symbol string) string {
	return fmt.Sprintf(`Analyze stock %s. Extract these EXACT metrics (estimate if needed):
1. %s (Float %%)
2. %s (Float %%)
3. %s (Float)
4. %s (Float) - Average PE of the sector
5. %s (Float %%)
6. %s (Int) - How many years of continuous dividends?
7. %s (Float %%) - General revenue/growth rate
8. %s (Float)

Return JSON only:
{"%s": float, "%s": float, "%s": float, "%s": float, "%s": float, "%s": int, "%s": float, "%s": float}`,
		symbol,
		scoring.KeyIndustryGrowth3yr, scoring.KeyNetProfitGrowth5yr, scoring.KeyPERatio, scoring.KeySectorPE,
		scoring.KeyDividendYield, scoring.KeyDividendYearsConsecutive, scoring.KeyCompanyGrowthRate, scoring.KeyBeta,
		scoring.KeyIndustryGrowth3yr, scoring.KeyNetProfitGrowth5yr, scoring.KeyPERatio, scoring.KeySectorPE,
		scoring.KeyDividendYield, scoring.KeyDividendYearsConsecutive, scoring.KeyCompanyGrowthRate, scoring.KeyBeta,
	)
}

func weightsPrompt(req WeightRequest) string {
	return fmt.Sprintf(`Acting as Jomo (Investment Strategist), suggest the optimal weighting (Total 100%%) for:
1. %s (Industry Growth)
2. %s (Net Profit Growth)
3. %s (Valuation/MOS)
4. %s (Dividend Yield)
5. %s (Competitiveness)

Context: Project Name %q, Target Return %g%%.
If the project implies dividends, boost yield. If growth, boost industry/profit.

Return JSON only: {"%s": int, "%s": int, "%s": int, "%s": int, "%s": int}`,
		scoring.WeightKeyIndustry, scoring.WeightKeyProfit, scoring.WeightKeyMOS, scoring.WeightKeyYield, scoring.WeightKeyCompetition,
		req.ProjectName, req.TargetReturn,
		scoring.WeightKeyIndustry, scoring.WeightKeyProfit, scoring.WeightKeyMOS, scoring.WeightKeyYield, scoring.WeightKeyCompetition,
	)
}

func verdictPrompt(req VerdictRequest) string {
	return fmt.Sprintf(`Acting as a senior investment analyst, write a concise 2-sentence verdict for %s.
Key Data: PE %s (Sector %s), Yield %s%%.
The model scored it %d/100 (Grade %s).
Explain why it got this score based on these Master Scoring Model rules:

%s`,
		req.Symbol,
		metricText(req.Metrics, scoring.KeyPERatio),
		metricText(req.Metrics, scoring.KeySectorPE),
		metricText(req.Metrics, scoring.KeyDividendYield),
		req.Score, req.Grade,
		scoring.Rules().Text(),
	)
}

func strategyPrompt(req StrategyRequest) string {
	return fmt.Sprintf(`Analyze this stock portfolio: [%s].
Target Return is %g%%.
Provide a summary of the portfolio's overall quality and 3 concise bullet points for optimization strategy.`,
		req.PortfolioSummary, req.TargetReturn)
}

func strategistSystem(symbol string) string {
	return fmt.Sprintf(`You are Jomo, an investment research assistant.
Tasks:
1. Gather the latest information on %s and its competitors.
2. Propose weights for the 5 scoring factors (total 100%%) suited to its industry.
3. Report the raw inputs the scorer needs: industry and company CAGR, P/E against the sector, dividend yield and history, and beta.
Keep the tone professional and cite sources where possible.`, symbol)
}

func strategistPrompt(symbol string) string {
	return fmt.Sprintf("Analyze stock %s.", symbol)
}

// scorerSystem carries the rule table so the narration follows the engine
func scorerSystem(targetReturn float64) string {
	return fmt.Sprintf(`You are StockScorer. You explain evaluations made with the Master Scoring Model.
Input: the strategist's research and a target return of %g%%.

%s
Summarize the sub-scores as a table, show Final Score = Base * Risk Multiplier and the grade.
When a computed score is provided, explain that score; do not recompute a different one.`,
		targetReturn, scoring.Rules().Text())
}

func scorerPrompt(strategist, riskPreference string, report scoring.ScoreReport) string {
	raw := report.RawScores
	return fmt.Sprintf(`Here is the analysis from Jomo:

%s

Risk Preference: %s.
Computed score: industry %d, profit %d, mos %d, yield %d, competition %d; base %.1f, risk multiplier x%g, final %d, grade %s.
Please evaluate based on the Master Scoring Model.`,
		strategist, riskPreference,
		raw.Industry, raw.Profit, raw.MOS, raw.Yield, raw.Competition,
		report.BaseScore, report.RiskMult, report.FinalScore, report.Grade)
}

func metricText(metrics map[string]interface{}, key string) string {
	if v, ok := scoring.ToFloat(metrics[key]); ok {
		return fmt.Sprintf("%g", v)
	}
	return "n/a"
}
