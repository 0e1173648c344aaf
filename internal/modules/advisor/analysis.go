package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/stockscorer/internal/modules/scoring"
	"github.com/aristath/stockscorer/internal/modules/scoring/scorers"
)

// Analyze runs the two-step analysis for one stock: strategist research,
// metric extraction, a deterministic score with the default weights, and the
// scorer narration of that score. progress may be nil.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest, progress ProgressFunc) AnalysisReport {
	emit := func(ev ProgressEvent) {
		if progress != nil {
			progress(ev)
		}
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	target := scoring.DefaultTargetReturn
	if req.TargetReturn != nil {
		target = *req.TargetReturn
	}
	risk := strings.TrimSpace(req.RiskPreference)
	if risk == "" {
		risk = string(scoring.RiskBandFor(target))
	}

	report := AnalysisReport{
		Symbol:         symbol,
		TargetReturn:   target,
		RiskPreference: risk,
	}

	log := s.log.With().Str("symbol", symbol).Logger()
	log.Info().Float64("target_return", target).Str("risk", risk).Msg("Starting analysis")

	strategist := s.narrate(ctx, strategistPrompt(symbol), strategistSystem(symbol))
	report.Strategist = strategist.Value
	report.FallbackUsed = strategist.FallbackUsed
	emit(ProgressEvent{
		Step:         StepStrategist,
		Message:      "Strategist research complete",
		FallbackUsed: strategist.FallbackUsed,
		Data:         strategist.Value,
	})

	metrics := s.AnalyzeStock(ctx, symbol)
	report.Metrics = metrics.Value
	report.FallbackUsed = report.FallbackUsed || metrics.FallbackUsed
	emit(ProgressEvent{
		Step:         StepMetrics,
		Message:      "Metrics extracted",
		FallbackUsed: metrics.FallbackUsed,
		Data:         metrics.Value.AsMap(),
	})

	report.Weights = scoring.DefaultWeights()
	report.Report = scorers.Score(report.Metrics, report.Weights, target)
	emit(ProgressEvent{
		Step: StepScore,
		Message: fmt.Sprintf("Final score %d (%s)",
			report.Report.FinalScore, report.Report.Grade),
		Data: report.Report,
	})

	narration := s.narrate(ctx,
		scorerPrompt(report.Strategist, risk, report.Report),
		scorerSystem(target))
	report.Narration = narration.Value
	report.FallbackUsed = report.FallbackUsed || narration.FallbackUsed
	emit(ProgressEvent{
		Step:         StepNarration,
		Message:      "Scorer narration complete",
		FallbackUsed: narration.FallbackUsed,
		Data:         narration.Value,
	})

	log.Info().
		Int("final_score", report.Report.FinalScore).
		Str("grade", report.Report.Grade).
		Bool("fallback", report.FallbackUsed).
		Msg("Analysis complete")

	emit(ProgressEvent{
		Step:         StepDone,
		Message:      "Analysis complete",
		FallbackUsed: report.FallbackUsed,
		Data:         report,
	})
	return report
}
