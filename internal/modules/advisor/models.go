// Package advisor wraps the text generation oracle: chat replies, metric
// extraction, weight suggestions, verdict and strategy narration, and the
// two-step stock analysis. Every oracle-backed call returns a Result whose
// FallbackUsed flag tells genuine output apart from a static substitute.
package advisor

import (
	"context"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

// Oracle generates text for a prompt. With jsonMode the model is asked for JSON.
type Oracle interface {
	Generate(ctx context.Context, prompt, systemInstruction string, jsonMode bool) (string, error)
}

// ApologyText is returned in place of any narrative the oracle could not produce
const ApologyText = "I'm having trouble connecting to my brain right now. Please check the API Key."

// Result is the outcome of one oracle-backed operation.
type Result[T any] struct {
	Value T
	// FallbackUsed is set when Value is a static default rather than oracle output
	FallbackUsed bool
	// Stale is set when Value came from an expired cache entry after the oracle failed
	Stale bool
	// Err records why the oracle output was not used; it is never surfaced as a failure
	Err error
}

// Genuine reports whether the value came from the oracle (fresh or cached)
func (r Result[T]) Genuine() bool {
	return !r.FallbackUsed
}

func fallback[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, FallbackUsed: true, Err: err}
}

// FallbackMetrics is the metric set substituted when extraction fails
func FallbackMetrics() scoring.MetricSet {
	return scoring.MetricSet{
		IndustryGrowth3yr:        5,
		NetProfitGrowth5yr:       5,
		PERatio:                  15,
		SectorPE:                 15,
		DividendYield:            2,
		DividendYearsConsecutive: 5,
		CompanyGrowthRate:        5,
		Beta:                     1.0,
	}
}

// FallbackWeights is the weight set substituted when a suggestion fails
func FallbackWeights() scoring.WeightSet {
	return scoring.DefaultWeights()
}

// ChatTurn is one prior message in a chat conversation
type ChatTurn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ChatRequest asks the consultant persona for a reply
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}

// VerdictRequest asks for a short narrative on an already computed score
type VerdictRequest struct {
	Symbol  string                 `json:"symbol"`
	Metrics map[string]interface{} `json:"metrics"`
	Score   int                    `json:"score"`
	Grade   string                 `json:"grade"`
}

// StrategyRequest asks for portfolio level advice
type StrategyRequest struct {
	PortfolioSummary string  `json:"portfolio_summary"`
	TargetReturn     float64 `json:"target_return"`
}

// WeightRequest asks for a weight split suited to a project
type WeightRequest struct {
	ProjectName  string  `json:"project_name"`
	TargetReturn float64 `json:"target_return"`
}

// AnalysisRequest starts the two-step analysis of one stock
type AnalysisRequest struct {
	Symbol string `json:"symbol"`
	// TargetReturn is nil when absent; an explicit 0 is a valid conservative target
	TargetReturn   *float64 `json:"target_return"`
	RiskPreference string   `json:"risk_preference"`
}

// AnalysisReport is the outcome of the two-step analysis.
// Report is always computed by the scoring engine; Narration only explains it.
type AnalysisReport struct {
	Symbol         string              `json:"symbol"`
	TargetReturn   float64             `json:"target_return"`
	RiskPreference string              `json:"risk_preference"`
	Strategist     string              `json:"strategist_analysis"`
	Metrics        scoring.MetricSet   `json:"metrics"`
	Weights        scoring.WeightSet   `json:"weights"`
	Report         scoring.ScoreReport `json:"report"`
	Narration      string              `json:"scorer_analysis"`
	FallbackUsed   bool                `json:"fallback"`
}

// Analysis steps reported through a ProgressFunc
const (
	StepStrategist = "strategist"
	StepMetrics    = "metrics"
	StepScore      = "score"
	StepNarration  = "narration"
	StepDone       = "done"
)

// ProgressEvent reports that a step of the analysis finished
type ProgressEvent struct {
	Step         string      `json:"step"`
	Message      string      `json:"message"`
	FallbackUsed bool        `json:"fallback"`
	Data         interface{} `json:"data,omitempty"`
}

// ProgressFunc receives progress events in step order
type ProgressFunc func(ProgressEvent)
