// Package handlers provides HTTP handlers for scoring API.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/modules/scoring"
	"github.com/aristath/stockscorer/internal/modules/scoring/scorers"
	"github.com/aristath/stockscorer/pkg/formulas"
)

// Handlers provides HTTP handlers for scoring module
type Handlers struct {
	log zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance
func NewHandlers(log zerolog.Logger) *Handlers {
	return &Handlers{
		log: log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreRequest is the body of POST /api/calculate-score.
// Fields are kept raw so a malformed field falls back to its default
// instead of failing the whole request.
type ScoreRequest struct {
	Metrics      json.RawMessage `json:"metrics"`
	Weights      json.RawMessage `json:"weights"`
	TargetReturn json.RawMessage `json:"target_return"`
}

// DeriveMetricsRequest is the body of POST /api/metrics/derive
type DeriveMetricsRequest struct {
	Closes          []float64 `json:"closes"`
	BenchmarkCloses []float64 `json:"benchmark_closes"`
	Period          int       `json:"period"`
	Years           float64   `json:"years"`
}

// DeriveMetricsResponse carries the metrics that could be derived from prices.
// A nil field could not be computed from the supplied series.
type DeriveMetricsResponse struct {
	Beta              *float64 `json:"beta"`
	CompanyGrowthRate *float64 `json:"company_growth_rate"`
}

// HandleCalculateScore handles POST /api/calculate-score
func (h *Handlers) HandleCalculateScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode score request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	targetReturn := scoring.DefaultTargetReturn
	if v, ok := scoring.ToFloat(decodeValue(req.TargetReturn)); ok {
		targetReturn = v
	}

	report := scorers.ScoreFromMaps(decodeObject(req.Metrics), decodeObject(req.Weights), targetReturn)

	h.log.Debug().
		Int("final_score", report.FinalScore).
		Str("grade", report.Grade).
		Float64("risk_mult", report.RiskMult).
		Msg("Calculated score")

	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetDefaultWeights handles GET /api/scoring/weights/default
func (h *Handlers) HandleGetDefaultWeights(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, scoring.DefaultWeights())
}

// HandleGetRules handles GET /api/scoring/rules
func (h *Handlers) HandleGetRules(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, scoring.Rules())
}

// HandleDeriveMetrics handles POST /api/metrics/derive
// Derives beta and company growth (CAGR %) from closing prices.
func (h *Handlers) HandleDeriveMetrics(w http.ResponseWriter, r *http.Request) {
	var req DeriveMetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Closes) < 2 {
		h.writeError(w, "At least two closing prices are required", http.StatusBadRequest)
		return
	}

	var resp DeriveMetricsResponse
	if len(req.BenchmarkCloses) > 0 {
		resp.Beta = roundPtr(formulas.CalculateBeta(req.Closes, req.BenchmarkCloses, req.Period))
	}
	if req.Years > 0 {
		resp.CompanyGrowthRate = roundPtr(formulas.CAGRPercent(req.Closes, req.Years))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// decodeObject returns the JSON object in raw, or nil when raw is absent or not an object
func decodeObject(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func decodeValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil
	}
	return out
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := formulas.Round(*v, 4)
	return &rounded
}

// writeJSON writes a JSON response with status code
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
