// Package handlers provides HTTP handlers for the advisor.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/stockscorer/internal/modules/advisor"
)

// streamTimeout bounds one streamed analysis including all oracle calls
const streamTimeout = 5 * time.Minute

// Handlers provides HTTP handlers for advisor endpoints.
// Oracle failures never fail a request; responses carry a fallback flag instead.
type Handlers struct {
	service *advisor.Service
	log     zerolog.Logger
}

// NewHandlers creates a new advisor handlers instance
func NewHandlers(service *advisor.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "advisor_handlers").Logger(),
	}
}

// ChatResponse is the body returned by POST /api/chat
type ChatResponse struct {
	Reply    string `json:"reply"`
	Fallback bool   `json:"fallback"`
}

// VerdictResponse is the body returned by POST /api/verdict
type VerdictResponse struct {
	Verdict  string `json:"verdict"`
	Fallback bool   `json:"fallback"`
}

// StrategyResponse is the body returned by POST /api/strategy
type StrategyResponse struct {
	Strategy string `json:"strategy"`
	Fallback bool   `json:"fallback"`
}

type symbolRequest struct {
	Symbol string `json:"symbol"`
}

// HandleChat handles POST /api/chat
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req advisor.ChatRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	res := h.service.Chat(r.Context(), req)
	h.writeJSON(w, http.StatusOK, ChatResponse{Reply: res.Value, Fallback: res.FallbackUsed})
}

// HandleAnalyzeStock handles POST /api/analyze-stock
func (h *Handlers) HandleAnalyzeStock(w http.ResponseWriter, r *http.Request) {
	var req symbolRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		h.writeError(w, "symbol is required", http.StatusBadRequest)
		return
	}

	res := h.service.AnalyzeStock(r.Context(), req.Symbol)

	body := res.Value.AsMap()
	body["fallback"] = res.FallbackUsed
	body["stale"] = res.Stale
	h.writeJSON(w, http.StatusOK, body)
}

// HandleSuggestWeights handles POST /api/suggest-weights
func (h *Handlers) HandleSuggestWeights(w http.ResponseWriter, r *http.Request) {
	var req advisor.WeightRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.service.SuggestWeights(r.Context(), req)

	body := make(map[string]interface{}, 6)
	for k, v := range res.Value.AsMap() {
		body[k] = v
	}
	body["fallback"] = res.FallbackUsed
	h.writeJSON(w, http.StatusOK, body)
}

// HandleVerdict handles POST /api/verdict
func (h *Handlers) HandleVerdict(w http.ResponseWriter, r *http.Request) {
	var req advisor.VerdictRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.service.Verdict(r.Context(), req)
	h.writeJSON(w, http.StatusOK, VerdictResponse{Verdict: res.Value, Fallback: res.FallbackUsed})
}

// HandleStrategy handles POST /api/strategy
func (h *Handlers) HandleStrategy(w http.ResponseWriter, r *http.Request) {
	var req advisor.StrategyRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.service.Strategy(r.Context(), req)
	h.writeJSON(w, http.StatusOK, StrategyResponse{Strategy: res.Value, Fallback: res.FallbackUsed})
}

// HandleAnalyze handles POST /api/analyze
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req advisor.AnalysisRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		h.writeError(w, "symbol is required", http.StatusBadRequest)
		return
	}

	report := h.service.Analyze(r.Context(), req, nil)
	h.writeJSON(w, http.StatusOK, report)
}

// HandleAnalyzeStream handles GET /api/analyze/stream.
// The client sends one AnalysisRequest and receives a ProgressEvent per step.
func (h *Handlers) HandleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	ctx, cancel := context.WithTimeout(r.Context(), streamTimeout)
	defer cancel()

	var req advisor.AnalysisRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		h.log.Warn().Err(err).Msg("Failed to read analysis request")
		conn.Close(websocket.StatusUnsupportedData, "invalid request")
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		conn.Close(websocket.StatusPolicyViolation, "symbol is required")
		return
	}

	var writeErr error
	h.service.Analyze(ctx, req, func(ev advisor.ProgressEvent) {
		if writeErr != nil {
			return
		}
		if writeErr = wsjson.Write(ctx, conn, ev); writeErr != nil {
			h.log.Warn().Err(writeErr).Str("step", ev.Step).Msg("Failed to write progress event")
			// Stop spending oracle calls on a client that is gone
			cancel()
		}
	})

	if writeErr != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON writes a JSON response
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
