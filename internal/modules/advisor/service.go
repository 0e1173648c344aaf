package advisor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/clientdata"
	"github.com/aristath/stockscorer/internal/modules/scoring"
)

// ErrMalformedJSON is recorded when JSON mode output could not be parsed
var ErrMalformedJSON = errors.New("oracle returned malformed JSON")

// Service calls the oracle and substitutes fallbacks on failure.
// The cache is optional; with it, fresh entries skip the oracle and expired
// entries are preferred over static fallbacks when the oracle fails.
type Service struct {
	oracle       Oracle
	cache        *clientdata.Repository
	narrativeTTL time.Duration
	log          zerolog.Logger
}

// NewService creates a new advisor service. cache may be nil.
func NewService(oracle Oracle, cache *clientdata.Repository, narrativeTTL time.Duration, log zerolog.Logger) *Service {
	if narrativeTTL <= 0 {
		narrativeTTL = clientdata.TTLNarrative
	}
	return &Service{
		oracle:       oracle,
		cache:        cache,
		narrativeTTL: narrativeTTL,
		log:          log.With().Str("service", "advisor").Logger(),
	}
}

// Chat returns the consultant's reply. Conversations are never cached.
func (s *Service) Chat(ctx context.Context, req ChatRequest) Result[string] {
	reply, err := s.oracle.Generate(ctx, chatPrompt(req), consultantPersona, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Chat failed, using apology")
		return fallback(ApologyText, err)
	}
	return Result[string]{Value: reply}
}

// AnalyzeStock extracts a metric set for the symbol.
func (s *Service) AnalyzeStock(ctx context.Context, symbol string) Result[scoring.MetricSet] {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	var cached scoring.MetricSet
	if s.loadFresh(clientdata.TableMetrics, key, &cached) {
		return Result[scoring.MetricSet]{Value: cached}
	}

	raw, err := s.generateJSON(ctx, metricsPrompt(key), extractorPersona)
	if err != nil {
		if s.loadStale(clientdata.TableMetrics, key, &cached) {
			s.log.Warn().Err(err).Str("symbol", key).Msg("Metric extraction failed, using stale cached metrics")
			return Result[scoring.MetricSet]{Value: cached, Stale: true, Err: err}
		}
		s.log.Warn().Err(err).Str("symbol", key).Msg("Metric extraction failed, using fallback metrics")
		return fallback(FallbackMetrics(), err)
	}

	metrics := scoring.MetricSetFromMap(raw)
	s.store(clientdata.TableMetrics, key, metrics, clientdata.TTLMetrics)
	return Result[scoring.MetricSet]{Value: metrics}
}

// SuggestWeights asks for a weight split suited to the project.
// Keys the oracle leaves out keep their defaults.
func (s *Service) SuggestWeights(ctx context.Context, req WeightRequest) Result[scoring.WeightSet] {
	key := fmt.Sprintf("%s|%g", strings.ToLower(strings.TrimSpace(req.ProjectName)), req.TargetReturn)

	var cached scoring.WeightSet
	if s.loadFresh(clientdata.TableWeights, key, &cached) {
		return Result[scoring.WeightSet]{Value: cached}
	}

	raw, err := s.generateJSON(ctx, weightsPrompt(req), jsonOnlyPersona)
	if err != nil {
		if s.loadStale(clientdata.TableWeights, key, &cached) {
			return Result[scoring.WeightSet]{Value: cached, Stale: true, Err: err}
		}
		s.log.Warn().Err(err).Str("project", req.ProjectName).Msg("Weight suggestion failed, using default weights")
		return fallback(FallbackWeights(), err)
	}

	weights := scoring.WeightSetFromMap(raw)
	s.store(clientdata.TableWeights, key, weights, clientdata.TTLWeights)
	return Result[scoring.WeightSet]{Value: weights}
}

// Verdict narrates an already computed score.
func (s *Service) Verdict(ctx context.Context, req VerdictRequest) Result[string] {
	return s.narrate(ctx, verdictPrompt(req), "")
}

// Strategy narrates portfolio level advice.
func (s *Service) Strategy(ctx context.Context, req StrategyRequest) Result[string] {
	return s.narrate(ctx, strategyPrompt(req), "")
}

// narrate generates free text, cached by prompt.
func (s *Service) narrate(ctx context.Context, prompt, system string) Result[string] {
	key := cacheKey(prompt, system)

	var cached string
	if s.loadFresh(clientdata.TableNarratives, key, &cached) {
		return Result[string]{Value: cached}
	}

	text, err := s.oracle.Generate(ctx, prompt, system, false)
	if err != nil {
		if s.loadStale(clientdata.TableNarratives, key, &cached) {
			return Result[string]{Value: cached, Stale: true, Err: err}
		}
		s.log.Warn().Err(err).Msg("Narration failed, using apology")
		return fallback(ApologyText, err)
	}

	s.store(clientdata.TableNarratives, key, text, s.narrativeTTL)
	return Result[string]{Value: text}
}

// generateJSON calls the oracle in JSON mode and decodes an object defensively.
func (s *Service) generateJSON(ctx context.Context, prompt, system string) (map[string]interface{}, error) {
	text, err := s.oracle.Generate(ctx, prompt, system, true)
	if err != nil {
		return nil, err
	}

	obj, err := ParseJSONObject(text)
	if err != nil {
		s.log.Debug().Str("response", truncate(text, 200)).Msg("Unparseable JSON from oracle")
		return nil, err
	}
	return obj, nil
}

// ParseJSONObject decodes the first JSON object in text, tolerating markdown
// code fences and surrounding prose.
func ParseJSONObject(text string) (map[string]interface{}, error) {
	body := stripCodeFence(text)

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no object found", ErrMalformedJSON)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body[start : end+1])))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return obj, nil
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.Index(trimmed, "\n"); nl >= 0 {
		// Drop the language tag line
		trimmed = trimmed[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}

func (s *Service) loadFresh(table, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.LoadIfFresh(table, key, v)
	if err != nil {
		s.log.Warn().Err(err).Str("table", table).Msg("Failed to read oracle cache")
		return false
	}
	if found {
		s.log.Debug().Str("table", table).Str("key", key).Msg("Cache hit")
	}
	return found
}

func (s *Service) loadStale(table, key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Load(table, key, v)
	return err == nil && found
}

func (s *Service) store(table, key string, v interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Store(table, key, v, ttl); err != nil {
		s.log.Warn().Err(err).Str("table", table).Msg("Failed to cache oracle response")
	}
}

func cacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
