package advisor

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/clientdata"
	"github.com/aristath/stockscorer/internal/modules/scoring"
)

type oracleCall struct {
	Prompt   string
	System   string
	JSONMode bool
}

// stubOracle answers from a queue of replies, repeating the last one
type stubOracle struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []oracleCall
}

func (o *stubOracle) Generate(_ context.Context, prompt, system string, jsonMode bool) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, oracleCall{Prompt: prompt, System: system, JSONMode: jsonMode})
	if o.err != nil {
		return "", o.err
	}
	if len(o.replies) == 0 {
		return "", nil
	}
	reply := o.replies[0]
	if len(o.replies) > 1 {
		o.replies = o.replies[1:]
	}
	return reply, nil
}

func (o *stubOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

var errOffline = errors.New("oracle offline")

func newTestCache(t *testing.T) *clientdata.Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
CREATE TABLE oracle_metrics (symbol TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE oracle_weights (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE oracle_narratives (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
`)
	require.NoError(t, err)
	return clientdata.NewRepository(db)
}

func newTestService(oracle Oracle, cache *clientdata.Repository) *Service {
	return NewService(oracle, cache, time.Hour, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestChat(t *testing.T) {
	t.Run("genuine reply", func(t *testing.T) {
		oracle := &stubOracle{replies: []string{"Diversify."}}
		svc := newTestService(oracle, nil)

		res := svc.Chat(context.Background(), ChatRequest{
			Message: "What should I do?",
			History: []ChatTurn{{Role: "user", Text: "Hi"}, {Role: "model", Text: "Hello"}},
		})

		assert.Equal(t, "Diversify.", res.Value)
		assert.False(t, res.FallbackUsed)
		assert.True(t, res.Genuine())
		require.Len(t, oracle.calls, 1)
		assert.Contains(t, oracle.calls[0].Prompt, "What should I do?")
		assert.Contains(t, oracle.calls[0].Prompt, "Hello")
		assert.False(t, oracle.calls[0].JSONMode)
	})

	t.Run("apology on failure", func(t *testing.T) {
		svc := newTestService(&stubOracle{err: errOffline}, nil)

		res := svc.Chat(context.Background(), ChatRequest{Message: "Hi"})

		assert.Equal(t, ApologyText, res.Value)
		assert.True(t, res.FallbackUsed)
		assert.ErrorIs(t, res.Err, errOffline)
	})
}

func TestAnalyzeStock(t *testing.T) {
	t.Run("parses fenced JSON", func(t *testing.T) {
		oracle := &stubOracle{replies: []string{"```json\n{\"industry_growth_3yr\": 22, \"pe_ratio\": \"12\", \"sector_pe\": 20, \"beta\": 0.7, \"dividend_years_consecutive\": 12.9}\n```"}}
		svc := newTestService(oracle, nil)

		res := svc.AnalyzeStock(context.Background(), "aapl")

		require.False(t, res.FallbackUsed)
		assert.Equal(t, 22.0, res.Value.IndustryGrowth3yr)
		assert.Equal(t, 12.0, res.Value.PERatio)
		assert.Equal(t, 20.0, res.Value.SectorPE)
		assert.Equal(t, 0.7, res.Value.Beta)
		assert.Equal(t, 12, res.Value.DividendYearsConsecutive)
		assert.Equal(t, 0.0, res.Value.DividendYield)
		require.Len(t, oracle.calls, 1)
		assert.True(t, oracle.calls[0].JSONMode)
		assert.Contains(t, oracle.calls[0].Prompt, "AAPL")
	})

	t.Run("malformed JSON falls back", func(t *testing.T) {
		svc := newTestService(&stubOracle{replies: []string{"I cannot find that company."}}, nil)

		res := svc.AnalyzeStock(context.Background(), "XYZ")

		assert.True(t, res.FallbackUsed)
		assert.Equal(t, FallbackMetrics(), res.Value)
		assert.ErrorIs(t, res.Err, ErrMalformedJSON)
	})

	t.Run("oracle failure falls back", func(t *testing.T) {
		svc := newTestService(&stubOracle{err: errOffline}, nil)

		res := svc.AnalyzeStock(context.Background(), "XYZ")

		assert.True(t, res.FallbackUsed)
		assert.Equal(t, FallbackMetrics(), res.Value)
	})

	t.Run("fresh cache skips the oracle", func(t *testing.T) {
		cache := newTestCache(t)
		oracle := &stubOracle{replies: []string{`{"pe_ratio": 9, "sector_pe": 18}`}}
		svc := newTestService(oracle, cache)

		first := svc.AnalyzeStock(context.Background(), "msft")
		second := svc.AnalyzeStock(context.Background(), "MSFT ")

		assert.Equal(t, 1, oracle.callCount())
		assert.Equal(t, first.Value, second.Value)
		assert.False(t, second.FallbackUsed)
		assert.False(t, second.Stale)
	})

	t.Run("stale cache preferred over fallback", func(t *testing.T) {
		cache := newTestCache(t)
		old := scoring.MetricSet{PERatio: 11, SectorPE: 22, Beta: 0.9}
		require.NoError(t, cache.Store(clientdata.TableMetrics, "IBM", old, -time.Hour))

		svc := newTestService(&stubOracle{err: errOffline}, cache)
		res := svc.AnalyzeStock(context.Background(), "IBM")

		assert.Equal(t, old, res.Value)
		assert.True(t, res.Stale)
		assert.False(t, res.FallbackUsed)
		assert.ErrorIs(t, res.Err, errOffline)
	})
}

func TestSuggestWeights(t *testing.T) {
	t.Run("absent keys default", func(t *testing.T) {
		svc := newTestService(&stubOracle{replies: []string{`Sure: {"industry": 40, "profit": 10}`}}, nil)

		res := svc.SuggestWeights(context.Background(), WeightRequest{ProjectName: "Income", TargetReturn: 6})

		require.False(t, res.FallbackUsed)
		defaults := scoring.DefaultWeights()
		assert.Equal(t, 40.0, res.Value.Industry)
		assert.Equal(t, 10.0, res.Value.Profit)
		assert.Equal(t, defaults.MOS, res.Value.MOS)
		assert.Equal(t, defaults.YieldVal, res.Value.YieldVal)
		assert.Equal(t, defaults.Competition, res.Value.Competition)
	})

	t.Run("failure gives default weights", func(t *testing.T) {
		svc := newTestService(&stubOracle{err: errOffline}, nil)

		res := svc.SuggestWeights(context.Background(), WeightRequest{ProjectName: "Growth", TargetReturn: 20})

		assert.True(t, res.FallbackUsed)
		assert.Equal(t, scoring.DefaultWeights(), res.Value)
	})
}

func TestVerdictAndStrategy(t *testing.T) {
	t.Run("verdict is cached", func(t *testing.T) {
		cache := newTestCache(t)
		oracle := &stubOracle{replies: []string{"Solid buy."}}
		svc := newTestService(oracle, cache)
		req := VerdictRequest{Symbol: "AAPL", Score: 82, Grade: "A", Metrics: map[string]interface{}{"pe_ratio": 12}}

		first := svc.Verdict(context.Background(), req)
		second := svc.Verdict(context.Background(), req)

		assert.Equal(t, "Solid buy.", first.Value)
		assert.Equal(t, "Solid buy.", second.Value)
		assert.Equal(t, 1, oracle.callCount())
		assert.Contains(t, oracle.calls[0].Prompt, "AAPL")
	})

	t.Run("strategy apology", func(t *testing.T) {
		svc := newTestService(&stubOracle{err: errOffline}, nil)

		res := svc.Strategy(context.Background(), StrategyRequest{PortfolioSummary: "3 stocks", TargetReturn: 8})

		assert.Equal(t, ApologyText, res.Value)
		assert.True(t, res.FallbackUsed)
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("full flow", func(t *testing.T) {
		oracle := &stubOracle{replies: []string{
			"Strategist research on AAPL",
			`{"industry_growth_3yr": 25, "net_profit_growth_5yr": 30, "pe_ratio": 10, "sector_pe": 20, "dividend_yield": 9, "dividend_years_consecutive": 12, "company_growth_rate": 45, "beta": 0.7}`,
			"Narration of the score",
		}}
		svc := newTestService(oracle, nil)

		var events []ProgressEvent
		report := svc.Analyze(context.Background(), AnalysisRequest{Symbol: "aapl", TargetReturn: targetOf(8)}, func(ev ProgressEvent) {
			events = append(events, ev)
		})

		assert.Equal(t, "AAPL", report.Symbol)
		assert.Equal(t, string(scoring.RiskConservative), report.RiskPreference)
		assert.Equal(t, "Strategist research on AAPL", report.Strategist)
		assert.Equal(t, "Narration of the score", report.Narration)
		assert.False(t, report.FallbackUsed)
		assert.Equal(t, scoring.DefaultWeights(), report.Weights)
		assert.Equal(t, 100, report.Report.FinalScore)
		assert.Equal(t, "A", report.Report.Grade)

		steps := make([]string, 0, len(events))
		for _, ev := range events {
			steps = append(steps, ev.Step)
		}
		assert.Equal(t, []string{StepStrategist, StepMetrics, StepScore, StepNarration, StepDone}, steps)

		require.Len(t, oracle.calls, 3)
		assert.Contains(t, oracle.calls[0].System, "AAPL")
		assert.True(t, oracle.calls[1].JSONMode)
		assert.Contains(t, oracle.calls[2].Prompt, "Strategist research on AAPL")
		assert.Contains(t, oracle.calls[2].Prompt, "Risk Preference: Conservative")
		assert.Contains(t, oracle.calls[2].Prompt, "final 100")
	})

	t.Run("offline oracle still scores", func(t *testing.T) {
		svc := newTestService(&stubOracle{err: errOffline}, nil)

		report := svc.Analyze(context.Background(), AnalysisRequest{Symbol: "XYZ", RiskPreference: "Aggressive"}, nil)

		assert.True(t, report.FallbackUsed)
		assert.Equal(t, ApologyText, report.Strategist)
		assert.Equal(t, ApologyText, report.Narration)
		assert.Equal(t, FallbackMetrics(), report.Metrics)
		assert.Equal(t, scoring.DefaultTargetReturn, report.TargetReturn)
		assert.Equal(t, "Aggressive", report.RiskPreference)
		assert.NotEmpty(t, report.Report.Grade)
	})

	t.Run("explicit zero target stays conservative", func(t *testing.T) {
		oracle := &stubOracle{replies: []string{
			"Strategist research on KBANK",
			`{"beta": 1.3}`,
			"Narration of the score",
		}}
		svc := newTestService(oracle, nil)

		report := svc.Analyze(context.Background(), AnalysisRequest{Symbol: "KBANK", TargetReturn: targetOf(0)}, nil)

		assert.Equal(t, 0.0, report.TargetReturn)
		assert.Equal(t, string(scoring.RiskConservative), report.RiskPreference)
		assert.Equal(t, scoring.RiskConservative, report.Report.RiskProfile)
		assert.Equal(t, 0.5, report.Report.RiskMult)
	})
}

func targetOf(v float64) *float64 {
	return &v
}

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", `{"a": 1}`, false},
		{"fenced", "```json\n{\"a\": 1}\n```", false},
		{"fence without tag", "```\n{\"a\": 1}\n```", false},
		{"prose around", `Here you go: {"a": 1} hope it helps`, false},
		{"no object", "nothing here", true},
		{"broken", `{"a": }`, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ParseJSONObject(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedJSON)
				return
			}
			require.NoError(t, err)
			v, ok := scoring.ToFloat(obj["a"])
			assert.True(t, ok)
			assert.Equal(t, 1.0, v)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
	assert.True(t, strings.HasPrefix(stripCodeFence("```\nabc\n```"), "abc"))
}
