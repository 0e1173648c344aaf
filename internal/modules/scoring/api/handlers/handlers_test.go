package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stockscorer/internal/modules/scoring"
)

func newTestRouter() http.Handler {
	h := NewHandlers(zerolog.New(nil).Level(zerolog.Disabled))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)
	return w
}

func TestHandleCalculateScore(t *testing.T) {
	body := `{
		"metrics": {"industry_growth_3yr": 25, "net_profit_growth_5yr": 22, "pe_ratio": 10, "sector_pe": 15,
			"dividend_yield": 9, "dividend_years_consecutive": 6, "company_growth_rate": 30, "beta": 1.0},
		"weights": {"industry": 15, "profit": 25, "mos": 25, "yield_val": 20, "competition": 15},
		"target_return": 12
	}`

	w := doRequest(t, http.MethodPost, "/api/calculate-score", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var report scoring.ScoreReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
	assert.Equal(t, 94.0, report.BaseScore)
	assert.Equal(t, 94, report.FinalScore)
	assert.Equal(t, "A", report.Grade)
	assert.Equal(t, 1.0, report.RiskMult)
	assert.Equal(t, scoring.RawScores{Industry: 100, Profit: 100, MOS: 80, Yield: 100, Competition: 80}, report.RawScores)
}

func TestHandleCalculateScore_WireFormat(t *testing.T) {
	w := doRequest(t, http.MethodPost, "/api/calculate-score", `{"metrics": {}, "weights": {}, "target_return": 12}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	for _, key := range []string{"baseScore", "finalScore", "grade", "riskMult", "rawScores"} {
		assert.Contains(t, raw, key)
	}
	assert.ElementsMatch(t, []string{"industry", "profit", "mos", "yield", "competition"}, keys(raw["rawScores"].(map[string]interface{})))
}

func TestHandleCalculateScore_MalformedFieldsAreDefaulted(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantMult float64
	}{
		{
			// All-zero metrics: industry 60, profit 40, mos 0, yield 0, competition 50
			// base = (60*15 + 40*25 + 50*15) / 100 = 26.5, moderate beta 1.0 -> x1
			name:     "empty body fields",
			body:     `{}`,
			wantMult: 1.0,
		},
		{
			name:     "metrics not an object",
			body:     `{"metrics": "n/a", "weights": [1,2], "target_return": 12}`,
			wantMult: 1.0,
		},
		{
			name:     "target return as percent string",
			body:     `{"metrics": {"beta": "1.3"}, "target_return": "20%"}`,
			wantMult: 1.0,
		},
		{
			name:     "unparseable target return uses default",
			body:     `{"metrics": {"beta": 0.5}, "target_return": "high"}`,
			wantMult: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, http.MethodPost, "/api/calculate-score", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			var report scoring.ScoreReport
			require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
			assert.Equal(t, 26.5, report.BaseScore)
			assert.Equal(t, tt.wantMult, report.RiskMult)
			assert.Equal(t, int(26.5*tt.wantMult), report.FinalScore)
			assert.Equal(t, "C", report.Grade)
		})
	}
}

func TestHandleCalculateScore_InvalidBody(t *testing.T) {
	w := doRequest(t, http.MethodPost, "/api/calculate-score", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Invalid request body", resp["error"])
}

func TestHandleGetDefaultWeights(t *testing.T) {
	w := doRequest(t, http.MethodGet, "/api/scoring/weights/default", "")
	require.Equal(t, http.StatusOK, w.Code)

	var weights map[string]float64
	require.NoError(t, json.NewDecoder(w.Body).Decode(&weights))
	assert.Equal(t, map[string]float64{"industry": 15, "profit": 25, "mos": 25, "yield_val": 20, "competition": 15}, weights)
}

func TestHandleGetRules(t *testing.T) {
	w := doRequest(t, http.MethodGet, "/api/scoring/rules", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rules scoring.RuleBook
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rules))
	assert.Len(t, rules.SubScores, 5)
	assert.Len(t, rules.Risk, 3)
	assert.Len(t, rules.Grades, 3)
}

func TestHandleDeriveMetrics(t *testing.T) {
	body := `{
		"closes": [100, 102, 99.96, 101.9592, 102.9788],
		"benchmark_closes": [100, 101, 99.99, 100.9899, 101.49485],
		"years": 2
	}`

	w := doRequest(t, http.MethodPost, "/api/metrics/derive", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DeriveMetricsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Beta)
	assert.InDelta(t, 2.0, *resp.Beta, 1e-3)
	require.NotNil(t, resp.CompanyGrowthRate)
	assert.InDelta(t, 1.4785, *resp.CompanyGrowthRate, 1e-3)
}

func TestHandleDeriveMetrics_PartialAndInvalid(t *testing.T) {
	w := doRequest(t, http.MethodPost, "/api/metrics/derive", `{"closes": [100, 121], "years": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Nil(t, resp["beta"])
	assert.InDelta(t, 10.0, resp["company_growth_rate"], 1e-9)

	w = doRequest(t, http.MethodPost, "/api/metrics/derive", `{"closes": [100]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, http.MethodPost, "/api/metrics/derive", `{"closes": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
