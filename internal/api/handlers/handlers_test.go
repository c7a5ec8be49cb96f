package handlers

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jisoo/quantfolio/internal/correlations"
	"github.com/jisoo/quantfolio/internal/engine"
	"github.com/jisoo/quantfolio/internal/frontier"
	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/internal/montecarlo"
	"github.com/jisoo/quantfolio/pkg/config"
	"github.com/jisoo/quantfolio/pkg/httputil"
	"github.com/jisoo/quantfolio/pkg/logger"
)

func newTestEngine() *engine.Engine {
	cfg := config.EngineConfig{
		FrontierSamples:     200,
		DefaultCorrelation:  0.4,
		PathSampleLimit:     50,
		DrawdownSamplePaths: 100,
		SimWorkers:          2,
		CacheTTL:            time.Minute,
	}
	return engine.New(cfg, nil, logger.NewNop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestOptimizeHandler(t *testing.T) {
	h := NewOptimizeHandler(newTestEngine(), logger.NewNop())

	input := engine.OptimizeInput{
		Assets: []model.Asset{
			{Symbol: "SPY", ExpectedReturn: 12, Volatility: 25},
			{Symbol: "AGG", ExpectedReturn: 8, Volatility: 10},
			{Symbol: "GLD", ExpectedReturn: 6, Volatility: 18},
		},
		Correlations: [][]float64{
			{1, 0.2, 0.1},
			{0.2, 1, 0.3},
			{0.1, 0.3, 1},
		},
		RiskFreeRate:  3,
		RiskTolerance: 50,
	}

	rec := postJSON(t, h.Optimize, "/api/optimize", input)
	require.Equal(t, http.StatusOK, rec.Code)

	var result engine.OptimizeResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.NotEmpty(t, result.Frontier)
	require.NotNil(t, result.Optimal)
	require.NotNil(t, result.MaxSharpe)
	require.NotNil(t, result.MinVariance)
	assert.LessOrEqual(t, result.MinVariance.Risk, result.MaxSharpe.Risk+1e-9)
	assert.NotEmpty(t, result.InputHash)
}

func TestOptimizeHandlerTooFewAssets(t *testing.T) {
	h := NewOptimizeHandler(newTestEngine(), logger.NewNop())

	input := engine.OptimizeInput{
		Assets: []model.Asset{
			{Symbol: "SPY", ExpectedReturn: 12, Volatility: 25},
		},
	}

	rec := postJSON(t, h.Optimize, "/api/optimize", input)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeHandlerBadJSON(t *testing.T) {
	h := NewOptimizeHandler(newTestEngine(), logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Optimize(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateHandler(t *testing.T) {
	h := NewSimulateHandler(newTestEngine(), logger.NewNop())

	reqBody := SimulateRequest{
		Portfolio: frontier.Point{
			Weights: []float64{0.6, 0.4},
			Risk:    15,
			Return:  9,
		},
		InitialInvestment: 100000,
		Years:             10,
		NumSimulations:    300,
	}

	rec := postJSON(t, h.Simulate, "/api/simulate", reqBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var result montecarlo.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Percentiles, 11)
	assert.LessOrEqual(t, len(result.Paths), 50)
	assert.Greater(t, result.Stats.MedianFinal, 0.0)
}

func TestSimulateHandlerInvalidConfig(t *testing.T) {
	h := NewSimulateHandler(newTestEngine(), logger.NewNop())

	reqBody := SimulateRequest{
		Portfolio:         frontier.Point{Risk: 15, Return: 9},
		InitialInvestment: -5,
		Years:             10,
	}

	rec := postJSON(t, h.Simulate, "/api/simulate", reqBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrelationsHandlerSyntheticFallback(t *testing.T) {
	// No base URL configured: the client falls back to synthetic estimates
	// and the endpoint still succeeds.
	client := correlations.New(
		httputil.New(logger.NewNop(), time.Second),
		"",
		0.4,
		rand.New(rand.NewSource(7)),
		logger.NewNop(),
	)
	h := NewCorrelationsHandler(client, logger.NewNop())

	rec := postJSON(t, h.Import, "/api/correlations/import", map[string][]string{
		"symbols": {"SPY", "AGG", "GLD"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result correlations.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.Equal(t, correlations.SourceSynthetic, result.Source)
	assert.NotEmpty(t, result.Notice)
	require.Len(t, result.Matrix, 3)
	for i := range result.Matrix {
		assert.Equal(t, 1.0, result.Matrix[i][i])
	}
}

func TestCorrelationsHandlerTooFewSymbols(t *testing.T) {
	client := correlations.New(
		httputil.New(logger.NewNop(), time.Second),
		"",
		0.4,
		rand.New(rand.NewSource(7)),
		logger.NewNop(),
	)
	h := NewCorrelationsHandler(client, logger.NewNop())

	rec := postJSON(t, h.Import, "/api/correlations/import", map[string][]string{
		"symbols": {"SPY"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
