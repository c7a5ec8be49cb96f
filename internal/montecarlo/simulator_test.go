package montecarlo

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jisoo/quantfolio/pkg/logger"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.NumSimulations = 500
	cfg.Years = 10
	cfg.InitialInvestment = 100000
	cfg.Seed = 12345
	return cfg
}

func TestSimulator_ResultShape(t *testing.T) {
	sim := New(testConfig(), logger.NewNop())

	result, err := sim.Run(context.Background(), 0.08, 0.15)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Percentiles, 11, "years+1 bands including year 0")
	assert.Len(t, result.Paths, 50, "path sample capped at the limit")

	for _, path := range result.Paths {
		assert.Len(t, path, 11)
		assert.Equal(t, 100000.0, path[0], "every path starts at the initial investment")
		for _, v := range path {
			assert.GreaterOrEqual(t, v, 0.0, "value floors at zero")
		}
	}

	// Bands are ordered within each year.
	for _, band := range result.Percentiles {
		assert.LessOrEqual(t, band.P10, band.P25)
		assert.LessOrEqual(t, band.P25, band.P50)
		assert.LessOrEqual(t, band.P50, band.P75)
		assert.LessOrEqual(t, band.P75, band.P90)
	}

	// Year 0 is deterministic.
	assert.Equal(t, 100000.0, result.Percentiles[0].P10)
	assert.Equal(t, 100000.0, result.Percentiles[0].P90)
}

func TestSimulator_PathSampleBelowLimit(t *testing.T) {
	cfg := testConfig()
	cfg.NumSimulations = 20
	sim := New(cfg, logger.NewNop())

	result, err := sim.Run(context.Background(), 0.08, 0.15)
	require.NoError(t, err)
	assert.Len(t, result.Paths, 20, "fewer sims than the limit keeps them all")
}

func TestSimulator_ZeroYears(t *testing.T) {
	cfg := testConfig()
	cfg.Years = 0
	sim := New(cfg, logger.NewNop())

	result, err := sim.Run(context.Background(), 0.08, 0.15)
	require.NoError(t, err)

	assert.Len(t, result.Percentiles, 1)
	for _, path := range result.Paths {
		require.Len(t, path, 1)
		assert.Equal(t, 100000.0, path[0])
	}

	assert.Equal(t, 100000.0, result.Stats.MedianFinal)
	assert.Equal(t, 100000.0, result.Stats.MeanFinal)
	assert.Equal(t, 0.0, result.Stats.ProbabilityProfit, "final equals initial, which is not a profit")
	assert.Equal(t, 0.0, result.Stats.ProbabilityDoubling)
	assert.Equal(t, 0.0, result.Stats.MaxDrawdownPercent)
}

func TestSimulator_ZeroVolatility(t *testing.T) {
	// Deterministic compounding: every path is initial*(1+r)^y exactly.
	cfg := testConfig()
	cfg.Years = 5
	sim := New(cfg, logger.NewNop())

	result, err := sim.Run(context.Background(), 0.10, 0)
	require.NoError(t, err)

	want := 100000 * math.Pow(1.10, 5)
	assert.InDelta(t, want, result.Stats.MedianFinal, 1e-6)
	assert.InDelta(t, want, result.Stats.MeanFinal, 1e-6)
	assert.Equal(t, 100.0, result.Stats.ProbabilityProfit)
	assert.Equal(t, 0.0, result.Stats.MaxDrawdownPercent, "monotone growth has no drawdown")
}

func TestSimulator_ProbabilityOrdering(t *testing.T) {
	sim := New(testConfig(), logger.NewNop())

	result, err := sim.Run(context.Background(), 0.07, 0.20)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Stats.ProbabilityProfit, result.Stats.ProbabilityDoubling,
		"doubling implies profit")
	assert.GreaterOrEqual(t, result.Stats.MaxDrawdownPercent, 0.0)
}

func TestSimulator_InvalidConfig(t *testing.T) {
	cases := []Config{
		{NumSimulations: 0, Years: 10, InitialInvestment: 1000},
		{NumSimulations: 20000, Years: 10, InitialInvestment: 1000},
		{NumSimulations: 100, Years: -1, InitialInvestment: 1000},
		{NumSimulations: 100, Years: 31, InitialInvestment: 1000},
		{NumSimulations: 100, Years: 10, InitialInvestment: 0},
	}

	for i, cfg := range cases {
		sim := New(cfg, logger.NewNop())
		_, err := sim.Run(context.Background(), 0.08, 0.15)
		assert.True(t, errors.Is(err, ErrInvalidConfig), "case %d should be rejected", i)
	}
}

func TestSimulator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig()
	cfg.NumSimulations = 5000
	cfg.Years = 30
	sim := New(cfg, logger.NewNop())

	_, err := sim.Run(ctx, 0.08, 0.15)
	assert.ErrorIs(t, err, context.Canceled, "aborted run must discard in-flight results")
}

func TestSimulator_Progress(t *testing.T) {
	sim := New(testConfig(), logger.NewNop())

	var lastDone, lastTotal int
	_, err := sim.RunWithProgress(context.Background(), 0.08, 0.15, func(done, total int) {
		lastDone, lastTotal = done, total
	})
	require.NoError(t, err)

	assert.Equal(t, 500, lastTotal)
	assert.Equal(t, 500, lastDone, "final progress callback reports completion")
}

func TestMaxDrawdown(t *testing.T) {
	cases := []struct {
		name string
		path []float64
		want float64
	}{
		{"empty", nil, 0},
		{"monotone up", []float64{100, 110, 120}, 0},
		{"single dip", []float64{100, 120, 60, 90}, 0.5},
		{"trailing peak", []float64{100, 50, 200}, 0.5},
		{"to zero", []float64{100, 0}, 1},
	}

	for _, c := range cases {
		if got := maxDrawdown(c.path); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%s: maxDrawdown = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBoxMullerMoments(t *testing.T) {
	// Sanity only: mean near 0, stddev near 1 over many draws.
	rng := rand.New(rand.NewSource(99))
	n := 20000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		z := boxMuller(rng)
		sum += z
		sumSq += z * z
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.05)
}
