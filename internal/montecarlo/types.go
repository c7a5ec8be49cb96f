// Package montecarlo forward-simulates a portfolio's value over time with a
// Gaussian annual return model and reduces the paths to percentile bands
// and summary risk statistics.
package montecarlo

import (
	"errors"
	"time"
)

var (
	ErrInvalidConfig = errors.New("invalid simulation configuration")
)

// Bounds accepted by the simulator. Years may be zero so that a year-0-only
// run degenerates cleanly to the initial investment.
const (
	MaxYears           = 30
	MaxSimulations     = 10000
	MinSimulations     = 1
	DefaultSimulations = 1000
)

// Config holds simulation parameters. PathSampleLimit bounds the full paths
// retained in the result; DrawdownSamplePaths bounds the paths scanned for
// max drawdown (a cost-control sample, not all paths).
type Config struct {
	NumSimulations      int     `json:"num_simulations"`
	Years               int     `json:"years"`
	InitialInvestment   float64 `json:"initial_investment"`
	PathSampleLimit     int     `json:"path_sample_limit"`
	DrawdownSamplePaths int     `json:"drawdown_sample_paths"`
	Workers             int     `json:"workers"` // 0 = GOMAXPROCS
	Seed                int64   `json:"seed"`    // 0 = time-seeded (default; runs are not reproducible)
}

// DefaultConfig returns the default simulation settings.
func DefaultConfig() Config {
	return Config{
		NumSimulations:      DefaultSimulations,
		Years:               10,
		InitialInvestment:   100000,
		PathSampleLimit:     50,
		DrawdownSamplePaths: 100,
		Workers:             0,
		Seed:                0,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.NumSimulations < MinSimulations || c.NumSimulations > MaxSimulations {
		return ErrInvalidConfig
	}
	if c.Years < 0 || c.Years > MaxYears {
		return ErrInvalidConfig
	}
	if c.InitialInvestment <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PercentileBand holds the value order statistics across all simulations at
// one year.
type PercentileBand struct {
	Year int     `json:"year"`
	P10  float64 `json:"p10"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
}

// Stats summarizes the distribution of final values. Probabilities are in
// percent.
type Stats struct {
	MedianFinal         float64 `json:"median_final"`
	MeanFinal           float64 `json:"mean_final"`
	ProbabilityProfit   float64 `json:"probability_profit"`
	ProbabilityDoubling float64 `json:"probability_doubling"`
	MaxDrawdownPercent  float64 `json:"max_drawdown_percent"`
}

// Result is one simulation run. Paths holds at most PathSampleLimit full
// paths for display; every simulated path contributes to Percentiles and
// Stats. A new run replaces the previous result entirely.
type Result struct {
	RunID       string           `json:"run_id"`
	RunDate     time.Time        `json:"run_date"`
	Config      Config           `json:"config"`
	Paths       [][]float64      `json:"paths"`
	Percentiles []PercentileBand `json:"percentiles"`
	Stats       Stats            `json:"stats"`
}
