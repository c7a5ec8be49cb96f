package montecarlo

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jisoo/quantfolio/internal/stats"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// Simulator runs Monte Carlo forward simulations. Each path is independent,
// so the paths fan out across a worker pool and merge only at the final
// percentile/statistics reduction. A run writes no shared state outside the
// call, which makes it safe to abandon one run and start another.
type Simulator struct {
	config Config
	logger *logger.Logger
}

// ProgressFunc receives completed/total path counts during a run.
type ProgressFunc func(done, total int)

// New creates a simulator.
func New(config Config, log *logger.Logger) *Simulator {
	return &Simulator{
		config: config,
		logger: log.WithComponent("montecarlo"),
	}
}

// Run simulates the portfolio given its aggregate expected return and
// volatility as fractions of 1 (0.08 = 8%/yr). It blocks until every path
// is simulated and reduced; cancel the context to abort, in which case
// in-flight results are discarded.
func (s *Simulator) Run(ctx context.Context, portfolioReturn, portfolioVolatility float64) (*Result, error) {
	return s.RunWithProgress(ctx, portfolioReturn, portfolioVolatility, nil)
}

// RunWithProgress is Run with a progress callback, sampled roughly every
// 100ms. progress may be nil.
func (s *Simulator) RunWithProgress(ctx context.Context, portfolioReturn, portfolioVolatility float64, progress ProgressFunc) (*Result, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	cfg := s.config
	start := time.Now()

	paths := make([][]float64, cfg.NumSimulations)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.NumSimulations {
		workers = cfg.NumSimulations
	}

	baseSeed := cfg.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	var done int64
	var wg sync.WaitGroup

	// Each worker owns a contiguous slice of path indices and its own RNG,
	// so no synchronization happens inside the simulation loop.
	chunk := (cfg.NumSimulations + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > cfg.NumSimulations {
			hi = cfg.NumSimulations
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(workerID, lo, hi int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(baseSeed + int64(workerID)*7919))
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				paths[i] = simulatePath(rng, cfg.InitialInvestment, cfg.Years, portfolioReturn, portfolioVolatility)
				atomic.AddInt64(&done, 1)
			}
		}(w, lo, hi)
	}

	// Progress reporter: polls the shared counter instead of adding a
	// callback into the hot loop.
	var stopProgress chan struct{}
	var reporterDone chan struct{}
	if progress != nil {
		stopProgress = make(chan struct{})
		reporterDone = make(chan struct{})
		go func() {
			defer close(reporterDone)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-stopProgress:
					progress(int(atomic.LoadInt64(&done)), cfg.NumSimulations)
					return
				case <-ticker.C:
					progress(int(atomic.LoadInt64(&done)), cfg.NumSimulations)
				}
			}
		}()
	}

	wg.Wait()
	if stopProgress != nil {
		close(stopProgress)
		<-reporterDone
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := s.reduce(cfg, paths)

	s.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"simulations": cfg.NumSimulations,
		"years":       cfg.Years,
		"workers":     workers,
		"duration":    time.Since(start),
	}).Info("Simulation completed")

	return result, nil
}

// simulatePath produces one value path of years+1 entries starting at the
// initial investment. Annual returns are Gaussian draws around the
// portfolio mean; value floors at zero and stays there.
func simulatePath(rng *rand.Rand, initial float64, years int, mean, vol float64) []float64 {
	path := make([]float64, 0, years+1)
	value := initial
	path = append(path, value)

	for y := 0; y < years; y++ {
		z := boxMuller(rng)
		yearReturn := mean + vol*z
		value = math.Max(0, value*(1+yearReturn))
		path = append(path, value)
	}

	return path
}

// boxMuller draws one standard normal variate from two independent
// uniform(0,1) draws.
func boxMuller(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// reduce collapses all paths into percentile bands and summary statistics.
func (s *Simulator) reduce(cfg Config, paths [][]float64) *Result {
	numSims := len(paths)
	years := cfg.Years

	// Percentile bands per year, including year 0.
	percentiles := make([]PercentileBand, 0, years+1)
	yearValues := make([]float64, numSims)
	for y := 0; y <= years; y++ {
		for i, path := range paths {
			yearValues[i] = path[y]
		}
		sort.Float64s(yearValues)

		percentiles = append(percentiles, PercentileBand{
			Year: y,
			P10:  stats.OrderStatistic(yearValues, 0.10),
			P25:  stats.OrderStatistic(yearValues, 0.25),
			P50:  stats.OrderStatistic(yearValues, 0.50),
			P75:  stats.OrderStatistic(yearValues, 0.75),
			P90:  stats.OrderStatistic(yearValues, 0.90),
		})
	}

	// Final-value distribution.
	finals := make([]float64, numSims)
	profitCount := 0
	doubleCount := 0
	for i, path := range paths {
		final := path[len(path)-1]
		finals[i] = final
		if final > cfg.InitialInvestment {
			profitCount++
		}
		if final > 2*cfg.InitialInvestment {
			doubleCount++
		}
	}
	meanFinal := stats.Mean(finals)
	sort.Float64s(finals)

	// Max drawdown over a bounded sample of paths, for cost control.
	ddSample := cfg.DrawdownSamplePaths
	if ddSample <= 0 || ddSample > numSims {
		ddSample = numSims
	}
	maxDD := 0.0
	for _, path := range paths[:ddSample] {
		if dd := maxDrawdown(path); dd > maxDD {
			maxDD = dd
		}
	}

	// Retain a bounded sample of full paths for display.
	keep := cfg.PathSampleLimit
	if keep <= 0 || keep > numSims {
		keep = numSims
	}

	return &Result{
		RunID:       uuid.New().String(),
		RunDate:     time.Now(),
		Config:      cfg,
		Paths:       paths[:keep],
		Percentiles: percentiles,
		Stats: Stats{
			MedianFinal:         stats.OrderStatistic(finals, 0.50),
			MeanFinal:           meanFinal,
			ProbabilityProfit:   float64(profitCount) / float64(numSims) * 100,
			ProbabilityDoubling: float64(doubleCount) / float64(numSims) * 100,
			MaxDrawdownPercent:  maxDD * 100,
		},
	}
}

// maxDrawdown returns the largest peak-to-trough relative decline within a
// single path, as a fraction.
func maxDrawdown(path []float64) float64 {
	if len(path) == 0 {
		return 0
	}

	peak := path[0]
	maxDD := 0.0
	for _, v := range path {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
