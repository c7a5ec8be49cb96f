// Package engine orchestrates the computation pipeline: model snapshot →
// frontier sampling → selection → forward simulation. Results are cached
// keyed by a hash of the inputs so the UI can recompute on every input
// change without redundant work.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jisoo/quantfolio/internal/frontier"
	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/internal/montecarlo"
	"github.com/jisoo/quantfolio/pkg/config"
	"github.com/jisoo/quantfolio/pkg/logger"
	"github.com/jisoo/quantfolio/pkg/redis"
)

// memoLimit bounds the in-process result memo.
const memoLimit = 64

// OptimizeInput carries everything a frontier computation depends on. The
// hash of this struct is the cache key.
type OptimizeInput struct {
	Assets        []model.Asset `json:"assets"`
	Correlations  [][]float64   `json:"correlations"`
	RiskFreeRate  float64       `json:"risk_free_rate"`
	RiskTolerance float64       `json:"risk_tolerance"`
}

// OptimizeResult is the full optimizer output: the frontier plus the three
// distinguished selections. Optimal is nil for an empty frontier.
type OptimizeResult struct {
	Frontier    frontier.Frontier `json:"frontier"`
	Optimal     *frontier.Point   `json:"optimal"`
	MaxSharpe   *frontier.Point   `json:"max_sharpe"`
	MinVariance *frontier.Point   `json:"min_variance"`
	InputHash   string            `json:"input_hash"`
	Cached      bool              `json:"cached"`
}

// Engine wires the pipeline together.
type Engine struct {
	engineCfg config.EngineConfig
	cache     *redis.Cache
	logger    *logger.Logger

	mu    sync.Mutex
	memo  map[string]*OptimizeResult
	order []string // insertion order for memo eviction
}

// New creates an engine. cache may be a disabled client's cache; the
// in-process memo still applies.
func New(engineCfg config.EngineConfig, cache *redis.Cache, log *logger.Logger) *Engine {
	return &Engine{
		engineCfg: engineCfg,
		cache:     cache,
		logger:    log.WithComponent("engine"),
		memo:      make(map[string]*OptimizeResult),
	}
}

// Optimize computes (or recalls) the frontier and selections for one input
// set. The input is captured into an immutable snapshot before sampling, so
// concurrent edits to the caller's model are never observed mid-run.
func (e *Engine) Optimize(ctx context.Context, in OptimizeInput) (*OptimizeResult, error) {
	snap := model.Snapshot{Assets: in.Assets, Correlations: in.Correlations}
	if len(snap.Assets) >= model.MinAssets {
		normalized, err := model.NormalizeMatrix(in.Correlations, len(in.Assets))
		if err != nil {
			return nil, fmt.Errorf("optimize input: %w", err)
		}
		snap.Correlations = normalized
	}

	hash, err := hashInput(in)
	if err != nil {
		return nil, fmt.Errorf("hash optimize input: %w", err)
	}

	if cached := e.lookup(ctx, hash); cached != nil {
		out := *cached
		out.Cached = true
		return &out, nil
	}

	sampler := frontier.NewSampler(e.engineCfg.FrontierSamples, nil)
	front := sampler.Compute(ctx, snap, in.RiskFreeRate)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &OptimizeResult{
		Frontier:  front,
		InputHash: hash,
	}
	if p, ok := frontier.SelectOptimal(front, in.RiskTolerance); ok {
		result.Optimal = &p
	}
	if p, ok := front.MaxSharpePoint(); ok {
		result.MaxSharpe = &p
	}
	if p, ok := front.MinVariancePoint(); ok {
		result.MinVariance = &p
	}

	e.store(ctx, hash, result)

	e.logger.WithFields(map[string]interface{}{
		"assets":         len(in.Assets),
		"frontier_size":  len(front),
		"risk_tolerance": in.RiskTolerance,
		"input_hash":     hash[:12],
	}).Debug("Frontier computed")

	return result, nil
}

// Simulate forward-simulates one selected portfolio. Risk/return arrive as
// percents (frontier units) and are converted to fractions for the
// simulator. Simulations are never cached: each run draws fresh randomness.
func (e *Engine) Simulate(ctx context.Context, point frontier.Point, cfg montecarlo.Config) (*montecarlo.Result, error) {
	return e.SimulateWithProgress(ctx, point, cfg, nil)
}

// SimulateWithProgress is Simulate with a progress callback.
func (e *Engine) SimulateWithProgress(ctx context.Context, point frontier.Point, cfg montecarlo.Config, progress montecarlo.ProgressFunc) (*montecarlo.Result, error) {
	if cfg.PathSampleLimit == 0 {
		cfg.PathSampleLimit = e.engineCfg.PathSampleLimit
	}
	if cfg.DrawdownSamplePaths == 0 {
		cfg.DrawdownSamplePaths = e.engineCfg.DrawdownSamplePaths
	}
	if cfg.Workers == 0 {
		cfg.Workers = e.engineCfg.SimWorkers
	}

	sim := montecarlo.New(cfg, e.logger)
	return sim.RunWithProgress(ctx, point.Return/100, point.Risk/100, progress)
}

// lookup checks the in-process memo first, then redis.
func (e *Engine) lookup(ctx context.Context, hash string) *OptimizeResult {
	e.mu.Lock()
	if r, ok := e.memo[hash]; ok {
		e.mu.Unlock()
		return r
	}
	e.mu.Unlock()

	if e.cache == nil {
		return nil
	}

	var result OptimizeResult
	found, err := e.cache.Get(ctx, "frontier:"+hash, &result)
	if err != nil {
		e.logger.WithError(err).Warn("Frontier cache read failed")
		return nil
	}
	if !found {
		return nil
	}
	return &result
}

// store writes the memo and, when available, redis.
func (e *Engine) store(ctx context.Context, hash string, result *OptimizeResult) {
	e.mu.Lock()
	if _, exists := e.memo[hash]; !exists {
		e.memo[hash] = result
		e.order = append(e.order, hash)
		if len(e.order) > memoLimit {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.memo, oldest)
		}
	}
	e.mu.Unlock()

	if e.cache != nil {
		if err := e.cache.Set(ctx, "frontier:"+hash, result, e.engineCfg.CacheTTL); err != nil {
			e.logger.WithError(err).Warn("Frontier cache write failed")
		}
	}
}

// hashInput produces a stable key for one input set.
func hashInput(in OptimizeInput) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
