package frontier

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/internal/stats"
)

// DefaultSamples is the number of random portfolios drawn per frontier.
const DefaultSamples = 1000

// Sampler approximates the efficient frontier by scoring random weight
// vectors. This is intentionally a sampling approximation, not a quadratic
// program; callers get the same output distribution the browser toolkit
// produces.
type Sampler struct {
	samples int
	rng     *rand.Rand
}

// NewSampler creates a sampler. samples <= 0 uses DefaultSamples. rng may
// be nil, in which case a time-seeded source is used; tests inject a seeded
// one.
func NewSampler(samples int, rng *rand.Rand) *Sampler {
	if samples <= 0 {
		samples = DefaultSamples
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{samples: samples, rng: rng}
}

// Compute draws random portfolios over the snapshot and reduces them to the
// non-dominated frontier. Fewer than two assets yields an empty frontier.
// The snapshot is read-only; the sampler writes no shared state.
func (s *Sampler) Compute(ctx context.Context, snap model.Snapshot, riskFreeRate float64) Frontier {
	n := len(snap.Assets)
	if n < model.MinAssets {
		return Frontier{}
	}

	returns := make([]float64, n)
	vols := make([]float64, n)
	for i, a := range snap.Assets {
		returns[i] = a.ExpectedReturn
		vols[i] = a.Volatility
	}

	points := make([]Point, 0, s.samples)
	for i := 0; i < s.samples; i++ {
		if ctx.Err() != nil {
			return Frontier{}
		}

		weights := s.randomWeights(n)
		ret := stats.PortfolioReturn(weights, returns)
		risk := stats.PortfolioRisk(weights, vols, snap.Correlations)

		points = append(points, Point{
			Weights: weights,
			Risk:    risk,
			Return:  ret,
			Sharpe:  stats.SharpeRatio(ret, risk, riskFreeRate),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Risk < points[j].Risk
	})

	// Walk in risk order keeping only points that improve on the best
	// return seen so far: the non-dominated set.
	frontier := make(Frontier, 0, len(points))
	bestReturn := math.Inf(-1)
	for _, p := range points {
		if p.Return > bestReturn {
			frontier = append(frontier, p)
			bestReturn = p.Return
		}
	}

	return frontier
}

// randomWeights draws n independent uniforms and normalizes by their sum.
// Not uniform over the simplex, but it is the sampling method the output
// distribution is defined by.
func (s *Sampler) randomWeights(n int) []float64 {
	weights := make([]float64, n)
	var sum float64
	for i := range weights {
		weights[i] = s.rng.Float64()
		sum += weights[i]
	}
	if sum == 0 {
		// All-zero draw is essentially impossible; fall back to equal weights.
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
		return weights
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
