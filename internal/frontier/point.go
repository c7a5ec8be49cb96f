// Package frontier approximates the efficient frontier by random portfolio
// sampling and selects portfolios along it.
package frontier

// Point is one portfolio on the risk/return plane. Weights are per-asset in
// asset order, non-negative, summing to 1. Risk and Return are annualized
// percents. Points are value types and never mutated after creation.
type Point struct {
	Weights []float64 `json:"weights"`
	Risk    float64   `json:"risk"`
	Return  float64   `json:"return"`
	Sharpe  float64   `json:"sharpe"`
}

// Frontier is a non-dominated set of portfolio points, sorted ascending by
// risk with strictly increasing return.
type Frontier []Point

// MinRisk returns the lowest risk on the frontier.
func (f Frontier) MinRisk() float64 {
	if len(f) == 0 {
		return 0
	}
	return f[0].Risk
}

// MaxRisk returns the highest risk on the frontier.
func (f Frontier) MaxRisk() float64 {
	if len(f) == 0 {
		return 0
	}
	return f[len(f)-1].Risk
}

// MinVariancePoint returns the lowest-risk point on the frontier.
func (f Frontier) MinVariancePoint() (Point, bool) {
	if len(f) == 0 {
		return Point{}, false
	}
	return f[0], true
}

// MaxSharpePoint returns the globally highest-Sharpe point on the frontier.
func (f Frontier) MaxSharpePoint() (Point, bool) {
	if len(f) == 0 {
		return Point{}, false
	}
	best := f[0]
	for _, p := range f[1:] {
		if p.Sharpe > best.Sharpe {
			best = p
		}
	}
	return best, true
}
