package frontier

// riskBandSlack widens the tolerance-mapped risk target by 10% so the
// selector can reach slightly past the target for a better Sharpe ratio.
const riskBandSlack = 1.1

// SelectOptimal maps a 0-100 risk tolerance onto the frontier. The
// tolerance interpolates a target risk between the frontier's extremes;
// among points within the slack band of that target the highest-Sharpe one
// wins. An empty candidate set falls back to the lowest-risk point. Returns
// false only for an empty frontier.
func SelectOptimal(f Frontier, riskTolerance float64) (Point, bool) {
	if len(f) == 0 {
		return Point{}, false
	}

	if riskTolerance < 0 {
		riskTolerance = 0
	}
	if riskTolerance > 100 {
		riskTolerance = 100
	}

	minRisk := f.MinRisk()
	maxRisk := f.MaxRisk()
	targetRisk := minRisk + (riskTolerance/100)*(maxRisk-minRisk)

	var best *Point
	for i := range f {
		if f[i].Risk > targetRisk*riskBandSlack {
			continue
		}
		if best == nil || f[i].Sharpe > best.Sharpe {
			best = &f[i]
		}
	}

	if best == nil {
		return f[0], true
	}
	return *best, true
}
