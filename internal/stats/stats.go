// Package stats provides the pure portfolio arithmetic shared by the
// frontier sampler and the forward simulator.
package stats

import "math"

// PortfolioReturn computes the weighted expected return in percent.
// weights and returns are in asset order; returns are percents.
func PortfolioReturn(weights, returns []float64) float64 {
	var total float64
	for i := range weights {
		total += weights[i] * returns[i]
	}
	return total
}

// PortfolioVariance computes portfolio variance from weights, annualized
// volatilities (percent) and the pairwise correlation matrix. Volatilities
// are used as fractions, so the variance is in fraction-squared units.
func PortfolioVariance(weights, volatilities []float64, correlations [][]float64) float64 {
	var variance float64
	for i := range weights {
		vi := volatilities[i] / 100
		for j := range weights {
			vj := volatilities[j] / 100
			variance += weights[i] * weights[j] * vi * vj * correlations[i][j]
		}
	}
	return variance
}

// PortfolioRisk re-expresses variance as an annualized volatility percent.
// Negative variance from a non-positive-semidefinite correlation matrix is
// clamped to zero rather than surfaced; the matrix is not validated for
// positive semi-definiteness.
func PortfolioRisk(weights, volatilities []float64, correlations [][]float64) float64 {
	variance := PortfolioVariance(weights, volatilities, correlations)
	return math.Sqrt(math.Max(0, variance)) * 100
}

// SharpeRatio computes (return - riskFree) / risk, all in percent. A
// zero-risk portfolio has an undefined ratio and degrades to 0.
func SharpeRatio(portfolioReturn, portfolioRisk, riskFreeRate float64) float64 {
	if portfolioRisk <= 0 {
		return 0
	}
	return (portfolioReturn - riskFreeRate) / portfolioRisk
}

// Mean computes the arithmetic mean.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the sample standard deviation.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// OrderStatistic returns the value at the floor(n*p) order statistic of an
// ascending-sorted slice, with p in [0, 1].
func OrderStatistic(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
