package frontier

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture builds a small hand-made frontier with known shape.
func fixture() Frontier {
	return Frontier{
		{Risk: 5, Return: 4, Sharpe: 0.2, Weights: []float64{1, 0}},
		{Risk: 8, Return: 7, Sharpe: 0.5, Weights: []float64{0.7, 0.3}},
		{Risk: 12, Return: 10, Sharpe: 0.55, Weights: []float64{0.5, 0.5}},
		{Risk: 20, Return: 13, Sharpe: 0.45, Weights: []float64{0.2, 0.8}},
		{Risk: 25, Return: 14, Sharpe: 0.4, Weights: []float64{0, 1}},
	}
}

func TestSelectOptimal_EmptyFrontier(t *testing.T) {
	_, ok := SelectOptimal(Frontier{}, 50)
	assert.False(t, ok)
}

func TestSelectOptimal_ZeroTolerance(t *testing.T) {
	// Target risk = minRisk; only points within the 10% slack of 5 qualify.
	p, ok := SelectOptimal(fixture(), 0)
	require.True(t, ok)
	assert.Equal(t, 5.0, p.Risk, "zero tolerance must pick the lowest-risk point")
}

func TestSelectOptimal_FullTolerance(t *testing.T) {
	// Target risk = maxRisk; every point qualifies, best sharpe wins.
	p, ok := SelectOptimal(fixture(), 100)
	require.True(t, ok)
	assert.Equal(t, 0.55, p.Sharpe)
	assert.Equal(t, 12.0, p.Risk)
}

func TestSelectOptimal_BandSelection(t *testing.T) {
	// Tolerance 15% of the 5..25 span: target = 8. Band covers risk <= 8.8,
	// so the 0.5-sharpe point at risk 8 beats the min-risk point.
	p, ok := SelectOptimal(fixture(), 15)
	require.True(t, ok)
	assert.Equal(t, 8.0, p.Risk)
	assert.Equal(t, 0.5, p.Sharpe)
}

func TestSelectOptimal_ToleranceClamped(t *testing.T) {
	lo, ok := SelectOptimal(fixture(), -10)
	require.True(t, ok)
	assert.Equal(t, 5.0, lo.Risk)

	hi, ok := SelectOptimal(fixture(), 250)
	require.True(t, ok)
	assert.Equal(t, 0.55, hi.Sharpe)
}

func TestFrontier_DistinguishedPoints(t *testing.T) {
	f := fixture()

	minVar, ok := f.MinVariancePoint()
	require.True(t, ok)
	assert.Equal(t, 5.0, minVar.Risk)

	maxSharpe, ok := f.MaxSharpePoint()
	require.True(t, ok)
	assert.Equal(t, 0.55, maxSharpe.Sharpe)

	empty := Frontier{}
	_, ok = empty.MinVariancePoint()
	assert.False(t, ok)
	_, ok = empty.MaxSharpePoint()
	assert.False(t, ok)
}

func TestSelectOptimal_SampledFrontierExtremes(t *testing.T) {
	// End-to-end with a sampled frontier: tolerance 0 stays within the
	// slack band of the lowest risk; tolerance 100 lands at or near the top.
	sampler := NewSampler(1000, rand.New(rand.NewSource(21)))
	f := sampler.Compute(context.Background(), twoAssetSnapshot(), 4.5)
	require.Greater(t, len(f), 2)

	low, ok := SelectOptimal(f, 0)
	require.True(t, ok)
	assert.LessOrEqual(t, low.Risk, f.MinRisk()*riskBandSlack)

	high, ok := SelectOptimal(f, 100)
	require.True(t, ok)
	best, _ := f.MaxSharpePoint()
	assert.Equal(t, best.Sharpe, high.Sharpe, "full tolerance admits every point, so global max sharpe wins")
}
