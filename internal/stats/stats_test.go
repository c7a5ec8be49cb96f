package stats

import (
	"math"
	"testing"
)

func TestPortfolioReturn(t *testing.T) {
	cases := []struct {
		name    string
		weights []float64
		returns []float64
		want    float64
	}{
		{"two assets", []float64{0.6, 0.4}, []float64{12, 8}, 10.4},
		{"all in one", []float64{1, 0}, []float64{12, 8}, 12},
		{"three way", []float64{0.5, 0.3, 0.2}, []float64{10, 5, 2}, 6.9},
	}

	for _, c := range cases {
		if got := PortfolioReturn(c.weights, c.returns); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: PortfolioReturn = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPortfolioVariance(t *testing.T) {
	// Two uncorrelated assets: var = (w1*v1)^2 + (w2*v2)^2 with vols as fractions.
	weights := []float64{0.5, 0.5}
	vols := []float64{25, 10}
	corr := [][]float64{{1, 0}, {0, 1}}

	want := 0.5*0.5*0.25*0.25 + 0.5*0.5*0.10*0.10
	if got := PortfolioVariance(weights, vols, corr); math.Abs(got-want) > 1e-12 {
		t.Errorf("PortfolioVariance = %v, want %v", got, want)
	}
}

func TestPortfolioVariance_PerfectCorrelation(t *testing.T) {
	// Perfectly correlated assets: risk is the weighted average of vols.
	weights := []float64{0.3, 0.7}
	vols := []float64{20, 10}
	corr := [][]float64{{1, 1}, {1, 1}}

	want := 0.3*20 + 0.7*10
	if got := PortfolioRisk(weights, vols, corr); math.Abs(got-want) > 1e-9 {
		t.Errorf("PortfolioRisk = %v, want %v", got, want)
	}
}

func TestPortfolioRisk_NeverNegative(t *testing.T) {
	// A wildly inconsistent matrix can push variance negative; risk must
	// clamp to zero instead of going NaN.
	weights := []float64{0.5, 0.5}
	vols := []float64{20, 20}
	corr := [][]float64{{1, -1}, {-1, 1}}

	got := PortfolioRisk(weights, vols, corr)
	if got < 0 || math.IsNaN(got) {
		t.Errorf("PortfolioRisk = %v, want non-negative finite", got)
	}

	// Force a strictly negative variance with an invalid diagonal.
	badCorr := [][]float64{{-1, -1}, {-1, -1}}
	got = PortfolioRisk(weights, vols, badCorr)
	if got != 0 {
		t.Errorf("PortfolioRisk with negative variance = %v, want 0", got)
	}
}

func TestSharpeRatio(t *testing.T) {
	if got := SharpeRatio(12, 20, 4.5); math.Abs(got-0.375) > 1e-12 {
		t.Errorf("SharpeRatio = %v, want 0.375", got)
	}

	// Zero risk degrades to 0, not NaN/Inf.
	if got := SharpeRatio(12, 0, 4.5); got != 0 {
		t.Errorf("SharpeRatio with zero risk = %v, want 0", got)
	}
	if got := SharpeRatio(12, -1, 4.5); got != 0 {
		t.Errorf("SharpeRatio with negative risk = %v, want 0", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Mean = %v, want 4", got)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("StdDev of one value = %v, want 0", got)
	}

	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2.138089935) > 1e-6 {
		t.Errorf("StdDev = %v, want ~2.138", got)
	}
}

func TestOrderStatistic(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	cases := []struct {
		p    float64
		want float64
	}{
		{0.10, 20}, // floor(10*0.10) = 1
		{0.25, 30},
		{0.50, 60},
		{0.90, 100},
		{0, 10},
		{1, 100}, // index clamped to len-1
	}

	for _, c := range cases {
		if got := OrderStatistic(sorted, c.p); got != c.want {
			t.Errorf("OrderStatistic(p=%v) = %v, want %v", c.p, got, c.want)
		}
	}

	if got := OrderStatistic(nil, 0.5); got != 0 {
		t.Errorf("OrderStatistic(nil) = %v, want 0", got)
	}
}
