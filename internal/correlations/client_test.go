package correlations

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jisoo/quantfolio/pkg/httputil"
	"github.com/jisoo/quantfolio/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	httpClient := httputil.New(logger.NewNop(), 2*time.Second).DisableRetry()
	return New(httpClient, baseURL, 0.4, rand.New(rand.NewSource(17)), logger.NewNop())
}

func TestImport_Service(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "symbols=")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"matrix":[[1,0.3,0.1],[0.3,1,0.2],[0.1,0.2,1]]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Import(context.Background(), []string{"SPY", "AGG", "GLD"})
	require.NoError(t, err)

	assert.Equal(t, SourceService, result.Source)
	assert.Empty(t, result.Notice)
	assert.Equal(t, 0.3, result.Matrix[0][1])
	assert.Equal(t, 0.3, result.Matrix[1][0])
	assert.Equal(t, 1.0, result.Matrix[2][2])
}

func TestImport_FallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Import(context.Background(), []string{"SPY", "AGG"})
	require.NoError(t, err, "service failure must degrade, not error")

	assert.Equal(t, SourceSynthetic, result.Source)
	assert.NotEmpty(t, result.Notice)
	assertPlausibleMatrix(t, result.Matrix, 2)
}

func TestImport_FallbackOnBadShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"matrix":[[1,0.3],[0.3,1]]}`)) // 2x2 for 3 symbols
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	result, err := client.Import(context.Background(), []string{"SPY", "AGG", "GLD"})
	require.NoError(t, err)
	assert.Equal(t, SourceSynthetic, result.Source)
	assertPlausibleMatrix(t, result.Matrix, 3)
}

func TestImport_FallbackWithoutBaseURL(t *testing.T) {
	client := newTestClient("")

	result, err := client.Import(context.Background(), []string{"SPY", "AGG"})
	require.NoError(t, err)
	assert.Equal(t, SourceSynthetic, result.Source)
}

func TestImport_TooFewSymbols(t *testing.T) {
	client := newTestClient("")

	_, err := client.Import(context.Background(), []string{"SPY"})
	assert.Error(t, err)
}

func TestSynthetic_Invariants(t *testing.T) {
	client := newTestClient("")

	for _, n := range []int{2, 5, 12} {
		assertPlausibleMatrix(t, client.Synthetic(n), n)
	}
}

func assertPlausibleMatrix(t *testing.T, m [][]float64, n int) {
	t.Helper()
	require.Len(t, m, n)
	for i := range m {
		require.Len(t, m[i], n)
		assert.Equal(t, 1.0, m[i][i], "diagonal must be 1")
		for j := range m[i] {
			assert.Equal(t, m[i][j], m[j][i], "matrix must be symmetric")
			assert.LessOrEqual(t, m[i][j], 1.0)
			assert.GreaterOrEqual(t, m[i][j], -1.0)
		}
	}
}
