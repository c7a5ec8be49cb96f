// Package correlations imports pairwise correlation matrices from an
// external data service, falling back to a locally synthesized plausible
// matrix whenever the service is unavailable. Import failures are never
// fatal; the fallback carries a notice for the UI instead.
package correlations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/jisoo/quantfolio/internal/model"
	"github.com/jisoo/quantfolio/pkg/httputil"
	"github.com/jisoo/quantfolio/pkg/logger"
)

// Source identifies where an imported matrix came from.
const (
	SourceService   = "service"
	SourceSynthetic = "synthetic"
)

// syntheticSpread is the half-width of the band around the default
// correlation used for synthesized off-diagonal entries.
const syntheticSpread = 0.25

var errNoBaseURL = errors.New("correlation service URL not configured")

// ImportResult is a correlation matrix plus its provenance. Notice is a
// non-fatal, user-facing message set when the fallback was used.
type ImportResult struct {
	Symbols []string    `json:"symbols"`
	Matrix  [][]float64 `json:"matrix"`
	Source  string      `json:"source"`
	Notice  string      `json:"notice,omitempty"`
}

// Client fetches correlation matrices.
type Client struct {
	http        *httputil.Client
	baseURL     string
	defaultCorr float64
	rng         *rand.Rand
	logger      *logger.Logger
}

// serviceResponse is the wire format of the external service.
type serviceResponse struct {
	Matrix [][]float64 `json:"matrix"`
}

// New creates a client. rng may be nil (time-seeded); tests inject one.
func New(http *httputil.Client, baseURL string, defaultCorr float64, rng *rand.Rand, log *logger.Logger) *Client {
	if defaultCorr == 0 {
		defaultCorr = model.DefaultCorrelation
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Client{
		http:        http,
		baseURL:     strings.TrimRight(baseURL, "/"),
		defaultCorr: defaultCorr,
		rng:         rng,
		logger:      log.WithComponent("correlations"),
	}
}

// Import fetches the pairwise correlation matrix for the symbols. On any
// failure it degrades to a synthesized matrix and reports the reason in the
// Notice field; the returned error is always nil for len(symbols) >= 2.
func (c *Client) Import(ctx context.Context, symbols []string) (*ImportResult, error) {
	if len(symbols) < model.MinAssets {
		return nil, fmt.Errorf("correlation import requires at least %d symbols", model.MinAssets)
	}

	matrix, err := c.fetch(ctx, symbols)
	if err != nil {
		c.logger.WithError(err).WithField("symbols", symbols).Warn("Correlation import failed, using synthetic fallback")
		return &ImportResult{
			Symbols: symbols,
			Matrix:  c.Synthetic(len(symbols)),
			Source:  SourceSynthetic,
			Notice:  "correlation service unavailable; using estimated correlations",
		}, nil
	}

	return &ImportResult{
		Symbols: symbols,
		Matrix:  matrix,
		Source:  SourceService,
	}, nil
}

// fetch calls the external service and normalizes its response.
func (c *Client) fetch(ctx context.Context, symbols []string) ([][]float64, error) {
	if c.baseURL == "" {
		return nil, errNoBaseURL
	}

	endpoint := fmt.Sprintf("%s/correlations?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, ",")))

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("correlation service returned status %d", resp.StatusCode)
	}

	var payload serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode correlation response: %w", err)
	}

	normalized, err := model.NormalizeMatrix(payload.Matrix, len(symbols))
	if err != nil {
		return nil, fmt.Errorf("correlation response shape: %w", err)
	}

	return normalized, nil
}

// Synthetic generates a plausible correlation matrix: diagonal 1,
// off-diagonal entries drawn in a band around the default correlation and
// clamped to [-1, 1].
func (c *Client) Synthetic(n int) [][]float64 {
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := c.defaultCorr + (c.rng.Float64()*2-1)*syntheticSpread
			if v > 1 {
				v = 1
			}
			if v < -1 {
				v = -1
			}
			matrix[i][j] = v
			matrix[j][i] = v
		}
	}

	return matrix
}
