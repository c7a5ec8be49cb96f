package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// MinAssets is the smallest universe the optimizer can work with.
const MinAssets = 2

// DefaultCorrelation is the pairwise correlation assigned to newly created
// asset pairs when the matrix is resized.
const DefaultCorrelation = 0.4

var (
	ErrDuplicateAsset   = errors.New("asset symbol already exists")
	ErrMinimumAssets    = errors.New("universe requires at least 2 assets")
	ErrUnknownAsset     = errors.New("asset not found")
	ErrInvalidAsset     = errors.New("invalid asset parameters")
	ErrMatrixShape      = errors.New("correlation matrix shape does not match asset count")
	ErrIndexOutOfRange  = errors.New("correlation index out of range")
)

// Asset describes one investable asset. ExpectedReturn and Volatility are
// annualized percents (12.0 means 12%/yr).
type Asset struct {
	Symbol         string  `json:"symbol"`
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
}

// Snapshot is an immutable copy of the universe taken for one computation.
// In-flight computations never observe later edits.
type Snapshot struct {
	Assets       []Asset     `json:"assets"`
	Correlations [][]float64 `json:"correlations"`
}

// Universe holds the asset list and the pairwise correlation matrix, and
// maintains their invariants: diagonal fixed at 1, symmetric writes, every
// off-diagonal entry clamped to [-1, 1], matrix size equal to asset count.
type Universe struct {
	mu          sync.RWMutex
	assets      []Asset
	matrix      [][]float64
	defaultCorr float64
}

// NewUniverse creates an empty universe. defaultCorr seeds new correlation
// pairs when the matrix grows; passing 0 uses DefaultCorrelation.
func NewUniverse(defaultCorr float64) *Universe {
	if defaultCorr == 0 {
		defaultCorr = DefaultCorrelation
	}
	return &Universe{defaultCorr: clamp(defaultCorr)}
}

// NewUniverseWith creates a universe pre-populated with assets. Pairwise
// correlations start at the default.
func NewUniverseWith(defaultCorr float64, assets ...Asset) (*Universe, error) {
	u := NewUniverse(defaultCorr)
	for _, a := range assets {
		if err := u.AddAsset(a.Symbol, a.ExpectedReturn, a.Volatility); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// AddAsset appends an asset. Symbols are case-insensitive unique and stored
// upper-cased.
func (u *Universe) AddAsset(symbol string, expectedReturn, volatility float64) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidAsset)
	}
	if volatility < 0 {
		return fmt.Errorf("%w: negative volatility", ErrInvalidAsset)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.indexOf(symbol) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, symbol)
	}

	u.assets = append(u.assets, Asset{
		Symbol:         symbol,
		ExpectedReturn: expectedReturn,
		Volatility:     volatility,
	})
	u.resizeMatrix()

	return nil
}

// UpdateAsset replaces the return/volatility of an existing asset.
func (u *Universe) UpdateAsset(symbol string, expectedReturn, volatility float64) error {
	if volatility < 0 {
		return fmt.Errorf("%w: negative volatility", ErrInvalidAsset)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	idx := u.indexOf(normalizeSymbol(symbol))
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}

	u.assets[idx].ExpectedReturn = expectedReturn
	u.assets[idx].Volatility = volatility
	return nil
}

// RemoveAsset deletes an asset. Fails if fewer than MinAssets would remain,
// since the optimizer is not applicable below that.
func (u *Universe) RemoveAsset(symbol string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	idx := u.indexOf(normalizeSymbol(symbol))
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownAsset, symbol)
	}
	if len(u.assets)-1 < MinAssets {
		return fmt.Errorf("%w: have %d", ErrMinimumAssets, len(u.assets))
	}

	u.assets = append(u.assets[:idx], u.assets[idx+1:]...)

	// Drop the row and column for idx, keeping every surviving pair.
	next := make([][]float64, len(u.assets))
	for i := range next {
		next[i] = make([]float64, len(u.assets))
		oi := i
		if oi >= idx {
			oi++
		}
		for j := range next[i] {
			oj := j
			if oj >= idx {
				oj++
			}
			next[i][j] = u.matrix[oi][oj]
		}
	}
	u.matrix = next

	return nil
}

// SetCorrelation writes a pairwise correlation, mirrored to both cells and
// clamped to [-1, 1]. Diagonal writes are ignored; the diagonal stays 1.
func (u *Universe) SetCorrelation(i, j int, value float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	n := len(u.assets)
	if i < 0 || j < 0 || i >= n || j >= n {
		return fmt.Errorf("%w: (%d, %d) with %d assets", ErrIndexOutOfRange, i, j, n)
	}
	if i == j {
		return nil
	}

	v := clamp(value)
	u.matrix[i][j] = v
	u.matrix[j][i] = v
	return nil
}

// ReplaceCorrelations bulk-replaces the matrix, e.g. from an external
// correlation import. The input must be square with size equal to the asset
// count; entries are normalized (clamped, mirrored from the upper triangle,
// diagonal forced to 1).
func (u *Universe) ReplaceCorrelations(matrix [][]float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	normalized, err := NormalizeMatrix(matrix, len(u.assets))
	if err != nil {
		return err
	}

	u.matrix = normalized
	return nil
}

// Correlation reads one matrix entry.
func (u *Universe) Correlation(i, j int) (float64, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	n := len(u.assets)
	if i < 0 || j < 0 || i >= n || j >= n {
		return 0, fmt.Errorf("%w: (%d, %d) with %d assets", ErrIndexOutOfRange, i, j, n)
	}
	return u.matrix[i][j], nil
}

// Count returns the number of assets.
func (u *Universe) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.assets)
}

// Snapshot returns a deep copy of the current assets and correlations.
func (u *Universe) Snapshot() Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	assets := make([]Asset, len(u.assets))
	copy(assets, u.assets)

	matrix := make([][]float64, len(u.matrix))
	for i, row := range u.matrix {
		matrix[i] = make([]float64, len(row))
		copy(matrix[i], row)
	}

	return Snapshot{Assets: assets, Correlations: matrix}
}

// resizeMatrix grows the matrix to the current asset count, preserving
// existing pairs and seeding new pairs with the default. Caller holds the
// write lock.
func (u *Universe) resizeMatrix() {
	n := len(u.assets)
	next := make([][]float64, n)
	for i := range next {
		next[i] = make([]float64, n)
		for j := range next[i] {
			switch {
			case i == j:
				next[i][j] = 1
			case i < len(u.matrix) && j < len(u.matrix[i]):
				next[i][j] = u.matrix[i][j]
			default:
				next[i][j] = u.defaultCorr
			}
		}
	}
	u.matrix = next
}

// indexOf returns the position of a normalized symbol, or -1. Caller holds a
// lock.
func (u *Universe) indexOf(symbol string) int {
	for i, a := range u.assets {
		if a.Symbol == symbol {
			return i
		}
	}
	return -1
}

// NormalizeMatrix validates an n-by-n correlation matrix and returns a copy
// with entries clamped to [-1, 1], the lower triangle mirrored from the
// upper, and the diagonal forced to 1.
func NormalizeMatrix(matrix [][]float64, n int) ([][]float64, error) {
	if len(matrix) != n {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrMatrixShape, len(matrix), n)
	}
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrMatrixShape, i, len(row), n)
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		out[i][i] = 1
		for j := i + 1; j < n; j++ {
			v := clamp(matrix[i][j])
			out[i][j] = v
			out[j][i] = v
		}
	}
	return out, nil
}

// Validate checks the snapshot invariants the computation pipeline relies
// on. Positive semi-definiteness is deliberately not checked; a slightly
// inconsistent matrix degrades to clamped variance downstream.
func (s Snapshot) Validate() error {
	n := len(s.Assets)
	if len(s.Correlations) != n {
		return fmt.Errorf("%w: got %d rows, want %d", ErrMatrixShape, len(s.Correlations), n)
	}
	for i, row := range s.Correlations {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrMatrixShape, i, len(row), n)
		}
	}
	return nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
