// Package preset persists named input presets so the browser toolkit can
// reload a saved set of assets, correlations and assumptions. The compute
// pipeline has no knowledge of presets; this is purely a caller-side
// convenience.
package preset

import (
	"errors"
	"time"

	"github.com/jisoo/quantfolio/internal/model"
)

var (
	ErrNotFound    = errors.New("preset not found")
	ErrInvalidName = errors.New("preset name must not be empty")
)

// Preset is one named, timestamped input record.
type Preset struct {
	Name          string        `json:"name"`
	Assets        []model.Asset `json:"assets"`
	Correlations  [][]float64   `json:"correlations"`
	RiskTolerance float64       `json:"risk_tolerance"`
	RiskFreeRate  float64       `json:"risk_free_rate"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Summary is the listing view of a preset, without the full payload.
type Summary struct {
	Name       string    `json:"name"`
	AssetCount int       `json:"asset_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}
