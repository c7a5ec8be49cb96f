package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles preset persistence. Asset lists and correlation
// matrices are stored as JSONB payloads keyed by preset name.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a preset repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the presets table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS presets (
			name           TEXT PRIMARY KEY,
			assets         JSONB NOT NULL,
			correlations   JSONB NOT NULL,
			risk_tolerance DOUBLE PRECISION NOT NULL,
			risk_free_rate DOUBLE PRECISION NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create presets table: %w", err)
	}
	return nil
}

// Save upserts a preset by name and refreshes its updated_at timestamp.
func (r *Repository) Save(ctx context.Context, p *Preset) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrInvalidName
	}

	assets, err := json.Marshal(p.Assets)
	if err != nil {
		return fmt.Errorf("failed to marshal assets: %w", err)
	}
	correlations, err := json.Marshal(p.Correlations)
	if err != nil {
		return fmt.Errorf("failed to marshal correlations: %w", err)
	}

	query := `
		INSERT INTO presets (name, assets, correlations, risk_tolerance, risk_free_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			assets = EXCLUDED.assets,
			correlations = EXCLUDED.correlations,
			risk_tolerance = EXCLUDED.risk_tolerance,
			risk_free_rate = EXCLUDED.risk_free_rate,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, name, assets, correlations, p.RiskTolerance, p.RiskFreeRate); err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}

	return nil
}

// Get loads one preset by name.
func (r *Repository) Get(ctx context.Context, name string) (*Preset, error) {
	query := `
		SELECT name, assets, correlations, risk_tolerance, risk_free_rate, created_at, updated_at
		FROM presets
		WHERE name = $1
	`

	var p Preset
	var assets, correlations []byte

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(name))
	err := row.Scan(&p.Name, &assets, &correlations, &p.RiskTolerance, &p.RiskFreeRate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}

	if err := json.Unmarshal(assets, &p.Assets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assets: %w", err)
	}
	if err := json.Unmarshal(correlations, &p.Correlations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal correlations: %w", err)
	}

	return &p, nil
}

// List returns summaries of all presets, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT name, jsonb_array_length(assets), updated_at
		FROM presets
		ORDER BY updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Name, &s.AssetCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preset summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Delete removes a preset by name.
func (r *Repository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM presets WHERE name = $1", strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
