// Package jobs contains the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jisoo/quantfolio/internal/correlations"
	"github.com/jisoo/quantfolio/internal/preset"
	"github.com/jisoo/quantfolio/pkg/logger"
	"github.com/jisoo/quantfolio/pkg/redis"
)

// CorrelationRefreshJob periodically re-imports correlation matrices for
// every saved preset's symbol set and caches them, so the UI sees fresh
// service data without waiting on the external call.
type CorrelationRefreshJob struct {
	client   *correlations.Client
	presets  *preset.Repository
	cache    *redis.Cache
	schedule string
	logger   *logger.Logger
}

// NewCorrelationRefreshJob creates the job. presets may be nil when
// persistence is disabled, in which case the job is a no-op.
func NewCorrelationRefreshJob(
	client *correlations.Client,
	presets *preset.Repository,
	cache *redis.Cache,
	schedule string,
	log *logger.Logger,
) *CorrelationRefreshJob {
	return &CorrelationRefreshJob{
		client:   client,
		presets:  presets,
		cache:    cache,
		schedule: schedule,
		logger:   log.WithComponent("correlation-refresh"),
	}
}

// Name implements scheduler.Job.
func (j *CorrelationRefreshJob) Name() string {
	return "correlation-refresh"
}

// Schedule implements scheduler.Job.
func (j *CorrelationRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes the correlation matrix for every saved preset.
func (j *CorrelationRefreshJob) Run(ctx context.Context) error {
	if j.presets == nil {
		j.logger.Debug("Preset persistence disabled, nothing to refresh")
		return nil
	}

	summaries, err := j.presets.List(ctx)
	if err != nil {
		return fmt.Errorf("list presets: %w", err)
	}

	refreshed := 0
	synthetic := 0
	for _, summary := range summaries {
		p, err := j.presets.Get(ctx, summary.Name)
		if err != nil {
			j.logger.WithError(err).WithField("preset", summary.Name).Warn("Failed to load preset")
			continue
		}
		if len(p.Assets) < 2 {
			continue
		}

		symbols := make([]string, len(p.Assets))
		for i, a := range p.Assets {
			symbols[i] = a.Symbol
		}

		result, err := j.client.Import(ctx, symbols)
		if err != nil {
			j.logger.WithError(err).WithField("preset", summary.Name).Warn("Correlation import failed")
			continue
		}
		if result.Source == correlations.SourceSynthetic {
			synthetic++
			continue // do not overwrite the cache with synthetic data
		}

		key := fmt.Sprintf("correlations:%s", summary.Name)
		if err := j.cache.Set(ctx, key, result, 24*time.Hour); err != nil {
			j.logger.WithError(err).WithField("preset", summary.Name).Warn("Failed to cache correlations")
			continue
		}
		refreshed++
	}

	j.logger.WithFields(map[string]interface{}{
		"presets":   len(summaries),
		"refreshed": refreshed,
		"synthetic": synthetic,
	}).Info("Correlation refresh completed")

	return nil
}
