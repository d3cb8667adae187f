package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/logger"
)

const defaultCartRetention = 30 * 24 * time.Hour

type snapshotPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type prunedObserver interface {
	AddPruned(n int64)
}

type CartRetentionJobParams struct {
	Logger    *logger.Logger
	Storage   snapshotPruner
	Metrics   prunedObserver
	Retention time.Duration
}

// NewCartRetentionJob deletes stored carts that were not written for longer
// than the retention period.
func NewCartRetentionJob(params CartRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultCartRetention
	}
	return &cartRetentionJob{
		logg:      params.Logger,
		storage:   params.Storage,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type cartRetentionJob struct {
	logg      *logger.Logger
	storage   snapshotPruner
	metrics   prunedObserver
	retention time.Duration
	now       func() time.Time
}

func (j *cartRetentionJob) Name() string { return "cart-retention" }

func (j *cartRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cart retention: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddPruned(deleted)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"retention":    j.retention.String(),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "cart retention complete")
	return nil
}
