// Package cleanup sweeps expired activity board posts on an interval.
package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type PostPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Job struct {
	pruner    PostPruner
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewJob(pruner PostPruner, retention, interval time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		pruner:    pruner,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled. It performs one
// sweep immediately so a restart does not delay retention by a full
// interval.
func (j *Job) Start(ctx context.Context) {
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Job) sweep(ctx context.Context) {
	if j.pruner == nil {
		return
	}

	cutoff := j.now().UTC().Add(-j.retention)

	removed, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("hmu cleanup sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("hmu cleanup sweep",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}
}
