package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/pipeline"
	"github.com/wonny/breakwatch/pkg/logger"
)

// Refresher is the part of the pipeline the refresh job drives
type Refresher interface {
	Run(ctx context.Context, req pipeline.Request) (*contracts.Snapshot, error)
}

// RefreshJob runs one pipeline refresh per tick
// ⭐ SSOT: the periodic refresh is scheduled only through this job
type RefreshJob struct {
	refresher Refresher
	group     string
	interval  time.Duration
	logger    *logger.Logger
}

// NewRefreshJob creates a refresh job for group every interval
func NewRefreshJob(r Refresher, group string, interval time.Duration, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: r,
		group:     group,
		interval:  interval,
		logger:    log.Component("refresh_job"),
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one refresh
func (j *RefreshJob) Run(ctx context.Context) error {
	snapshot, err := j.refresher.Run(ctx, pipeline.Request{Group: j.group})
	if err != nil {
		return fmt.Errorf("refresh %s: %w", j.group, err)
	}

	if snapshot.IsEmpty() {
		j.logger.WithField("group", snapshot.Group).Warn("Refresh produced no data")
	}
	return nil
}
