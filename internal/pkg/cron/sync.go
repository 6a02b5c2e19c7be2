package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
)

const JobRetryFailedSyncs = "retry_failed_vendor_syncs"

// SyncJobs re-mirrors worksheet rows whose push to the HR platform failed.
type SyncJobs struct {
	compensationSvc compensation.CompensationService
	interval        time.Duration
}

func NewSyncJobs(compensationSvc compensation.CompensationService, interval time.Duration) *SyncJobs {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &SyncJobs{
		compensationSvc: compensationSvc,
		interval:        interval,
	}
}

func (j *SyncJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobRetryFailedSyncs, j.interval, j.RetryFailedSyncs)
}

func (j *SyncJobs) RetryFailedSyncs(ctx context.Context) error {
	return j.compensationSvc.RetryFailedSyncs(ctx)
}
