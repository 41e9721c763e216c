package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FollowUpJobName is the name of the follow-up dispatch job
const FollowUpJobName = "followup_dispatch"

// FollowUpDispatcher dispatches due follow-up reminders. The interface
// lets the job call the service without importing the service package.
type FollowUpDispatcher interface {
	// DispatchDue sends every pending reminder whose scheduled time has
	// passed and returns how many were dispatched.
	DispatchDue(ctx context.Context, now time.Time) (int, error)
}

// FollowUpJob periodically dispatches due follow-up reminders.
type FollowUpJob struct {
	dispatcher FollowUpDispatcher
	logger     *zap.Logger
	timeout    time.Duration
}

// NewFollowUpJob creates a new follow-up dispatch job.
func NewFollowUpJob(dispatcher FollowUpDispatcher, logger *zap.Logger, timeout time.Duration) *FollowUpJob {
	return &FollowUpJob{
		dispatcher: dispatcher,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes one dispatch pass. Called by the scheduler.
func (j *FollowUpJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	dispatched, err := j.dispatcher.DispatchDue(ctx, start.UTC())
	if err != nil {
		j.logger.Error("follow-up dispatch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if dispatched > 0 {
		j.logger.Info("follow-up dispatch completed",
			zap.Int("dispatched", dispatched),
			zap.Duration("duration", time.Since(start)))
	}
}
