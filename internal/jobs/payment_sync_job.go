package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PaymentSyncJobName is the name of the settlement sync job
const PaymentSyncJobName = "payment_sync"

// PaymentSyncer reconciles pending payments against the settlement ledger.
type PaymentSyncer interface {
	// SyncSettled marks settled payments completed and returns how many.
	SyncSettled(ctx context.Context) (int, error)
}

// PaymentSyncJob periodically reconciles pending payments against the
// external settlement ledger.
type PaymentSyncJob struct {
	syncer  PaymentSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewPaymentSyncJob creates a new settlement sync job.
func NewPaymentSyncJob(syncer PaymentSyncer, logger *zap.Logger, timeout time.Duration) *PaymentSyncJob {
	return &PaymentSyncJob{
		syncer:  syncer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reconciliation pass. Called by the scheduler.
func (j *PaymentSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	completed, err := j.syncer.SyncSettled(ctx)
	if err != nil {
		j.logger.Error("payment settlement sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if completed > 0 {
		j.logger.Info("payment settlement sync completed",
			zap.Int("payments_completed", completed),
			zap.Duration("duration", time.Since(start)))
	}
}
