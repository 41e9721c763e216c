package service_test

import (
	"context"
	"testing"

	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLedger settles exactly the references it was seeded with
type fakeLedger struct {
	settled map[string]bool
	queried []string
}

func (f *fakeLedger) SettledRefs(ctx context.Context, refs []string) ([]string, error) {
	f.queried = append(f.queried, refs...)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if f.settled[ref] {
			out = append(out, ref)
		}
	}
	return out, nil
}

func newPaymentSync(t *testing.T, env *testEnv, ledger service.SettlementSource) *service.PaymentSyncService {
	t.Helper()
	log := zap.NewNop()
	queue := notify.NewQueue(notify.NewLogSender(log), log)
	t.Cleanup(queue.Close)
	return service.NewPaymentSyncService(env.paymentRepo, env.trackingRepo, env.quoteRepo, ledger, queue, log)
}

func TestPaymentSyncSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("completes settled payments and moves the order into production", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		contract, err := env.contracts.SignContract(ctx, quote.ID, signContractRequest(), "", "")
		require.NoError(t, err)

		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)
		_, err = env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)

		advanceRef := contract.Order.OrderNumber + "-D1"
		ledger := &fakeLedger{settled: map[string]bool{advanceRef: true}}
		sync := newPaymentSync(t, env, ledger)

		completed, err := sync.SyncSettled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, completed)
		assert.Contains(t, ledger.queried, advanceRef)

		advance, err := env.paymentRepo.GetByQuoteAndType(ctx, quote.ID, domain.PaymentTypeAdvance)
		require.NoError(t, err)
		require.NotNil(t, advance)
		assert.Equal(t, domain.PaymentStatusCompleted, advance.Status)

		tracking, err := env.trackingRepo.GetByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.NotNil(t, tracking)
		assert.Equal(t, domain.TrackingStageInProduction, tracking.Stage)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PortalStageInProduction, reloaded.PortalStage)
	})

	t.Run("a settled balance completes the order", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		contract, err := env.contracts.SignContract(ctx, quote.ID, signContractRequest(), "", "")
		require.NoError(t, err)

		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)
		_, err = env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)

		require.NoError(t, env.paymentRepo.UpdateStatus(ctx, contract.Payment.ID, domain.PaymentStatusCompleted))
		_, err = env.contracts.CreateBalancePayment(ctx, quote.ID)
		require.NoError(t, err)

		balanceRef := contract.Order.OrderNumber + "-D2"
		ledger := &fakeLedger{settled: map[string]bool{balanceRef: true}}
		sync := newPaymentSync(t, env, ledger)

		completed, err := sync.SyncSettled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, completed)

		tracking, err := env.trackingRepo.GetByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.NotNil(t, tracking)
		assert.Equal(t, domain.TrackingStageComplete, tracking.Stage)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PortalStageComplete, reloaded.PortalStage)
	})

	t.Run("unsettled references are left pending", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		_, err := env.contracts.SignContract(ctx, quote.ID, signContractRequest(), "", "")
		require.NoError(t, err)

		ledger := &fakeLedger{}
		sync := newPaymentSync(t, env, ledger)

		completed, err := sync.SyncSettled(ctx)
		require.NoError(t, err)
		assert.Zero(t, completed)

		advance, err := env.paymentRepo.GetByQuoteAndType(ctx, quote.ID, domain.PaymentTypeAdvance)
		require.NoError(t, err)
		require.NotNil(t, advance)
		assert.Equal(t, domain.PaymentStatusPending, advance.Status)
	})

	t.Run("no pending payments means no ledger query", func(t *testing.T) {
		env := newTestEnv(t)

		ledger := &fakeLedger{}
		sync := newPaymentSync(t, env, ledger)

		completed, err := sync.SyncSettled(ctx)
		require.NoError(t, err)
		assert.Zero(t, completed)
		assert.Empty(t, ledger.queried)
	})
}
