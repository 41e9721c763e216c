package service_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/solhaus/portal-api/internal/storage"
	"github.com/solhaus/portal-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv wires every service over one in-memory database, the way
// main assembles them for production.
type testEnv struct {
	db *gorm.DB

	leadRepo     *repository.LeadRepository
	quoteRepo    *repository.QuoteRepository
	followUpRepo *repository.FollowUpRepository
	paymentRepo  *repository.PaymentRepository
	orderRepo    *repository.OrderRepository
	contractRepo *repository.ContractRepository
	drawingRepo  *repository.DrawingRepository
	trackingRepo *repository.TrackingRepository

	leads     *service.LeadService
	quotes    *service.QuoteService
	followUps *service.FollowUpService
	contracts *service.ContractService
	drawings  *service.DrawingService
	numbers   *service.NumberSequenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := zap.NewNop()

	queue := notify.NewQueue(notify.NewLogSender(log), log)
	t.Cleanup(queue.Close)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	leadRepo := repository.NewLeadRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contractRepo := repository.NewContractRepository(db)
	drawingRepo := repository.NewDrawingRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)
	seqRepo := repository.NewSequenceRepository(db)

	numbers := service.NewNumberSequenceService(seqRepo, log)

	return &testEnv{
		db:           db,
		leadRepo:     leadRepo,
		quoteRepo:    quoteRepo,
		followUpRepo: followUpRepo,
		paymentRepo:  paymentRepo,
		orderRepo:    orderRepo,
		contractRepo: contractRepo,
		drawingRepo:  drawingRepo,
		trackingRepo: trackingRepo,
		leads:        service.NewLeadService(leadRepo, queue, log),
		quotes:       service.NewQuoteService(quoteRepo, leadRepo, followUpRepo, numbers, queue, log, db),
		followUps:    service.NewFollowUpService(followUpRepo, quoteRepo, leadRepo, queue, log),
		contracts:    service.NewContractService(quoteRepo, contractRepo, paymentRepo, orderRepo, numbers, store, queue, log, db),
		drawings:     service.NewDrawingService(drawingRepo, quoteRepo, orderRepo, trackingRepo, leadRepo, numbers, store, queue, log, db),
		numbers:      numbers,
	}
}

func slidingItem() domain.CreateQuoteItemRequest {
	return domain.CreateQuoteItemRequest{
		ProductKind: "sliding",
		SystemType:  domain.SystemTypeStandard,
		WidthIn:     120,
		HeightIn:    96,
		PanelCount:  3,
		PanelLayout: "XOO",
		GlassType:   "low_e",
	}
}

func newQuoteRequest() *domain.CreateQuoteRequest {
	return &domain.CreateQuoteRequest{
		ClientName:  "Dana Whitfield",
		ClientEmail: "dana@example.com",
		Items:       []domain.CreateQuoteItemRequest{slidingItem()},
	}
}

func (e *testEnv) mustCreateQuote(t *testing.T, req *domain.CreateQuoteRequest) *domain.QuoteDTO {
	t.Helper()
	quote, err := e.quotes.Create(context.Background(), req)
	require.NoError(t, err)
	return quote
}

// sentQuote creates a quote and walks it to sent
func (e *testEnv) sentQuote(t *testing.T) *domain.QuoteDTO {
	t.Helper()
	quote := e.mustCreateQuote(t, newQuoteRequest())
	sent, err := e.quotes.Send(context.Background(), quote.ID)
	require.NoError(t, err)
	return sent
}

// acceptedQuote creates a quote and walks it to accepted
func (e *testEnv) acceptedQuote(t *testing.T) *domain.QuoteDTO {
	t.Helper()
	ctx := context.Background()
	quote := e.sentQuote(t)
	_, err := e.quotes.ClientAccept(ctx, quote.ID)
	require.NoError(t, err)
	accepted, err := e.quotes.ConfirmAcceptance(ctx, quote.ID)
	require.NoError(t, err)
	return accepted
}

func signatureImage() string {
	return base64.StdEncoding.EncodeToString([]byte("signature-png-bytes"))
}
