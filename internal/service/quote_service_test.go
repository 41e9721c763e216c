package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("prices items and computes totals from scratch", func(t *testing.T) {
		env := newTestEnv(t)

		req := newQuoteRequest()
		req.Items = []domain.CreateQuoteItemRequest{slidingItem(), slidingItem()}
		req.IncludeInstallation = true
		req.DeliveryCost = 800

		quote := env.mustCreateQuote(t, req)

		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		assert.Empty(t, quote.QuoteNumber)
		require.Len(t, quote.Items, 2)
		assert.Equal(t, 4200.0, quote.Items[0].ItemTotal)
		assert.Equal(t, 8400.0, quote.Subtotal)
		assert.Equal(t, 1750.0, quote.InstallationCost)
		assert.Equal(t, 800.0, quote.DeliveryCost)
		assert.Equal(t, 876.0, quote.Tax)
		assert.Equal(t, 11826.0, quote.GrandTotal)
		require.NotNil(t, quote.PrimaryItemID)
		assert.Equal(t, quote.Items[0].ID, *quote.PrimaryItemID)
	})

	t.Run("links a known lead and marks it quoted", func(t *testing.T) {
		env := newTestEnv(t)

		lead, err := env.leads.Create(ctx, &domain.CreateLeadRequest{
			Name:  "Dana Whitfield",
			Email: "dana@example.com",
		})
		require.NoError(t, err)

		req := newQuoteRequest()
		req.LeadID = &lead.ID
		quote := env.mustCreateQuote(t, req)

		require.NotNil(t, quote.LeadID)
		assert.Equal(t, lead.ID, *quote.LeadID)

		stored, err := env.leadRepo.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusQuoted, stored.Status)
	})

	t.Run("drops a lead reference that does not resolve", func(t *testing.T) {
		env := newTestEnv(t)

		unknown := uuid.New()
		req := newQuoteRequest()
		req.LeadID = &unknown

		quote := env.mustCreateQuote(t, req)
		assert.Nil(t, quote.LeadID)
	})

	t.Run("defaults the panel count to the smallest admissible", func(t *testing.T) {
		env := newTestEnv(t)

		req := newQuoteRequest()
		req.Items[0].PanelCount = 0
		req.Items[0].PanelLayout = ""

		quote := env.mustCreateQuote(t, req)
		assert.Equal(t, 2, quote.Items[0].PanelCount)
	})

	t.Run("rejects a width no panel count can serve", func(t *testing.T) {
		env := newTestEnv(t)

		req := newQuoteRequest()
		req.Items[0].WidthIn = 50
		req.Items[0].PanelCount = 0
		req.Items[0].PanelLayout = ""

		_, err := env.quotes.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects an inadmissible panel count", func(t *testing.T) {
		env := newTestEnv(t)

		// usable 117 over 4 panels is 29.25, below the 35 minimum
		req := newQuoteRequest()
		req.Items[0].PanelCount = 4
		req.Items[0].PanelLayout = ""

		_, err := env.quotes.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("rejects a layout that does not match the panel count", func(t *testing.T) {
		env := newTestEnv(t)

		req := newQuoteRequest()
		req.Items[0].PanelCount = 2
		req.Items[0].PanelLayout = "OXO"

		_, err := env.quotes.Create(ctx, req)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestQuoteLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("send assigns a quote number and timestamps the transition", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		sent, err := env.quotes.Send(ctx, quote.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.QuoteStatusSent, sent.Status)
		assert.Equal(t, domain.PortalStageQuoteSent, sent.PortalStage)
		assert.Equal(t, fmt.Sprintf("Q-%d-001", time.Now().Year()), sent.QuoteNumber)
		assert.NotEmpty(t, sent.SentAt)
	})

	t.Run("send is rejected from any status but draft", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.quotes.Send(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("viewing records the first open and is idempotent after", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		viewed, err := env.quotes.MarkViewed(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusViewed, viewed.Status)
		assert.NotEmpty(t, viewed.ViewedAt)

		again, err := env.quotes.MarkViewed(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusViewed, again.Status)
	})

	t.Run("viewing a draft changes nothing", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		dto, err := env.quotes.MarkViewed(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDraft, dto.Status)
		assert.Empty(t, dto.ViewedAt)
	})

	t.Run("client accept moves sent or viewed to pending approval", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.quotes.MarkViewed(ctx, quote.ID)
		require.NoError(t, err)

		accepted, err := env.quotes.ClientAccept(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusPendingApproval, accepted.Status)
		assert.Equal(t, domain.PortalStageApprovalPending, accepted.PortalStage)

		// repeating the accept while awaiting confirmation is a no-op
		again, err := env.quotes.ClientAccept(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusPendingApproval, again.Status)
	})

	t.Run("client accept is rejected for a draft", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		_, err := env.quotes.ClientAccept(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("confirmation finalizes acceptance and requests the drawing", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.quotes.ClientAccept(ctx, quote.ID)
		require.NoError(t, err)

		accepted, err := env.quotes.ConfirmAcceptance(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusAccepted, accepted.Status)
		assert.Equal(t, domain.PortalStageDrawingRequested, accepted.PortalStage)
	})

	t.Run("confirmation requires a pending approval", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.quotes.ConfirmAcceptance(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("decline cancels follow-ups and loses the lead", func(t *testing.T) {
		env := newTestEnv(t)

		lead, err := env.leads.Create(ctx, &domain.CreateLeadRequest{
			Name:  "Dana Whitfield",
			Email: "dana@example.com",
		})
		require.NoError(t, err)

		req := newQuoteRequest()
		req.LeadID = &lead.ID
		quote := env.mustCreateQuote(t, req)
		_, err = env.quotes.Send(ctx, quote.ID)
		require.NoError(t, err)

		_, err = env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)

		declined, err := env.quotes.Decline(ctx, quote.ID, "went with a competitor")
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDeclined, declined.Status)

		entries, err := env.followUpRepo.ListByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		for _, entry := range entries {
			assert.Equal(t, domain.FollowUpStatusCancelled, entry.Status)
		}

		stored, err := env.leadRepo.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusLost, stored.Status)

		// declining again changes nothing
		again, err := env.quotes.Decline(ctx, quote.ID, "")
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusDeclined, again.Status)
	})

	t.Run("decline is rejected for a draft", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		_, err := env.quotes.Decline(ctx, quote.ID, "")
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("update status dispatches to the matching transition", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		sent, err := env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusSent)
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteStatusSent, sent.Status)

		_, err = env.quotes.UpdateStatus(ctx, quote.ID, domain.QuoteStatusDraft)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestQuoteUpdateItems(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the item list and recomputes totals", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())

		installation := true
		delivery := 800.0
		updated, err := env.quotes.UpdateItems(ctx, quote.ID, &domain.UpdateQuoteItemsRequest{
			Items:               []domain.CreateQuoteItemRequest{slidingItem(), slidingItem()},
			IncludeInstallation: &installation,
			DeliveryCost:        &delivery,
		})
		require.NoError(t, err)

		require.Len(t, updated.Items, 2)
		assert.Equal(t, 8400.0, updated.Subtotal)
		assert.Equal(t, 1750.0, updated.InstallationCost)
		assert.Equal(t, 876.0, updated.Tax)
		assert.Equal(t, 11826.0, updated.GrandTotal)
		require.NotNil(t, updated.PrimaryItemID)
		assert.Equal(t, updated.Items[0].ID, *updated.PrimaryItemID)
	})

	t.Run("recomputation is idempotent for an unchanged list", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.mustCreateQuote(t, newQuoteRequest())
		req := &domain.UpdateQuoteItemsRequest{
			Items: []domain.CreateQuoteItemRequest{slidingItem()},
		}

		first, err := env.quotes.UpdateItems(ctx, quote.ID, req)
		require.NoError(t, err)
		second, err := env.quotes.UpdateItems(ctx, quote.ID, req)
		require.NoError(t, err)

		assert.Equal(t, first.Subtotal, second.Subtotal)
		assert.Equal(t, first.Tax, second.Tax)
		assert.Equal(t, first.GrandTotal, second.GrandTotal)
	})

	t.Run("is rejected once the acceptance flow locks the quote", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.quotes.ClientAccept(ctx, quote.ID)
		require.NoError(t, err)

		_, err = env.quotes.UpdateItems(ctx, quote.ID, &domain.UpdateQuoteItemsRequest{
			Items: []domain.CreateQuoteItemRequest{slidingItem()},
		})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}
