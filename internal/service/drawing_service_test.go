package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signDrawingRequest() *domain.SignDrawingRequest {
	return &domain.SignDrawingRequest{
		CustomerName:   "Dana Whitfield",
		SignatureImage: signatureImage(),
	}
}

func TestDrawingCreateForQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds the draft from the primary item", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.DrawingStatusDraft, drawing.Status)
		assert.Equal(t, 120.0, drawing.OverallWidth)
		assert.Equal(t, 96.0, drawing.OverallHeight)
		assert.Equal(t, 3, drawing.PanelCount)
		assert.Equal(t, domain.SlideDirectionLeft, drawing.SlideDir)
	})

	t.Run("requires an existing quote", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.drawings.CreateForQuote(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)
	})

	t.Run("the latest drawing is the active one", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		_, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		second, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		active, err := env.drawings.GetActive(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, active.ID)
	})
}

func TestDrawingUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors edits into the quote and re-prices", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		width := 150.0
		color := "bronze"
		updated, err := env.drawings.Update(ctx, drawing.ID, &domain.UpdateDrawingRequest{
			OverallWidth: &width,
			FrameColor:   &color,
		})
		require.NoError(t, err)
		assert.Equal(t, 150.0, updated.OverallWidth)
		assert.Equal(t, "bronze", updated.FrameColor)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, `150" x 96"`, reloaded.Size)
		assert.Equal(t, "bronze", reloaded.Color)

		primary := reloaded.PrimaryItem()
		require.NotNil(t, primary)
		assert.Equal(t, 150.0, primary.WidthIn)
		assert.Equal(t, "bronze", primary.ExteriorFinish)
	})

	t.Run("rejects a panel count the width cannot carry", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		// width 120 admits counts 2 and 3 only
		count := 5
		_, err = env.drawings.Update(ctx, drawing.ID, &domain.UpdateDrawingRequest{
			PanelCount: &count,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		primary := reloaded.PrimaryItem()
		require.NotNil(t, primary)
		assert.Equal(t, 3, primary.PanelCount)
	})

	t.Run("clears a layout the new panel count invalidates", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		count := 2
		updated, err := env.drawings.Update(ctx, drawing.ID, &domain.UpdateDrawingRequest{
			PanelCount: &count,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.PanelCount)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		primary := reloaded.PrimaryItem()
		require.NotNil(t, primary)
		assert.Equal(t, 2, primary.PanelCount)
		assert.Empty(t, primary.PanelLayout)
	})

	t.Run("rejects dimensions the product cannot be built at", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		width := 600.0
		_, err = env.drawings.Update(ctx, drawing.ID, &domain.UpdateDrawingRequest{
			OverallWidth: &width,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDrawingSign(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects signing before the drawing is sent", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)

		_, err = env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		assert.ErrorIs(t, err, service.ErrDrawingNotSent)
	})

	t.Run("creates order and tracking on the first signature", func(t *testing.T) {
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
		_, err = env.quotes.ClientAccept(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.quotes.ConfirmAcceptance(ctx, quote.ID)
		require.NoError(t, err)

		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)

		resp, err := env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)

		require.NotNil(t, resp.Drawing)
		assert.Equal(t, domain.DrawingStatusSigned, resp.Drawing.Status)
		assert.Equal(t, "Dana Whitfield", resp.Drawing.CustomerName)
		assert.NotEmpty(t, resp.Drawing.SignedAt)

		require.NotNil(t, resp.Order)
		assert.NotEmpty(t, resp.Order.OrderNumber)

		require.NotNil(t, resp.Tracking)
		assert.Equal(t, domain.TrackingStageDeposit1Pending, resp.Tracking.Stage)
		// each deposit is half of 4536.00 (4200 subtotal plus 8% tax)
		assert.Equal(t, 2268.0, resp.Tracking.Deposit1Amount)
		assert.Equal(t, 2268.0, resp.Tracking.Deposit2Amount)
		require.NotNil(t, resp.Tracking.OrderID)
		assert.Equal(t, resp.Order.ID, *resp.Tracking.OrderID)

		reloaded, err := env.quoteRepo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PortalStageDeposit1Pending, reloaded.PortalStage)

		stored, err := env.leadRepo.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusOrder, stored.Status)

		tracking, err := env.drawings.GetTracking(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.Tracking.ID, tracking.ID)
	})

	t.Run("re-signing is a silent no-op", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)
		first, err := env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)

		again, err := env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.DrawingStatusSigned, again.Drawing.Status)
		assert.Nil(t, again.Order)

		order, err := env.orderRepo.GetByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, first.Order.ID, order.ID)
	})

	t.Run("reuses the order created by the contract path", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		contract, err := env.contracts.SignContract(ctx, quote.ID, signContractRequest(), "", "")
		require.NoError(t, err)

		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)

		resp, err := env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)
		assert.Equal(t, contract.Order.OrderNumber, resp.Order.OrderNumber)
	})

	t.Run("a signed drawing is frozen", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		drawing, err := env.drawings.CreateForQuote(ctx, quote.ID)
		require.NoError(t, err)
		_, err = env.drawings.Send(ctx, drawing.ID)
		require.NoError(t, err)
		_, err = env.drawings.Sign(ctx, drawing.ID, signDrawingRequest())
		require.NoError(t, err)

		color := "black"
		_, err = env.drawings.Update(ctx, drawing.ID, &domain.UpdateDrawingRequest{FrameColor: &color})
		assert.ErrorIs(t, err, service.ErrDrawingFrozen)

		_, err = env.drawings.Send(ctx, drawing.ID)
		assert.ErrorIs(t, err, service.ErrDrawingFrozen)
	})

	t.Run("tracking lookup before any signature reports no order", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.acceptedQuote(t)
		_, err := env.drawings.GetTracking(ctx, quote.ID)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})
}
