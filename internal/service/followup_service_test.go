package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUpSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to three reminders four days apart", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		before := time.Now().UTC()
		entries, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)
		require.Len(t, entries, 3)

		stored, err := env.followUpRepo.ListByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, stored, 3)
		for i, entry := range stored {
			assert.Equal(t, i+1, entry.SequenceNumber)
			assert.Equal(t, domain.FollowUpStatusPending, entry.Status)

			expected := before.AddDate(0, 0, 4*(i+1))
			assert.WithinDuration(t, expected, entry.ScheduledFor, time.Minute)
		}
	})

	t.Run("honors a custom interval and count", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		entries, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{
			IntervalDays: 7,
			Count:        2,
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("rejects a second batch while one is pending", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)

		_, err = env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		assert.ErrorIs(t, err, service.ErrFollowUpsPending)
	})

	t.Run("drops a lead reference that does not resolve", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		unknown := uuid.New()
		entries, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{
			LeadID: &unknown,
		})
		require.NoError(t, err)
		for _, entry := range entries {
			assert.Nil(t, entry.LeadID)
		}
	})

	t.Run("falls back to the quote's lead when none is given", func(t *testing.T) {
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

		entries, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)
		for _, entry := range entries {
			require.NotNil(t, entry.LeadID)
			assert.Equal(t, lead.ID, *entry.LeadID)
		}
	})

	t.Run("requires an existing quote", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.followUps.Schedule(ctx, uuid.New(), &domain.ScheduleFollowUpsRequest{})
		assert.ErrorIs(t, err, service.ErrQuoteNotFound)
	})
}

func TestFollowUpDispatchDue(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and marks every reminder whose time has passed", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)

		// nothing is due yet
		count, err := env.followUps.DispatchDue(ctx, time.Now().UTC())
		require.NoError(t, err)
		assert.Zero(t, count)

		// nine days out, the first two reminders are due
		count, err = env.followUps.DispatchDue(ctx, time.Now().UTC().AddDate(0, 0, 9))
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		stored, err := env.followUpRepo.ListByQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.Len(t, stored, 3)
		assert.Equal(t, domain.FollowUpStatusSent, stored[0].Status)
		assert.Equal(t, domain.FollowUpStatusSent, stored[1].Status)
		assert.Equal(t, domain.FollowUpStatusPending, stored[2].Status)
	})

	t.Run("dispatched reminders are not sent twice", func(t *testing.T) {
		env := newTestEnv(t)

		quote := env.sentQuote(t)
		_, err := env.followUps.Schedule(ctx, quote.ID, &domain.ScheduleFollowUpsRequest{})
		require.NoError(t, err)

		future := time.Now().UTC().AddDate(0, 0, 30)
		count, err := env.followUps.DispatchDue(ctx, future)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		count, err = env.followUps.DispatchDue(ctx, future)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
