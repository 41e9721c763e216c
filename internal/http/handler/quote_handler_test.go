package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solhaus/portal-api/internal/domain"
	"github.com/solhaus/portal-api/internal/http/handler"
	"github.com/solhaus/portal-api/internal/notify"
	"github.com/solhaus/portal-api/internal/repository"
	"github.com/solhaus/portal-api/internal/service"
	"github.com/solhaus/portal-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQuoteRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := zap.NewNop()
	queue := notify.NewQueue(notify.NewLogSender(log), log)
	t.Cleanup(queue.Close)

	leadRepo := repository.NewLeadRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	followUpRepo := repository.NewFollowUpRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	numbers := service.NewNumberSequenceService(seqRepo, log)

	quotes := service.NewQuoteService(quoteRepo, leadRepo, followUpRepo, numbers, queue, log, db)
	followUps := service.NewFollowUpService(followUpRepo, quoteRepo, leadRepo, queue, log)

	h := handler.NewQuoteHandler(quotes, followUps, log)
	r := chi.NewRouter()
	r.Route("/quotes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Post("/{id}/send", h.Send)
		r.Post("/{id}/accept", h.ClientAccept)
		r.Post("/{id}/decline", h.Decline)
	})
	return r
}

func createQuoteBody() []byte {
	body, _ := json.Marshal(domain.CreateQuoteRequest{
		ClientName:  "Dana Whitfield",
		ClientEmail: "dana@example.com",
		Items: []domain.CreateQuoteItemRequest{{
			ProductKind: "sliding",
			WidthIn:     120,
			HeightIn:    96,
			PanelCount:  3,
			PanelLayout: "XOO",
			GlassType:   "low_e",
		}},
	})
	return body
}

func postJSON(t *testing.T, router http.Handler, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQuoteHandlerCreate(t *testing.T) {
	t.Run("creates a draft quote with computed totals", func(t *testing.T) {
		router := newQuoteRouter(t)

		rec := postJSON(t, router, "/quotes", createQuoteBody())
		require.Equal(t, http.StatusCreated, rec.Code)

		var quote domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
		assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
		assert.Equal(t, 4200.0, quote.Subtotal)
		assert.Equal(t, 336.0, quote.Tax)
		assert.Equal(t, 4536.0, quote.GrandTotal)
		assert.Equal(t, fmt.Sprintf("/api/v1/quotes/%s", quote.ID), rec.Header().Get("Location"))
	})

	t.Run("rejects a request without required client fields", func(t *testing.T) {
		router := newQuoteRouter(t)

		body, _ := json.Marshal(domain.CreateQuoteRequest{
			Items: []domain.CreateQuoteItemRequest{{
				ProductKind: "sliding",
				WidthIn:     120,
				HeightIn:    96,
			}},
		})
		rec := postJSON(t, router, "/quotes", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an unconfigurable item", func(t *testing.T) {
		router := newQuoteRouter(t)

		body, _ := json.Marshal(domain.CreateQuoteRequest{
			ClientName:  "Dana Whitfield",
			ClientEmail: "dana@example.com",
			Items: []domain.CreateQuoteItemRequest{{
				ProductKind: "sliding",
				WidthIn:     50,
				HeightIn:    96,
			}},
		})
		rec := postJSON(t, router, "/quotes", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestQuoteHandlerLifecycle(t *testing.T) {
	t.Run("send assigns a quote number and repeat send conflicts", func(t *testing.T) {
		router := newQuoteRouter(t)

		rec := postJSON(t, router, "/quotes", createQuoteBody())
		require.Equal(t, http.StatusCreated, rec.Code)
		var quote domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))

		rec = postJSON(t, router, fmt.Sprintf("/quotes/%s/send", quote.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var sent domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
		assert.Equal(t, domain.QuoteStatusSent, sent.Status)
		assert.NotEmpty(t, sent.QuoteNumber)

		rec = postJSON(t, router, fmt.Sprintf("/quotes/%s/send", quote.ID), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("decline with a reason body", func(t *testing.T) {
		router := newQuoteRouter(t)

		rec := postJSON(t, router, "/quotes", createQuoteBody())
		require.Equal(t, http.StatusCreated, rec.Code)
		var quote domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))

		rec = postJSON(t, router, fmt.Sprintf("/quotes/%s/send", quote.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		reason, _ := json.Marshal(domain.DeclineQuoteRequest{Reason: "went with a competitor"})
		rec = postJSON(t, router, fmt.Sprintf("/quotes/%s/decline", quote.ID), reason)
		require.Equal(t, http.StatusOK, rec.Code)

		var declined domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &declined))
		assert.Equal(t, domain.QuoteStatusDeclined, declined.Status)
	})

	t.Run("unknown quote id maps to not found", func(t *testing.T) {
		router := newQuoteRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/quotes/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("accepting a draft conflicts", func(t *testing.T) {
		router := newQuoteRouter(t)

		rec := postJSON(t, router, "/quotes", createQuoteBody())
		require.Equal(t, http.StatusCreated, rec.Code)
		var quote domain.QuoteDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))

		rec = postJSON(t, router, fmt.Sprintf("/quotes/%s/accept", quote.ID), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
