package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/solhaus/portal-api/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSender fails the first `failures` attempts, then records messages
type stubSender struct {
	mu       sync.Mutex
	failures int
	attempts int
	msgs     []notify.Message
}

func (s *stubSender) Send(ctx context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts <= s.failures {
		return errors.New("delivery refused")
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *stubSender) snapshot() (int, []notify.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts, append([]notify.Message(nil), s.msgs...)
}

func TestQueue(t *testing.T) {
	t.Run("delivers enqueued messages in order", func(t *testing.T) {
		sender := &stubSender{}
		queue := notify.NewQueue(sender, zap.NewNop())

		queue.Enqueue(notify.Message{Event: notify.EventQuoteSent, Subject: "first"})
		queue.Enqueue(notify.Message{Event: notify.EventQuoteViewed, Subject: "second"})
		queue.Close()

		_, msgs := sender.snapshot()
		require.Len(t, msgs, 2)
		assert.Equal(t, "first", msgs[0].Subject)
		assert.Equal(t, "second", msgs[1].Subject)
	})

	t.Run("retries a failed delivery", func(t *testing.T) {
		sender := &stubSender{failures: 2}
		queue := notify.NewQueue(sender, zap.NewNop(),
			notify.WithRetries(3),
			notify.WithBackoff(time.Millisecond))

		queue.Enqueue(notify.Message{Event: notify.EventContractSigned, Subject: "contract"})
		queue.Close()

		attempts, msgs := sender.snapshot()
		assert.Equal(t, 3, attempts)
		require.Len(t, msgs, 1)
		assert.Equal(t, "contract", msgs[0].Subject)
	})

	t.Run("drops a message after exhausting retries", func(t *testing.T) {
		sender := &stubSender{failures: 10}
		queue := notify.NewQueue(sender, zap.NewNop(),
			notify.WithRetries(2),
			notify.WithBackoff(time.Millisecond))

		queue.Enqueue(notify.Message{Event: notify.EventQuoteDeclined, Subject: "declined"})
		queue.Close()

		attempts, msgs := sender.snapshot()
		assert.Equal(t, 2, attempts)
		assert.Empty(t, msgs)
	})

	t.Run("close is idempotent and enqueue after close does not block", func(t *testing.T) {
		sender := &stubSender{}
		queue := notify.NewQueue(sender, zap.NewNop())

		queue.Close()
		queue.Close()
		queue.Enqueue(notify.Message{Event: notify.EventLeadCreated, Subject: "late"})

		_, msgs := sender.snapshot()
		assert.Empty(t, msgs)
	})

	t.Run("enqueue after close never panics", func(t *testing.T) {
		sender := &stubSender{}
		queue := notify.NewQueue(sender, zap.NewNop())
		queue.Close()

		for i := 0; i < 200; i++ {
			assert.NotPanics(t, func() {
				queue.Enqueue(notify.Message{Event: notify.EventQuoteSent})
			})
		}
	})

	t.Run("enqueues racing a close never panic", func(t *testing.T) {
		sender := &stubSender{}
		queue := notify.NewQueue(sender, zap.NewNop())

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					queue.Enqueue(notify.Message{Event: notify.EventQuoteSent})
				}
			}()
		}
		queue.Close()
		wg.Wait()
	})
}

func TestWebhookSender(t *testing.T) {
	t.Run("posts the message as JSON", func(t *testing.T) {
		var got notify.Message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		sender := notify.NewWebhookSender(server.URL)
		err := sender.Send(context.Background(), notify.Message{
			Event:   notify.EventQuoteSent,
			Subject: "Quote Q-2026-001 sent",
		})
		require.NoError(t, err)
		assert.Equal(t, notify.EventQuoteSent, got.Event)
		assert.Equal(t, "Quote Q-2026-001 sent", got.Subject)
	})

	t.Run("a non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		sender := notify.NewWebhookSender(server.URL)
		err := sender.Send(context.Background(), notify.Message{Event: notify.EventQuoteSent})
		assert.Error(t, err)
	})
}
