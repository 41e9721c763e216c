package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Event identifies what happened in the workflow
type Event string

const (
	EventQuoteSent      Event = "quote.sent"
	EventQuoteViewed    Event = "quote.viewed"
	EventQuoteAccepted  Event = "quote.accepted"
	EventQuoteDeclined  Event = "quote.declined"
	EventContractSigned Event = "contract.signed"
	EventDrawingSigned  Event = "drawing.signed"
	EventFollowUpDue    Event = "followup.due"
	EventPaymentSettled Event = "payment.settled"
	EventLeadCreated    Event = "lead.created"
)

// Message is one notification to dispatch
type Message struct {
	Event   Event             `json:"event"`
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes notifications to the application log. Used when no
// webhook is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.String("event", string(msg.Event)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}

// WebhookSender posts notifications as JSON to a chat webhook URL
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
