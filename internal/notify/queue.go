package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBuffer   = 256
	defaultRetries  = 3
	defaultBackoff  = 2 * time.Second
	dispatchTimeout = 15 * time.Second
)

// Queue dispatches notifications asynchronously. Enqueue never blocks
// the caller and never reports failure back into a workflow; delivery
// is retried with backoff and dropped after maxRetries attempts.
type Queue struct {
	sender     Sender
	logger     *zap.Logger
	ch         chan Message
	maxRetries int
	backoff    time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// QueueOption configures a Queue
type QueueOption func(*Queue)

// WithRetries overrides the delivery attempt count
func WithRetries(n int) QueueOption {
	return func(q *Queue) { q.maxRetries = n }
}

// WithBackoff overrides the base delay between attempts
func WithBackoff(d time.Duration) QueueOption {
	return func(q *Queue) { q.backoff = d }
}

// NewQueue creates a queue and starts its dispatch worker
func NewQueue(sender Sender, logger *zap.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		sender:     sender,
		logger:     logger,
		ch:         make(chan Message, defaultBuffer),
		maxRetries: defaultRetries,
		backoff:    defaultBackoff,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue submits a message for delivery. If the queue is closed or the
// buffer is full the message is dropped with a log entry; the caller is
// never blocked and never sees a panic.
func (q *Queue) Enqueue(msg Message) {
	select {
	case <-q.done:
		q.logger.Warn("notification dropped, queue closed",
			zap.String("event", string(msg.Event)))
		return
	default:
	}

	select {
	case q.ch <- msg:
	default:
		q.logger.Warn("notification dropped, queue full",
			zap.String("event", string(msg.Event)),
			zap.String("subject", msg.Subject))
	}
}

// Close stops accepting messages and waits for buffered deliveries. The
// message channel is never closed, so a racing Enqueue at worst drops
// its message.
func (q *Queue) Close() {
	q.stopOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case msg := <-q.ch:
			q.deliver(msg)
		case <-q.done:
			q.drain()
			return
		}
	}
}

// drain delivers whatever was buffered before the close signal
func (q *Queue) drain() {
	for {
		select {
		case msg := <-q.ch:
			q.deliver(msg)
		default:
			return
		}
	}
}

func (q *Queue) deliver(msg Message) {
	var lastErr error
	for attempt := 1; attempt <= q.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		lastErr = q.sender.Send(ctx, msg)
		cancel()
		if lastErr == nil {
			return
		}
		q.logger.Warn("notification delivery failed",
			zap.String("event", string(msg.Event)),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
		if attempt < q.maxRetries {
			time.Sleep(q.backoff * time.Duration(attempt))
		}
	}
	q.logger.Error("notification dropped after retries",
		zap.String("event", string(msg.Event)),
		zap.String("subject", msg.Subject),
		zap.Error(lastErr))
}
