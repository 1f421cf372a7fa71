// Package delivery dispatches outbound notifications (email/SMS)
// decoupled from the request that triggered them. Delivery failures are
// retried with backoff; they never fail the originating request.
package delivery

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Message is one outbound notification.
type Message struct {
	To      string
	Subject string
	Text    string
}

// Sender delivers a single message. Implementations wrap a concrete
// email or SMS provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of delivering them. It is the default
// transport until a real provider is wired in.
type LogSender struct{}

// Send implements Sender.
func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("outbound message", "to", msg.To, "subject", msg.Subject, "chars", len(msg.Text))
	return nil
}

const (
	defaultBuffer   = 64
	defaultAttempts = 3
	defaultBackoff  = 2 * time.Second
)

// Queue dispatches messages asynchronously through a Sender. Enqueue is
// fire-and-forget: the caller's request completes regardless of delivery
// outcome.
type Queue struct {
	sender   Sender
	msgs     chan Message
	attempts int
	backoff  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue starts a dispatcher delivering through sender.
func NewQueue(sender Sender) *Queue {
	return newQueue(sender, defaultAttempts, defaultBackoff)
}

func newQueue(sender Sender, attempts int, backoff time.Duration) *Queue {
	q := &Queue{
		sender:   sender,
		msgs:     make(chan Message, defaultBuffer),
		attempts: attempts,
		backoff:  backoff,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Enqueue hands a message to the dispatcher. If the queue is full or
// already closed the message is dropped with a log entry; there is no
// durable outbox.
func (q *Queue) Enqueue(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		slog.Error("message dropped, queue closed", "to", msg.To)
		return
	}

	select {
	case q.msgs <- msg:
	default:
		slog.Error("message dropped, queue full", "to", msg.To)
	}
}

// Close stops accepting messages, drains the queue, and waits for the
// dispatcher to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.msgs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for msg := range q.msgs {
		q.deliver(msg)
	}
}

// deliver attempts a message with doubling backoff between attempts.
func (q *Queue) deliver(msg Message) {
	wait := q.backoff
	for attempt := 1; ; attempt++ {
		err := q.sender.Send(context.Background(), msg)
		if err == nil {
			return
		}
		if attempt >= q.attempts {
			slog.Error("message delivery failed", "to", msg.To, "attempts", attempt, "error", err)
			return
		}
		slog.Warn("message delivery retry", "to", msg.To, "attempt", attempt, "error", err)
		time.Sleep(wait)
		wait *= 2
	}
}
