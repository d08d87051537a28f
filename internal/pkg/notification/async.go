// internal/pkg/notification/async.go
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const queueSize = 256

// AsyncNotifier decouples delivery from the request path: enqueue
// returns immediately and a single worker delivers with bounded retries.
// A notification that cannot be delivered after retries is logged and
// dropped; the confirmation is best effort, the order is not.
type AsyncNotifier struct {
	inner  Notifier
	logger *logrus.Logger
	queue  chan OrderConfirmation
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncNotifier creates an async notifier and starts its worker
func NewAsyncNotifier(inner Notifier, logger *logrus.Logger) *AsyncNotifier {
	n := &AsyncNotifier{
		inner:  inner,
		logger: logger,
		queue:  make(chan OrderConfirmation, queueSize),
	}
	n.wg.Add(1)
	go n.worker()
	return n
}

// NotifyOrderConfirmation implements Notifier. It never blocks: when
// the queue is full the notification is dropped with a log line, and
// after Close delivery falls back to synchronous.
func (n *AsyncNotifier) NotifyOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return n.inner.NotifyOrderConfirmation(ctx, msg)
	}

	select {
	case n.queue <- msg:
		return nil
	default:
		n.logger.WithField("order_number", msg.OrderNumber).Warn("Notification queue full, dropping confirmation")
		return nil
	}
}

// Close stops accepting queued notifications, drains the queue, and
// waits for the worker to finish
func (n *AsyncNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *AsyncNotifier) worker() {
	defer n.wg.Done()

	for msg := range n.queue {
		n.deliver(msg)
	}
}

func (n *AsyncNotifier) deliver(msg OrderConfirmation) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return n.inner.NotifyOrderConfirmation(ctx, msg)
	}, bo)
	if err != nil {
		n.logger.WithError(err).WithField("order_number", msg.OrderNumber).Error("Failed to deliver order confirmation")
	}
}
