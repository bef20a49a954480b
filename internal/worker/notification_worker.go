package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// NotificationWorker decouples event delivery from the request that produced the
// event. Publish enqueues; Run drains the queue into the wrapped dispatcher.
type NotificationWorker struct {
	queue      chan queued
	dispatcher events.Dispatcher
	logger     *zap.Logger
	timeout    time.Duration
}

type queued struct {
	event events.Event
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, size int) *NotificationWorker {
	if size <= 0 {
		size = 256
	}
	return &NotificationWorker{
		queue:      make(chan queued, size),
		dispatcher: dispatcher,
		logger:     logger,
		timeout:    30 * time.Second,
	}
}

// Publish enqueues the event without blocking. A full queue drops the event.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	select {
	case w.queue <- queued{event: event}:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Run delivers queued events until ctx is cancelled, then drains what is left.
func (w *NotificationWorker) Run(ctx context.Context) error {
	for {
		select {
		case item := <-w.queue:
			w.deliver(item.event)
		case <-ctx.Done():
			for {
				select {
				case item := <-w.queue:
					w.deliver(item.event)
				default:
					return nil
				}
			}
		}
	}
}

func (w *NotificationWorker) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.dispatcher.Publish(ctx, event); err != nil {
		w.logger.Warn("deliver event", zap.String("event_id", event.ID), zap.Error(err))
	}
}
