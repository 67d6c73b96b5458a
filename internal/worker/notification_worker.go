package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/service"
)

const defaultQueueSize = 256

// NotificationWorker runs notification handlers off the request path.
type NotificationWorker struct {
	svc    *service.NotificationService
	logger *zap.Logger
	queue  chan events.Event
	wg     sync.WaitGroup
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(svc *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{svc: svc, logger: logger, queue: make(chan events.Event, queueSize)}
}

// Subscribe enqueues every event the notification service handles.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, t := range w.svc.HandledEvents() {
		dispatcher.Subscribe(t, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("resource_id", event.ResourceID))
	}
	return nil
}

// Start drains the queue until ctx is cancelled. Wait blocks until the loop exits.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-w.queue:
				if err := w.svc.Handle(ctx, event); err != nil {
					w.logger.Warn("notification failed", zap.String("type", string(event.Type)), zap.Error(err))
				}
			}
		}
	}()
}

// Wait blocks until the worker loop has stopped.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

// StartNotificationWorker registers handlers and starts the worker loop.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, svc *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if svc == nil || dispatcher == nil {
		return nil
	}
	w := NewNotificationWorker(svc, logger, defaultQueueSize)
	w.Subscribe(dispatcher)
	w.Start(ctx)
	return w
}
