package push

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docseal/internal/usecase"
)

// DeliveryMarker records a successful real-time delivery.
type DeliveryMarker interface {
	MarkDelivered(ctx context.Context, accountID, notificationID int64, at time.Time) error
}

// Worker drains push jobs in the background. Enqueue never blocks the
// triggering operation: when the queue is full the job is dropped and the
// recipient is reconciled on their next connect.
type Worker struct {
	jobs       chan usecase.PushJob
	registry   *Registry
	deliveries DeliveryMarker
	log        *zap.Logger
	now        func() time.Time
}

func NewWorker(queueSize int, registry *Registry, deliveries DeliveryMarker, log *zap.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		jobs:       make(chan usecase.PushJob, queueSize),
		registry:   registry,
		deliveries: deliveries,
		log:        log,
		now:        time.Now,
	}
}

func (w *Worker) Enqueue(job usecase.PushJob) {
	select {
	case w.jobs <- job:
	default:
		w.log.Warn("push queue full, dropping job",
			zap.Int64("account_id", job.AccountID),
			zap.Int64("notification_id", job.Notification.ID),
		)
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			w.deliver(ctx, job)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, job usecase.PushJob) {
	conn, ok := w.registry.Get(job.AccountID)
	if !ok {
		return
	}
	if err := conn.Send(job.Notification); err != nil {
		w.log.Debug("push send failed",
			zap.Int64("account_id", job.AccountID),
			zap.Int64("notification_id", job.Notification.ID),
			zap.Error(err),
		)
		return
	}
	if err := w.deliveries.MarkDelivered(ctx, job.AccountID, job.Notification.ID, w.now().UTC()); err != nil {
		w.log.Error("mark delivered failed",
			zap.Int64("account_id", job.AccountID),
			zap.Int64("notification_id", job.Notification.ID),
			zap.Error(err),
		)
	}
}
