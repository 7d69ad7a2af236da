package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-service/internal/observability"
)

const (
	dequeueTimeout = 5 * time.Second
	errorBackoff   = time.Second
	maxAttempts    = 3
)

// Handler processes one job of a registered kind.
type Handler func(context.Context, Job) error

// Worker consumes jobs and dispatches them to registered handlers with
// at-least-once semantics: a failed job is re-enqueued until maxAttempts.
type Worker struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	source  Source
	requeue Queue
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewWorker builds a worker. source and requeue normally point at the same
// queue instance.
func NewWorker(source Source, requeue Queue, logger *zap.Logger, metrics *observability.Metrics) *Worker {
	return &Worker{
		handlers: make(map[string]Handler),
		source:   source,
		requeue:  requeue,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds a handler to a job kind.
func (w *Worker) Register(kind string, handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = handler
}

// Run consumes until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.source.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			// A broken source fails fast; pause before retrying.
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}
		w.process(ctx, *job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	w.mu.RLock()
	handler, ok := w.handlers[job.Kind]
	w.mu.RUnlock()

	if !ok {
		w.logger.Warn("no handler for job", zap.String("kind", job.Kind), zap.String("job_id", job.ID))
		return
	}

	if err := handler(ctx, job); err != nil {
		w.metrics.RecordJob(job.Kind, false)
		job.Attempts++
		if job.Attempts >= maxAttempts {
			w.logger.Error("job dropped after max attempts",
				zap.String("kind", job.Kind),
				zap.String("job_id", job.ID),
				zap.Error(err))
			return
		}
		w.logger.Warn("job failed; re-enqueueing",
			zap.String("kind", job.Kind),
			zap.String("job_id", job.ID),
			zap.Int("attempts", job.Attempts),
			zap.Error(err))
		if err := w.requeue.Enqueue(ctx, job); err != nil {
			w.logger.Error("re-enqueue failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return
	}
	w.metrics.RecordJob(job.Kind, true)
}
