package queue

import (
	"context"
	"time"
)

// Queue is the producer side of the job hand-off. The request path's
// contract ends at a successful enqueue; delivery belongs to the worker.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Source is the consumer side. Dequeue blocks up to timeout and returns nil
// when no job arrived.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
}
