package queue

import (
	"context"
	"errors"
	"time"
)

// MemoryQueue is an in-process queue with the same contract as RedisQueue.
type MemoryQueue struct {
	jobs chan Job
}

// NewMemoryQueue creates a buffered in-memory queue.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryQueue{jobs: make(chan Job, capacity)}
}

// Enqueue adds the job, failing when the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("queue full")
	}
}

// Dequeue waits up to timeout for the next job.
func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of queued jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}
