package dispatch

import (
	"context"
	"sync"

	"github.com/rackden/rackden/internal/logger"
)

// QueueSize is the buffer size for the action queue
const QueueSize = 100

// Sink consumes actions drained from a Queue. The production sink forwards
// to the execution engine's intake; tests use a recording sink.
type Sink func(context.Context, Action) error

// Queue is a channel-backed Dispatcher. Send enqueues without blocking;
// a worker goroutine drains the queue and hands each action to the sink.
// The engine's own retry and failure handling take over from there.
type Queue struct {
	actions chan Action
	sink    Sink

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a queue dispatcher draining into the given sink
func NewQueue(sink Sink) *Queue {
	return &Queue{
		actions: make(chan Action, QueueSize),
		sink:    sink,
	}
}

// Send enqueues an action. It fails with ErrQueueFull when the buffer is
// exhausted and ErrClosed after shutdown; it never blocks the caller.
func (q *Queue) Send(action Action) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.actions <- action:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting actions and lets the worker drain what remains
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.actions)
}

// Run drains the queue until it is closed or the context is cancelled.
// Launch it in its own goroutine; wg is marked done on exit.
func (q *Queue) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	logger.Info("Dispatch worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Dispatch worker received shutdown signal, stopping...")
			return
		case action, ok := <-q.actions:
			if !ok {
				logger.Info("Dispatch queue closed, worker stopping")
				return
			}
			if err := q.sink(ctx, action); err != nil {
				// the engine owns retries; we only record the handoff failure
				logger.ErrorWithFields("Failed to hand action to execution engine", map[string]interface{}{
					"action":       action.Type,
					"aggregate_id": action.AggregateID,
					"error":        err.Error(),
				})
				continue
			}
			logger.DebugWithFields("Action handed to execution engine", map[string]interface{}{
				"action":       action.Type,
				"aggregate_id": action.AggregateID,
			})
		}
	}
}
