package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/config"
	"github.com/crmstream/crm-sync/internal/models"
	"github.com/crmstream/crm-sync/internal/sink"
)

// Queue accumulates actions and flushes them to the sink once the buffer
// crosses the configured threshold. A single buffering goroutine owns the
// threshold check, so concurrent pushes can never double-flush the same
// actions. Flushes run asynchronously; Drain awaits them all.
type Queue struct {
	sink      sink.Sink
	threshold int
	logger    *logrus.Logger

	actions chan *models.Action
	drainc  chan chan struct{}
	stopc   chan struct{}
	stopped sync.Once

	flushes   sync.WaitGroup
	flushed   int64
	delivered int64
}

// New creates a queue and starts its buffering worker
func New(s sink.Sink, cfg *config.SyncConfig, logger *logrus.Logger) *Queue {
	q := &Queue{
		sink:      s,
		threshold: cfg.FlushThreshold,
		logger:    logger,
		actions:   make(chan *models.Action, cfg.QueueCapacity),
		drainc:    make(chan chan struct{}),
		stopc:     make(chan struct{}),
	}
	go q.loop()
	return q
}

// Push enqueues one action. It blocks only when the queue backlog is full.
func (q *Queue) Push(action *models.Action) {
	q.actions <- action
}

// Drain waits for all pending pushes to be buffered, flushes any remainder
// even below the threshold, and then awaits all outstanding flushes.
func (q *Queue) Drain(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case q.drainc <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	q.flushes.Wait()
	return nil
}

// Close stops the buffering worker. The queue must be drained first.
func (q *Queue) Close() {
	q.stopped.Do(func() {
		close(q.stopc)
	})
}

// Flushes returns the number of flush calls issued to the sink
func (q *Queue) Flushes() int {
	return int(atomic.LoadInt64(&q.flushed))
}

// Delivered returns the number of actions handed to the sink
func (q *Queue) Delivered() int {
	return int(atomic.LoadInt64(&q.delivered))
}

func (q *Queue) loop() {
	buf := make([]*models.Action, 0, q.threshold+1)

	for {
		select {
		case action := <-q.actions:
			buf = append(buf, action)
			if len(buf) > q.threshold {
				buf = q.flush(buf)
			}
		case done := <-q.drainc:
			buf = q.consumeBacklog(buf)
			if len(buf) > 0 {
				buf = q.flush(buf)
			}
			close(done)
		case <-q.stopc:
			return
		}
	}
}

// consumeBacklog empties whatever is already queued before a drain completes
func (q *Queue) consumeBacklog(buf []*models.Action) []*models.Action {
	for {
		select {
		case action := <-q.actions:
			buf = append(buf, action)
			if len(buf) > q.threshold {
				buf = q.flush(buf)
			}
		default:
			return buf
		}
	}
}

// flush hands the current buffer to the sink asynchronously and returns a
// fresh buffer. The buffer is never cleared before the sink call is issued.
func (q *Queue) flush(buf []*models.Action) []*models.Action {
	batch := buf
	atomic.AddInt64(&q.flushed, 1)
	atomic.AddInt64(&q.delivered, int64(len(batch)))

	q.logger.WithField("actions", len(batch)).Info("Flushing action batch to sink")

	q.flushes.Add(1)
	go func() {
		defer q.flushes.Done()
		if err := q.sink.Emit(context.Background(), batch); err != nil {
			q.logger.WithField("actions", len(batch)).WithError(err).Error("Failed to flush action batch")
		}
	}()

	return make([]*models.Action, 0, q.threshold+1)
}
