package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQueueSize = 256
	sendTimeout      = 10 * time.Second

	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeDropped = "dropped"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

type Sender interface {
	NotifyInterest(ctx context.Context, email, senderName string) error
}

type OutcomeRecorder interface {
	Notification(outcome string)
}

type interestJob struct {
	email      string
	senderName string
}

// Queue moves interest notifications off the request path. Jobs are handled
// by a single worker started with Run; Enqueue never blocks.
type Queue struct {
	sender  Sender
	metrics OutcomeRecorder
	logger  *zap.Logger
	jobs    chan interestJob

	mu     sync.RWMutex
	closed bool
}

func NewQueue(sender Sender, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		sender: sender,
		logger: logger,
		jobs:   make(chan interestJob, size),
	}
}

func (q *Queue) AttachMetrics(metrics OutcomeRecorder) {
	q.metrics = metrics
}

// NotifyInterest enqueues the email. The caller's context is not carried
// into delivery.
func (q *Queue) NotifyInterest(_ context.Context, email, senderName string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- interestJob{email: email, senderName: senderName}:
		return nil
	default:
		q.record(outcomeDropped)
		return ErrQueueFull
	}
}

// Run delivers queued jobs until ctx is done or the queue is closed and drained.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.deliver(ctx, job)
		}
	}
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}

func (q *Queue) deliver(ctx context.Context, job interestJob) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := q.sender.NotifyInterest(sendCtx, job.email, job.senderName); err != nil {
		q.record(outcomeFailed)
		q.logger.Warn("interest notification failed", zap.String("email", job.email), zap.Error(err))
		return
	}
	q.record(outcomeSent)
}

func (q *Queue) record(outcome string) {
	if q.metrics != nil {
		q.metrics.Notification(outcome)
	}
}
