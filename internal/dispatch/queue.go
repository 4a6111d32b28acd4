package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/pkg/errors"
)

// Config holds queue timing
type Config struct {
	// Delay is the pause after every job before the next one is sent
	Delay time.Duration
	// SendTimeout bounds a single channel send
	SendTimeout time.Duration
}

type job struct {
	address    string
	payload    Payload
	done       chan error
	enqueuedAt time.Time
}

// Queue serializes every outbound send through a single drain loop. It is
// either idle or draining; Enqueue only appends and starts the drain loop
// when idle.
type Queue struct {
	client      Client
	delay       time.Duration
	sendTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	pending  []*job
	draining bool
	closed   bool
	drained  chan struct{}
}

// NewQueue creates an idle queue in front of client
func NewQueue(client Client, cfg Config, logger *zap.Logger) *Queue {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = time.Minute
	}
	return &Queue{
		client:      client,
		delay:       cfg.Delay,
		sendTimeout: cfg.SendTimeout,
		logger:      logger,
	}
}

// Enqueue appends a send request and returns its completion signal, which
// receives exactly one value: nil on success or the failure.
func (q *Queue) Enqueue(address string, payload Payload) <-chan error {
	j := &job{
		address:    address,
		payload:    payload,
		done:       make(chan error, 1),
		enqueuedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		j.done <- errors.ErrQueueClosed
		return j.done
	}
	q.pending = append(q.pending, j)
	pendingJobsGauge.Set(float64(len(q.pending)))
	if !q.draining {
		q.draining = true
		q.drained = make(chan struct{})
		go q.drain(q.drained)
	}
	q.mu.Unlock()

	jobsEnqueuedCounter.WithLabelValues(payload.Kind()).Inc()
	return j.done
}

// Send enqueues and waits for the result. Cancelling ctx stops the wait
// only; the job is still attempted.
func (q *Queue) Send(ctx context.Context, address string, payload Payload) error {
	done := q.Enqueue(address, payload)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of jobs not yet picked up by the drain loop
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Shutdown rejects new jobs and waits for the pending ones to drain.
// Jobs still pending when ctx expires are lost.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	if !q.draining {
		q.mu.Unlock()
		return nil
	}
	drained := q.drained
	remaining := len(q.pending)
	q.mu.Unlock()

	q.logger.Info("Waiting for dispatch queue to drain", zap.Int("pending", remaining))
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch queue did not drain: %w", ctx.Err())
	}
}

func (q *Queue) drain(drained chan struct{}) {
	defer close(drained)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		j := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		pendingJobsGauge.Set(float64(len(q.pending)))
		q.mu.Unlock()

		q.process(j)

		q.mu.Lock()
		skipPause := q.closed && len(q.pending) == 0
		q.mu.Unlock()
		if !skipPause && q.delay > 0 {
			time.Sleep(q.delay)
		}
	}
}

func (q *Queue) process(j *job) {
	kind := j.payload.Kind()
	logger := q.logger.With(
		zap.String("address", j.address),
		zap.String("kind", kind),
		zap.Duration("waited", time.Since(j.enqueuedAt)),
	)

	if !q.client.IsReady() {
		err := &errors.ErrChannelUnavailable{State: q.stateName()}
		logger.Warn("Channel not ready, failing job", zap.Error(err))
		jobsProcessedCounter.WithLabelValues(kind, "unavailable").Inc()
		j.done <- err
		return
	}

	logger.Info("Sending message")
	start := time.Now()
	err := q.send(j)
	sendDurationHist.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("Failed to send message", zap.Error(err))
		jobsProcessedCounter.WithLabelValues(kind, "failed").Inc()
		j.done <- &errors.ErrTransport{Address: j.address, Err: err}
		return
	}

	logger.Info("Message sent")
	jobsProcessedCounter.WithLabelValues(kind, "sent").Inc()
	j.done <- nil
}

func (q *Queue) send(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel client panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.sendTimeout)
	defer cancel()
	return q.client.Send(ctx, j.address, j.payload)
}

func (q *Queue) stateName() string {
	if s, ok := q.client.(stateNamer); ok {
		return s.StateName()
	}
	return "not_ready"
}
