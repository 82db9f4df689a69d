// Package worker provides an asynchronous worker pool for recording finished
// chat turns: each turn is persisted to the configured storage.Driver and, when
// a publisher is configured, announced on the event stream.
//
// The pool keeps persistence off the interactive path so the next prompt is
// shown as soon as an answer has been rendered.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/devassist/pkg/eventstream"
	"github.com/papercomputeco/devassist/pkg/logger"
	"github.com/papercomputeco/devassist/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Turn   *storage.Turn
	Source eventstream.EventSource
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting turns.
	Driver storage.Driver

	// Publisher optionally announces persisted turns.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool (defaults to 3).
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the storage and publish calls of one job.
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool processes turn jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Turn == nil {
		p.logger.Error("job not queued, missing turn")
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"turn_id", job.Turn.ID,
			"session_id", job.Turn.SessionID,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"turn_id", job.Turn.ID,
			"session_id", job.Turn.SessionID,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain. It is
// safe to call more than once; Enqueue must not be called after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker loop that continuously pulls jobs off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the turn and, if it was new, publishes it.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	isNew, err := p.config.Driver.Put(ctx, job.Turn)
	if err != nil {
		p.logger.Error("async turn storage failed",
			"turn_id", job.Turn.ID,
			"error", err,
		)
		return
	}

	p.logger.Debug("turn stored",
		"turn_id", job.Turn.ID,
		"outcome", job.Turn.Outcome,
		"is_new", isNew,
	)

	if !isNew || p.config.Publisher == nil {
		return
	}

	event := eventstream.NewTurnCompletedEvent(job.Turn, job.Source)
	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		// Publishing is best effort once the turn is stored.
		p.logger.Warn("failed to publish turn event",
			"turn_id", job.Turn.ID,
			"event_id", event.EventID,
			"error", err,
		)
	}
}
