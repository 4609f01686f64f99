package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/applicant-screening/internal/jobs"
	"github.com/dvloznov/applicant-screening/internal/logger"
)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 5

// retryBaseDelay scales the backoff between retry attempts.
const retryBaseDelay = time.Second

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// This implementation is suitable for single-instance deployments and testing.
type Queue struct {
	jobChan   chan *jobs.BatchJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	workers   int
	closed    bool
}

// NewQueue creates a new in-memory job queue. bufferSize determines how many
// jobs can be queued before PublishBatch blocks; workers determines how many
// jobs are processed concurrently once Start is called.
func NewQueue(bufferSize, workers int, store jobs.JobStore) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		jobChan:   make(chan *jobs.BatchJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   workers,
	}
}

// PublishBatch implements the Publisher interface. Missing job metadata (id,
// status, creation time, retry budget) is filled in before the job is saved
// and enqueued.
func (q *Queue) PublishBatch(ctx context.Context, job *jobs.BatchJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface. It launches the configured number
// of workers, each draining the queue through handler until the context is
// cancelled or the queue stops.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs one job through the handler, tracking the status
// transitions in the store. A handler error schedules a retry until the
// job's retry budget runs out.
func (q *Queue) processJob(ctx context.Context, job *jobs.BatchJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx)

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	q.saveJob(ctx, job)

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	retry := false
	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
	case job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		retry = true
		log.Warn().
			Str("job_id", job.JobID).
			Int("retry", job.RetryCount).
			Err(err).
			Msg("Job failed, retry scheduled")
	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
		log.Error().
			Str("job_id", job.JobID).
			Int("retries", job.RetryCount).
			Err(err).
			Msg("Job failed, no retries left")
	}

	q.saveJob(ctx, job)

	if retry {
		q.scheduleRetry(ctx, job)
	}
}

// scheduleRetry re-enqueues the job after a backoff that grows with each
// attempt. The job goes back to pending, with its start and completion times
// cleared, before the timer is armed; the fired callback only re-publishes.
// RetryCount stays as the only trace of earlier attempts.
func (q *Queue) scheduleRetry(ctx context.Context, job *jobs.BatchJob) {
	log := logger.FromContext(ctx)
	backoff := time.Duration(job.RetryCount) * retryBaseDelay

	job.Status = jobs.JobStatusPending
	job.StartedAt = nil
	job.CompletedAt = nil

	time.AfterFunc(backoff, func() {
		if err := q.PublishBatch(ctx, job); err != nil {
			log.Warn().Str("job_id", job.JobID).Err(err).Msg("Failed to re-enqueue job for retry")
		}
	})
}

// saveJob persists the job's current state when a store is attached. Store
// failures are not fatal to processing.
func (q *Queue) saveJob(ctx context.Context, job *jobs.BatchJob) {
	if q.store == nil {
		return
	}
	_ = q.store.SaveJob(ctx, job)
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
// It closes the queue and releases resources.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
