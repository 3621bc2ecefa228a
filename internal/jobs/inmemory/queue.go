package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/google/uuid"
)

// defaultMaxRetries applies to jobs published without MaxRetries.
const defaultMaxRetries = 3

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// This implementation is suitable for single-instance deployments and testing.
type Queue struct {
	jobChan     chan *jobs.ImportJob
	closeChan   chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	store       jobs.JobStore
	workerCount int
	closed      bool

	// Backoff is the base delay before a retry; the n-th retry waits n*Backoff.
	Backoff time.Duration
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishImport
// blocks. workerCount is the number of jobs processed concurrently; imports
// replace the active record set, so callers normally use 1.
func NewQueue(bufferSize, workerCount int, store jobs.JobStore) *Queue {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Queue{
		jobChan:     make(chan *jobs.ImportJob, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		workerCount: workerCount,
		Backoff:     time.Second,
	}
}

// PublishImport implements the Publisher interface.
// It enqueues an import job for asynchronous processing.
func (q *Queue) PublishImport(ctx context.Context, job *jobs.ImportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	// Generate job ID if not provided
	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}

	// Set initial status and timestamp
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = defaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	// Enqueue job with context cancellation support
	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface.
// It starts workerCount goroutines that process jobs with handler.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}

	return nil
}

// worker processes jobs from the queue.
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

// processJob executes a single job with retry logic. Permanent errors fail
// the job immediately.
func (q *Queue) processJob(ctx context.Context, job *jobs.ImportJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("job_type", string(job.Type)).
		Logger()

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(logger.WithContext(ctx, log), job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	var retry *jobs.ImportJob
	switch {
	case err == nil:
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Int("records", job.RecordCount).Msg("Import job completed")
	case !jobs.IsPermanent(err) && job.RetryCount < job.MaxRetries:
		job.Error = err.Error()
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		log.Warn().Err(err).Int("retry", job.RetryCount).Msg("Import job failed, retrying")

		next := *job
		next.Status = jobs.JobStatusPending
		next.StartedAt = nil
		next.CompletedAt = nil
		retry = &next
	default:
		job.Error = err.Error()
		job.Status = jobs.JobStatusFailed
		log.Error().Err(err).Msg("Import job failed")
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	if retry != nil {
		time.AfterFunc(time.Duration(retry.RetryCount)*q.Backoff, func() {
			q.republish(ctx, retry)
		})
	}
}

// republish puts a retry back on the queue. A retry that cannot be queued,
// because the queue has stopped, fails the job.
func (q *Queue) republish(ctx context.Context, job *jobs.ImportJob) {
	err := q.PublishImport(ctx, job)
	if err == nil {
		return
	}

	failedAt := time.Now()
	job.Status = jobs.JobStatusFailed
	job.CompletedAt = &failedAt
	job.Error = fmt.Sprintf("%s (retry not scheduled: %v)", job.Error, err)

	log := logger.FromContext(ctx)
	log.Error().Err(err).Str("job_id", job.JobID).Msg("Import job retry dropped")

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
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
