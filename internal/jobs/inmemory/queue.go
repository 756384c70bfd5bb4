package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/smartbudget/internal/jobs"
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// At most one job per type is active at any time.
type Queue struct {
	jobChan   chan *jobs.AdvisoryJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool

	activeMu sync.Mutex
	active   map[jobs.JobType]string

	workers     int
	maxRetries  int
	retryable   func(error) bool
	backoff     func(attempt int) time.Duration
	errorString func(error) string
	now         func() time.Time
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithMaxRetries sets the retry budget for jobs published without one.
func WithMaxRetries(n int) QueueOption {
	return func(q *Queue) { q.maxRetries = n }
}

// WithRetryPolicy decides which handler errors are worth retrying.
func WithRetryPolicy(retryable func(error) bool) QueueOption {
	return func(q *Queue) { q.retryable = retryable }
}

// WithBackoff sets the delay before retry attempt n (1-based).
func WithBackoff(backoff func(attempt int) time.Duration) QueueOption {
	return func(q *Queue) { q.backoff = backoff }
}

// WithErrorFormatter sets how a handler error is recorded on the job.
func WithErrorFormatter(f func(error) string) QueueOption {
	return func(q *Queue) { q.errorString = f }
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before Publish blocks.
func NewQueue(bufferSize int, store jobs.JobStore, opts ...QueueOption) *Queue {
	q := &Queue{
		jobChan:     make(chan *jobs.AdvisoryJob, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		active:      make(map[jobs.JobType]string),
		workers:     2,
		retryable:   func(error) bool { return true },
		backoff:     func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
		errorString: func(err error) string { return err.Error() },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Publish implements the Publisher interface. Workers receive a copy of
// job, so the caller may keep reading it after Publish returns.
func (q *Queue) Publish(ctx context.Context, job *jobs.AdvisoryJob) error {
	q.mu.RLock()
	closed := q.closed
	q.mu.RUnlock()
	if closed {
		return jobs.ErrQueueClosed
	}
	if !job.Type.Valid() {
		return fmt.Errorf("Publish: unknown job type %q", job.Type)
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = q.now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = q.maxRetries
	}

	if err := q.claim(job); err != nil {
		return err
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			q.release(job)
			return fmt.Errorf("Publish: failed to save job: %w", err)
		}
	}

	queued := *job
	select {
	case q.jobChan <- &queued:
		return nil
	case <-ctx.Done():
		q.release(job)
		return ctx.Err()
	case <-q.closeChan:
		q.release(job)
		return jobs.ErrQueueClosed
	}
}

// claim marks job as the active job of its type. Re-publishing the active
// job itself, as retries do, is allowed.
func (q *Queue) claim(job *jobs.AdvisoryJob) error {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()

	if id, ok := q.active[job.Type]; ok && id != job.JobID {
		return fmt.Errorf("Publish: %s job %s: %w", job.Type, id, jobs.ErrJobInFlight)
	}
	q.active[job.Type] = job.JobID
	return nil
}

func (q *Queue) release(job *jobs.AdvisoryJob) {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()

	if q.active[job.Type] == job.JobID {
		delete(q.active, job.Type)
	}
}

// Active returns the id of the active job of type t, if any.
func (q *Queue) Active(t jobs.JobType) (string, bool) {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	id, ok := q.active[t]
	return id, ok
}

// Start implements the Consumer interface.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return jobs.ErrQueueClosed
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

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, job *jobs.AdvisoryJob, handler jobs.JobHandler) {
	job.Status = jobs.JobStatusRunning
	now := q.now()
	job.StartedAt = &now
	q.save(ctx, job)

	err := handler(ctx, job)

	completedAt := q.now()
	job.CompletedAt = &completedAt

	if err == nil {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		q.release(job)
		q.save(ctx, job)
		return
	}

	job.Error = q.errorString(err)
	if job.RetryCount < job.MaxRetries && q.retryable(err) {
		job.RetryCount++
		job.Status = jobs.JobStatusRetrying
		q.save(ctx, job)

		time.AfterFunc(q.backoff(job.RetryCount), func() {
			job.Status = jobs.JobStatusPending
			job.StartedAt = nil
			job.CompletedAt = nil
			if err := q.Publish(ctx, job); err != nil {
				job.Status = jobs.JobStatusFailed
				q.release(job)
				q.save(context.Background(), job)
			}
		})
		return
	}

	job.Status = jobs.JobStatusFailed
	q.release(job)
	q.save(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.AdvisoryJob) {
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
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
