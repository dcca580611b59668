package queue

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
)

// memoryQueue is a broker-free Queue used by tests and local development.
// It honors the same contract as the Redis implementation, including the
// degraded not-scheduled path (via SetAvailable) so outage behavior is
// testable without a broker.
type memoryQueue struct {
	mu        sync.Mutex
	now       func() time.Time
	available bool

	delayed    map[string][]*Job          // queue -> delayed jobs
	ready      map[string][]*Job          // queue -> ready jobs, FIFO
	identities map[string]string          // queue:identity -> job id
	finished   map[string]FinishedJob     // job id -> terminal record
	closed     bool
}

// FinishedJob is the retained record of a processed job.
type FinishedJob struct {
	Job    Job
	Status string // "completed" or "failed"
	Error  string
}

type MemoryOption func(*memoryQueue)

// WithNow overrides the clock, letting tests move time past a job's
// eligibility without sleeping.
func WithNow(now func() time.Time) MemoryOption {
	return func(m *memoryQueue) { m.now = now }
}

// Memory is the concrete in-memory queue. It exposes a couple of inspection
// hooks on top of the Queue contract.
type Memory struct {
	*memoryQueue
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &memoryQueue{
		now:        time.Now,
		available:  true,
		delayed:    make(map[string][]*Job),
		ready:      make(map[string][]*Job),
		identities: make(map[string]string),
		finished:   make(map[string]FinishedJob),
	}
	for _, opt := range opts {
		opt(m)
	}
	return &Memory{memoryQueue: m}
}

// SetAvailable simulates broker availability. While false, Enqueue returns
// a not-scheduled result and cancellation is a no-op, mirroring the Redis
// implementation under an outage.
func (m *Memory) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}

// Finished returns the terminal record for a job id, if any.
func (m *Memory) Finished(jobID string) (FinishedJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.finished[jobID]
	return rec, ok
}

// ReadyCount reports how many jobs are eligible and waiting on a queue.
func (m *Memory) ReadyCount(queue string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ready[queue])
}

func (m *memoryQueue) Enqueue(ctx context.Context, queue string, jobType JobType, data Data, opts Options) Result {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "core.queue",
		JobType:   logger.Ptr(string(jobType)),
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available || m.closed {
		slog.WarnContext(ctx, "queue unavailable, job not scheduled", "op", "enqueue")
		return Result{}
	}

	if opts.Identity != "" {
		if existing, ok := m.identities[queue+":"+opts.Identity]; ok {
			slog.InfoContext(ctx, "duplicate job identity, enqueue skipped",
				"identity", opts.Identity,
				"existing_job_id", existing)
			return Result{Duplicate: true, JobID: existing}
		}
	}

	now := m.now()
	job := &Job{
		ID:         strconv.FormatInt(id.New(), 10),
		Queue:      queue,
		Type:       jobType,
		Data:       data,
		Identity:   opts.Identity,
		EnqueuedAt: now,
		EligibleAt: now.Add(opts.Delay),
	}
	if opts.Identity != "" {
		m.identities[queue+":"+opts.Identity] = job.ID
	}

	if opts.Delay > 0 {
		m.delayed[queue] = append(m.delayed[queue], job)
	} else {
		m.ready[queue] = append(m.ready[queue], job)
	}
	return Result{Scheduled: true, JobID: job.ID}
}

func (m *memoryQueue) CancelByCorrelationKey(ctx context.Context, queue, key, value string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available || value == "" {
		return 0
	}

	kept := m.delayed[queue][:0]
	cancelled := 0
	for _, job := range m.delayed[queue] {
		if job.Data.Field(key) == value {
			cancelled++
			if job.Identity != "" {
				delete(m.identities, queue+":"+job.Identity)
			}
			continue
		}
		kept = append(kept, job)
	}
	m.delayed[queue] = kept
	return cancelled
}

func (m *memoryQueue) ListDelayed(ctx context.Context, queue string) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]Job, 0, len(m.delayed[queue]))
	for _, job := range m.delayed[queue] {
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (m *memoryQueue) Promote(ctx context.Context, queue string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.promoteLocked(queue), nil
}

func (m *memoryQueue) promoteLocked(queue string) int {
	now := m.now()
	kept := m.delayed[queue][:0]
	promoted := 0
	for _, job := range m.delayed[queue] {
		if !job.EligibleAt.After(now) {
			m.ready[queue] = append(m.ready[queue], job)
			promoted++
			continue
		}
		kept = append(kept, job)
	}
	m.delayed[queue] = kept
	return promoted
}

func (m *memoryQueue) Dequeue(ctx context.Context, queue string) (*Job, error) {
	deadline := time.Now().Add(50 * time.Millisecond)
	for {
		m.mu.Lock()
		m.promoteLocked(queue)
		if jobs := m.ready[queue]; len(jobs) > 0 {
			job := jobs[0]
			m.ready[queue] = jobs[1:]
			m.mu.Unlock()
			return job, nil
		}
		closed := m.closed
		m.mu.Unlock()

		if closed || time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (m *memoryQueue) MarkCompleted(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job.Identity != "" {
		delete(m.identities, job.Queue+":"+job.Identity)
	}
	m.finished[job.ID] = FinishedJob{Job: *job, Status: "completed"}
	return nil
}

func (m *memoryQueue) MarkFailed(ctx context.Context, job *Job, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job.Identity != "" {
		delete(m.identities, job.Queue+":"+job.Identity)
	}
	m.finished[job.ID] = FinishedJob{Job: *job, Status: "failed", Error: errMsg}
	return nil
}

func (m *memoryQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
