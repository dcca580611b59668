package queue

import (
	"context"
	"time"
)

// Queue is the broker abstraction the automation core works against.
// The production implementation is Redis-backed; an in-memory implementation
// backs tests and local development.
type Queue interface {
	// Enqueue adds a job. It never fails the caller: a broker outage is
	// absorbed into a not-scheduled result with a warning log.
	Enqueue(ctx context.Context, queue string, jobType JobType, data Data, opts Options) Result

	// CancelByCorrelationKey removes every job still in the delayed state
	// whose payload field key equals value, and returns the count removed.
	// Jobs already promoted to ready or dispatched to a processor run to
	// completion; callers tolerate that race via state re-checks.
	//
	// This is a linear scan by design: scheduled automation volume per
	// correlation subject is single digits to low tens of jobs.
	CancelByCorrelationKey(ctx context.Context, queue, key, value string) int

	// ListDelayed returns the jobs currently in the delayed state, for
	// inspection and for the cancellation scan.
	ListDelayed(ctx context.Context, queue string) ([]Job, error)

	// Promote moves jobs whose eligible time has arrived from the delayed
	// state to the ready state. Returns the number promoted. The worker
	// drives this on a ticker.
	Promote(ctx context.Context, queue string) (int, error)

	// Dequeue blocks up to the configured poll interval for a ready job.
	// Returns (nil, nil) when none became ready in time.
	Dequeue(ctx context.Context, queue string) (*Job, error)

	// MarkCompleted releases the job and its identity after successful
	// processing. The broker retains the record briefly for inspection.
	MarkCompleted(ctx context.Context, job *Job) error

	// MarkFailed records the processing failure for operational visibility
	// and releases the identity. Failed jobs are not retried automatically;
	// a processor that wants a retry re-enqueues explicitly.
	MarkFailed(ctx context.Context, job *Job, errMsg string) error

	// Close stops accepting work and releases broker resources. In-flight
	// jobs finish or are abandoned without leaving ambiguous statuses.
	Close() error
}

// Processor handles one job type. A processor that returns an error marks
// the job failed; every processor must be idempotent and re-derivable from
// stored state, because a job may run twice or never.
type Processor func(ctx context.Context, job Job) error

// Processors maps job types to their handlers. A job whose type has no
// entry is logged and dropped, not retried.
type Processors map[JobType]Processor

// WorkerConfig bounds the consumer attached to one queue.
type WorkerConfig struct {
	Concurrency     int           // simultaneous jobs; default 5
	PromoteInterval time.Duration // delayed-to-ready check cadence; default 1s
}
