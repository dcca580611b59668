package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bookline.app/core/common/logger"
)

// Worker attaches one consumer to one queue. It pulls eligible jobs with
// bounded concurrency and dispatches by job type to the matching processor.
type Worker struct {
	queue      Queue
	queueName  string
	processors Processors
	cfg        WorkerConfig

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewWorker(q Queue, queueName string, processors Processors, cfg WorkerConfig) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.PromoteInterval <= 0 {
		cfg.PromoteInterval = time.Second
	}
	return &Worker{
		queue:      q,
		queueName:  queueName,
		processors: processors,
		cfg:        cfg,
		stopCh:     make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Run consumes jobs until the context is cancelled or Stop is called.
// In-flight jobs finish before Run returns, so shutdown never leaves a job
// in an ambiguous status.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "core.queue.worker",
	})

	slog.InfoContext(ctx, "worker started",
		"queue", w.queueName,
		"concurrency", w.cfg.Concurrency)

	promoterCtx, cancelPromoter := context.WithCancel(ctx)
	defer cancelPromoter()
	go w.runPromoter(promoterCtx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			waitErr := group.Wait()
			if waitErr != nil {
				return waitErr
			}
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping", "queue", w.queueName)
			return group.Wait()
		default:
		}

		job, err := w.queue.Dequeue(groupCtx, w.queueName)
		if err != nil {
			if ctx.Err() != nil {
				return group.Wait()
			}
			slog.ErrorContext(ctx, "dequeue error", "queue", w.queueName, "error", err)
			// Brief backoff on error
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		group.Go(func() error {
			w.processJob(ctx, job)
			return nil
		})
	}
}

// Stop signals the worker to stop and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) runPromoter(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PromoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if _, err := w.queue.Promote(ctx, w.queueName); err != nil {
				slog.WarnContext(ctx, "promote cycle error", "queue", w.queueName, "error", err)
			}
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *Job) {
	sc := logger.StartSpanFromTraceID(ctx, job.Data.TraceID, "worker.process_job")
	defer sc.End()
	ctx = sc.Context()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		JobType: logger.Ptr(string(job.Type)),
	})
	if job.Data.TenantID != 0 {
		ctx = logger.WithLogFields(ctx, logger.LogFields{TenantID: logger.Ptr(job.Data.TenantID)})
	}

	slog.InfoContext(ctx, "processing job", "job_id", job.ID, "queue", job.Queue)

	processor, ok := w.processors[job.Type]
	if !ok {
		// Not retried: an unknown type stays unknown on redelivery too.
		slog.ErrorContext(ctx, "no processor registered for job type, dropping job",
			"job_id", job.ID)
		if err := w.queue.MarkCompleted(ctx, job); err != nil {
			slog.WarnContext(ctx, "failed to drop job", "job_id", job.ID, "error", err)
		}
		return
	}

	err := w.processSafe(ctx, processor, job)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "job processing failed", "job_id", job.ID, "error", err)
		if markErr := w.queue.MarkFailed(ctx, job, err.Error()); markErr != nil {
			slog.WarnContext(ctx, "failed to mark job failed", "job_id", job.ID, "error", markErr)
		}
		return
	}

	if err := w.queue.MarkCompleted(ctx, job); err != nil {
		slog.WarnContext(ctx, "failed to mark job completed", "job_id", job.ID, "error", err)
	}
}

func (w *Worker) processSafe(ctx context.Context, processor Processor, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in job processing",
				"panic", r,
				"job_id", job.ID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return processor(ctx, *job)
}
