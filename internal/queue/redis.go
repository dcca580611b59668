package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
)

// Redis layout, per queue name q:
//
//	queue:{q}:delayed            ZSET  member=job id, score=eligible-at (unix ms)
//	queue:{q}:ready              LIST  job ids eligible for processing
//	queue:{q}:job:{id}           HASH  job fields (type, identity, payload, status)
//	queue:{q}:identity:{ident}   STRING job id, guards duplicate logical enqueues
//
// The promoter claims due jobs with ZREM before pushing them to ready, so
// concurrent workers never promote the same job twice. Cancellation claims
// the same way, which is what limits it to still-delayed jobs.
type RedisConfig struct {
	PollBlock time.Duration // BLPOP timeout for Dequeue
	Retention time.Duration // how long completed/failed records stay inspectable
}

type redisQueue struct {
	client *redis.Client
	cfg    RedisConfig
}

func NewRedis(client *redis.Client, cfg RedisConfig) Queue {
	if cfg.PollBlock <= 0 {
		cfg.PollBlock = 5 * time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	return &redisQueue{client: client, cfg: cfg}
}

func delayedKey(queue string) string { return "queue:" + queue + ":delayed" }
func readyKey(queue string) string   { return "queue:" + queue + ":ready" }
func jobKey(queue, jobID string) string {
	return "queue:" + queue + ":job:" + jobID
}
func identityKey(queue, identity string) string {
	return "queue:" + queue + ":identity:" + identity
}

func (q *redisQueue) Enqueue(ctx context.Context, queue string, jobType JobType, data Data, opts Options) Result {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "core.queue",
		JobType:   logger.Ptr(string(jobType)),
	})

	jobID := strconv.FormatInt(id.New(), 10)

	if opts.Identity != "" {
		// Identity TTL is a crash-recovery backstop; the normal release path
		// is MarkCompleted/MarkFailed/cancel.
		set, err := q.client.SetNX(ctx, identityKey(queue, opts.Identity), jobID, opts.Delay+q.cfg.Retention).Result()
		if err != nil {
			return q.unavailable(ctx, "identity check", err)
		}
		if !set {
			existing, err := q.client.Get(ctx, identityKey(queue, opts.Identity)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return q.unavailable(ctx, "identity lookup", err)
			}
			slog.InfoContext(ctx, "duplicate job identity, enqueue skipped",
				"identity", opts.Identity,
				"existing_job_id", existing)
			return Result{Duplicate: true, JobID: existing}
		}
	}

	now := time.Now()
	eligibleAt := now.Add(opts.Delay)

	fields := data.values()
	fields["type"] = string(jobType)
	fields["enqueued_at"] = now.UnixMilli()
	fields["eligible_at"] = eligibleAt.UnixMilli()
	if opts.Identity != "" {
		fields["identity"] = opts.Identity
	}

	pipe := q.client.TxPipeline()
	if opts.Delay > 0 {
		fields["status"] = "delayed"
		pipe.HSet(ctx, jobKey(queue, jobID), fields)
		pipe.Expire(ctx, jobKey(queue, jobID), opts.Delay+q.cfg.Retention)
		pipe.ZAdd(ctx, delayedKey(queue), redis.Z{
			Score:  float64(eligibleAt.UnixMilli()),
			Member: jobID,
		})
	} else {
		fields["status"] = "waiting"
		pipe.HSet(ctx, jobKey(queue, jobID), fields)
		pipe.Expire(ctx, jobKey(queue, jobID), q.cfg.Retention)
		pipe.RPush(ctx, readyKey(queue), jobID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		if opts.Identity != "" {
			// Best effort: without this a transient outage could pin the
			// identity until its TTL expires.
			q.client.Del(context.WithoutCancel(ctx), identityKey(queue, opts.Identity))
		}
		return q.unavailable(ctx, "enqueue", err)
	}

	slog.InfoContext(ctx, "job enqueued",
		"queue", queue,
		"job_id", jobID,
		"delay", opts.Delay)
	return Result{Scheduled: true, JobID: jobID}
}

// unavailable absorbs a broker failure into a not-scheduled result.
// Automation is best-effort: the caller's primary operation must succeed
// even when the broker is down.
func (q *redisQueue) unavailable(ctx context.Context, op string, err error) Result {
	slog.WarnContext(ctx, "queue unavailable, job not scheduled",
		"op", op,
		"error", err)
	return Result{}
}

func (q *redisQueue) CancelByCorrelationKey(ctx context.Context, queue, key, value string) int {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "core.queue"})

	if value == "" {
		return 0
	}

	jobs, err := q.ListDelayed(ctx, queue)
	if err != nil {
		slog.WarnContext(ctx, "queue unavailable, cancellation skipped", "error", err)
		return 0
	}

	cancelled := 0
	for _, job := range jobs {
		if job.Data.Field(key) != value {
			continue
		}
		// ZREM is the claim: a job the promoter already moved stays alive.
		removed, err := q.client.ZRem(ctx, delayedKey(queue), job.ID).Result()
		if err != nil {
			slog.WarnContext(ctx, "cancel claim failed", "job_id", job.ID, "error", err)
			continue
		}
		if removed == 0 {
			continue
		}
		q.client.Del(ctx, jobKey(queue, job.ID))
		if job.Identity != "" {
			q.client.Del(ctx, identityKey(queue, job.Identity))
		}
		cancelled++
		slog.InfoContext(ctx, "delayed job cancelled",
			"queue", queue,
			"job_id", job.ID,
			"job_type", string(job.Type),
			"correlation_key", key)
	}
	return cancelled
}

func (q *redisQueue) ListDelayed(ctx context.Context, queue string) ([]Job, error) {
	members, err := q.client.ZRangeWithScores(ctx, delayedKey(queue), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing delayed jobs: %w", err)
	}

	jobs := make([]Job, 0, len(members))
	for _, member := range members {
		jobID := fmt.Sprint(member.Member)
		fields, err := q.client.HGetAll(ctx, jobKey(queue, jobID)).Result()
		if err != nil {
			return nil, fmt.Errorf("loading job %s: %w", jobID, err)
		}
		if len(fields) == 0 {
			// Record expired out from under its delayed entry; drop the ref.
			q.client.ZRem(ctx, delayedKey(queue), jobID)
			continue
		}
		job, err := parseJob(queue, jobID, fields)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse delayed job", "job_id", jobID, "error", err)
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (q *redisQueue) Promote(ctx context.Context, queue string) (int, error) {
	now := time.Now().UnixMilli()
	jobIDs, err := q.client.ZRangeByScore(ctx, delayedKey(queue), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now, 10),
		Count: 100,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("scanning due jobs: %w", err)
	}

	promoted := 0
	for _, jobID := range jobIDs {
		removed, err := q.client.ZRem(ctx, delayedKey(queue), jobID).Result()
		if err != nil {
			return promoted, fmt.Errorf("claiming due job %s: %w", jobID, err)
		}
		if removed == 0 {
			continue
		}
		pipe := q.client.TxPipeline()
		pipe.HSet(ctx, jobKey(queue, jobID), "status", "waiting")
		pipe.RPush(ctx, readyKey(queue), jobID)
		if _, err := pipe.Exec(ctx); err != nil {
			return promoted, fmt.Errorf("promoting job %s: %w", jobID, err)
		}
		promoted++
	}
	return promoted, nil
}

func (q *redisQueue) Dequeue(ctx context.Context, queue string) (*Job, error) {
	res, err := q.client.BLPop(ctx, q.cfg.PollBlock, readyKey(queue)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("polling ready jobs: %w", err)
	}

	jobID := res[1]
	fields, err := q.client.HGetAll(ctx, jobKey(queue, jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading job %s: %w", jobID, err)
	}
	if len(fields) == 0 {
		// Cancelled or expired between promotion and pickup.
		return nil, nil
	}

	job, err := parseJob(queue, jobID, fields)
	if err != nil {
		return nil, fmt.Errorf("parsing job %s: %w", jobID, err)
	}

	q.client.HSet(ctx, jobKey(queue, jobID), "status", "active")
	return job, nil
}

func (q *redisQueue) MarkCompleted(ctx context.Context, job *Job) error {
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, jobKey(job.Queue, job.ID),
		"status", "completed",
		"completed_at", time.Now().UnixMilli())
	pipe.Expire(ctx, jobKey(job.Queue, job.ID), q.cfg.Retention)
	if job.Identity != "" {
		pipe.Del(ctx, identityKey(job.Queue, job.Identity))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marking job %s completed: %w", job.ID, err)
	}
	return nil
}

func (q *redisQueue) MarkFailed(ctx context.Context, job *Job, errMsg string) error {
	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, jobKey(job.Queue, job.ID),
		"status", "failed",
		"error", errMsg,
		"failed_at", time.Now().UnixMilli())
	pipe.Expire(ctx, jobKey(job.Queue, job.ID), q.cfg.Retention)
	if job.Identity != "" {
		pipe.Del(ctx, identityKey(job.Queue, job.Identity))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("marking job %s failed: %w", job.ID, err)
	}
	return nil
}

func (q *redisQueue) Close() error {
	return q.client.Close()
}

func parseJob(queue, jobID string, fields map[string]string) (*Job, error) {
	jobType := fields["type"]
	if jobType == "" {
		return nil, fmt.Errorf("missing type")
	}

	tenantID, err := parseOptionalInt64(fields, "tenant_id")
	if err != nil {
		return nil, err
	}
	bookingID, err := parseOptionalInt64(fields, CorrelationBooking)
	if err != nil {
		return nil, err
	}
	contactID, err := parseOptionalInt64(fields, "contact_id")
	if err != nil {
		return nil, err
	}
	conversationID, err := parseOptionalInt64(fields, CorrelationConversation)
	if err != nil {
		return nil, err
	}
	formSubmissionID, err := parseOptionalInt64(fields, CorrelationFormSubmission)
	if err != nil {
		return nil, err
	}
	enqueuedAt, err := parseOptionalInt64(fields, "enqueued_at")
	if err != nil {
		return nil, err
	}
	eligibleAt, err := parseOptionalInt64(fields, "eligible_at")
	if err != nil {
		return nil, err
	}

	return &Job{
		ID:       jobID,
		Queue:    queue,
		Type:     JobType(jobType),
		Identity: fields["identity"],
		Data: Data{
			TenantID:         tenantID,
			BookingID:        bookingID,
			ContactID:        contactID,
			ConversationID:   conversationID,
			FormSubmissionID: formSubmissionID,
			TraceID:          fields["trace_id"],
		},
		EnqueuedAt: time.UnixMilli(enqueuedAt),
		EligibleAt: time.UnixMilli(eligibleAt),
	}, nil
}

func parseOptionalInt64(fields map[string]string, key string) (int64, error) {
	raw, ok := fields[key]
	if !ok || raw == "" {
		return 0, nil
	}
	num, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}
