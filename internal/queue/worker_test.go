package queue_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/internal/queue"
)

var _ = Describe("Worker", func() {
	const queueName = "automation"

	var (
		q   *queue.Memory
		ctx context.Context
	)

	BeforeEach(func() {
		q = queue.NewMemory()
		ctx = context.Background()
	})

	startWorker := func(processors queue.Processors) *queue.Worker {
		w := queue.NewWorker(q, queueName, processors, queue.WorkerConfig{
			Concurrency:     2,
			PromoteInterval: 10 * time.Millisecond,
		})
		go func() {
			defer GinkgoRecover()
			_ = w.Run(ctx)
		}()
		return w
	}

	It("dispatches a job to its registered processor", func() {
		var (
			mu        sync.Mutex
			processed []int64
		)
		w := startWorker(queue.Processors{
			queue.JobTypeBookingConfirmation: func(_ context.Context, job queue.Job) error {
				mu.Lock()
				processed = append(processed, job.Data.BookingID)
				mu.Unlock()
				return nil
			},
		})
		defer w.Stop()

		res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
			queue.Data{TenantID: 1, BookingID: 77}, queue.Options{})

		Eventually(func() []int64 {
			mu.Lock()
			defer mu.Unlock()
			return append([]int64(nil), processed...)
		}, time.Second, 10*time.Millisecond).Should(Equal([]int64{77}))

		Eventually(func() bool {
			rec, ok := q.Finished(res.JobID)
			return ok && rec.Status == "completed"
		}, time.Second, 10*time.Millisecond).Should(BeTrue())
	})

	It("promotes delayed jobs on the ticker and runs them", func() {
		done := make(chan struct{})
		var once sync.Once
		w := startWorker(queue.Processors{
			queue.JobTypeFormReminder: func(_ context.Context, _ queue.Job) error {
				once.Do(func() { close(done) })
				return nil
			},
		})
		defer w.Stop()

		q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
			queue.Data{TenantID: 1, FormSubmissionID: 5},
			queue.Options{Delay: 30 * time.Millisecond})

		Eventually(done, time.Second).Should(BeClosed())
	})

	It("drops jobs with no registered processor without retrying", func() {
		w := startWorker(queue.Processors{})
		defer w.Stop()

		res := q.Enqueue(ctx, queueName, queue.JobTypeBookingReminder,
			queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})

		Eventually(func() bool {
			rec, ok := q.Finished(res.JobID)
			return ok && rec.Status == "completed"
		}, time.Second, 10*time.Millisecond).Should(BeTrue())
		Expect(q.ReadyCount(queueName)).To(Equal(0))
	})

	It("marks a job failed when its processor errors", func() {
		w := startWorker(queue.Processors{
			queue.JobTypeBookingConfirmation: func(_ context.Context, _ queue.Job) error {
				return errors.New("db down")
			},
		})
		defer w.Stop()

		res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
			queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})

		Eventually(func() string {
			rec, ok := q.Finished(res.JobID)
			if !ok {
				return ""
			}
			return rec.Status
		}, time.Second, 10*time.Millisecond).Should(Equal("failed"))

		rec, _ := q.Finished(res.JobID)
		Expect(rec.Error).To(ContainSubstring("db down"))
	})

	It("contains processor panics to the job", func() {
		var (
			mu       sync.Mutex
			survived bool
		)
		w := startWorker(queue.Processors{
			queue.JobTypeBookingConfirmation: func(_ context.Context, _ queue.Job) error {
				panic("bad pointer")
			},
			queue.JobTypeBookingReminder: func(_ context.Context, _ queue.Job) error {
				mu.Lock()
				survived = true
				mu.Unlock()
				return nil
			},
		})
		defer w.Stop()

		panicked := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
			queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})
		q.Enqueue(ctx, queueName, queue.JobTypeBookingReminder,
			queue.Data{TenantID: 1, BookingID: 3}, queue.Options{})

		Eventually(func() string {
			rec, ok := q.Finished(panicked.JobID)
			if !ok {
				return ""
			}
			return rec.Status
		}, time.Second, 10*time.Millisecond).Should(Equal("failed"))

		Eventually(func() bool {
			mu.Lock()
			defer mu.Unlock()
			return survived
		}, time.Second, 10*time.Millisecond).Should(BeTrue())
	})

	It("stops cleanly while idle", func() {
		w := startWorker(queue.Processors{})
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			w.Stop()
			close(done)
		}()
		Eventually(done, time.Second).Should(BeClosed())
	})
})
