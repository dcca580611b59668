package queue_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/internal/queue"
)

// fakeClock is a settable time source for delay math without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ = Describe("Memory queue", func() {
	const queueName = "automation"

	var (
		q     *queue.Memory
		clock *fakeClock
		ctx   context.Context
	)

	BeforeEach(func() {
		clock = newFakeClock()
		q = queue.NewMemory(queue.WithNow(clock.Now))
		ctx = context.Background()
	})

	Describe("Enqueue", func() {
		It("makes an undelayed job immediately ready", func() {
			res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})

			Expect(res.Scheduled).To(BeTrue())
			Expect(res.JobID).NotTo(BeEmpty())
			Expect(q.ReadyCount(queueName)).To(Equal(1))
		})

		It("holds a delayed job out of the ready state until eligible", func() {
			q.Enqueue(ctx, queueName, queue.JobTypeBookingReminder,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{Delay: time.Hour})

			Expect(q.ReadyCount(queueName)).To(Equal(0))
			job, err := q.Dequeue(ctx, queueName)
			Expect(err).NotTo(HaveOccurred())
			Expect(job).To(BeNil())

			clock.Advance(time.Hour)
			job, err = q.Dequeue(ctx, queueName)
			Expect(err).NotTo(HaveOccurred())
			Expect(job).NotTo(BeNil())
			Expect(job.Type).To(Equal(queue.JobTypeBookingReminder))
		})

		It("records the eligible time from the delay", func() {
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, FormSubmissionID: 5}, queue.Options{Delay: 24 * time.Hour})

			delayed, err := q.ListDelayed(ctx, queueName)
			Expect(err).NotTo(HaveOccurred())
			Expect(delayed).To(HaveLen(1))
			Expect(delayed[0].EligibleAt).To(Equal(clock.Now().Add(24 * time.Hour)))
		})
	})

	Describe("identity dedup", func() {
		identity := queue.Identity(queue.JobTypeBookingReminder, 1, 2)

		It("collapses a second enqueue with the same identity", func() {
			first := q.Enqueue(ctx, queueName, queue.JobTypeBookingReminder,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{Delay: time.Hour, Identity: identity})
			second := q.Enqueue(ctx, queueName, queue.JobTypeBookingReminder,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{Delay: time.Hour, Identity: identity})

			Expect(first.Scheduled).To(BeTrue())
			Expect(second.Scheduled).To(BeFalse())
			Expect(second.Duplicate).To(BeTrue())
			Expect(second.JobID).To(Equal(first.JobID))

			delayed, _ := q.ListDelayed(ctx, queueName)
			Expect(delayed).To(HaveLen(1))
		})

		It("releases the identity when the job completes", func() {
			first := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{Identity: identity})

			job, err := q.Dequeue(ctx, queueName)
			Expect(err).NotTo(HaveOccurred())
			Expect(q.MarkCompleted(ctx, job)).To(Succeed())

			again := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{Identity: identity})
			Expect(again.Scheduled).To(BeTrue())
			Expect(again.JobID).NotTo(Equal(first.JobID))
		})
	})

	Describe("CancelByCorrelationKey", func() {
		It("removes only delayed jobs carrying the matching value", func() {
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, ConversationID: 100, FormSubmissionID: 5},
				queue.Options{Delay: time.Hour})
			q.Enqueue(ctx, queueName, queue.JobTypeFormOverdueCheck,
				queue.Data{TenantID: 1, ConversationID: 100, FormSubmissionID: 5},
				queue.Options{Delay: 2 * time.Hour})
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, ConversationID: 200, FormSubmissionID: 6},
				queue.Options{Delay: time.Hour})

			removed := q.CancelByCorrelationKey(ctx, queueName, queue.CorrelationConversation, "100")
			Expect(removed).To(Equal(2))

			delayed, _ := q.ListDelayed(ctx, queueName)
			Expect(delayed).To(HaveLen(1))
			Expect(delayed[0].Data.ConversationID).To(Equal(int64(200)))
		})

		It("does not touch jobs already promoted to ready", func() {
			q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, ConversationID: 100}, queue.Options{})

			removed := q.CancelByCorrelationKey(ctx, queueName, queue.CorrelationConversation, "100")
			Expect(removed).To(Equal(0))
			Expect(q.ReadyCount(queueName)).To(Equal(1))
		})

		It("frees the identity of a cancelled job", func() {
			identity := queue.Identity(queue.JobTypeFormReminder, 1, 5)
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, ConversationID: 100, FormSubmissionID: 5},
				queue.Options{Delay: time.Hour, Identity: identity})

			Expect(q.CancelByCorrelationKey(ctx, queueName, queue.CorrelationConversation, "100")).To(Equal(1))

			res := q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, ConversationID: 100, FormSubmissionID: 5},
				queue.Options{Delay: time.Hour, Identity: identity})
			Expect(res.Scheduled).To(BeTrue())
		})

		It("returns zero for an empty value", func() {
			Expect(q.CancelByCorrelationKey(ctx, queueName, queue.CorrelationConversation, "")).To(Equal(0))
		})
	})

	Describe("Promote", func() {
		It("moves only jobs whose time has arrived", func() {
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: 1, FormSubmissionID: 5}, queue.Options{Delay: time.Hour})
			q.Enqueue(ctx, queueName, queue.JobTypeFormOverdueCheck,
				queue.Data{TenantID: 1, FormSubmissionID: 5}, queue.Options{Delay: 3 * time.Hour})

			clock.Advance(time.Hour)
			promoted, err := q.Promote(ctx, queueName)
			Expect(err).NotTo(HaveOccurred())
			Expect(promoted).To(Equal(1))
			Expect(q.ReadyCount(queueName)).To(Equal(1))

			delayed, _ := q.ListDelayed(ctx, queueName)
			Expect(delayed).To(HaveLen(1))
			Expect(delayed[0].Type).To(Equal(queue.JobTypeFormOverdueCheck))
		})
	})

	Describe("broker outage", func() {
		BeforeEach(func() {
			q.SetAvailable(false)
		})

		It("returns a not-scheduled result instead of an error", func() {
			res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})

			Expect(res.Scheduled).To(BeFalse())
			Expect(res.Duplicate).To(BeFalse())
			Expect(res.JobID).To(BeEmpty())
		})

		It("schedules again once the broker returns", func() {
			q.SetAvailable(true)
			res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
				queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})
			Expect(res.Scheduled).To(BeTrue())
		})
	})

	It("records terminal statuses for inspection", func() {
		res := q.Enqueue(ctx, queueName, queue.JobTypeBookingConfirmation,
			queue.Data{TenantID: 1, BookingID: 2}, queue.Options{})
		job, err := q.Dequeue(ctx, queueName)
		Expect(err).NotTo(HaveOccurred())

		Expect(q.MarkFailed(ctx, job, "provider down")).To(Succeed())

		rec, ok := q.Finished(res.JobID)
		Expect(ok).To(BeTrue())
		Expect(rec.Status).To(Equal("failed"))
		Expect(rec.Error).To(Equal("provider down"))
	})

	It("keeps tenant-scoped payloads addressable by correlation field", func() {
		for i := 1; i <= 3; i++ {
			q.Enqueue(ctx, queueName, queue.JobTypeFormReminder,
				queue.Data{TenantID: int64(i), FormSubmissionID: int64(i * 10)},
				queue.Options{Delay: time.Hour})
		}

		delayed, _ := q.ListDelayed(ctx, queueName)
		Expect(delayed).To(HaveLen(3))
		for _, job := range delayed {
			Expect(job.Data.Field(queue.CorrelationFormSubmission)).
				To(Equal(fmt.Sprintf("%d", job.Data.FormSubmissionID)))
		}
	})
})
