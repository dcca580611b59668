package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/internal/model"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

var _ = Describe("FormService", func() {
	const queueName = "automation"

	var (
		stores   *mockStores
		jobQueue *queue.Memory
		svc      service.FormService
	)

	BeforeEach(func() {
		stores = newMockStores()
		jobQueue = queue.NewMemory()
		svc = service.NewFormService(stores, &fakeTxRunner{stores: stores}, jobQueue, queueName)
	})

	Describe("CompleteSubmission", func() {
		scheduleFollowUp := func(submissionID int64) {
			data := queue.Data{TenantID: 7, FormSubmissionID: submissionID, ContactID: 100}
			jobQueue.Enqueue(context.Background(), queueName, queue.JobTypeFormReminder, data,
				queue.Options{Delay: time.Hour})
			jobQueue.Enqueue(context.Background(), queueName, queue.JobTypeFormOverdueCheck, data,
				queue.Options{Delay: 2 * time.Hour})
		}

		It("records the answers and withdraws the scheduled follow-up", func() {
			scheduleFollowUp(400)
			scheduleFollowUp(401)

			err := svc.CompleteSubmission(context.Background(), 7, 400, []byte(`{"ok":true}`))

			Expect(err).NotTo(HaveOccurred())
			delayed, lerr := jobQueue.ListDelayed(context.Background(), queueName)
			Expect(lerr).NotTo(HaveOccurred())
			Expect(delayed).To(HaveLen(2))
			for _, job := range delayed {
				Expect(job.Data.FormSubmissionID).To(Equal(int64(401)))
			}
		})

		It("leaves the queue alone when the completion fails", func() {
			scheduleFollowUp(400)
			stores.formSubmissions.completeFn = func(ctx context.Context, tenantID, id int64, answers []byte) error {
				return store.ErrNotFound
			}

			err := svc.CompleteSubmission(context.Background(), 7, 400, nil)

			Expect(err).To(MatchError(store.ErrNotFound))
			delayed, lerr := jobQueue.ListDelayed(context.Background(), queueName)
			Expect(lerr).NotTo(HaveOccurred())
			Expect(delayed).To(HaveLen(2))
		})
	})

	Describe("LinkTemplate", func() {
		It("links an existing template to an existing booking type", func() {
			stores.bookingTypes.getByIDFn = func(ctx context.Context, tenantID, id int64) (*model.BookingType, error) {
				return &model.BookingType{ID: id, TenantID: tenantID, IsActive: true}, nil
			}
			stores.formTemplates.getByIDFn = func(ctx context.Context, tenantID, id int64) (*model.FormTemplate, error) {
				return &model.FormTemplate{ID: id, TenantID: tenantID, IsActive: true}, nil
			}

			err := svc.LinkTemplate(context.Background(), 7, 10, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(stores.bookingTypes.linked).To(Equal([][3]int64{{7, 10, 1}}))
		})

		It("refuses to link a template that does not exist", func() {
			stores.bookingTypes.getByIDFn = func(ctx context.Context, tenantID, id int64) (*model.BookingType, error) {
				return &model.BookingType{ID: id, TenantID: tenantID, IsActive: true}, nil
			}

			err := svc.LinkTemplate(context.Background(), 7, 10, 1)

			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(stores.bookingTypes.linked).To(BeEmpty())
		})
	})

	Describe("CreateTemplate", func() {
		It("creates an active template", func() {
			tmpl, err := svc.CreateTemplate(context.Background(), 7, "Health questionnaire", []byte(`[]`))

			Expect(err).NotTo(HaveOccurred())
			Expect(tmpl.IsActive).To(BeTrue())
			Expect(stores.formTemplates.created).To(HaveLen(1))
		})
	})
})
