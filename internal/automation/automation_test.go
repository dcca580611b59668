package automation_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/core/config"
	"bookline.app/core/internal/automation"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/notify"
	"bookline.app/core/internal/queue"
)

const (
	testQueue    = "automation"
	tenantID     = int64(7)
	contactID    = int64(100)
	bookingID    = int64(200)
	convID       = int64(300)
	submissionID = int64(400)
)

var _ = Describe("Engine", func() {
	var (
		stores      *mockStores
		jobQueue    *queue.Memory
		eventBus    *bus.Bus
		sender      *captureSender
		engine      *automation.Engine
		processors  queue.Processors
		base        time.Time
		handlerErrs []domain.HandlerError
	)

	strPtr := func(s string) *string { return &s }

	contact := func() *model.Contact {
		return &model.Contact{
			ID:        contactID,
			TenantID:  tenantID,
			FirstName: "Ana",
			Email:     strPtr("ana@example.com"),
			Phone:     strPtr("+34600111222"),
		}
	}

	booking := func(status model.BookingStatus, scheduledAt time.Time) *model.Booking {
		return &model.Booking{
			ID:            bookingID,
			TenantID:      tenantID,
			ContactID:     contactID,
			BookingTypeID: 10,
			Status:        status,
			ScheduledAt:   scheduledAt,
		}
	}

	delayedJobs := func() []queue.Job {
		jobs, err := jobQueue.ListDelayed(context.Background(), testQueue)
		Expect(err).NotTo(HaveOccurred())
		return jobs
	}

	BeforeEach(func() {
		base = time.Now()
		clock := func() time.Time { return base }

		stores = newMockStores()
		jobQueue = queue.NewMemory(queue.WithNow(clock))
		eventBus = bus.New()
		sender = &captureSender{}

		stores.channelConfigs.getFn = func(ctx context.Context, tid int64, channel model.Channel) (*model.TenantChannelConfig, error) {
			return &model.TenantChannelConfig{
				TenantID:  tid,
				Channel:   channel,
				Provider:  "test",
				Sender:    "studio@example.com",
				IsEnabled: true,
			}, nil
		}
		stores.contacts.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Contact, error) {
			return contact(), nil
		}
		stores.tenants.getByIDFn = func(ctx context.Context, id int64) (*model.Tenant, error) {
			return &model.Tenant{ID: id, Name: "Studio", OwnerEmail: "owner@example.com", Timezone: "UTC"}, nil
		}

		gateway := notify.NewGateway(stores, map[string]notify.Sender{"test": sender}, config.NotifyConfig{
			MaxRetries:     1,
			InitialBackoff: time.Millisecond,
			DefaultSender:  "noreply@bookline.app",
		})

		engine = automation.NewEngine(stores, jobQueue, testQueue, eventBus, gateway, config.AutomationConfig{
			ReminderLeadTime:  24 * time.Hour,
			FormReminderDelay: 24 * time.Hour,
			FormOverdueDelay:  48 * time.Hour,
			SendDedupWindow:   5 * time.Minute,
		}, automation.WithClock(clock))
		engine.Register()
		processors = engine.Processors()

		handlerErrs = nil
		eventBus.On(domain.EventError, func(ctx context.Context, evt domain.Event) error {
			handlerErrs = append(handlerErrs, evt.(domain.HandlerError))
			return nil
		})
	})

	Describe("contact created", func() {
		emit := func() {
			eventBus.Emit(context.Background(), domain.ContactCreated{
				TenantID:  tenantID,
				ContactID: contactID,
			})
		}

		It("welcomes the contact on every reachable channel", func() {
			emit()

			messages := sender.sent()
			Expect(messages).To(HaveLen(2))
			recipients := []string{messages[0].To, messages[1].To}
			Expect(recipients).To(ConsistOf("ana@example.com", "+34600111222"))
		})

		It("suppresses a duplicate delivery inside the dedup window", func() {
			emit()
			emit()

			Expect(sender.sent()).To(HaveLen(2))
			Expect(stores.integrationLogs.all()).To(HaveLen(2))
			Expect(handlerErrs).To(BeEmpty())
		})

		It("skips an unreachable contact without failing", func() {
			stores.contacts.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Contact, error) {
				return &model.Contact{ID: id, TenantID: tid, FirstName: "Ana"}, nil
			}

			emit()

			Expect(sender.sent()).To(BeEmpty())
			Expect(handlerErrs).To(BeEmpty())
		})
	})

	Describe("booking created", func() {
		emit := func(scheduledAt time.Time) {
			eventBus.Emit(context.Background(), domain.BookingCreated{
				TenantID:       tenantID,
				BookingID:      bookingID,
				BookingTypeID:  10,
				ContactID:      contactID,
				ConversationID: convID,
				ScheduledAt:    scheduledAt,
			})
		}

		It("schedules confirmation, reminder, and form request jobs", func() {
			emit(base.Add(48 * time.Hour))

			Expect(jobQueue.ReadyCount(testQueue)).To(Equal(2))

			delayed := delayedJobs()
			Expect(delayed).To(HaveLen(1))
			Expect(delayed[0].Type).To(Equal(queue.JobTypeBookingReminder))
			Expect(delayed[0].EligibleAt.Sub(base)).To(Equal(24 * time.Hour))
		})

		It("skips the reminder for a booking inside the lead window", func() {
			emit(base.Add(12 * time.Hour))

			Expect(jobQueue.ReadyCount(testQueue)).To(Equal(2))
			Expect(delayedJobs()).To(BeEmpty())
		})

		It("collapses a redundant event delivery into one set of jobs", func() {
			emit(base.Add(48 * time.Hour))
			emit(base.Add(48 * time.Hour))

			Expect(jobQueue.ReadyCount(testQueue)).To(Equal(2))
			Expect(delayedJobs()).To(HaveLen(1))
		})

		It("treats a broker outage as best-effort, not an error", func() {
			jobQueue.SetAvailable(false)

			emit(base.Add(48 * time.Hour))

			Expect(handlerErrs).To(BeEmpty())
			Expect(jobQueue.ReadyCount(testQueue)).To(BeZero())
		})
	})

	Describe("booking cancelled", func() {
		It("withdraws the delayed follow-up for that booking only", func() {
			eventBus.Emit(context.Background(), domain.BookingCreated{
				TenantID: tenantID, BookingID: bookingID, ContactID: contactID,
				ConversationID: convID, ScheduledAt: base.Add(48 * time.Hour),
			})
			eventBus.Emit(context.Background(), domain.BookingCreated{
				TenantID: tenantID, BookingID: bookingID + 1, ContactID: contactID,
				ConversationID: convID + 1, ScheduledAt: base.Add(48 * time.Hour),
			})
			Expect(delayedJobs()).To(HaveLen(2))

			eventBus.Emit(context.Background(), domain.BookingCancelled{
				TenantID: tenantID, BookingID: bookingID,
			})

			delayed := delayedJobs()
			Expect(delayed).To(HaveLen(1))
			Expect(delayed[0].Data.BookingID).To(Equal(bookingID + 1))
		})
	})

	Describe("staff replied", func() {
		It("cancels delayed jobs correlated to the conversation", func() {
			eventBus.Emit(context.Background(), domain.FormPending{
				TenantID: tenantID, FormSubmissionID: submissionID,
				BookingID: bookingID, ContactID: contactID, ConversationID: convID,
			})
			eventBus.Emit(context.Background(), domain.FormPending{
				TenantID: tenantID, FormSubmissionID: submissionID + 1,
				BookingID: bookingID, ContactID: contactID, ConversationID: convID + 1,
			})
			Expect(delayedJobs()).To(HaveLen(4))

			eventBus.Emit(context.Background(), domain.StaffReplied{
				TenantID: tenantID, ConversationID: convID, MessageID: 1,
			})

			delayed := delayedJobs()
			Expect(delayed).To(HaveLen(2))
			for _, job := range delayed {
				Expect(job.Data.ConversationID).To(Equal(convID + 1))
			}
		})
	})

	Describe("form pending", func() {
		It("schedules the reminder and the overdue check", func() {
			eventBus.Emit(context.Background(), domain.FormPending{
				TenantID: tenantID, FormSubmissionID: submissionID,
				BookingID: bookingID, ContactID: contactID, ConversationID: convID,
			})

			delayed := delayedJobs()
			Expect(delayed).To(HaveLen(2))

			byType := map[queue.JobType]queue.Job{}
			for _, job := range delayed {
				byType[job.Type] = job
			}
			Expect(byType[queue.JobTypeFormReminder].EligibleAt.Sub(base)).To(Equal(24 * time.Hour))
			Expect(byType[queue.JobTypeFormOverdueCheck].EligibleAt.Sub(base)).To(Equal(48 * time.Hour))
		})
	})

	Describe("form overdue", func() {
		emit := func() {
			eventBus.Emit(context.Background(), domain.FormOverdue{
				TenantID: tenantID, FormSubmissionID: submissionID, ContactID: contactID,
			})
		}

		It("nudges the contact, raises an alert, and notifies the owner", func() {
			emit()

			alerts := stores.alerts.createdAlerts()
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].Type).To(Equal(model.AlertTypeFormOverdue))
			Expect(alerts[0].SubjectID).To(Equal(submissionID))
			Expect(alerts[0].Status).To(Equal(model.AlertStatusActive))

			messages := sender.sent()
			Expect(messages).To(HaveLen(3)) // contact email + sms, owner email
			recipients := make([]string, 0, len(messages))
			for _, msg := range messages {
				recipients = append(recipients, msg.To)
			}
			Expect(recipients).To(ConsistOf("ana@example.com", "+34600111222", "owner@example.com"))
		})

		It("does not pile on owner alerts while an active alert exists", func() {
			stores.alerts.hasActiveFn = func(ctx context.Context, tid int64, alertType model.AlertType, subjectID int64) (bool, error) {
				return true, nil
			}

			emit()

			Expect(stores.alerts.createdAlerts()).To(BeEmpty())
			for _, msg := range sender.sent() {
				Expect(msg.To).NotTo(Equal("owner@example.com"))
			}
		})
	})

	Describe("inventory low", func() {
		BeforeEach(func() {
			stores.inventory.getByIDFn = func(ctx context.Context, tid, id int64) (*model.InventoryItem, error) {
				return &model.InventoryItem{ID: id, TenantID: tid, Name: "Massage oil", Quantity: 3, ReorderLevel: 5}, nil
			}
		})

		It("raises a low-stock alert and notifies the owner", func() {
			eventBus.Emit(context.Background(), domain.InventoryLow{
				TenantID: tenantID, ItemID: 500, Quantity: 3, ReorderLevel: 5,
			})

			alerts := stores.alerts.createdAlerts()
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].Type).To(Equal(model.AlertTypeInventoryLow))
			Expect(alerts[0].Message).To(ContainSubstring("Massage oil"))

			messages := sender.sent()
			Expect(messages).To(HaveLen(1))
			Expect(messages[0].To).To(Equal("owner@example.com"))
			Expect(messages[0].Subject).To(ContainSubstring("Massage oil"))
		})
	})

	Describe("booking confirmation processor", func() {
		job := func() queue.Job {
			return queue.Job{
				Type: queue.JobTypeBookingConfirmation,
				Data: queue.Data{TenantID: tenantID, BookingID: bookingID, ContactID: contactID},
			}
		}

		It("sends the confirmation for an actionable booking", func() {
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusConfirmed, base.Add(48*time.Hour)), nil
			}

			err := processors[queue.JobTypeBookingConfirmation](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			Expect(sender.sent()).To(HaveLen(2))
		})

		It("skips quietly when the booking was cancelled in the meantime", func() {
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusCancelled, base.Add(48*time.Hour)), nil
			}

			err := processors[queue.JobTypeBookingConfirmation](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			Expect(sender.sent()).To(BeEmpty())
		})

		It("skips quietly when the booking is gone", func() {
			err := processors[queue.JobTypeBookingConfirmation](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			Expect(sender.sent()).To(BeEmpty())
		})
	})

	Describe("form request processor", func() {
		job := func() queue.Job {
			return queue.Job{
				Type: queue.JobTypeCreateFormRequests,
				Data: queue.Data{TenantID: tenantID, BookingID: bookingID, ContactID: contactID, ConversationID: convID},
			}
		}

		BeforeEach(func() {
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusConfirmed, base.Add(48*time.Hour)), nil
			}
			stores.bookingTypes.listFormTemplatesFn = func(ctx context.Context, tid, btID int64) ([]model.FormTemplate, error) {
				return []model.FormTemplate{
					{ID: 1, TenantID: tid, Name: "Health questionnaire", IsActive: true},
					{ID: 2, TenantID: tid, Name: "Consent form", IsActive: true},
				}, nil
			}
		})

		It("creates a pending submission per linked form and schedules its follow-up", func() {
			err := processors[queue.JobTypeCreateFormRequests](context.Background(), job())
			Expect(err).NotTo(HaveOccurred())

			created := stores.formSubmissions.createdSubmissions()
			Expect(created).To(HaveLen(2))
			for _, sub := range created {
				Expect(sub.Status).To(Equal(model.FormSubmissionStatusPending))
				Expect(sub.BookingID).To(Equal(bookingID))
			}

			// Each pending form fires its own reminder and overdue check.
			Expect(delayedJobs()).To(HaveLen(4))

			// Both form requests go out; neither dedups the other.
			subjects := map[string]bool{}
			for _, msg := range sender.sent() {
				subjects[msg.Subject] = true
			}
			Expect(subjects).To(HaveKey("Please complete: Health questionnaire"))
			Expect(subjects).To(HaveKey("Please complete: Consent form"))
		})

		It("skips templates that already have a submission for the booking", func() {
			stores.formSubmissions.listByBookingFn = func(ctx context.Context, tid, bID int64) ([]model.FormSubmission, error) {
				return []model.FormSubmission{{ID: 99, FormTemplateID: 1, BookingID: bID}}, nil
			}

			err := processors[queue.JobTypeCreateFormRequests](context.Background(), job())
			Expect(err).NotTo(HaveOccurred())

			created := stores.formSubmissions.createdSubmissions()
			Expect(created).To(HaveLen(1))
			Expect(created[0].FormTemplateID).To(Equal(int64(2)))
		})
	})

	Describe("form reminder processor", func() {
		job := func() queue.Job {
			return queue.Job{
				Type: queue.JobTypeFormReminder,
				Data: queue.Data{TenantID: tenantID, FormSubmissionID: submissionID, ContactID: contactID},
			}
		}

		submission := func(status model.FormSubmissionStatus) *model.FormSubmission {
			return &model.FormSubmission{
				ID: submissionID, TenantID: tenantID, FormTemplateID: 1,
				BookingID: bookingID, ContactID: contactID, Status: status,
			}
		}

		BeforeEach(func() {
			stores.formTemplates.getByIDFn = func(ctx context.Context, tid, id int64) (*model.FormTemplate, error) {
				return &model.FormTemplate{ID: id, TenantID: tid, Name: "Health questionnaire"}, nil
			}
		})

		It("nudges the contact about a form still pending", func() {
			stores.formSubmissions.getByIDFn = func(ctx context.Context, tid, id int64) (*model.FormSubmission, error) {
				return submission(model.FormSubmissionStatusPending), nil
			}

			err := processors[queue.JobTypeFormReminder](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			messages := sender.sent()
			Expect(messages).NotTo(BeEmpty())
			Expect(messages[0].Subject).To(ContainSubstring("Health questionnaire"))
		})

		It("does nothing once the form is completed", func() {
			stores.formSubmissions.getByIDFn = func(ctx context.Context, tid, id int64) (*model.FormSubmission, error) {
				return submission(model.FormSubmissionStatusCompleted), nil
			}

			err := processors[queue.JobTypeFormReminder](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			Expect(sender.sent()).To(BeEmpty())
		})
	})

	Describe("form overdue check processor", func() {
		job := func() queue.Job {
			return queue.Job{
				Type: queue.JobTypeFormOverdueCheck,
				Data: queue.Data{TenantID: tenantID, FormSubmissionID: submissionID, ContactID: contactID},
			}
		}

		It("announces the transition exactly once", func() {
			calls := 0
			stores.formSubmissions.markOverdueIfPendingFn = func(ctx context.Context, tid, id int64) (bool, error) {
				calls++
				return calls == 1, nil
			}

			err := processors[queue.JobTypeFormOverdueCheck](context.Background(), job())
			Expect(err).NotTo(HaveOccurred())
			err = processors[queue.JobTypeFormOverdueCheck](context.Background(), job())
			Expect(err).NotTo(HaveOccurred())

			// One alert, one contact nudge, one owner email despite two runs.
			Expect(stores.alerts.createdAlerts()).To(HaveLen(1))
			Expect(sender.sent()).To(HaveLen(3))
		})

		It("is a no-op for a form no longer pending", func() {
			err := processors[queue.JobTypeFormOverdueCheck](context.Background(), job())

			Expect(err).NotTo(HaveOccurred())
			Expect(stores.alerts.createdAlerts()).To(BeEmpty())
			Expect(sender.sent()).To(BeEmpty())
		})

		It("propagates a store failure for retry", func() {
			stores.formSubmissions.markOverdueIfPendingFn = func(ctx context.Context, tid, id int64) (bool, error) {
				return false, fmt.Errorf("connection refused")
			}

			err := processors[queue.JobTypeFormOverdueCheck](context.Background(), job())

			Expect(err).To(MatchError(ContainSubstring("connection refused")))
		})
	})

	Describe("dedup across handler and processor runs", func() {
		It("lets distinct messages to the same recipient through back-to-back", func() {
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusConfirmed, base.Add(48*time.Hour)), nil
			}

			eventBus.Emit(context.Background(), domain.ContactCreated{
				TenantID: tenantID, ContactID: contactID,
			})
			job := queue.Job{
				Type: queue.JobTypeBookingConfirmation,
				Data: queue.Data{TenantID: tenantID, BookingID: bookingID, ContactID: contactID},
			}
			Expect(processors[queue.JobTypeBookingConfirmation](context.Background(), job)).To(Succeed())

			// Welcome and confirmation each reach both channels.
			messages := sender.sent()
			Expect(messages).To(HaveLen(4))
			subjects := make([]string, 0, len(messages))
			for _, msg := range messages {
				subjects = append(subjects, msg.Subject)
			}
			Expect(subjects).To(ConsistOf(
				"Welcome!", "Welcome!",
				"Your booking is confirmed", "Your booking is confirmed",
			))
		})

		It("suppresses the duplicate send when a job re-runs", func() {
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusConfirmed, base.Add(48*time.Hour)), nil
			}
			job := queue.Job{
				Type: queue.JobTypeBookingConfirmation,
				Data: queue.Data{TenantID: tenantID, BookingID: bookingID, ContactID: contactID},
			}

			Expect(processors[queue.JobTypeBookingConfirmation](context.Background(), job)).To(Succeed())
			Expect(processors[queue.JobTypeBookingConfirmation](context.Background(), job)).To(Succeed())

			Expect(sender.sent()).To(HaveLen(2)) // email + sms, once each
		})

		It("fails open when the dedup lookup breaks", func() {
			// A broken integration-log read must not suppress real sends.
			stores.bookings.getByIDFn = func(ctx context.Context, tid, id int64) (*model.Booking, error) {
				return booking(model.BookingStatusConfirmed, base.Add(48*time.Hour)), nil
			}
			stores.integrationLogs.countErr = fmt.Errorf("connection refused")
			job := queue.Job{
				Type: queue.JobTypeBookingConfirmation,
				Data: queue.Data{TenantID: tenantID, BookingID: bookingID, ContactID: contactID},
			}

			Expect(processors[queue.JobTypeBookingConfirmation](context.Background(), job)).To(Succeed())
			Expect(sender.sent()).To(HaveLen(2))
		})
	})
})

var _ = Describe("unknown payload guard", func() {
	It("reports a mismatched event payload on the error event", func() {
		eventBus := bus.New()
		stores := newMockStores()
		gateway := notify.NewGateway(stores, map[string]notify.Sender{}, config.NotifyConfig{})
		engine := automation.NewEngine(stores, queue.NewMemory(), testQueue, eventBus, gateway, config.AutomationConfig{})
		engine.Register()

		var errs []domain.HandlerError
		eventBus.On(domain.EventError, func(ctx context.Context, evt domain.Event) error {
			errs = append(errs, evt.(domain.HandlerError))
			return nil
		})

		eventBus.Emit(context.Background(), mismatched{})

		Expect(errs).To(HaveLen(1))
		Expect(errs[0].Err.Error()).To(ContainSubstring("unexpected payload"))
	})
})

// mismatched claims the contact.created name but carries the wrong type.
type mismatched struct{}

func (mismatched) EventName() string { return domain.EventContactCreated }
func (mismatched) Tenant() int64     { return 0 }
