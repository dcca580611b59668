package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookline.app/core/common/id"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/store"
)

// processBookingConfirmation sends the booking confirmation. The booking is
// re-read first: a job is a point-in-time intent and the booking may have
// been cancelled between enqueue and dispatch.
func (e *Engine) processBookingConfirmation(ctx context.Context, job queue.Job) error {
	booking, contact, ok, err := e.loadActionableBooking(ctx, job.Data.TenantID, job.Data.BookingID)
	if err != nil || !ok {
		return err
	}

	e.sendToContact(ctx, contact,
		"Your booking is confirmed",
		fmt.Sprintf("Hi %s, your booking on %s is confirmed. See you then!",
			contact.FirstName, e.formatBookingTime(ctx, booking)),
	)
	return nil
}

// processBookingReminder sends the appointment reminder.
func (e *Engine) processBookingReminder(ctx context.Context, job queue.Job) error {
	booking, contact, ok, err := e.loadActionableBooking(ctx, job.Data.TenantID, job.Data.BookingID)
	if err != nil || !ok {
		return err
	}

	e.sendToContact(ctx, contact,
		"Upcoming booking reminder",
		fmt.Sprintf("Hi %s, a reminder about your booking on %s.",
			contact.FirstName, e.formatBookingTime(ctx, booking)),
	)
	return nil
}

// processCreateFormRequests creates one pending form submission per intake
// form linked to the booking's type and announces each as a pending form.
// Templates that already have a submission for this booking are skipped, so
// a re-run of the job creates nothing twice.
func (e *Engine) processCreateFormRequests(ctx context.Context, job queue.Job) error {
	tenantID, bookingID := job.Data.TenantID, job.Data.BookingID

	booking, contact, ok, err := e.loadActionableBooking(ctx, tenantID, bookingID)
	if err != nil || !ok {
		return err
	}

	templates, err := e.stores.BookingTypes().ListFormTemplates(ctx, tenantID, booking.BookingTypeID)
	if err != nil {
		return fmt.Errorf("list form templates for booking type %d: %w", booking.BookingTypeID, err)
	}
	if len(templates) == 0 {
		return nil
	}

	existing, err := e.stores.FormSubmissions().ListByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return fmt.Errorf("list form submissions for booking %d: %w", bookingID, err)
	}
	requested := make(map[int64]bool, len(existing))
	for _, sub := range existing {
		requested[sub.FormTemplateID] = true
	}

	for _, tmpl := range templates {
		if requested[tmpl.ID] {
			continue
		}

		submission := &model.FormSubmission{
			ID:             id.New(),
			TenantID:       tenantID,
			FormTemplateID: tmpl.ID,
			BookingID:      bookingID,
			ContactID:      booking.ContactID,
			Status:         model.FormSubmissionStatusPending,
		}
		if err := e.stores.FormSubmissions().Create(ctx, submission); err != nil {
			return fmt.Errorf("create form submission for template %d: %w", tmpl.ID, err)
		}

		e.sendToContact(ctx, contact,
			fmt.Sprintf("Please complete: %s", tmpl.Name),
			fmt.Sprintf("Hi %s, please fill in the %q form before your booking on %s.",
				contact.FirstName, tmpl.Name, e.formatBookingTime(ctx, booking)),
		)

		e.bus.Emit(ctx, domain.FormPending{
			TenantID:         tenantID,
			FormSubmissionID: submission.ID,
			BookingID:        bookingID,
			ContactID:        booking.ContactID,
			ConversationID:   job.Data.ConversationID,
			TraceID:          job.Data.TraceID,
		})
	}
	return nil
}

// processFormReminder nudges the contact about a form still pending.
func (e *Engine) processFormReminder(ctx context.Context, job queue.Job) error {
	tenantID, submissionID := job.Data.TenantID, job.Data.FormSubmissionID

	submission, err := e.stores.FormSubmissions().GetByID(ctx, tenantID, submissionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "form submission gone, skipping reminder")
			return nil
		}
		return fmt.Errorf("load form submission %d: %w", submissionID, err)
	}
	if submission.Status != model.FormSubmissionStatusPending {
		slog.InfoContext(ctx, "form no longer pending, skipping reminder", "status", submission.Status)
		return nil
	}

	contact, err := e.stores.Contacts().GetByID(ctx, tenantID, submission.ContactID)
	if err != nil {
		return fmt.Errorf("load contact %d: %w", submission.ContactID, err)
	}

	tmpl, err := e.stores.FormTemplates().GetByID(ctx, tenantID, submission.FormTemplateID)
	if err != nil {
		return fmt.Errorf("load form template %d: %w", submission.FormTemplateID, err)
	}

	e.sendToContact(ctx, contact,
		fmt.Sprintf("Reminder: %s", tmpl.Name),
		fmt.Sprintf("Hi %s, the %q form is still waiting for you. It only takes a few minutes.",
			contact.FirstName, tmpl.Name),
	)
	return nil
}

// processFormOverdueCheck flips a still-pending submission to overdue and
// announces it. The store transition reports whether this run made the
// change, so a twice-run job announces once.
func (e *Engine) processFormOverdueCheck(ctx context.Context, job queue.Job) error {
	tenantID, submissionID := job.Data.TenantID, job.Data.FormSubmissionID

	transitioned, err := e.stores.FormSubmissions().MarkOverdueIfPending(ctx, tenantID, submissionID)
	if err != nil {
		return fmt.Errorf("mark form submission %d overdue: %w", submissionID, err)
	}
	if !transitioned {
		slog.InfoContext(ctx, "form submission not pending, overdue check is a no-op")
		return nil
	}

	e.bus.Emit(ctx, domain.FormOverdue{
		TenantID:         tenantID,
		FormSubmissionID: submissionID,
		ContactID:        job.Data.ContactID,
		ConversationID:   job.Data.ConversationID,
		TraceID:          job.Data.TraceID,
	})
	return nil
}

// loadActionableBooking re-reads the booking and its contact. ok=false with
// a nil error means the job should quietly skip: the booking is gone or no
// longer in a state where follow-up makes sense.
func (e *Engine) loadActionableBooking(ctx context.Context, tenantID, bookingID int64) (*model.Booking, *model.Contact, bool, error) {
	booking, err := e.stores.Bookings().GetByID(ctx, tenantID, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "booking gone, skipping job", "booking_id", bookingID)
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if !booking.IsActionable() {
		slog.InfoContext(ctx, "booking no longer actionable, skipping job",
			"booking_id", bookingID, "status", booking.Status)
		return nil, nil, false, nil
	}

	contact, err := e.stores.Contacts().GetByID(ctx, tenantID, booking.ContactID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load contact %d: %w", booking.ContactID, err)
	}
	return booking, contact, true, nil
}

// formatBookingTime renders the appointment time in the tenant's timezone,
// falling back to UTC when the timezone is unset or unknown.
func (e *Engine) formatBookingTime(ctx context.Context, booking *model.Booking) string {
	loc := time.UTC
	tenant, err := e.stores.Tenants().GetByID(ctx, booking.TenantID)
	if err == nil && tenant.Timezone != "" {
		if parsed, err := time.LoadLocation(tenant.Timezone); err == nil {
			loc = parsed
		}
	}
	return booking.ScheduledAt.In(loc).Format("Monday, January 2 at 3:04 PM")
}
