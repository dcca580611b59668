package automation

import (
	"context"
	"fmt"
	"log/slog"

	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/queue"
)

// handleContactCreated sends the welcome message over every channel the new
// contact is reachable on.
func (e *Engine) handleContactCreated(ctx context.Context, evt domain.Event) error {
	created, ok := evt.(domain.ContactCreated)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventContactCreated, evt)
	}

	contact, err := e.stores.Contacts().GetByID(ctx, created.TenantID, created.ContactID)
	if err != nil {
		return fmt.Errorf("load contact %d: %w", created.ContactID, err)
	}

	e.sendToContact(ctx, contact,
		"Welcome!",
		fmt.Sprintf("Hi %s, thanks for joining. We'll keep you posted about your bookings here.", contact.FirstName),
	)
	return nil
}

// handleBookingCreated schedules the follow-up for a new booking: an
// immediate confirmation, a reminder ahead of the appointment, and the
// creation of intake form requests.
func (e *Engine) handleBookingCreated(ctx context.Context, evt domain.Event) error {
	created, ok := evt.(domain.BookingCreated)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventBookingCreated, evt)
	}

	data := queue.Data{
		TenantID:       created.TenantID,
		BookingID:      created.BookingID,
		ContactID:      created.ContactID,
		ConversationID: created.ConversationID,
		TraceID:        created.TraceID,
	}

	e.queue.Enqueue(ctx, e.queueName, queue.JobTypeBookingConfirmation, data, queue.Options{
		Identity: queue.Identity(queue.JobTypeBookingConfirmation, created.TenantID, created.BookingID),
	})

	// The reminder lands lead-time before the appointment. A booking already
	// inside the lead window gets no reminder; the confirmation just sent
	// covers it.
	reminderDelay := created.ScheduledAt.Add(-e.cfg.ReminderLeadTime).Sub(e.now())
	if reminderDelay > 0 {
		e.queue.Enqueue(ctx, e.queueName, queue.JobTypeBookingReminder, data, queue.Options{
			Delay:    reminderDelay,
			Identity: queue.Identity(queue.JobTypeBookingReminder, created.TenantID, created.BookingID),
		})
	} else {
		slog.InfoContext(ctx, "booking inside reminder lead time, no reminder scheduled",
			"scheduled_at", created.ScheduledAt)
	}

	e.queue.Enqueue(ctx, e.queueName, queue.JobTypeCreateFormRequests, data, queue.Options{
		Identity: queue.Identity(queue.JobTypeCreateFormRequests, created.TenantID, created.BookingID),
	})
	return nil
}

// handleBookingCancelled withdraws the follow-up still scheduled for the
// booking. Jobs already dispatched run to completion and skip themselves on
// the status re-check.
func (e *Engine) handleBookingCancelled(ctx context.Context, evt domain.Event) error {
	cancelled, ok := evt.(domain.BookingCancelled)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventBookingCancelled, evt)
	}

	removed := e.queue.CancelByCorrelationKey(ctx, e.queueName,
		queue.CorrelationBooking, fmt.Sprintf("%d", cancelled.BookingID))
	slog.InfoContext(ctx, "cancelled scheduled booking follow-up", "removed", removed)
	return nil
}

// handleStaffReplied withdraws every delayed job correlated to the
// conversation. A human response supersedes automated follow-up.
func (e *Engine) handleStaffReplied(ctx context.Context, evt domain.Event) error {
	replied, ok := evt.(domain.StaffReplied)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventStaffReplied, evt)
	}

	removed := e.queue.CancelByCorrelationKey(ctx, e.queueName,
		queue.CorrelationConversation, fmt.Sprintf("%d", replied.ConversationID))
	slog.InfoContext(ctx, "staff replied, cancelled automated follow-up",
		"conversation_id", replied.ConversationID, "removed", removed)
	return nil
}

// handleFormPending schedules the reminder and the overdue check for one
// form submission, both correlated to the submission's conversation so a
// staff reply withdraws them.
func (e *Engine) handleFormPending(ctx context.Context, evt domain.Event) error {
	pending, ok := evt.(domain.FormPending)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventFormPending, evt)
	}

	data := queue.Data{
		TenantID:         pending.TenantID,
		BookingID:        pending.BookingID,
		ContactID:        pending.ContactID,
		ConversationID:   pending.ConversationID,
		FormSubmissionID: pending.FormSubmissionID,
		TraceID:          pending.TraceID,
	}

	e.queue.Enqueue(ctx, e.queueName, queue.JobTypeFormReminder, data, queue.Options{
		Delay:    e.cfg.FormReminderDelay,
		Identity: queue.Identity(queue.JobTypeFormReminder, pending.TenantID, pending.FormSubmissionID),
	})
	e.queue.Enqueue(ctx, e.queueName, queue.JobTypeFormOverdueCheck, data, queue.Options{
		Delay:    e.cfg.FormOverdueDelay,
		Identity: queue.Identity(queue.JobTypeFormOverdueCheck, pending.TenantID, pending.FormSubmissionID),
	})
	return nil
}

// handleFormOverdue nudges the contact one last time, raises the dashboard
// alert, and tells the owner. Fired by the overdue-check processor, at most
// once per submission.
func (e *Engine) handleFormOverdue(ctx context.Context, evt domain.Event) error {
	overdue, ok := evt.(domain.FormOverdue)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventFormOverdue, evt)
	}

	contact, err := e.stores.Contacts().GetByID(ctx, overdue.TenantID, overdue.ContactID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load contact for overdue nudge", "error", err)
	} else {
		e.sendToContact(ctx, contact,
			"Your intake form is overdue",
			fmt.Sprintf("Hi %s, we still need your intake form before your appointment. Please complete it as soon as you can.", contact.FirstName),
		)
	}

	raised := e.raiseAlert(ctx, overdue.TenantID, model.AlertTypeFormOverdue, overdue.FormSubmissionID,
		fmt.Sprintf("Intake form for submission %d is overdue", overdue.FormSubmissionID))
	if raised {
		e.notifyOwner(ctx, overdue.TenantID,
			"Intake form overdue",
			fmt.Sprintf("A contact has not completed their intake form (submission %d). You may want to follow up personally.", overdue.FormSubmissionID))
	}
	return nil
}

// handleInventoryLow raises the low-stock alert and tells the owner.
func (e *Engine) handleInventoryLow(ctx context.Context, evt domain.Event) error {
	low, ok := evt.(domain.InventoryLow)
	if !ok {
		return fmt.Errorf("unexpected payload for %s: %T", domain.EventInventoryLow, evt)
	}

	item, err := e.stores.Inventory().GetByID(ctx, low.TenantID, low.ItemID)
	if err != nil {
		return fmt.Errorf("load inventory item %d: %w", low.ItemID, err)
	}

	raised := e.raiseAlert(ctx, low.TenantID, model.AlertTypeInventoryLow, low.ItemID,
		fmt.Sprintf("%s is low on stock: %d left (reorder at %d)", item.Name, low.Quantity, low.ReorderLevel))
	if raised {
		e.notifyOwner(ctx, low.TenantID,
			fmt.Sprintf("Low stock: %s", item.Name),
			fmt.Sprintf("%s is down to %d units (reorder level %d). Time to restock.", item.Name, low.Quantity, low.ReorderLevel))
	}
	return nil
}
