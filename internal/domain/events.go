package domain

import (
	"time"

	validation "github.com/jellydator/validation"
)

// ContactCreated fires after a contact row is committed.
type ContactCreated struct {
	TenantID       int64
	ContactID      int64
	ConversationID int64
	TraceID        string
}

func (e ContactCreated) EventName() string { return EventContactCreated }
func (e ContactCreated) Tenant() int64     { return e.TenantID }

func (e ContactCreated) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.ContactID, validation.Required),
	)
}

// BookingCreated fires after a booking row is committed. ScheduledAt is a
// snapshot; handlers re-read the booking before acting on it.
type BookingCreated struct {
	TenantID       int64
	BookingID      int64
	BookingTypeID  int64
	ContactID      int64
	ConversationID int64
	ScheduledAt    time.Time
	TraceID        string
}

func (e BookingCreated) EventName() string { return EventBookingCreated }
func (e BookingCreated) Tenant() int64     { return e.TenantID }

func (e BookingCreated) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.BookingID, validation.Required),
		validation.Field(&e.ContactID, validation.Required),
		validation.Field(&e.ScheduledAt, validation.Required),
	)
}

// BookingCancelled fires after a booking transitions to cancelled.
type BookingCancelled struct {
	TenantID  int64
	BookingID int64
	TraceID   string
}

func (e BookingCancelled) EventName() string { return EventBookingCancelled }
func (e BookingCancelled) Tenant() int64     { return e.TenantID }

// StaffReplied fires when a human staff member sends a message in a
// conversation. It triggers cancellation of every delayed automation job
// correlated to that conversation: a human response supersedes automated
// follow-up.
type StaffReplied struct {
	TenantID       int64
	ConversationID int64
	MessageID      int64
	TraceID        string
}

func (e StaffReplied) EventName() string { return EventStaffReplied }
func (e StaffReplied) Tenant() int64     { return e.TenantID }

func (e StaffReplied) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.ConversationID, validation.Required),
	)
}

// FormPending fires for each form submission created for a new booking.
type FormPending struct {
	TenantID         int64
	FormSubmissionID int64
	BookingID        int64
	ContactID        int64
	ConversationID   int64
	TraceID          string
}

func (e FormPending) EventName() string { return EventFormPending }
func (e FormPending) Tenant() int64     { return e.TenantID }

func (e FormPending) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.FormSubmissionID, validation.Required),
	)
}

// FormOverdue fires when the overdue check finds a submission still pending.
type FormOverdue struct {
	TenantID         int64
	FormSubmissionID int64
	ContactID        int64
	ConversationID   int64
	TraceID          string
}

func (e FormOverdue) EventName() string { return EventFormOverdue }
func (e FormOverdue) Tenant() int64     { return e.TenantID }

// InventoryLow fires when a deduction moves an item from above its reorder
// level to at-or-below it. Emitted once per crossing, not per deduction.
type InventoryLow struct {
	TenantID     int64
	ItemID       int64
	Quantity     int64
	ReorderLevel int64
	TraceID      string
}

func (e InventoryLow) EventName() string { return EventInventoryLow }
func (e InventoryLow) Tenant() int64     { return e.TenantID }

func (e InventoryLow) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.ItemID, validation.Required),
	)
}

// HandlerError is dispatched on the reserved "error" event when a handler
// fails. Listeners (metrics, alerting) may subscribe to it; errors raised
// while handling it are logged and dropped, never re-emitted.
type HandlerError struct {
	TenantID int64
	Event    string // name of the event whose handler failed
	Err      error
}

func (e HandlerError) EventName() string { return EventError }
func (e HandlerError) Tenant() int64     { return e.TenantID }
