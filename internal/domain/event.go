// Package domain defines the canonical event vocabulary of the automation
// core. Every state-changing operation emits one of these typed events on
// the in-process bus; automation handlers subscribe by name.
package domain

// Event names form a flat namespace, distinct from queue job types.
const (
	EventContactCreated   = "contact.created"
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventStaffReplied     = "message.staff_replied"
	EventFormPending      = "form.pending"
	EventFormOverdue      = "form.overdue"
	EventInventoryLow     = "inventory.low"

	// EventError is reserved: the bus re-routes handler failures here so a
	// failing listener never breaks the emitter or its siblings.
	EventError = "error"
)

// Event is implemented by every domain event. Payloads are typed structs
// rather than loose maps, so the required fields of each event are enforced
// by the compiler; Validate (where implemented) only guards value-level
// invariants and is warn-only at dispatch.
type Event interface {
	EventName() string
	Tenant() int64
}
