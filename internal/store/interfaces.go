package store

import (
	"context"
	"errors"
	"time"

	"bookline.app/core/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// TenantStore defines the contract for tenant data access
type TenantStore interface {
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
	Create(ctx context.Context, tenant *model.Tenant) error
}

// ChannelConfigStore resolves per-tenant outbound provider configuration
type ChannelConfigStore interface {
	GetByTenantAndChannel(ctx context.Context, tenantID int64, channel model.Channel) (*model.TenantChannelConfig, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.TenantChannelConfig, error)
	Create(ctx context.Context, cfg *model.TenantChannelConfig) error
}

// ContactStore defines the contract for contact data access
type ContactStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, tenantID, id int64) error
	ListByTenant(ctx context.Context, tenantID int64) ([]model.Contact, error)
}

// BookingTypeStore defines the contract for booking type data access
type BookingTypeStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.BookingType, error)
	Create(ctx context.Context, bt *model.BookingType) error
	ListByTenant(ctx context.Context, tenantID int64) ([]model.BookingType, error)
	// ListFormTemplates returns the active intake forms linked to a booking type.
	ListFormTemplates(ctx context.Context, tenantID, bookingTypeID int64) ([]model.FormTemplate, error)
	LinkFormTemplate(ctx context.Context, tenantID, bookingTypeID, formTemplateID int64) error
}

// BookingStore defines the contract for booking data access
type BookingStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.Booking, error)
	Create(ctx context.Context, booking *model.Booking) error
	UpdateStatus(ctx context.Context, tenantID, id int64, status model.BookingStatus) error
	ListByTenant(ctx context.Context, tenantID int64, limit int32) ([]model.Booking, error)
	ListByContact(ctx context.Context, tenantID, contactID int64) ([]model.Booking, error)
}

// FormTemplateStore defines the contract for form template data access
type FormTemplateStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.FormTemplate, error)
	Create(ctx context.Context, tmpl *model.FormTemplate) error
	ListByTenant(ctx context.Context, tenantID int64) ([]model.FormTemplate, error)
}

// FormSubmissionStore defines the contract for form submission data access
type FormSubmissionStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.FormSubmission, error)
	Create(ctx context.Context, sub *model.FormSubmission) error
	// Complete records answers and transitions the submission to completed.
	Complete(ctx context.Context, tenantID, id int64, answers []byte) error
	// MarkOverdueIfPending transitions pending -> overdue atomically and
	// reports whether this call made the transition. A submission already
	// completed or overdue is left untouched and returns false.
	MarkOverdueIfPending(ctx context.Context, tenantID, id int64) (bool, error)
	ListByBooking(ctx context.Context, tenantID, bookingID int64) ([]model.FormSubmission, error)
}

// InventoryStore defines the contract for inventory data access
type InventoryStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.InventoryItem, error)
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	// Deduct atomically subtracts qty and returns the updated item.
	Deduct(ctx context.Context, tenantID, id, qty int64) (*model.InventoryItem, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.InventoryItem, error)
	GetByBookingType(ctx context.Context, tenantID, bookingTypeID int64) (*model.InventoryItem, error)
}

// ConversationStore defines the contract for conversation data access
type ConversationStore interface {
	GetByID(ctx context.Context, tenantID, id int64) (*model.Conversation, error)
	GetOrCreate(ctx context.Context, tenantID, contactID int64, channel model.Channel) (*model.Conversation, error)
	TouchLastMessage(ctx context.Context, tenantID, id int64, at time.Time) error
}

// MessageStore defines the contract for message data access
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, tenantID, conversationID int64, limit int32) ([]model.Message, error)
}

// IntegrationLogStore records outbound send attempts. Recent rows double as
// the idempotency substrate for notification dedup.
type IntegrationLogStore interface {
	Create(ctx context.Context, entry *model.IntegrationLog) error
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errMsg string, retryCount int) error
	// CountRecentSends counts non-failed attempts of the same message,
	// keyed by subject, to recipient on channel since the given time, for
	// the dedup-window check.
	CountRecentSends(ctx context.Context, tenantID int64, channel model.Channel, recipient, subject string, since time.Time) (int, error)
	ListByTenant(ctx context.Context, tenantID int64, limit int32) ([]model.IntegrationLog, error)
}

// AlertStore defines the contract for operational alert data access
type AlertStore interface {
	Create(ctx context.Context, alert *model.Alert) error
	// HasActive reports whether an active alert exists for type+subject.
	HasActive(ctx context.Context, tenantID int64, alertType model.AlertType, subjectID int64) (bool, error)
	Resolve(ctx context.Context, tenantID, id int64) error
	ListActive(ctx context.Context, tenantID int64) ([]model.Alert, error)
}
