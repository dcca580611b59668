package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (tenant_id, booking_id, etc.) is automatically included in all log statements.
type LogFields struct {
	TenantID         *int64  // Tenant (workspace) ID, the isolation boundary
	BookingID        *int64  // Booking ID
	ContactID        *int64  // Contact ID
	ConversationID   *int64  // Conversation ID used as a cancellation correlation key
	FormSubmissionID *int64  // Form submission ID
	JobType          *string // Automation job type (e.g. "booking_reminder")
	Event            *string // Domain event name (e.g. "booking.created")
	Component        string  // Component name (OTel semantic convention style, e.g. "core.automation.booking")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.TenantID != nil {
		result.TenantID = new.TenantID
	}
	if new.BookingID != nil {
		result.BookingID = new.BookingID
	}
	if new.ContactID != nil {
		result.ContactID = new.ContactID
	}
	if new.ConversationID != nil {
		result.ConversationID = new.ConversationID
	}
	if new.FormSubmissionID != nil {
		result.FormSubmissionID = new.FormSubmissionID
	}
	if new.JobType != nil {
		result.JobType = new.JobType
	}
	if new.Event != nil {
		result.Event = new.Event
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{BookingID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like message bodies or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
