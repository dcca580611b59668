// Package queue implements the durable, delayed automation job queue.
//
// Jobs are named, grouped into queues, optionally delayed, deduplicated by a
// caller-supplied identity string, and cancellable in bulk by business
// correlation key. The backing broker is Redis; when it is unreachable every
// operation degrades to a logged no-op so the primary request path keeps
// working with automation disabled.
package queue

import (
	"fmt"
	"strconv"
	"time"
)

// JobType names form a flat namespace, distinct from domain event names,
// used only within the queue.
type JobType string

const (
	JobTypeBookingConfirmation JobType = "booking_confirmation"
	JobTypeBookingReminder     JobType = "booking_reminder"
	JobTypeCreateFormRequests  JobType = "form_request_create"
	JobTypeFormReminder        JobType = "form_reminder"
	JobTypeFormOverdueCheck    JobType = "form_overdue_check"
)

// Correlation key names recognized by CancelByCorrelationKey. They address
// the job's data fields, independent of the queue-assigned job id.
const (
	CorrelationConversation   = "conversation_id"
	CorrelationBooking        = "booking_id"
	CorrelationFormSubmission = "form_submission_id"
)

// Data is the payload carried by every automation job. Zero fields are not
// stored, so correlation scans only match jobs that actually carry the key.
type Data struct {
	TenantID         int64
	BookingID        int64
	ContactID        int64
	ConversationID   int64
	FormSubmissionID int64
	TraceID          string
}

// values flattens the payload into broker fields, skipping zero values.
func (d Data) values() map[string]any {
	values := map[string]any{}
	if d.TenantID != 0 {
		values["tenant_id"] = d.TenantID
	}
	if d.BookingID != 0 {
		values[CorrelationBooking] = d.BookingID
	}
	if d.ContactID != 0 {
		values["contact_id"] = d.ContactID
	}
	if d.ConversationID != 0 {
		values[CorrelationConversation] = d.ConversationID
	}
	if d.FormSubmissionID != 0 {
		values[CorrelationFormSubmission] = d.FormSubmissionID
	}
	if d.TraceID != "" {
		values["trace_id"] = d.TraceID
	}
	return values
}

// Field returns the payload value for a correlation key name as a string,
// or "" when the job does not carry that key.
func (d Data) Field(key string) string {
	switch key {
	case "tenant_id":
		return formatID(d.TenantID)
	case CorrelationBooking:
		return formatID(d.BookingID)
	case "contact_id":
		return formatID(d.ContactID)
	case CorrelationConversation:
		return formatID(d.ConversationID)
	case CorrelationFormSubmission:
		return formatID(d.FormSubmissionID)
	case "trace_id":
		return d.TraceID
	default:
		return ""
	}
}

func formatID(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

// Job is one unit of scheduled automation work.
type Job struct {
	ID         string
	Queue      string
	Type       JobType
	Data       Data
	Identity   string
	EligibleAt time.Time
	EnqueuedAt time.Time
}

// Options configures one enqueue.
type Options struct {
	// Delay schedules the job to become eligible no earlier than now+Delay.
	// Zero means immediately eligible.
	Delay time.Duration

	// Identity deduplicates logically-equivalent enqueues: while a job with
	// the same identity is pending, a second enqueue is a no-op returning
	// the existing job id.
	Identity string
}

// Result reports the outcome of an enqueue. A broker outage yields
// Scheduled=false with no job id; callers treat automation as best-effort
// and never fail their primary operation over it.
type Result struct {
	Scheduled bool
	Duplicate bool
	JobID     string
}

// Identity builds the deterministic identity string for a logical job:
// the same job type for the same subject in the same tenant always maps to
// the same identity, so duplicate event deliveries collapse into one job.
func Identity(jobType JobType, tenantID, subjectID int64) string {
	return fmt.Sprintf("%s:%d:%d", jobType, tenantID, subjectID)
}
