package model

import "time"

type FormSubmissionStatus string

const (
	FormSubmissionStatusPending   FormSubmissionStatus = "pending"
	FormSubmissionStatusCompleted FormSubmissionStatus = "completed"
	FormSubmissionStatusOverdue   FormSubmissionStatus = "overdue"
)

// FormTemplate is an intake form linked to one or more booking types.
// Creating a booking of a linked type requests a submission from the contact.
type FormTemplate struct {
	ID        int64
	TenantID  int64
	Name      string
	Fields    []byte // JSON field definitions, opaque to the automation core
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type FormSubmission struct {
	ID             int64
	TenantID       int64
	FormTemplateID int64
	BookingID      int64
	ContactID      int64
	Status         FormSubmissionStatus
	Answers        []byte // JSON answers, nil until completed
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
