package model

import "time"

type AlertType string

const (
	AlertTypeInventoryLow AlertType = "inventory_low"
	AlertTypeFormOverdue  AlertType = "form_overdue"
)

type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

// Alert is an operational flag shown on the tenant dashboard. While an
// ACTIVE alert exists for the same type+subject, handlers do not create
// another one.
type Alert struct {
	ID         int64
	TenantID   int64
	Type       AlertType
	SubjectID  int64 // entity the alert is about (inventory item, form submission)
	Message    string
	Status     AlertStatus
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
