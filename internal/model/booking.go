package model

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// BookingType describes a bookable service (duration, price, linked intake forms).
type BookingType struct {
	ID              int64
	TenantID        int64
	Name            string
	DurationMinutes int
	PriceCents      int64
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Booking struct {
	ID            int64
	TenantID      int64
	ContactID     int64
	BookingTypeID int64
	Status        BookingStatus
	ScheduledAt   time.Time
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActionable reports whether automated follow-up (reminders, forms) still
// makes sense for this booking. Cancelled and completed bookings are final.
func (b *Booking) IsActionable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
