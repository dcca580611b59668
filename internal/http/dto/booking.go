package dto

import (
	"time"

	"bookline.app/core/internal/model"
)

type CreateBookingRequest struct {
	ContactID     int64     `json:"contact_id,string" binding:"required"`
	BookingTypeID int64     `json:"booking_type_id,string" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Notes         *string   `json:"notes,omitempty" binding:"omitempty,max=4096"`
}

// PublicBookingRequest is the self-service booking page payload: contact
// details instead of a contact id, and at least one reachable channel.
type PublicBookingRequest struct {
	FirstName     string    `json:"first_name" binding:"required,min=1,max=255"`
	LastName      string    `json:"last_name" binding:"max=255"`
	Email         *string   `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Phone         *string   `json:"phone,omitempty" binding:"omitempty,e164"`
	BookingTypeID int64     `json:"booking_type_id,string" binding:"required"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
}

type BookingResponse struct {
	ID            int64     `json:"id,string"`
	ContactID     int64     `json:"contact_id,string"`
	BookingTypeID int64     `json:"booking_type_id,string"`
	Status        string    `json:"status"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToBookingResponse(b *model.Booking) *BookingResponse {
	return &BookingResponse{
		ID:            b.ID,
		ContactID:     b.ContactID,
		BookingTypeID: b.BookingTypeID,
		Status:        string(b.Status),
		ScheduledAt:   b.ScheduledAt,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func ToBookingResponses(bookings []model.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, *ToBookingResponse(&bookings[i]))
	}
	return out
}
