package dto

import (
	"time"

	"bookline.app/core/internal/model"
)

type CreateContactRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=1,max=255"`
	LastName  string  `json:"last_name" binding:"max=255"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,e164"`
	Notes     *string `json:"notes,omitempty" binding:"omitempty,max=4096"`
}

type UpdateContactRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=1,max=255"`
	LastName  string  `json:"last_name" binding:"max=255"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=255"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,e164"`
	Notes     *string `json:"notes,omitempty" binding:"omitempty,max=4096"`
}

type ContactResponse struct {
	ID        int64     `json:"id,string"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToContactResponse(c *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToContactResponses(contacts []model.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, *ToContactResponse(&contacts[i]))
	}
	return out
}
