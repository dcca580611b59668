package dto

import (
	"encoding/json"
	"time"

	"bookline.app/core/internal/model"
)

type CreateFormTemplateRequest struct {
	Name   string          `json:"name" binding:"required,min=1,max=255"`
	Fields json.RawMessage `json:"fields" binding:"required"`
}

type LinkFormTemplateRequest struct {
	BookingTypeID  int64 `json:"booking_type_id,string" binding:"required"`
	FormTemplateID int64 `json:"form_template_id,string" binding:"required"`
}

type CompleteSubmissionRequest struct {
	Answers json.RawMessage `json:"answers" binding:"required"`
}

type FormTemplateResponse struct {
	ID        int64           `json:"id,string"`
	Name      string          `json:"name"`
	Fields    json.RawMessage `json:"fields"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToFormTemplateResponse(t *model.FormTemplate) *FormTemplateResponse {
	return &FormTemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Fields:    t.Fields,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}

func ToFormTemplateResponses(templates []model.FormTemplate) []FormTemplateResponse {
	out := make([]FormTemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, *ToFormTemplateResponse(&templates[i]))
	}
	return out
}

type FormSubmissionResponse struct {
	ID             int64           `json:"id,string"`
	FormTemplateID int64           `json:"form_template_id,string"`
	BookingID      int64           `json:"booking_id,string"`
	ContactID      int64           `json:"contact_id,string"`
	Status         string          `json:"status"`
	Answers        json.RawMessage `json:"answers,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToFormSubmissionResponse(s *model.FormSubmission) *FormSubmissionResponse {
	return &FormSubmissionResponse{
		ID:             s.ID,
		FormTemplateID: s.FormTemplateID,
		BookingID:      s.BookingID,
		ContactID:      s.ContactID,
		Status:         string(s.Status),
		Answers:        s.Answers,
		CompletedAt:    s.CompletedAt,
		CreatedAt:      s.CreatedAt,
	}
}
