package dto

import (
	"time"

	"bookline.app/core/internal/model"
)

type AlertResponse struct {
	ID        int64     `json:"id,string"`
	Type      string    `json:"type"`
	SubjectID int64     `json:"subject_id,string"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func ToAlertResponse(a *model.Alert) *AlertResponse {
	return &AlertResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		SubjectID: a.SubjectID,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

func ToAlertResponses(alerts []model.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, *ToAlertResponse(&alerts[i]))
	}
	return out
}
