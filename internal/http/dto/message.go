package dto

import (
	"time"

	"bookline.app/core/internal/model"
)

type StaffReplyRequest struct {
	Body string `json:"body" binding:"required,min=1,max=8192"`
}

type MessageResponse struct {
	ID             int64     `json:"id,string"`
	ConversationID int64     `json:"conversation_id,string"`
	Direction      string    `json:"direction"`
	Sender         string    `json:"sender"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

func ToMessageResponse(m *model.Message) *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Direction:      string(m.Direction),
		Sender:         string(m.Sender),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
}

func ToMessageResponses(messages []model.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, *ToMessageResponse(&messages[i]))
	}
	return out
}
