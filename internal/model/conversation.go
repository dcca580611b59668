package model

import "time"

type MessageDirection string

const (
	MessageDirectionInbound  MessageDirection = "inbound"
	MessageDirectionOutbound MessageDirection = "outbound"
)

type MessageSender string

const (
	MessageSenderContact    MessageSender = "contact"
	MessageSenderStaff      MessageSender = "staff"
	MessageSenderAutomation MessageSender = "automation"
)

// Conversation groups all messages exchanged with one contact. Its id is the
// correlation key used to cancel scheduled follow-up when a human replies.
type Conversation struct {
	ID            int64
	TenantID      int64
	ContactID     int64
	Channel       Channel
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Message struct {
	ID             int64
	TenantID       int64
	ConversationID int64
	Direction      MessageDirection
	Sender         MessageSender
	Body           string
	CreatedAt      time.Time
}
