package model

import "time"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type SendStatus string

const (
	SendStatusPending SendStatus = "pending"
	SendStatusSent    SendStatus = "sent"
	SendStatusFailed  SendStatus = "failed"
)

// IntegrationLog is an append-only record of one outbound send attempt.
// Rows double as the idempotency substrate: handlers look back over recent
// entries to suppress duplicate sends from redundant event delivery.
type IntegrationLog struct {
	ID         int64
	TenantID   int64
	Channel    Channel
	Provider   string
	Recipient  string
	Subject    *string
	Content    string
	Status     SendStatus
	Error      *string
	RetryCount int
	SentAt     *time.Time
	CreatedAt  time.Time
}
