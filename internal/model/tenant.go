package model

import "time"

// Tenant is the isolation boundary for all business data.
// Every entity, event, and automation job carries a tenant id.
type Tenant struct {
	ID         int64
	Name       string
	Slug       string
	OwnerEmail string
	Timezone   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TenantChannelConfig holds per-tenant outbound provider credentials for one channel.
type TenantChannelConfig struct {
	ID         int64
	TenantID   int64
	Channel    Channel
	Provider   string // e.g. "smtp", "twilio"
	Sender     string // from-address or sender number
	Credential string // provider API key / secret reference
	IsEnabled  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
