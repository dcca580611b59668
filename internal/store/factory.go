package store

import (
	"bookline.app/core/core/db"
)

// Provider exposes the typed store accessors. Production code uses Stores;
// tests substitute hand-rolled fakes.
type Provider interface {
	Tenants() TenantStore
	ChannelConfigs() ChannelConfigStore
	Contacts() ContactStore
	BookingTypes() BookingTypeStore
	Bookings() BookingStore
	FormTemplates() FormTemplateStore
	FormSubmissions() FormSubmissionStore
	Inventory() InventoryStore
	Conversations() ConversationStore
	Messages() MessageStore
	IntegrationLogs() IntegrationLogStore
	Alerts() AlertStore
}

// Stores provides typed accessors over one Querier. Construct it from the
// pool for standalone reads, or from a transaction via the service layer's
// TxRunner for transactional work.
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Tenants() TenantStore {
	return &tenantStore{q: s.q}
}

func (s *Stores) ChannelConfigs() ChannelConfigStore {
	return &channelConfigStore{q: s.q}
}

func (s *Stores) Contacts() ContactStore {
	return &contactStore{q: s.q}
}

func (s *Stores) BookingTypes() BookingTypeStore {
	return &bookingTypeStore{q: s.q}
}

func (s *Stores) Bookings() BookingStore {
	return &bookingStore{q: s.q}
}

func (s *Stores) FormTemplates() FormTemplateStore {
	return &formTemplateStore{q: s.q}
}

func (s *Stores) FormSubmissions() FormSubmissionStore {
	return &formSubmissionStore{q: s.q}
}

func (s *Stores) Inventory() InventoryStore {
	return &inventoryStore{q: s.q}
}

func (s *Stores) Conversations() ConversationStore {
	return &conversationStore{q: s.q}
}

func (s *Stores) Messages() MessageStore {
	return &messageStore{q: s.q}
}

func (s *Stores) IntegrationLogs() IntegrationLogStore {
	return &integrationLogStore{q: s.q}
}

func (s *Stores) Alerts() AlertStore {
	return &alertStore{q: s.q}
}
