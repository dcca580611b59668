package notify_test

import (
	"context"
	"sync"
	"time"

	"bookline.app/core/internal/model"
	"bookline.app/core/internal/notify"
	"bookline.app/core/internal/store"
)

// mockStores implements store.Provider for the accessors the gateway uses;
// the rest panic if touched.
type mockStores struct {
	channelConfigs  *mockChannelConfigStore
	integrationLogs *mockIntegrationLogStore
}

func newMockStores() *mockStores {
	return &mockStores{
		channelConfigs:  &mockChannelConfigStore{},
		integrationLogs: newMockIntegrationLogStore(),
	}
}

func (m *mockStores) ChannelConfigs() store.ChannelConfigStore   { return m.channelConfigs }
func (m *mockStores) IntegrationLogs() store.IntegrationLogStore { return m.integrationLogs }

func (m *mockStores) Tenants() store.TenantStore                 { panic("not used") }
func (m *mockStores) Contacts() store.ContactStore               { panic("not used") }
func (m *mockStores) BookingTypes() store.BookingTypeStore       { panic("not used") }
func (m *mockStores) Bookings() store.BookingStore               { panic("not used") }
func (m *mockStores) FormTemplates() store.FormTemplateStore     { panic("not used") }
func (m *mockStores) FormSubmissions() store.FormSubmissionStore { panic("not used") }
func (m *mockStores) Inventory() store.InventoryStore            { panic("not used") }
func (m *mockStores) Conversations() store.ConversationStore     { panic("not used") }
func (m *mockStores) Messages() store.MessageStore               { panic("not used") }
func (m *mockStores) Alerts() store.AlertStore                   { panic("not used") }

type mockChannelConfigStore struct {
	getFn func(ctx context.Context, tenantID int64, channel model.Channel) (*model.TenantChannelConfig, error)
}

func (m *mockChannelConfigStore) GetByTenantAndChannel(ctx context.Context, tenantID int64, channel model.Channel) (*model.TenantChannelConfig, error) {
	if m.getFn != nil {
		return m.getFn(ctx, tenantID, channel)
	}
	return nil, store.ErrNotFound
}

func (m *mockChannelConfigStore) ListByTenant(context.Context, int64) ([]model.TenantChannelConfig, error) {
	return nil, nil
}

func (m *mockChannelConfigStore) Create(context.Context, *model.TenantChannelConfig) error {
	return nil
}

// mockIntegrationLogStore keeps rows in memory so tests can assert on the
// recorded attempt lifecycle.
type mockIntegrationLogStore struct {
	mu      sync.Mutex
	entries []*model.IntegrationLog
}

func newMockIntegrationLogStore() *mockIntegrationLogStore {
	return &mockIntegrationLogStore{}
}

func (m *mockIntegrationLogStore) Create(_ context.Context, entry *model.IntegrationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *entry
	clone.CreatedAt = time.Now()
	m.entries = append(m.entries, &clone)
	return nil
}

func (m *mockIntegrationLogStore) MarkSent(_ context.Context, id int64, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.ID == id {
			entry.Status = model.SendStatusSent
			entry.SentAt = &sentAt
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockIntegrationLogStore) MarkFailed(_ context.Context, id int64, errMsg string, retryCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.entries {
		if entry.ID == id {
			entry.Status = model.SendStatusFailed
			entry.Error = &errMsg
			entry.RetryCount = retryCount
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockIntegrationLogStore) CountRecentSends(_ context.Context, tenantID int64, channel model.Channel, recipient, subject string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, entry := range m.entries {
		if entry.TenantID == tenantID && entry.Channel == channel && entry.Recipient == recipient &&
			entry.Subject != nil && *entry.Subject == subject &&
			entry.Status != model.SendStatusFailed && !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockIntegrationLogStore) ListByTenant(context.Context, int64, int32) ([]model.IntegrationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.IntegrationLog, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, *entry)
	}
	return out, nil
}

func (m *mockIntegrationLogStore) all() []model.IntegrationLog {
	out, _ := m.ListByTenant(context.Background(), 0, 0)
	return out
}

// recordingSender captures provider calls and fails a configurable number
// of times before succeeding.
type recordingSender struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
	messages []notify.Message
}

func (s *recordingSender) Send(_ context.Context, _ *model.TenantChannelConfig, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
