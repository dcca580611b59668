package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/service"
)

var _ = Describe("ContactService", func() {
	var (
		stores   *mockStores
		txRunner *fakeTxRunner
		eventBus *bus.Bus
		svc      service.ContactService
		events   []domain.ContactCreated
	)

	strPtr := func(s string) *string { return &s }

	BeforeEach(func() {
		stores = newMockStores()
		txRunner = &fakeTxRunner{stores: stores}
		eventBus = bus.New()
		svc = service.NewContactService(txRunner, eventBus)

		events = nil
		eventBus.On(domain.EventContactCreated, func(ctx context.Context, evt domain.Event) error {
			events = append(events, evt.(domain.ContactCreated))
			return nil
		})
	})

	Describe("Create", func() {
		It("creates the contact with a conversation on the preferred channel", func() {
			var openedOn model.Channel
			stores.conversations.getOrCreateFn = func(ctx context.Context, tenantID, contactID int64, channel model.Channel) (*model.Conversation, error) {
				openedOn = channel
				return &model.Conversation{ID: 300, TenantID: tenantID, ContactID: contactID, Channel: channel}, nil
			}

			contact, err := svc.Create(context.Background(), 7, service.CreateContactInput{
				FirstName: "Ana",
				Email:     strPtr("ana@example.com"),
				Phone:     strPtr("+34600111222"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(stores.contacts.created).To(HaveLen(1))
			Expect(openedOn).To(Equal(model.ChannelEmail)) // email wins over sms

			Expect(events).To(HaveLen(1))
			Expect(events[0].ContactID).To(Equal(contact.ID))
			Expect(events[0].ConversationID).To(Equal(int64(300)))
		})

		It("creates a contact with no reachable channel and no conversation", func() {
			contact, err := svc.Create(context.Background(), 7, service.CreateContactInput{FirstName: "Ana"})

			Expect(err).NotTo(HaveOccurred())
			Expect(contact).NotTo(BeNil())
			Expect(events).To(HaveLen(1))
			Expect(events[0].ConversationID).To(BeZero())
		})

		It("announces nothing when the transaction fails", func() {
			txRunner.err = errors.New("deadlock detected")

			_, err := svc.Create(context.Background(), 7, service.CreateContactInput{FirstName: "Ana"})

			Expect(err).To(HaveOccurred())
			Expect(events).To(BeEmpty())
		})
	})
})
