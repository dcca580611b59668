package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/service"
	"bookline.app/core/internal/store"
)

var _ = Describe("MessageService", func() {
	var (
		stores   *mockStores
		eventBus *bus.Bus
		svc      service.MessageService
		replies  []domain.StaffReplied
	)

	BeforeEach(func() {
		stores = newMockStores()
		eventBus = bus.New()
		svc = service.NewMessageService(&fakeTxRunner{stores: stores}, eventBus)

		stores.conversations.getByIDFn = func(ctx context.Context, tenantID, id int64) (*model.Conversation, error) {
			return &model.Conversation{ID: id, TenantID: tenantID, ContactID: 100, Channel: model.ChannelEmail}, nil
		}

		replies = nil
		eventBus.On(domain.EventStaffReplied, func(ctx context.Context, evt domain.Event) error {
			replies = append(replies, evt.(domain.StaffReplied))
			return nil
		})
	})

	Describe("StaffReply", func() {
		It("records the outbound message and announces the human reply", func() {
			msg, err := svc.StaffReply(context.Background(), 7, 300, "On my way, see you at 4.")

			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Direction).To(Equal(model.MessageDirectionOutbound))
			Expect(msg.Sender).To(Equal(model.MessageSenderStaff))
			Expect(stores.messages.created).To(HaveLen(1))
			Expect(stores.conversations.touched).To(HaveLen(1))

			Expect(replies).To(HaveLen(1))
			Expect(replies[0].ConversationID).To(Equal(int64(300)))
			Expect(replies[0].MessageID).To(Equal(msg.ID))
		})

		It("fails without announcing when the conversation does not exist", func() {
			stores.conversations.getByIDFn = nil

			_, err := svc.StaffReply(context.Background(), 7, 300, "hello")

			Expect(err).To(MatchError(store.ErrNotFound))
			Expect(replies).To(BeEmpty())
		})
	})

	Describe("RecordInbound", func() {
		It("records the contact's message without an announcement", func() {
			msg, err := svc.RecordInbound(context.Background(), 7, 300, "Can we move it to Friday?")

			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Direction).To(Equal(model.MessageDirectionInbound))
			Expect(msg.Sender).To(Equal(model.MessageSenderContact))
			Expect(replies).To(BeEmpty())
		})
	})
})
