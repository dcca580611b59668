package service

import (
	"context"
	"fmt"
	"time"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

type MessageService interface {
	// StaffReply records an outbound message written by a human staff
	// member and announces it, which withdraws the conversation's scheduled
	// automation.
	StaffReply(ctx context.Context, tenantID, conversationID int64, body string) (*model.Message, error)
	// RecordInbound records a message received from the contact.
	RecordInbound(ctx context.Context, tenantID, conversationID int64, body string) (*model.Message, error)
	List(ctx context.Context, tenantID, conversationID int64, limit int32) ([]model.Message, error)
}

type messageService struct {
	txRunner TxRunner
	bus      *bus.Bus
}

func NewMessageService(txRunner TxRunner, b *bus.Bus) MessageService {
	return &messageService{txRunner: txRunner, bus: b}
}

func (s *messageService) StaffReply(ctx context.Context, tenantID, conversationID int64, body string) (*model.Message, error) {
	msg, err := s.record(ctx, tenantID, conversationID, model.MessageDirectionOutbound, model.MessageSenderStaff, body)
	if err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, domain.StaffReplied{
		TenantID:       tenantID,
		ConversationID: conversationID,
		MessageID:      msg.ID,
		TraceID:        logger.TraceID(ctx),
	})
	return msg, nil
}

func (s *messageService) RecordInbound(ctx context.Context, tenantID, conversationID int64, body string) (*model.Message, error) {
	return s.record(ctx, tenantID, conversationID, model.MessageDirectionInbound, model.MessageSenderContact, body)
}

func (s *messageService) record(ctx context.Context, tenantID, conversationID int64, direction model.MessageDirection, sender model.MessageSender, body string) (*model.Message, error) {
	msg := &model.Message{
		ID:             id.New(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		Direction:      direction,
		Sender:         sender,
		Body:           body,
	}

	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		if _, err := stores.Conversations().GetByID(ctx, tenantID, conversationID); err != nil {
			return fmt.Errorf("loading conversation: %w", err)
		}
		if err := stores.Messages().Create(ctx, msg); err != nil {
			return fmt.Errorf("creating message: %w", err)
		}
		return stores.Conversations().TouchLastMessage(ctx, tenantID, conversationID, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) List(ctx context.Context, tenantID, conversationID int64, limit int32) ([]model.Message, error) {
	var messages []model.Message
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		var err error
		messages, err = stores.Messages().ListByConversation(ctx, tenantID, conversationID, limit)
		return err
	})
	return messages, err
}
