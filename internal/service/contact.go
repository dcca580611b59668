package service

import (
	"context"
	"fmt"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

type CreateContactInput struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Notes     *string
}

type ContactService interface {
	Create(ctx context.Context, tenantID int64, input CreateContactInput) (*model.Contact, error)
	Get(ctx context.Context, tenantID, id int64) (*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, tenantID, id int64) error
	List(ctx context.Context, tenantID int64) ([]model.Contact, error)
}

type contactService struct {
	txRunner TxRunner
	bus      *bus.Bus
}

func NewContactService(txRunner TxRunner, b *bus.Bus) ContactService {
	return &contactService{txRunner: txRunner, bus: b}
}

// Create inserts the contact and opens its conversation in one transaction,
// then announces the contact. The event fires only after commit.
func (s *contactService) Create(ctx context.Context, tenantID int64, input CreateContactInput) (*model.Contact, error) {
	contact := &model.Contact{
		ID:        id.New(),
		TenantID:  tenantID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Notes:     input.Notes,
	}

	var conversationID int64
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		if err := stores.Contacts().Create(ctx, contact); err != nil {
			return fmt.Errorf("creating contact: %w", err)
		}

		channel, ok := preferredChannel(contact)
		if !ok {
			return nil
		}
		conv, err := stores.Conversations().GetOrCreate(ctx, tenantID, contact.ID, channel)
		if err != nil {
			return fmt.Errorf("opening conversation: %w", err)
		}
		conversationID = conv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, domain.ContactCreated{
		TenantID:       tenantID,
		ContactID:      contact.ID,
		ConversationID: conversationID,
		TraceID:        logger.TraceID(ctx),
	})
	return contact, nil
}

func (s *contactService) Get(ctx context.Context, tenantID, contactID int64) (*model.Contact, error) {
	var contact *model.Contact
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		var err error
		contact, err = stores.Contacts().GetByID(ctx, tenantID, contactID)
		return err
	})
	return contact, err
}

func (s *contactService) Update(ctx context.Context, contact *model.Contact) error {
	return s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		return stores.Contacts().Update(ctx, contact)
	})
}

func (s *contactService) Delete(ctx context.Context, tenantID, contactID int64) error {
	return s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		return stores.Contacts().Delete(ctx, tenantID, contactID)
	})
}

func (s *contactService) List(ctx context.Context, tenantID int64) ([]model.Contact, error) {
	var contacts []model.Contact
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		var err error
		contacts, err = stores.Contacts().ListByTenant(ctx, tenantID)
		return err
	})
	return contacts, err
}

// preferredChannel picks the conversation channel for a contact: email when
// available, SMS otherwise. Contacts reachable on neither get no
// conversation until one is needed.
func preferredChannel(contact *model.Contact) (model.Channel, bool) {
	switch {
	case contact.HasEmail():
		return model.ChannelEmail, true
	case contact.HasPhone():
		return model.ChannelSMS, true
	default:
		return "", false
	}
}
