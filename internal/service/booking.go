package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookline.app/core/common/id"
	"bookline.app/core/common/logger"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/model"
	"bookline.app/core/internal/store"
)

// ErrBookingTypeInactive rejects bookings against a retired service offering.
var ErrBookingTypeInactive = errors.New("booking type is not active")

type CreateBookingInput struct {
	ContactID     int64
	BookingTypeID int64
	ScheduledAt   time.Time
	Notes         *string
}

// PublicBookingInput is the self-service variant: the contact may not exist
// yet, so it carries their details instead of an id.
type PublicBookingInput struct {
	FirstName     string
	LastName      string
	Email         *string
	Phone         *string
	BookingTypeID int64
	ScheduledAt   time.Time
}

type BookingService interface {
	Create(ctx context.Context, tenantID int64, input CreateBookingInput) (*model.Booking, error)
	CreatePublic(ctx context.Context, tenantID int64, input PublicBookingInput) (*model.Booking, error)
	Cancel(ctx context.Context, tenantID, bookingID int64) error
	Get(ctx context.Context, tenantID, bookingID int64) (*model.Booking, error)
	List(ctx context.Context, tenantID int64, limit int32) ([]model.Booking, error)
}

type bookingService struct {
	txRunner TxRunner
	bus      *bus.Bus
}

func NewBookingService(txRunner TxRunner, b *bus.Bus) BookingService {
	return &bookingService{txRunner: txRunner, bus: b}
}

// Create books an appointment on behalf of staff. Staff bookings start
// confirmed; the contact already agreed out of band.
func (s *bookingService) Create(ctx context.Context, tenantID int64, input CreateBookingInput) (*model.Booking, error) {
	booking := &model.Booking{
		ID:            id.New(),
		TenantID:      tenantID,
		ContactID:     input.ContactID,
		BookingTypeID: input.BookingTypeID,
		Status:        model.BookingStatusConfirmed,
		ScheduledAt:   input.ScheduledAt,
		Notes:         input.Notes,
	}

	var conversationID int64
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		contact, err := stores.Contacts().GetByID(ctx, tenantID, input.ContactID)
		if err != nil {
			return fmt.Errorf("loading contact: %w", err)
		}
		if err := s.checkBookingType(ctx, stores, tenantID, input.BookingTypeID); err != nil {
			return err
		}
		if err := stores.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}

		conversationID, err = conversationFor(ctx, stores, contact)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.bus.Emit(ctx, domain.BookingCreated{
		TenantID:       tenantID,
		BookingID:      booking.ID,
		BookingTypeID:  booking.BookingTypeID,
		ContactID:      booking.ContactID,
		ConversationID: conversationID,
		ScheduledAt:    booking.ScheduledAt,
		TraceID:        logger.TraceID(ctx),
	})
	return booking, nil
}

// CreatePublic books an appointment from the public booking page: contact,
// conversation, booking, and the inventory deduction for the booked service
// commit together. Public bookings start pending until staff confirms.
func (s *bookingService) CreatePublic(ctx context.Context, tenantID int64, input PublicBookingInput) (*model.Booking, error) {
	contact := &model.Contact{
		ID:        id.New(),
		TenantID:  tenantID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
	}
	booking := &model.Booking{
		ID:            id.New(),
		TenantID:      tenantID,
		ContactID:     contact.ID,
		BookingTypeID: input.BookingTypeID,
		Status:        model.BookingStatusPending,
		ScheduledAt:   input.ScheduledAt,
	}

	var (
		conversationID int64
		lowEvent       *domain.InventoryLow
	)
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		if err := s.checkBookingType(ctx, stores, tenantID, input.BookingTypeID); err != nil {
			return err
		}
		if err := stores.Contacts().Create(ctx, contact); err != nil {
			return fmt.Errorf("creating contact: %w", err)
		}
		if err := stores.Bookings().Create(ctx, booking); err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}

		var err error
		conversationID, err = conversationFor(ctx, stores, contact)
		if err != nil {
			return err
		}

		lowEvent, err = deductForBookingType(ctx, stores, tenantID, input.BookingTypeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	traceID := logger.TraceID(ctx)
	s.bus.Emit(ctx, domain.ContactCreated{
		TenantID:       tenantID,
		ContactID:      contact.ID,
		ConversationID: conversationID,
		TraceID:        traceID,
	})
	s.bus.Emit(ctx, domain.BookingCreated{
		TenantID:       tenantID,
		BookingID:      booking.ID,
		BookingTypeID:  booking.BookingTypeID,
		ContactID:      contact.ID,
		ConversationID: conversationID,
		ScheduledAt:    booking.ScheduledAt,
		TraceID:        traceID,
	})
	if lowEvent != nil {
		lowEvent.TraceID = traceID
		s.bus.Emit(ctx, *lowEvent)
	}
	return booking, nil
}

// Cancel transitions the booking to cancelled and announces it so scheduled
// follow-up gets withdrawn.
func (s *bookingService) Cancel(ctx context.Context, tenantID, bookingID int64) error {
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		booking, err := stores.Bookings().GetByID(ctx, tenantID, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == model.BookingStatusCancelled {
			return nil
		}
		return stores.Bookings().UpdateStatus(ctx, tenantID, bookingID, model.BookingStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.bus.Emit(ctx, domain.BookingCancelled{
		TenantID:  tenantID,
		BookingID: bookingID,
		TraceID:   logger.TraceID(ctx),
	})
	return nil
}

func (s *bookingService) Get(ctx context.Context, tenantID, bookingID int64) (*model.Booking, error) {
	var booking *model.Booking
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		var err error
		booking, err = stores.Bookings().GetByID(ctx, tenantID, bookingID)
		return err
	})
	return booking, err
}

func (s *bookingService) List(ctx context.Context, tenantID int64, limit int32) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.txRunner.WithTx(ctx, func(stores store.Provider) error {
		var err error
		bookings, err = stores.Bookings().ListByTenant(ctx, tenantID, limit)
		return err
	})
	return bookings, err
}

func (s *bookingService) checkBookingType(ctx context.Context, stores store.Provider, tenantID, bookingTypeID int64) error {
	bt, err := stores.BookingTypes().GetByID(ctx, tenantID, bookingTypeID)
	if err != nil {
		return fmt.Errorf("loading booking type: %w", err)
	}
	if !bt.IsActive {
		return ErrBookingTypeInactive
	}
	return nil
}

func conversationFor(ctx context.Context, stores store.Provider, contact *model.Contact) (int64, error) {
	channel, ok := preferredChannel(contact)
	if !ok {
		return 0, nil
	}
	conv, err := stores.Conversations().GetOrCreate(ctx, contact.TenantID, contact.ID, channel)
	if err != nil {
		return 0, fmt.Errorf("opening conversation: %w", err)
	}
	return conv.ID, nil
}

// deductForBookingType consumes one unit of the inventory item tracking the
// booked service, if one exists. Returns an InventoryLow event when this
// deduction moved the item from above its reorder level to at-or-below it:
// the crossing, not every deduction below the line, triggers the alert flow.
func deductForBookingType(ctx context.Context, stores store.Provider, tenantID, bookingTypeID int64) (*domain.InventoryLow, error) {
	item, err := stores.Inventory().GetByBookingType(ctx, tenantID, bookingTypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading inventory for booking type: %w", err)
	}

	wasLow := item.IsLow()
	updated, err := stores.Inventory().Deduct(ctx, tenantID, item.ID, 1)
	if err != nil {
		return nil, fmt.Errorf("deducting inventory: %w", err)
	}
	if !wasLow && updated.IsLow() {
		return &domain.InventoryLow{
			TenantID:     tenantID,
			ItemID:       updated.ID,
			Quantity:     updated.Quantity,
			ReorderLevel: updated.ReorderLevel,
		}, nil
	}
	return nil, nil
}
