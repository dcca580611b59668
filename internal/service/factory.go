// Package service implements the business operations behind the HTTP API.
// Services write through transactional stores and emit domain events only
// after the transaction commits, so automation never observes uncommitted
// state.
package service

import (
	"bookline.app/core/core/config"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/store"
)

type Services struct {
	stores    store.Provider
	txRunner  TxRunner
	bus       *bus.Bus
	queue     queue.Queue
	queueName string
	cfg       config.Config
}

func NewServices(
	stores store.Provider,
	txRunner TxRunner,
	b *bus.Bus,
	q queue.Queue,
	cfg config.Config,
) *Services {
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		bus:       b,
		queue:     q,
		queueName: cfg.Queue.Queue,
		cfg:       cfg,
	}
}

func (s *Services) Contacts() ContactService {
	return NewContactService(s.txRunner, s.bus)
}

func (s *Services) Bookings() BookingService {
	return NewBookingService(s.txRunner, s.bus)
}

func (s *Services) Messages() MessageService {
	return NewMessageService(s.txRunner, s.bus)
}

func (s *Services) Forms() FormService {
	return NewFormService(s.stores, s.txRunner, s.queue, s.queueName)
}

func (s *Services) Inventory() InventoryService {
	return NewInventoryService(s.stores, s.bus)
}

func (s *Services) Alerts() AlertService {
	return NewAlertService(s.stores)
}
