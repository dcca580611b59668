// Package automation contains the event handlers and job processors that
// turn domain events into scheduled follow-up: confirmations, reminders,
// form requests, overdue checks, and operational alerts.
//
// Handlers run on the in-process bus and do only cheap work: look up state,
// run the dedup policy, enqueue jobs, fire one immediate send. Anything that
// must survive a process restart or wait hours goes through the job queue
// and comes back as a processor invocation on the worker.
//
// Every handler and processor is idempotent. Delivery is at-least-once on
// both sides (redundant events, re-run jobs), so each one re-derives intent
// from current store state and the integration log before causing a side
// effect.
package automation

import (
	"time"

	"bookline.app/core/core/config"
	"bookline.app/core/internal/bus"
	"bookline.app/core/internal/domain"
	"bookline.app/core/internal/notify"
	"bookline.app/core/internal/queue"
	"bookline.app/core/internal/store"
)

// Engine wires the automation handlers to their dependencies. One instance
// serves both processes: the API server registers its event handlers, the
// worker runs its job processors.
type Engine struct {
	stores    store.Provider
	queue     queue.Queue
	queueName string
	bus       *bus.Bus
	gateway   *notify.Gateway
	cfg       config.AutomationConfig

	now func() time.Time
}

type EngineOption func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(
	stores store.Provider,
	q queue.Queue,
	queueName string,
	b *bus.Bus,
	gateway *notify.Gateway,
	cfg config.AutomationConfig,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		stores:    stores,
		queue:     q,
		queueName: queueName,
		bus:       b,
		gateway:   gateway,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register subscribes every automation handler on the bus.
func (e *Engine) Register() {
	e.bus.On(domain.EventContactCreated, e.handleContactCreated)
	e.bus.On(domain.EventBookingCreated, e.handleBookingCreated)
	e.bus.On(domain.EventBookingCancelled, e.handleBookingCancelled)
	e.bus.On(domain.EventStaffReplied, e.handleStaffReplied)
	e.bus.On(domain.EventFormPending, e.handleFormPending)
	e.bus.On(domain.EventFormOverdue, e.handleFormOverdue)
	e.bus.On(domain.EventInventoryLow, e.handleInventoryLow)
}

// Processors returns the job-type dispatch table for the queue worker.
func (e *Engine) Processors() queue.Processors {
	return queue.Processors{
		queue.JobTypeBookingConfirmation: e.processBookingConfirmation,
		queue.JobTypeBookingReminder:     e.processBookingReminder,
		queue.JobTypeCreateFormRequests:  e.processCreateFormRequests,
		queue.JobTypeFormReminder:        e.processFormReminder,
		queue.JobTypeFormOverdueCheck:    e.processFormOverdueCheck,
	}
}
