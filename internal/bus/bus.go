// Package bus implements the in-process domain event dispatcher.
//
// Emit fans an event out to every handler subscribed to its name, in
// subscription order, after running a linear middleware chain. Handlers are
// fault-isolated: a panic or error inside one handler is logged and re-routed
// to the reserved "error" event instead of propagating to the emitter or to
// sibling handlers.
//
// Handlers run synchronously inside the Emit call, so long-running side
// effects belong in the job queue, not here.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bookline.app/core/common/logger"
	"bookline.app/core/internal/domain"
)

// Handler reacts to one event. Implementations type-assert the concrete
// event struct they subscribed for.
type Handler func(ctx context.Context, evt domain.Event) error

// Middleware wraps dispatch for cross-cutting concerns (logging, metrics).
// It must call next to proceed; not calling it swallows the event.
type Middleware func(ctx context.Context, evt domain.Event, next func(ctx context.Context))

type subscription struct {
	id      int64
	handler Handler
	once    bool
}

// Bus is an explicitly constructed component passed via dependency
// injection; there is no process-global instance.
type Bus struct {
	mu          sync.RWMutex
	nextID      int64
	handlers    map[string][]*subscription
	middlewares []Middleware
}

func New() *Bus {
	return &Bus{
		handlers: make(map[string][]*subscription),
	}
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscription)

// Once removes the subscription after its first invocation.
func Once() SubscribeOption {
	return func(s *subscription) { s.once = true }
}

// On registers a handler for the named event and returns an unsubscribe
// function. Handlers run in subscription order.
func (b *Bus) On(name string, handler Handler, opts ...SubscribeOption) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler}
	for _, opt := range opts {
		opt(sub)
	}
	b.handlers[name] = append(b.handlers[name], sub)

	id := sub.id
	return func() { b.remove(name, id) }
}

// Use appends a middleware to the dispatch chain. Middlewares run in
// registration order on every Emit, before any handler.
func (b *Bus) Use(mw Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, mw)
}

// Emit dispatches the event to all handlers subscribed to its name.
// Unknown event names simply have no listeners. Emit never returns handler
// failures to the caller.
func (b *Bus) Emit(ctx context.Context, evt domain.Event) {
	name := evt.EventName()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TenantID: logger.Ptr(evt.Tenant()),
		Event:    logger.Ptr(name),
	})

	// Value-level validation is warn-only: dispatch proceeds regardless.
	if v, ok := evt.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			slog.WarnContext(ctx, "event payload failed validation", "error", err)
		}
	}

	b.mu.RLock()
	middlewares := b.middlewares
	b.mu.RUnlock()

	dispatch := func(ctx context.Context) {
		b.dispatch(ctx, name, evt)
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw := middlewares[i]
		next := dispatch
		dispatch = func(ctx context.Context) {
			mw(ctx, evt, next)
		}
	}
	dispatch(ctx)
}

func (b *Bus) dispatch(ctx context.Context, name string, evt domain.Event) {
	b.mu.RLock()
	subs := make([]*subscription, len(b.handlers[name]))
	copy(subs, b.handlers[name])
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.once {
			// Remove before invoking so a re-entrant Emit can't fire it twice.
			if !b.remove(name, sub.id) {
				continue
			}
		}
		if err := b.invoke(ctx, sub.handler, evt); err != nil {
			slog.ErrorContext(ctx, "event handler failed", "error", err)
			if name != domain.EventError {
				b.Emit(ctx, domain.HandlerError{
					TenantID: evt.Tenant(),
					Event:    name,
					Err:      err,
				})
			}
		}
	}
}

func (b *Bus) invoke(ctx context.Context, handler Handler, evt domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(ctx, evt)
}

// remove deletes the subscription with the given id. Reports whether it was
// still registered, which makes once-removal race-free.
func (b *Bus) remove(name string, id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[name]
	for i, sub := range subs {
		if sub.id == id {
			b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}
